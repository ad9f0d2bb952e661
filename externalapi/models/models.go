package models

// Body encodings accepted in Body.RequestType / Body.Type.
const (
	BodyRawJSON        = "RAW_JSON"
	BodyCustom         = "CUSTOM"
	BodyFormURLEncoded = "FORM_URL_ENCODED"
	BodyFormData       = "FORM_DATA"
)

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Body is the payload description sent by the builder. Data is either an
// object or a list of key/value pairs.
type Body struct {
	Type        string      `json:"type"`
	RequestType string      `json:"requestType"`
	Data        interface{} `json:"data"`
}

// Request describes one outbound call.
//
// Params and Headers values may contain {{key}} placeholders filled from
// CollectionParamsValue and the resolved current-user params. A
// CurrentUserParams entry names, in Value, the field of
// CurrentUserParamsValue that supplies it.
type Request struct {
	URL                    string                 `json:"url"`
	MethodType             string                 `json:"methodType" validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Params                 []KeyValue             `json:"params"`
	Headers                []KeyValue             `json:"headers"`
	CurrentUserParams      []KeyValue             `json:"currentUserParams"`
	CurrentUserParamsValue map[string]interface{} `json:"currentUserParamsValue"`
	CollectionParamsValue  map[string]interface{} `json:"collectionParamsValue"`
	Body                   *Body                  `json:"body"`
	AuthType               string                 `json:"authType"`
	AccessToken            string                 `json:"accessToken"`
}

// Result is the upstream answer: its status and either the decoded JSON
// document or the raw text.
type Result struct {
	Status int
	Data   interface{}
}
