package models

import (
	"strings"

	"github.com/drapcode/exchange-engine/internal/query"
	"github.com/drapcode/exchange-engine/internal/types"
)

// Field types a collection can declare.
const (
	FieldTypeText           = "text"
	FieldTypeNumber         = query.FieldTypeNumber
	FieldTypeBoolean        = query.FieldTypeBoolean
	FieldTypeDate           = "date"
	FieldTypeReference      = "reference"
	FieldTypeMultiReference = "multi_reference"
)

// AggregationMode selects what a finder returns.
type AggregationMode string

const (
	ModeFind  AggregationMode = "FIND"
	ModeCount AggregationMode = "COUNT"
	ModeSum   AggregationMode = "SUM"
	ModeAvg   AggregationMode = "AVG"
	ModeMin   AggregationMode = "MIN"
	ModeMax   AggregationMode = "MAX"
)

// IsAggregate reports whether the mode needs a grouping stage.
func (m AggregationMode) IsAggregate() bool {
	switch m {
	case ModeSum, ModeAvg, ModeMin, ModeMax:
		return true
	}
	return false
}

// ValueSource says where a condition's operand comes from.
type ValueSource string

const (
	SourceStatic             ValueSource = "STATIC"
	SourceQueryParam         ValueSource = "QUERY_PARAM"
	SourceCurrentUser        ValueSource = "CURRENT_USER"
	SourceCurrentTenant      ValueSource = "CURRENT_TENANT"
	SourceCurrentUserSetting ValueSource = "CURRENT_USER_SETTING"
	SourceProjectConstant    ValueSource = "PROJECT_CONSTANT"
	SourceRequestHeader      ValueSource = "REQUEST_HEADER"
	SourceCurrentDate        ValueSource = "CURRENT_DATE"
	SourceNestedFilter       ValueSource = "NESTED_FILTER"
)

// Field is one declared column of a collection.
type Field struct {
	FieldName string `json:"fieldName"`
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
}

// NestedFilter points a condition at another collection's finder. The ids
// it yields are read from ValueField, "uuid" by default.
type NestedFilter struct {
	CollectionName string `json:"collectionName"`
	FilterUUID     string `json:"filterUuid"`
	ValueField     string `json:"valueField,omitempty"`
}

// Condition is one filter clause.
//
// Key names the query parameter, user attribute, constant or header the
// value is read from; STATIC conditions carry Value instead. For
// CURRENT_TENANT and CURRENT_USER_SETTING an empty Key means the id itself.
type Condition struct {
	UUID         string        `json:"uuid,omitempty"`
	FieldName    string        `json:"fieldName"`
	Operator     string        `json:"operator"`
	ValueSource  ValueSource   `json:"valueSource"`
	Key          string        `json:"key,omitempty"`
	Value        interface{}   `json:"value,omitempty"`
	NestedFilter *NestedFilter `json:"nestedFilter,omitempty"`
}

// Finder is a stored query definition.
type Finder struct {
	UUID           string          `json:"uuid"`
	Name           string          `json:"name"`
	Mode           AggregationMode `json:"finder"`
	Conditions     []Condition     `json:"conditions"`
	EnableRls      bool            `json:"enableRls,omitempty"`
	RlsFilter      string          `json:"rlsFilter,omitempty"`
	FieldsInclude  []string        `json:"fieldsInclude,omitempty"`
	AggregateField string          `json:"aggregateField,omitempty"`
}

// Clone returns a deep copy so per-request changes never reach the stored definition.
func (f Finder) Clone() Finder {
	out := f
	out.Conditions = append([]Condition(nil), f.Conditions...)
	for i, c := range out.Conditions {
		if c.NestedFilter != nil {
			nf := *c.NestedFilter
			out.Conditions[i].NestedFilter = &nf
		}
	}
	out.FieldsInclude = append([]string(nil), f.FieldsInclude...)
	return out
}

// RowLevelSecurityFilter is a named condition set that narrows every query of a finder.
type RowLevelSecurityFilter struct {
	UUID       string      `json:"uuid"`
	Name       string      `json:"name,omitempty"`
	Conditions []Condition `json:"conditions"`
}

// Lookup joins another collection into FIND results.
type Lookup struct {
	From         string `json:"from"`
	LocalField   string `json:"localField"`
	ForeignField string `json:"foreignField"`
	As           string `json:"as"`
}

// Constant is a project-level named value.
type Constant struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Collection is a schema-defined data set. Finder is set by lookups that
// select a finder by uuid.
type Collection struct {
	ProjectID              string                   `json:"projectId"`
	CollectionName         string                   `json:"collectionName"`
	IsPrivate              bool                     `json:"isPrivate"`
	Fields                 []Field                  `json:"fields"`
	Finders                []Finder                 `json:"finders,omitempty"`
	Finder                 *Finder                  `json:"finder,omitempty"`
	ExternalParams         []string                 `json:"externalParams,omitempty"`
	Constants              []Constant               `json:"constants,omitempty"`
	EnableLookup           bool                     `json:"enableLookup,omitempty"`
	Lookups                []Lookup                 `json:"lookups,omitempty"`
	RowLevelSecurityFilter []RowLevelSecurityFilter `json:"rowLevelSecurityFilter,omitempty"`
	IPAddresses            []string                 `json:"ipAddresses,omitempty"`
}

// AllowsIP reports whether any of clientIPs is on the collection's allowlist.
// An empty allowlist admits every caller.
func (c Collection) AllowsIP(clientIPs []string) bool {
	if len(c.IPAddresses) == 0 {
		return true
	}
	for _, ip := range clientIPs {
		for _, allowed := range c.IPAddresses {
			if ip == strings.TrimSpace(allowed) {
				return true
			}
		}
	}
	return false
}

// FieldTypes maps field names to declared types.
func (c Collection) FieldTypes() query.FieldTypes {
	out := make(query.FieldTypes, len(c.Fields))
	for _, f := range c.Fields {
		out[f.FieldName] = f.Type
	}
	return out
}

// Field looks up a declared field.
func (c Collection) Field(name string) types.Optional[Field] {
	for _, f := range c.Fields {
		if f.FieldName == name {
			return types.Some(f)
		}
	}
	return types.None[Field]()
}

// FinderByUUID looks up a stored finder.
func (c Collection) FinderByUUID(id string) types.Optional[Finder] {
	for _, f := range c.Finders {
		if f.UUID == id {
			return types.Some(f)
		}
	}
	return types.None[Finder]()
}

// RLSFilter looks up a row-level security filter.
func (c Collection) RLSFilter(id string) types.Optional[RowLevelSecurityFilter] {
	for _, f := range c.RowLevelSecurityFilter {
		if f.UUID == id {
			return types.Some(f)
		}
	}
	return types.None[RowLevelSecurityFilter]()
}

// Constant looks up a project constant.
func (c Collection) Constant(name string) types.Optional[interface{}] {
	for _, k := range c.Constants {
		if k.Name == name {
			return types.Some(k.Value)
		}
	}
	return types.None[interface{}]()
}

// RequiredParams flattens ExternalParams; one entry may pack several names
// separated by "---".
func (c Collection) RequiredParams() []string {
	var out []string
	for _, p := range c.ExternalParams {
		for _, name := range strings.Split(p, "---") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// WithFinder returns a copy of c with Finder set to a clone of the stored finder.
func (c Collection) WithFinder(filterUUID string) types.Optional[Collection] {
	f, ok := c.FinderByUUID(filterUUID).Get()
	if !ok {
		return types.None[Collection]()
	}
	clone := f.Clone()
	c.Finder = &clone
	return types.Some(c)
}
