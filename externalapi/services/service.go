package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/drapcode/exchange-engine/externalapi/errors"
	"github.com/drapcode/exchange-engine/externalapi/models"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/pkg/placeholder"
	"github.com/drapcode/exchange-engine/internal/types"
)

// Service performs builder-configured calls against third-party APIs.
type Service interface {
	Process(ctx context.Context, req models.Request) (*models.Result, error)
}

type externalService struct {
	client   *http.Client
	validate *validator.Validate
}

// NewService returns a Service whose outbound calls give up after timeout.
func NewService(timeout time.Duration) Service {
	return newService(&http.Client{Timeout: timeout})
}

func newService(client *http.Client) *externalService {
	return &externalService{client: client, validate: validator.New()}
}

func (s *externalService) Process(ctx context.Context, req models.Request) (*models.Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.ErrInvalidURL
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	values := substitutionValues(req)
	target, err := buildURL(req, values)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(req.MethodType)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	var contentType string
	if method != http.MethodGet {
		body, contentType, err = encodeBody(req.Body, req.CollectionParamsValue)
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}
	for _, h := range req.Headers {
		if h.Key == "" {
			continue
		}
		httpReq.Header.Set(h.Key, placeholder.Substitute(h.Value, values))
	}
	if contentType != "" && httpReq.Header.Get(types.HeaderContentType) == "" {
		httpReq.Header.Set(types.HeaderContentType, contentType)
	}
	if req.AuthType != "" && req.AccessToken != "" {
		httpReq.Header.Set(types.HeaderAuthorization, "Bearer "+req.AccessToken)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		log.WarnWithContext(ctx, "external api %s %s failed: %v", method, httpReq.URL.Host, err)
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", errors.ErrUpstream, err)
	}
	log.InfoWithContext(ctx, "external api %s %s -> %d", method, httpReq.URL.Host, resp.StatusCode)

	return &models.Result{Status: resp.StatusCode, Data: decode(raw)}, nil
}

// substitutionValues merges collection values with the resolved current-user
// params. Current-user params win on key clashes.
func substitutionValues(req models.Request) map[string]interface{} {
	values := make(map[string]interface{}, len(req.CollectionParamsValue)+len(req.CurrentUserParams))
	for k, v := range req.CollectionParamsValue {
		values[k] = v
	}
	for _, p := range req.CurrentUserParams {
		if p.Key == "" {
			continue
		}
		if v, ok := req.CurrentUserParamsValue[p.Value]; ok {
			values[p.Key] = v
		}
	}
	return values
}

func buildURL(req models.Request, values map[string]interface{}) (string, error) {
	u, err := url.Parse(strings.TrimSpace(placeholder.Substitute(req.URL, values)))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.ErrInvalidURL
	}

	q := u.Query()
	for _, p := range req.Params {
		if p.Key == "" {
			continue
		}
		q.Set(p.Key, placeholder.Substitute(p.Value, values))
	}
	for _, p := range req.CurrentUserParams {
		if v, ok := values[p.Key]; ok && p.Key != "" && v != nil {
			q.Set(p.Key, fmt.Sprint(v))
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(b *models.Body, values map[string]interface{}) (io.Reader, string, error) {
	if b == nil || b.Data == nil {
		return nil, "", nil
	}
	content := pairsToMap(b.Data)

	switch {
	case b.Type == models.BodyRawJSON || b.RequestType == models.BodyCustom:
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
		}
		text := placeholder.Substitute(string(raw), jsonEscaped(values))
		if !json.Valid([]byte(text)) {
			return nil, "", fmt.Errorf("%w: substituted body is not valid JSON", errors.ErrInvalidBody)
		}
		return strings.NewReader(text), "application/json", nil

	case b.RequestType == models.BodyFormURLEncoded:
		fields, ok := content.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("%w: form body must be an object", errors.ErrInvalidBody)
		}
		form := url.Values{}
		for k, v := range fields {
			form.Set(k, fmt.Sprint(v))
		}
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil

	case b.RequestType == models.BodyFormData:
		fields, ok := content.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("%w: form body must be an object", errors.ErrInvalidBody)
		}
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, k := range sortedKeys(fields) {
			if err := w.WriteField(k, fmt.Sprint(fields[k])); err != nil {
				return nil, "", fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
		}
		return &buf, w.FormDataContentType(), nil

	default:
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errors.ErrInvalidBody, err)
		}
		return bytes.NewReader(raw), "application/json", nil
	}
}

// pairsToMap turns [{key, value}, ...] into an object. Anything else is
// returned untouched.
func pairsToMap(data interface{}) interface{} {
	list, ok := data.([]interface{})
	if !ok {
		return data
	}
	out := make(map[string]interface{}, len(list))
	for _, item := range list {
		pair, ok := item.(map[string]interface{})
		if !ok {
			return data
		}
		key, ok := pair["key"].(string)
		if !ok {
			return data
		}
		out[key] = pair["value"]
	}
	return out
}

// jsonEscaped renders values so they can be spliced into a JSON string
// literal without breaking it.
func jsonEscaped(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		raw, _ := json.Marshal(s)
		out[k] = string(raw[1 : len(raw)-1])
	}
	return out
}

func decode(raw []byte) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if json.Valid(trimmed) {
		var doc interface{}
		if err := json.Unmarshal(trimmed, &doc); err == nil {
			return doc
		}
	}
	return string(raw)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
