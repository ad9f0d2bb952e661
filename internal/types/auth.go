package types

import "reflect"

// AuthContext is derived once per request from the bearer token and threaded
// through every condition resolution. The zero value is an anonymous caller.
type AuthContext struct {
	Token         string
	User          map[string]interface{}
	TenantID      string
	UserSettingID string
}

// Authenticated reports whether a user was resolved for the request.
func (a AuthContext) Authenticated() bool {
	return a.User != nil
}

// UserField returns an attribute of the current user. Array attributes
// resolve to their first element.
func (a AuthContext) UserField(name string) Optional[interface{}] {
	if a.User == nil {
		return None[interface{}]()
	}
	v, ok := a.User[name]
	if !ok || v == nil {
		return None[interface{}]()
	}
	return FirstOf(v)
}

// FirstOf unwraps list values to their first element. Empty lists are absent.
// Any slice kind is accepted so driver-specific array types unwrap too.
func FirstOf(v interface{}) Optional[interface{}] {
	if v == nil {
		return None[interface{}]()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Some(v)
	}
	if _, isBytes := v.([]byte); isBytes {
		return Some(v)
	}
	if rv.Len() == 0 {
		return None[interface{}]()
	}
	first := rv.Index(0).Interface()
	if first == nil {
		return None[interface{}]()
	}
	return Some(first)
}
