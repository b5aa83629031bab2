package world

import "strconv"

// Flags is module-scoped metadata attached to folders, documents, notes and
// tokens: scope -> key -> value.
type Flags map[string]map[string]any

// Get returns the raw value stored under scope/key.
func (f Flags) Get(scope, key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f[scope][key]
	return v, ok
}

// String returns the value under scope/key as a string. Empty strings and
// non-string values report false.
func (f Flags) String(scope, key string) (string, bool) {
	v, ok := f.Get(scope, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Int returns the value under scope/key as an int. JSON numbers decode as
// float64 and YAML numbers as int; both are accepted, as are numeric strings.
func (f Flags) Int(scope, key string) (int, bool) {
	v, ok := f.Get(scope, key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Set stores value under scope/key, allocating maps as needed, and returns
// the (possibly new) Flags.
//
// Postcondition: result.Get(scope, key) returns value.
func (f Flags) Set(scope, key string, value any) Flags {
	if f == nil {
		f = make(Flags)
	}
	if f[scope] == nil {
		f[scope] = make(map[string]any)
	}
	f[scope][key] = value
	return f
}

// Unset removes scope/key. Empty scopes are dropped.
func (f Flags) Unset(scope, key string) {
	if f == nil || f[scope] == nil {
		return
	}
	delete(f[scope], key)
	if len(f[scope]) == 0 {
		delete(f, scope)
	}
}

// Clone returns a two-level copy of f.
func (f Flags) Clone() Flags {
	if f == nil {
		return nil
	}
	out := make(Flags, len(f))
	for scope, kv := range f {
		m := make(map[string]any, len(kv))
		for k, v := range kv {
			m[k] = v
		}
		out[scope] = m
	}
	return out
}
