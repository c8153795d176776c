// Package bayapi decodes Bayfiles API response bodies. Every endpoint answers
// with a flat JSON object whose "error" member is the only failure signal;
// the file listing additionally mixes file entries and that "error" member at
// the same level, so the decoder keeps the server-provided key order.
package bayapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrorKey is the member carrying the API error message.
const ErrorKey = "error"

// ErrNotObject is returned when a body is not a JSON object.
var ErrNotObject = errors.New("bayapi: response is not a JSON object")

// Object is a decoded JSON object that remembers member order.
type Object struct {
	keys   []string
	fields map[string]json.RawMessage
}

// Decode parses body into an Object. Empty bodies, JSON null and non-object
// documents are rejected.
func Decode(body []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("bayapi: empty response body")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("bayapi: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	obj := &Object{fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("bayapi: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("bayapi: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("bayapi: member %q: %w", key, err)
		}
		if _, seen := obj.fields[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("bayapi: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("bayapi: trailing data after object")
	}
	return obj, nil
}

// Keys returns member names in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Has reports whether the member is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.fields[key]
	return ok
}

// Raw returns the undecoded member value, or nil when absent.
func (o *Object) Raw(key string) json.RawMessage {
	if o == nil {
		return nil
	}
	return o.fields[key]
}

// ErrorMessage returns the "error" member as a string ("" when absent or not a string).
func (o *Object) ErrorMessage() string {
	if o == nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(o.fields[ErrorKey], &msg); err != nil {
		return ""
	}
	return msg
}

// HasError reports whether the "error" member is a non-empty string.
func (o *Object) HasError() bool {
	return o.ErrorMessage() != ""
}

// String returns the member rendered as text. Numbers and booleans are
// returned as their JSON literal; null and absent members report false.
func (o *Object) String(key string) (string, bool) {
	raw := o.Raw(key)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), true
}

// Int returns the member as an integer. Numeric strings are accepted and
// fractional numbers are truncated. Values outside the int64 range report
// false.
func (o *Object) Int(key string) (int64, bool) {
	s, ok := o.String(key)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, true
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Bool returns the member as a boolean using loose truthiness: JSON
// booleans, non-zero numbers and strings other than "", "0" and "false".
func (o *Object) Bool(key string) (bool, bool) {
	raw := o.Raw(key)
	if len(raw) == 0 || string(raw) == "null" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	if n, ok := o.Int(key); ok {
		return n != 0, true
	}
	s, ok := o.String(key)
	if !ok {
		return false, false
	}
	return s != "" && s != "0" && !strings.EqualFold(s, "false"), true
}

// Object decodes a nested object member.
func (o *Object) Object(key string) (*Object, error) {
	raw := o.Raw(key)
	if raw == nil {
		return nil, fmt.Errorf("bayapi: member %q missing", key)
	}
	return Decode(raw)
}
