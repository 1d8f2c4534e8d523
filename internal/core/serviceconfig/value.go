package serviceconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// =============================================================================
// Ordered Object
// =============================================================================

// Object is a string-keyed mapping that remembers insertion order.
// Serialization iterates keys in insertion order so repeated runs on
// identical input produce byte-identical output.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set inserts or overwrites a key. Overwriting keeps the key's original
// position (last-write-wins on the value, first-write-wins on the order).
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for a key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// =============================================================================
// Value Coercion
// =============================================================================

// CoerceValue converts a raw override string into a typed ConfigValue.
//
// Coercion order:
//   - "true" / "false" become booleans
//   - integer literals become int64
//   - floating-point literals become float64
//   - values starting with '{' or '[' are parsed as JSON
//   - everything else stays a string
//
// A JSON-looking value that fails to parse degrades to a plain string rather
// than erroring; the token shape was valid, only its payload was not JSON.
func CoerceValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		if v, err := decodeJSON(raw); err == nil {
			return v
		}
	}
	return raw
}

// =============================================================================
// Order-Preserving JSON Decoding
// =============================================================================

// decodeJSON parses a JSON document into ordered values: objects become
// *Object, arrays []any, numbers json.Number, plus string/bool/nil.
// The standard map[string]any decode would lose key order.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing garbage after the document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing content in JSON value")
	}
	return v, nil
}

// decodeJSONValue decodes the next complete JSON value from the decoder.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, bool, json.Number or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("expected object key, got %v", keyTok)
			}
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		// consume the closing '}'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		// consume the closing ']'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
