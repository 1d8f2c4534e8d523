package serviceconfig

import (
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// Deterministic Serialization
// =============================================================================

// Serialize renders the resolved configuration as a single-line JSON object
// suitable for an environment variable value. Keys are emitted in insertion
// order with ": " and ", " separators, so repeated runs on identical input
// produce byte-identical output:
//
//	{"Frontend": {"model": "qwentastic"}, "Middle": {"bias": 0.5}}
func (c *ResolvedConfig) Serialize() string {
	var b strings.Builder
	writeValue(&b, c.services)
	return b.String()
}

// String implements fmt.Stringer for logging and user verification output.
func (c *ResolvedConfig) String() string {
	return c.Serialize()
}

// writeValue renders one config value into the builder.
func writeValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case json.Number:
		b.WriteString(v.String())
	case string:
		writeString(b, v)
	case *Object:
		b.WriteByte('{')
		for i, key := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, key)
			b.WriteString(": ")
			val, _ := v.Get(key)
			writeValue(b, val)
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	default:
		// Should not happen for values built by this package; fall back to
		// standard encoding rather than dropping the value.
		raw, err := json.Marshal(v)
		if err != nil {
			writeString(b, "")
			return
		}
		b.Write(raw)
	}
}

// writeString writes a JSON-escaped string.
func writeString(b *strings.Builder, s string) {
	raw, _ := json.Marshal(s)
	b.Write(raw)
}
