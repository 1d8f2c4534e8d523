package serviceconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Serialization Tests
// =============================================================================

func TestSerialize_Empty(t *testing.T) {
	assert.Equal(t, "{}", NewResolvedConfig().Serialize())
}

func TestSerialize_ScalarTypes(t *testing.T) {
	cfg := NewResolvedConfig()
	cfg.Set("A", "b", true)
	cfg.Set("A", "i", int64(3))
	cfg.Set("A", "f", 0.5)
	cfg.Set("A", "s", "hello")
	cfg.Set("A", "n", nil)

	assert.Equal(t,
		`{"A": {"b": true, "i": 3, "f": 0.5, "s": "hello", "n": null}}`,
		cfg.Serialize())
}

func TestSerialize_NestedValues(t *testing.T) {
	cfg := NewResolvedConfig()
	cfg.Set("A", "j", CoerceValue(`{"k": 1, "list": [1, "x"]}`))

	assert.Equal(t,
		`{"A": {"j": {"k": 1, "list": [1, "x"]}}}`,
		cfg.Serialize())
}

func TestSerialize_StringEscaping(t *testing.T) {
	cfg := NewResolvedConfig()
	cfg.Set("A", "s", `say "hi"`+"\n")

	assert.Equal(t, `{"A": {"s": "say \"hi\"\n"}}`, cfg.Serialize())
}

func TestSerialize_IsValidJSON(t *testing.T) {
	cfg := NewResolvedConfig()
	cfg.Set("Frontend", "model", "qwentastic")
	cfg.Set("Middle", "bias", 0.5)
	cfg.Set("Middle", "opts", CoerceValue(`{"depth": [1, 2, {"deep": true}]}`))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(cfg.Serialize()), &decoded))
	assert.Contains(t, decoded, "Frontend")
	assert.Contains(t, decoded, "Middle")
}

func TestSerialize_StringerMatches(t *testing.T) {
	cfg := NewResolvedConfig()
	cfg.Set("A", "x", int64(1))

	assert.Equal(t, cfg.Serialize(), cfg.String())
}
