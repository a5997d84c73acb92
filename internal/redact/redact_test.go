package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	assert.Equal(t, "abcd"+Mask, Token("abcdefghijklmnop"))
	assert.Equal(t, Mask, Token("short"))
	assert.Equal(t, Mask, Token("12345678")) // boundary: 8 chars is still fully masked
	assert.Equal(t, Mask, Token(""))
}

func TestFieldsMasksOnlyNamedKeys(t *testing.T) {
	in := map[string]interface{}{
		"email":    "ana@example.com",
		"salary":   85000.0,
		"password": "hunter2",
	}
	out := Fields(in, "salary", "password", "missing")

	assert.Equal(t, "ana@example.com", out["email"])
	assert.Equal(t, Mask, out["salary"])
	assert.Equal(t, Mask, out["password"])
	assert.NotContains(t, out, "missing")

	// The input map is untouched.
	assert.Equal(t, "hunter2", in["password"])
}
