// Package redact provides explicit, typed masking for anything that may
// reach a log line or an audit row. Instead of walking arbitrary structs
// at runtime, loggable payloads implement Redactor and enumerate their own
// safe fields; sensitive values are tagged where they are declared.
package redact

// Mask replaces redacted values.
const Mask = "*****"

// Redactor is implemented by request/response payloads that may be
// logged. Redacted returns a flat map holding only fields that are safe
// to emit, with sensitive values already masked.
type Redactor interface {
	Redacted() map[string]interface{}
}

// Token masks an opaque credential while keeping a short prefix so log
// lines from the same token can be correlated. Short inputs are masked
// entirely.
func Token(s string) string {
	if len(s) <= 8 {
		return Mask
	}
	return s[:4] + Mask
}

// Fields copies a detail map, masking the named keys. Used when building
// audit details from ad-hoc maps rather than typed payloads.
func Fields(m map[string]interface{}, sensitive ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range sensitive {
		if _, ok := out[k]; ok {
			out[k] = Mask
		}
	}
	return out
}
