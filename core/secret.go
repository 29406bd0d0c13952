package core

// Secret holds a sensitive string (an API key) and keeps it out of logs.
// Formatting or marshaling a Secret yields a redacted placeholder; the
// real value is only reachable through Expose().
type Secret struct {
	value string
}

// NewSecret wraps a raw credential in a Secret.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String returns a redacted placeholder. Implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString returns a redacted placeholder for %#v formatting.
func (s Secret) GoString() string {
	return "core.Secret{[REDACTED]}"
}

// MarshalJSON redacts the value in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText redacts the value in text output (e.g., YAML).
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the underlying credential. Callers must not log or
// serialize the returned value.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret holds no value.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}
