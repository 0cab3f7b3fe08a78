package types

import (
	"fmt"
	"log/slog"
)

// SecretString holds an API key or a Redis URL with credentials. Every printed
// form (fmt verbs, slog, JSON and other text encodings) shows [REDACTED];
// only Value exposes the raw string. The zero value is empty and prints as "".
type SecretString struct {
	value string
}

// NewSecretString wraps value.
func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

// Value returns the raw secret.
func (s SecretString) Value() string { return s.value }

func (s SecretString) IsEmpty() bool { return s.value == "" }

func (s SecretString) String() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString covers %#v, which would otherwise print the struct field.
func (s SecretString) GoString() string {
	return fmt.Sprintf("types.SecretString(%q)", s.String())
}

func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// MarshalText makes encoding/json and friends emit the redacted form.
func (s SecretString) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the raw secret, so config files and environment
// overrides decode into it directly.
func (s *SecretString) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}
