package types

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputLength is the maximum length, in characters, of a search query or breed name.
const DefaultMaxInputLength = 100

// InputValidationConfig contains configuration for user-supplied breed names and queries.
type InputValidationConfig struct {
	MaxLength         int
	AllowControlChars bool
}

// DefaultInputValidationConfig returns an InputValidationConfig with default values.
func DefaultInputValidationConfig() InputValidationConfig {
	return InputValidationConfig{
		MaxLength:         DefaultMaxInputLength,
		AllowControlChars: false,
	}
}

// InputValidator validates free-text breed input before any network call is made.
type InputValidator struct {
	config InputValidationConfig
}

// NewInputValidator creates a new InputValidator with the given configuration.
func NewInputValidator(config InputValidationConfig) *InputValidator {
	return &InputValidator{config: config}
}

// Validate trims input and checks it. It returns the trimmed value on success
// and a ValidationError attributed to op otherwise.
func (v *InputValidator) Validate(op, input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", NewValidationError(op, "input cannot be empty")
	}

	if !utf8.ValidString(trimmed) {
		return "", NewValidationError(op, "input contains invalid UTF-8")
	}

	// Length is counted in characters so Cyrillic names get the same budget as Latin ones.
	if n := utf8.RuneCountInString(trimmed); v.config.MaxLength > 0 && n > v.config.MaxLength {
		return "", NewValidationError(op, fmt.Sprintf("input length %d exceeds maximum %d characters", n, v.config.MaxLength))
	}

	if !v.config.AllowControlChars {
		for i, r := range trimmed {
			if unicode.IsControl(r) {
				return "", NewValidationError(op, fmt.Sprintf("input contains control character at position %d", i))
			}
		}
	}

	return trimmed, nil
}

// DefaultInputValidator is the default input validator instance.
var DefaultInputValidator = NewInputValidator(DefaultInputValidationConfig())

// ValidateInput validates input using the default validator.
func ValidateInput(op, input string) (string, error) {
	return DefaultInputValidator.Validate(op, input)
}
