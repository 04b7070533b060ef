package imagestudio

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrPromptTooLong = errors.New("prompt exceeds maximum length")
)

// MaxPromptLength is the longest prompt accepted, in characters.
const MaxPromptLength = 4000

// NormalizePrompt trims surrounding whitespace and validates the result.
func NormalizePrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if err := ValidatePrompt(prompt); err != nil {
		return "", err
	}
	return prompt, nil
}

// ValidatePrompt validates an already trimmed text prompt.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrPromptTooLong, n, MaxPromptLength)
	}
	return nil
}
