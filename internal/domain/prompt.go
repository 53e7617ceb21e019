package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxPromptLength bounds prompt text in characters.
const DefaultMaxPromptLength = 500

// ValidatePrompt rejects empty or whitespace-only text and, when max > 0,
// text longer than max characters.
func ValidatePrompt(text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return Invalid("prompt", "prompt is required")
	}
	if max > 0 && utf8.RuneCountInString(text) > max {
		return &ValidationError{Field: "prompt", Reason: fmt.Sprintf("prompt exceeds %d characters", max), Max: max}
	}
	return nil
}
