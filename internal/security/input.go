// Package security validates free text that users attach to their records.
package security

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
)

var (
	ErrInputTooLarge     = errors.New("input exceeds maximum size")
	ErrNullByteDetected  = errors.New("null byte detected in input")
	ErrInvalidUTF8       = errors.New("input is not valid UTF-8")
	ErrControlCharacter  = errors.New("control character in input")
	ErrRepetitiveContent = errors.New("excessive repetition detected")
)

// MaxNameLength bounds display names and meal names, in runes.
const MaxNameLength = 120

type InputValidator struct {
	MaxLength     int // runes; 0 = unlimited
	MaxRepetition int // longest run of one rune; 0 = unlimited
	AllowNewlines bool
}

func NewInputValidator(maxLength int) *InputValidator {
	return &InputValidator{
		MaxLength:     maxLength,
		MaxRepetition: 20,
	}
}

func (v *InputValidator) Validate(input string) error {
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}
	if v.MaxLength > 0 && utf8.RuneCountInString(input) > v.MaxLength {
		return ErrInputTooLarge
	}

	for _, r := range input {
		switch {
		case r == 0:
			return ErrNullByteDetected
		case (r == '\n' || r == '\r' || r == '\t') && v.AllowNewlines:
		case unicode.IsControl(r):
			return ErrControlCharacter
		}
	}

	if v.MaxRepetition > 0 && hasExcessiveRepetition(input, v.MaxRepetition) {
		return ErrRepetitiveContent
	}
	return nil
}

// Field validates value and reports failures as bad requests naming field.
func (v *InputValidator) Field(field, value string) error {
	if err := v.Validate(value); err != nil {
		return apperrors.New(apperrors.ErrBadRequest.Code, fmt.Sprintf("%s: %v", field, err), err)
	}
	return nil
}

func hasExcessiveRepetition(input string, maxLen int) bool {
	if len(input) <= maxLen {
		return false
	}

	var prev rune
	consecutiveCount := 0
	for i, r := range input {
		if i > 0 && r == prev {
			consecutiveCount++
			if consecutiveCount > maxLen {
				return true
			}
		} else {
			consecutiveCount = 1
		}
		prev = r
	}
	return false
}

var names = NewInputValidator(MaxNameLength)

// ValidateName checks a single-line name such as a display or meal name.
func ValidateName(field, value string) error {
	return names.Field(field, value)
}
