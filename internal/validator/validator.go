// Package validator provides a custom Validator type for accumulating
// field-level validation errors on dialog drafts and search input.
package validator

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// SearchRX is the allow-list for table search terms: letters, digits, spaces
// and the punctuation that appears in item and location descriptions.
var SearchRX = regexp.MustCompile(`^[A-Za-z0-9 .,'&()/_-]*$`)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
	order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.order = append(v.order, key)
	}
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(!draft.Blank("itemId"), "itemId", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// First returns the message of the first failed check, in the order checks
// were made, or "" if v is valid.
func (v *Validator) First() string {
	if len(v.order) == 0 {
		return ""
	}
	return v.Errors[v.order[0]]
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// NonNegative returns true if d is zero or positive.
func NonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}
