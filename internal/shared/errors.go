package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a name already taken within an entity kind.
	ErrDuplicate = errors.New("duplicate name")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a request without a signed-in account.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// FieldErrors maps form fields to user-facing messages. The "general" key
// holds messages not tied to one field.
type FieldErrors map[string]string

// Add records a message for field, keeping the first one.
func (fe FieldErrors) Add(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// Err returns nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// DuplicateNameError reports a case-insensitive name collision.
type DuplicateNameError struct {
	Kind string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("A %s with this name already exists.", e.Kind)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicate }

// FormErrors extracts per-field messages from validation and duplicate errors.
func FormErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	var dup *DuplicateNameError
	if errors.As(err, &dup) {
		return FieldErrors{"name": dup.Error()}, true
	}
	return nil, false
}

// UserSafeMessage turns an error into text fit for a flash or page.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrValidation):
		if fe, ok := FormErrors(err); ok {
			for _, key := range []string{"general", "name"} {
				if msg, ok := fe[key]; ok {
					return msg
				}
			}
		}
		return "Please correct the highlighted fields."
	default:
		return "Something went wrong. Please try again."
	}
}
