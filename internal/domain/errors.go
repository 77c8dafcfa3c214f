package domain

import "fmt"

// SlotNotFoundError is returned when an operation requires a slot that
// is absent from the payload. Callers that treat absence as valid must
// pre-check with SlotExists or use the sequence-returning accessors.
type SlotNotFoundError struct {
	Name string
}

func (e *SlotNotFoundError) Error() string {
	return fmt.Sprintf("slot [%s] does not exist in the payload", e.Name)
}

// FieldNotFoundError is returned when a required top-level field is
// absent from the document.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field [%s] does not exist in the payload", e.Field)
}

// TokenNotFoundError is returned when a resolve request names tokens
// that were never extracted into an unresolved slot value. It indicates
// caller misuse and must not be swallowed.
type TokenNotFoundError struct {
	Slot   string
	Tokens any
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("slot [%s] has no unresolved value with tokens [%v]", e.Slot, e.Tokens)
}
