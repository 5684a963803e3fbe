package types

import "errors"

// Sentinel errors shared by repositories, controllers and handlers. Wrap them
// with logger.ErrorWithType and classify with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidOperation = errors.New("invalid operation")
)

// FieldErrors carries per-field validation messages alongside ErrValidation.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	return ErrValidation.Error()
}

func (e *FieldErrors) Unwrap() error {
	return ErrValidation
}

func NewFieldErrors(fields map[string]string) *FieldErrors {
	return &FieldErrors{Fields: fields}
}
