package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los errores que cruzan el borde HTTP.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindInvalidToken       ErrorKind = "invalid_token"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindDuplicateEmail     ErrorKind = "duplicate_email"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
)

// Error es el unico tipo de error de dominio. Message es seguro para el cliente;
// Err guarda la causa original y solo se loguea.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compara por Kind, asi errors.Is(err, ErrNotFound) acepta cualquier NotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Access denied. No token provided."}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Invalid token."}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password."}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "Email already registered."}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "Task not found."}
	ErrValidation         = &Error{Kind: KindValidation, Message: "Invalid request."}
	ErrInternal           = &Error{Kind: KindInternal, Message: "Internal server error."}
)

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewInternalError envuelve una falla inesperada sin exponer la causa.
func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: ErrInternal.Message, Err: err}
}

// KindOf devuelve el Kind del error; cualquier error sin etiquetar es interno.
func KindOf(err error) ErrorKind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindInternal
}
