package repository

import "errors"

var (
	// ErrNotFound indica que no existe un documento que cumpla el filtro.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail indica que el email ya pertenece a otro usuario.
	ErrDuplicateEmail = errors.New("email already exists")
)
