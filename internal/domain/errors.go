package domain

import (
	"errors"
	"fmt"
)

// Clases de error de dominio (sin dependencias externas).
// Los casos de uso devuelven *Error con una de estas clases; usar errors.Is para clasificar.
var (
	ErrValidation = errors.New("entrada inválida")
	ErrNotFound   = errors.New("recurso no encontrado")
	ErrState      = errors.New("operación inválida para el estado actual")
	ErrPermission = errors.New("rol sin permiso para la operación")
	ErrOverlap    = errors.New("la promoción se superpone con otra activa")

	ErrUnauthorized       = errors.New("no autorizado")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// Error es un fallo tipado: Kind es una de las clases de arriba y Msg el detalle para el usuario.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation construye un ErrValidation con detalle.
func Validation(format string, args ...any) error { return newError(ErrValidation, format, args...) }

// NotFound construye un ErrNotFound con detalle.
func NotFound(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// State construye un ErrState con detalle.
func State(format string, args ...any) error { return newError(ErrState, format, args...) }

// Permission construye un ErrPermission con detalle.
func Permission(format string, args ...any) error { return newError(ErrPermission, format, args...) }

// Overlap construye un ErrOverlap con detalle.
func Overlap(format string, args ...any) error { return newError(ErrOverlap, format, args...) }

// Message devuelve el detalle legible de err si es *Error, o su texto completo.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return err.Error()
}

// Code devuelve el código estable de la clase de err, para respuestas y listas de errores por lote.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrState):
		return "STATE_ERROR"
	case errors.Is(err, ErrPermission):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrOverlap):
		return "OVERLAP_ERROR"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrEmailAlreadyExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, ErrDuplicate):
		return "DUPLICATE"
	}
	return "INTERNAL_ERROR"
}
