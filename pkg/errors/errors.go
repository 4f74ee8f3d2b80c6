package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "usuario o contraseña incorrectos")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "la cuenta está inactiva")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "recurso no encontrado")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "acceso denegado")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "no autenticado")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflicto")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "error de validación")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "error interno del servidor")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Business-rule rejections raised by the assignment validator and related
// modules. All map to 422 so the API layer surfaces the message verbatim.
var (
	ErrNoActivePeriod         = New("NO_ACTIVE_PERIOD", http.StatusUnprocessableEntity, "no hay gestión académica activa")
	ErrInvalidMateriaGrupo    = New("INVALID_MATERIA_GRUPO", http.StatusUnprocessableEntity, "la relación materia-grupo no existe o está inactiva")
	ErrTeacherUnavailable     = New("TEACHER_INACTIVE_OR_MISSING", http.StatusUnprocessableEntity, "el docente no existe o está inactivo")
	ErrDuplicateAssignment    = New("DUPLICATE_ASSIGNMENT", http.StatusUnprocessableEntity, "ya existe esta asignación")
	ErrGroupAlreadyAssigned   = New("GROUP_ALREADY_ASSIGNED", http.StatusUnprocessableEntity, "este grupo ya tiene un docente asignado")
	ErrExceedsMaxLoad         = New("EXCEEDS_MAX_LOAD", http.StatusUnprocessableEntity, "el docente excedería la carga horaria máxima")
	ErrAulaHasActiveSchedules = New("AULA_HAS_ACTIVE_SCHEDULES", http.StatusUnprocessableEntity, "el aula tiene horarios activos asignados")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
