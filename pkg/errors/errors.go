package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy of the transition engine. Every rejected transition maps to
// exactly one of these sentinels; the HTTP layer translates them with Wrap.
var (
	ErrUnauthenticated = errors.New("actor no autenticado")
	ErrForbidden       = errors.New("el actor no tiene el rol requerido para esta acción")
	ErrNotFound        = errors.New("registro no encontrado")

	// ErrInvalidTransition covers illegal edges, terminal states and races
	// lost to a concurrent committer.
	ErrInvalidTransition = errors.New("transición de estado no válida")

	// ErrStaleState is returned by the entity store when the compare-and-update
	// found a different current state. Callers surface it as ErrInvalidTransition.
	ErrStaleState = errors.New("el estado de la solicitud cambió durante la operación")

	ErrPreconditionFailed = errors.New("la transición no cumple sus precondiciones")
	ErrInvalidCommittee   = errors.New("comité inexistente o sin participantes")
	ErrPersistence        = errors.New("error de acceso al almacenamiento")
)

// HttpError is the envelope the HTTP layer returns for any rejected call.
// Details carries structured context, in particular the solicitud's actual
// current state on ErrInvalidTransition so the UI can refresh.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

var statusByErr = []struct {
	err  error
	code int
}{
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrInvalidTransition, http.StatusConflict},
	{ErrStaleState, http.StatusConflict},
	{ErrPreconditionFailed, http.StatusBadRequest},
	{ErrInvalidCommittee, http.StatusBadRequest},
	{ErrPersistence, http.StatusInternalServerError},
}

// StatusCode maps a taxonomy error to its HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return http.StatusInternalServerError
}
