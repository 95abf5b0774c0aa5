package errs

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrOutOfCopies       = errors.New("out of copies")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyReturned   = errors.New("already returned")
	ErrAlreadyConverted  = errors.New("already converted")
	ErrExtensionLimit    = errors.New("extension limit reached")
	ErrLedgerInvariant   = errors.New("ledger invariant violation")
)

// TransitionError describes a state change that is not in the transition table.
type TransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: %s -> %s: %v", e.Entity, e.ID, e.From, e.To, ErrInvalidTransition)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeValidation        Code = "VALIDATION"
	CodeOutOfCopies       Code = "OUT_OF_COPIES"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeAlreadyReturned   Code = "ALREADY_RETURNED"
	CodeAlreadyConverted  Code = "ALREADY_CONVERTED"
	CodeExtensionLimit    Code = "EXTENSION_LIMIT"
	CodeLedgerInvariant   Code = "LEDGER_INVARIANT_VIOLATION"
	CodeInternal          Code = "INTERNAL"
)

func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAlreadyExists, CodeOutOfCopies, CodeInvalidTransition,
		CodeAlreadyReturned, CodeAlreadyConverted, CodeExtensionLimit:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the caller-facing outcome of a failed lending operation.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Outcome translates an internal error into a caller-facing *Error.
// transitionMsg replaces the generic message for invalid transitions.
func Outcome(err error, transitionMsg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	out := &Error{cause: err}
	switch {
	case errors.Is(err, ErrLedgerInvariant):
		out.Code, out.Message = CodeLedgerInvariant, "inventory ledger is inconsistent"
	case errors.Is(err, ErrOutOfCopies):
		out.Code, out.Message = CodeOutOfCopies, "no copies available"
	case errors.Is(err, ErrAlreadyReturned):
		out.Code, out.Message = CodeAlreadyReturned, "this book was already returned"
	case errors.Is(err, ErrAlreadyConverted):
		out.Code, out.Message = CodeAlreadyConverted, "this reservation was already converted to a loan"
	case errors.Is(err, ErrInvalidTransition):
		out.Code, out.Message = CodeInvalidTransition, transitionMsg
		if out.Message == "" {
			out.Message = "operation is not allowed in the current state"
		}
	case errors.Is(err, ErrExtensionLimit):
		out.Code, out.Message = CodeExtensionLimit, "this loan cannot be extended any further"
	case errors.Is(err, ErrNotFound):
		out.Code, out.Message = CodeNotFound, "not found"
	case errors.Is(err, ErrAlreadyExists):
		out.Code, out.Message = CodeAlreadyExists, "already exists"
	case errors.Is(err, ErrValidation):
		out.Code, out.Message = CodeValidation, err.Error()
	default:
		out.Code, out.Message = CodeInternal, "internal error"
	}
	return out
}

func IsInvariant(err error) bool {
	return errors.Is(err, ErrLedgerInvariant)
}
