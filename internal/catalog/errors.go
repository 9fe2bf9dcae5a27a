package catalog

import (
	"errors"
	"fmt"

	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/store"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeReferenceNotFound   Code = "REFERENCE_NOT_FOUND"
	CodeDuplicateName       Code = "DUPLICATE_NAME"
	CodeAlreadyInCollection Code = "ALREADY_IN_COLLECTION"
	CodeNotInCollection     Code = "NOT_IN_COLLECTION"
	CodeHasDependents       Code = "HAS_DEPENDENTS"
)

// Error is returned by the Service when a request cannot be honoured
// because of the state of the catalog or the content of the request. Any
// other error returned by the Service is an unexpected failure.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s: %s", err.Code, err.Message)
}

// IsCode reports whether err is a catalog Error with the code provided.
func IsCode(err error, code Code) bool {
	var catalogErr *Error
	return errors.As(err, &catalogErr) && catalogErr.Code == code
}

func validationError(message string, details map[string]any) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

func notFoundError(kind ident.Kind, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", kind),
		Details: map[string]any{"id": id},
	}
}

func referenceError(message string, details map[string]any) *Error {
	return &Error{Code: CodeReferenceNotFound, Message: message, Details: details}
}

// primary converts a store.ErrNotFound for the record the request is
// targeting in to a NOT_FOUND catalog error. Other errors pass through.
func primary(err error, kind ident.Kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundError(kind, id)
	}

	return err
}
