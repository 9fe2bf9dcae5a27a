// Package apierr defines the error envelope returned by every endpoint,
// and the echo error handler which renders it.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/labstack/echo/v4"
)

const (
	CodeValidation   = string(catalog.CodeValidation)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL"
)

type APIError struct {
	// Human readable error display message
	Message string `json:"error"`

	// A machine readable and stable identifier for the error case being represented
	Code string `json:"code"`

	// Optional structured information about the failure, such as the
	// offending fields of a request body.
	Details map[string]any `json:"details,omitempty"`

	// Used to alter the HTTP response status in accordance with the error
	Status int `json:"-"`

	// Additional message for internal logging only. Will not be included in the message
	// sent to the user.
	InternalMessage string `json:"-"`
}

// Error satisifies the Go error interface and simply exposes the
// message contained by this APIError.
func (err APIError) Error() string {
	return fmt.Sprintf("api error: %s", err.Message)
}

var (
	ErrUnauthorized = APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "authentication required"}
	ErrForbidden    = APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: "insufficient permissions"}
)

func Validation(message string, details map[string]any) APIError {
	return APIError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Details: details}
}

// Unauthorized returns a 401 with the message provided. The cause is
// logged, but never sent to the client.
func Unauthorized(message string, cause error) APIError {
	err := APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
	if cause != nil {
		err.InternalMessage = cause.Error()
	}

	return err
}

// FromError converts any error returned by a handler in to the APIError
// which should be rendered for it. Errors which are not understood become
// a 500 carrying generic text, with the cause kept for logging only.
func FromError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return normalize(apiErr)
	}

	var catalogErr *catalog.Error
	if errors.As(err, &catalogErr) {
		return APIError{
			Status:  statusForCode(catalogErr.Code),
			Code:    string(catalogErr.Code),
			Message: catalogErr.Message,
			Details: catalogErr.Details,
		}
	}

	var paramErr *query.ParamError
	if errors.As(err, &paramErr) {
		return Validation(paramErr.Error(), map[string]any{paramErr.Param: paramErr.Message})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		converted := APIError{Status: httpErr.Code, Code: codeForStatus(httpErr.Code)}
		if message, ok := httpErr.Message.(string); ok {
			converted.Message = message
		}
		if httpErr.Internal != nil {
			converted.InternalMessage = httpErr.Internal.Error()
		}

		return normalize(converted)
	}

	return APIError{
		Status:          http.StatusInternalServerError,
		Code:            CodeInternal,
		Message:         "internal server error",
		InternalMessage: err.Error(),
	}
}

// GetHTTPErrorHandler returns an echo HTTP error handler which renders
// every error using the APIError envelope.
func GetHTTPErrorHandler() echo.HTTPErrorHandler {
	log := logger.Get("API")
	return func(err error, ec echo.Context) {
		if ec.Response().Committed {
			return
		}

		apiErr := FromError(err)
		if len(apiErr.InternalMessage) > 0 {
			if apiErr.Status >= http.StatusInternalServerError {
				log.Errorf("%s %s failed, internal error: %s\n", ec.Request().Method, ec.Request().RequestURI, apiErr.InternalMessage)
			} else {
				log.Debugf("%s %s rejected (%d): %s\n", ec.Request().Method, ec.Request().RequestURI, apiErr.Status, apiErr.InternalMessage)
			}
		}

		var renderErr error
		if ec.Request().Method == http.MethodHead {
			renderErr = ec.NoContent(apiErr.Status)
		} else {
			renderErr = ec.JSON(apiErr.Status, apiErr)
		}
		if renderErr != nil {
			log.Errorf("Failed to render error response: %v\n", renderErr)
		}
	}
}

func normalize(err APIError) APIError {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	if len(err.Message) == 0 {
		err.Message = http.StatusText(err.Status)
	}
	if len(err.Code) == 0 {
		err.Code = codeForStatus(err.Status)
	}

	return err
}

func statusForCode(code catalog.Code) int {
	switch code {
	case catalog.CodeNotFound, catalog.CodeNotInCollection:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// codeForStatus derives a machine readable code from the status text, for
// example 405 becomes METHOD_NOT_ALLOWED.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusInternalServerError:
		return CodeInternal
	}

	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
