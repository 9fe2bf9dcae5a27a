package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/catalog"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		summary  string
		err      error
		status   int
		code     string
		message  string
		internal string
	}{
		{
			summary: "catalog not found",
			err:     fmt.Errorf("wrapped: %w", &catalog.Error{Code: catalog.CodeNotFound, Message: "movie not found"}),
			status:  http.StatusNotFound, code: "NOT_FOUND", message: "movie not found",
		},
		{
			summary: "catalog not in collection",
			err:     &catalog.Error{Code: catalog.CodeNotInCollection, Message: "movie is not in the collection"},
			status:  http.StatusNotFound, code: "NOT_IN_COLLECTION", message: "movie is not in the collection",
		},
		{
			summary: "catalog dependents",
			err:     &catalog.Error{Code: catalog.CodeHasDependents, Message: "cannot delete genre: 2 movie(s) still reference it"},
			status:  http.StatusBadRequest, code: "HAS_DEPENDENTS", message: "cannot delete genre: 2 movie(s) still reference it",
		},
		{
			summary: "query parameter",
			err:     &query.ParamError{Param: "page", Message: "must be a non-negative integer"},
			status:  http.StatusBadRequest, code: "VALIDATION", message: "invalid query parameter 'page': must be a non-negative integer",
		},
		{
			summary: "echo not found",
			err:     echo.ErrNotFound,
			status:  http.StatusNotFound, code: "NOT_FOUND", message: "Not Found",
		},
		{
			summary: "echo method not allowed",
			err:     echo.ErrMethodNotAllowed,
			status:  http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED", message: "Method Not Allowed",
		},
		{
			summary: "api error without status",
			err:     apierr.APIError{Message: "oops"},
			status:  http.StatusInternalServerError, code: "INTERNAL", message: "oops",
		},
		{
			summary: "unexpected error",
			err:     errors.New("connection refused"),
			status:  http.StatusInternalServerError, code: "INTERNAL", message: "internal server error", internal: "connection refused",
		},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			apiErr := apierr.FromError(test.err)
			assert.Equal(t, test.status, apiErr.Status)
			assert.Equal(t, test.code, apiErr.Code)
			assert.Equal(t, test.message, apiErr.Message)
			assert.Equal(t, test.internal, apiErr.InternalMessage)
		})
	}
}

func TestFromError_CarriesDetails(t *testing.T) {
	apiErr := apierr.FromError(&query.ParamError{Param: "sort", Message: "cannot sort by 'x'"})
	assert.Equal(t, map[string]any{"sort": "cannot sort by 'x'"}, apiErr.Details)

	apiErr = apierr.FromError(&catalog.Error{Code: catalog.CodeValidation, Message: "movie is invalid", Details: map[string]any{"title": "is required"}})
	assert.Equal(t, "is required", apiErr.Details["title"])
}

func TestHTTPErrorHandler_HidesInternalMessage(t *testing.T) {
	ec := echo.New()
	ec.HTTPErrorHandler = apierr.GetHTTPErrorHandler()
	boom := func(echo.Context) error { return errors.New("secret database detail") }
	ec.GET("/boom", boom)
	ec.HEAD("/boom", boom)

	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"INTERNAL"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ec.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}
