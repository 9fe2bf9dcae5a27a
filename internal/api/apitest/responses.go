package apitest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hbomb79/Reel/internal/api/apierr"
	"gotest.tools/v3/assert"
)

// AssertErrorResponse asserts the response is an error envelope with the
// status, message and code provided. An empty message expects the status
// text, and an empty code is not checked.
func AssertErrorResponse(t *testing.T, response *Response, expectedStatusCode int, expectedMessage string, expectedErrorCode string) apierr.APIError {
	t.Helper()
	assert.Equal(t, response.StatusCode, expectedStatusCode, "HTTP response status code did not match expected, body: %s", response.Body)

	apiErr := ExtractErrorResponse(t, response.Body)
	if expectedMessage == "" {
		assert.Equal(t, apiErr.Message, http.StatusText(expectedStatusCode))
	} else {
		assert.Equal(t, apiErr.Message, expectedMessage)
	}
	if expectedErrorCode != "" {
		assert.Equal(t, apiErr.Code, expectedErrorCode)
	}
	assert.Equal(t, apiErr.InternalMessage, "") // Internal message should never leak
	assert.Equal(t, apiErr.Status, 0)           // Status should not be included

	return apiErr
}

func ExtractErrorResponse(t *testing.T, body []byte) apierr.APIError {
	var apiError apierr.APIError
	if err := json.Unmarshal(body, &apiError); err != nil {
		t.Errorf("Could not extract APIError from HTTP response body: %s", err)
	}

	return apiError
}
