package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type (
	Client struct {
		t       *testing.T
		handler http.Handler
		Token   string
	}

	Response struct {
		StatusCode int
		Header     http.Header
		Body       []byte
	}
)

// WithToken returns a copy of the client which authenticates every
// request with the bearer token provided.
func (client *Client) WithToken(token string) *Client {
	return &Client{t: client.t, handler: client.handler, Token: token}
}

// Do performs the request against the gateway. A non-nil body is encoded
// as JSON, unless it is already a string in which case it is sent verbatim.
func (client *Client) Do(method string, path string, body any) *Response {
	client.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(client.t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if client.Token != "" {
		req.Header.Set("Authorization", "Bearer "+client.Token)
	}

	rec := httptest.NewRecorder()
	client.handler.ServeHTTP(rec, req)

	return &Response{StatusCode: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()}
}

func (client *Client) Get(path string) *Response { return client.Do(http.MethodGet, path, nil) }
func (client *Client) Post(path string, body any) *Response {
	return client.Do(http.MethodPost, path, body)
}
func (client *Client) Put(path string, body any) *Response { return client.Do(http.MethodPut, path, body) }
func (client *Client) Delete(path string) *Response      { return client.Do(http.MethodDelete, path, nil) }

// MustDecode asserts the response has the status expected and decodes
// the body in to a T.
func MustDecode[T any](t *testing.T, response *Response, expectedStatus int) T {
	t.Helper()
	require.Equal(t, expectedStatus, response.StatusCode, "unexpected status, body: %s", response.Body)

	var out T
	require.NoError(t, json.Unmarshal(response.Body, &out), "failed to decode body: %s", response.Body)
	return out
}

// Object decodes a JSON object response of the status expected.
func Object(t *testing.T, response *Response, expectedStatus int) map[string]any {
	t.Helper()
	return MustDecode[map[string]any](t, response, expectedStatus)
}
