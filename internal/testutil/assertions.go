package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies a JSON {"error": ...} body with the expected status
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body map[string]string
	AssertJSONResponse(t, resp, &body)
	assert.Contains(t, body["error"], expectedMessage, "error message mismatch")
}

// AssertMessageResponse verifies a JSON {"message": ...} body, as written by login
func AssertMessageResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) map[string]interface{} {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body map[string]interface{}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedMessage, body["message"], "message mismatch")
	return body
}
