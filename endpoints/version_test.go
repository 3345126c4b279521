package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionEndpoint(t *testing.T) {
	testCases := []struct {
		description string
		version     string
		revision    string
		expected    string
	}{
		{
			description: "Empty",
			expected:    `{"revision":"not-set","version":"not-set"}`,
		},
		{
			description: "Version Only",
			version:     "1.2.3",
			expected:    `{"revision":"not-set","version":"1.2.3"}`,
		},
		{
			description: "Revision Only",
			revision:    "d6cd1e2bd19e03a81132a23b2025920577f84e37",
			expected:    `{"revision":"d6cd1e2bd19e03a81132a23b2025920577f84e37","version":"not-set"}`,
		},
		{
			description: "Fully Populated",
			version:     "1.2.3",
			revision:    "d6cd1e2bd19e03a81132a23b2025920577f84e37",
			expected:    `{"revision":"d6cd1e2bd19e03a81132a23b2025920577f84e37","version":"1.2.3"}`,
		},
	}

	for _, test := range testCases {
		handler := NewVersionEndpoint(test.version, test.revision)
		w := httptest.NewRecorder()

		handler(w, httptest.NewRequest(http.MethodGet, "/version", nil))

		assert.Equal(t, http.StatusOK, w.Code, test.description)
		assert.JSONEq(t, test.expected, w.Body.String(), test.description)
	}
}

func TestStatusEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	NewStatusEndpoint("")(w, httptest.NewRequest(http.MethodGet, "/status", nil), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	NewStatusEndpoint("ready")(w, httptest.NewRequest(http.MethodGet, "/status", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", w.Body.String())
}
