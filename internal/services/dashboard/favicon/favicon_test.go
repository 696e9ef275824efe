package favicon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler(rr, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil), nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), "<svg")
}
