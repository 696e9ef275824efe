// Package favicon serves the dashboard icon from the binary.
package favicon

import (
	_ "embed"
	"net/http"
)

//go:embed status.svg
var statusSVG []byte

// Handler serves GET /favicon.ico.
func Handler(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(statusSVG)
}
