package probe

const (
	StatusSkipped        = -1
	StatusTransportError = 0
)

const SkippedReason = "dynamic route skipped (requires concrete params)"

// Outcome is the result of checking one route. It is never mutated after the probe returns.
type Outcome struct {
	Route            string `json:"route"`
	StatusCode       int    `json:"statusCode"`
	ResponseTimeMs   int64  `json:"responseTimeMs"`
	Success          bool   `json:"success"`
	MethodMismatch   bool   `json:"methodMismatch,omitempty"`
	Redirected       bool   `json:"redirected"`
	RedirectLocation string `json:"redirectLocation,omitempty"`
	Loggable         bool   `json:"loggable"`
	Logged           bool   `json:"logged"`
	Error            string `json:"error,omitempty"`
}

// IsIgnoredStatus reports codes that describe endpoint policy rather than availability.
func IsIgnoredStatus(code int) bool {
	switch code {
	case 401, 403, 405:
		return true
	}
	return false
}
