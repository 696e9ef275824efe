package preview

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/obs"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/reply"
)

type previewer interface {
	Preview(ctx context.Context, raw string) (*Document, error)
}

type Controller struct {
	uc  previewer
	log *zap.Logger
}

func NewController(uc previewer, log *zap.Logger) *Controller {
	return &Controller{uc: uc, log: log}
}

// Preview serves GET /preview?url=. The signature matches runtime.HandlerFunc.
func (c *Controller) Preview(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	raw := r.URL.Query().Get("url")
	doc, err := c.uc.Preview(r.Context(), raw)
	if err != nil {
		c.fail(w, r, raw, err)
		return
	}
	if doc.CacheSeconds > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(doc.CacheSeconds))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	reply.HTML(w, doc.StatusCode, doc.Body)
}

func (c *Controller) fail(w http.ResponseWriter, r *http.Request, raw string, err error) {
	code, msg, details := classify(err)
	if code == http.StatusInternalServerError {
		obs.WithTrace(r.Context(), c.log).Error("preview failed", zap.String("url", raw), zap.Error(err))
	}
	w.Header().Set("Cache-Control", "no-store")
	if reply.WantsHTML(r) {
		reason := msg
		if details != "" {
			reason += ": " + details
		}
		reply.HTML(w, code, RenderUnavailable(raw, reason))
		return
	}
	reply.Error(w, code, msg, details)
}

// classify maps a preview error onto status, message and optional details.
// Redirect failures are checked first because they also wrap the rejection.
func classify(err error) (int, string, string) {
	var upstream *UpstreamStatusError
	switch {
	case errors.Is(err, ErrMissingURL):
		return http.StatusBadRequest, "Missing url parameter", ""
	case errors.Is(err, ErrInvalidRedirectTarget):
		return http.StatusBadGateway, "Invalid redirect location", rejectionReason(err)
	case errors.Is(err, ErrRedirectBudgetExceeded):
		return http.StatusBadGateway, "Too many redirects", ""
	case IsRejection(err):
		return http.StatusBadRequest, "URL not allowed", rejectionReason(err)
	case errors.Is(err, ErrNoResponse):
		return http.StatusBadGateway, "No response received", ""
	case errors.As(err, &upstream):
		return upstream.StatusCode, upstream.Error(), ""
	default:
		return http.StatusInternalServerError, "Failed to fetch preview", "unexpected failure"
	}
}

// rejectionReason names the validation rule that failed, if any.
func rejectionReason(err error) string {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return ""
}
