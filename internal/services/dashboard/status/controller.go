package status

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/obs"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/reply"
)

// AdminTokenHeader carries the token checked by /status/clear.
const AdminTokenHeader = "X-Admin-Token"

type Controller struct {
	uc  *Usecase
	log *zap.Logger
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	return &Controller{uc: uc, log: log}
}

// UpdateStatus serves POST /updateStatus/{site}.
func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	res, err := c.uc.UpdateStatus(r.Context(), params["site"])
	if err != nil {
		c.fail(w, r, "Failed to update status", err)
		return
	}
	reply.JSON(w, http.StatusOK, res)
}

// Report serves POST /report?project=&route=.
func (c *Controller) Report(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	res, err := c.uc.Report(r.Context(), q.Get("project"), q.Get("route"))
	if err != nil {
		c.fail(w, r, "Failed to check route", err)
		return
	}
	reply.JSON(w, http.StatusOK, res)
}

type clearReply struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// Clear serves POST /status/clear?project=.
func (c *Controller) Clear(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	slug := r.URL.Query().Get("project")
	n, err := c.uc.Clear(r.Context(), slug, r.Header.Get(AdminTokenHeader))
	if err != nil {
		c.fail(w, r, "Failed to clear logs", err)
		return
	}
	reply.JSON(w, http.StatusOK, clearReply{Message: fmt.Sprintf("Cleared logs for %s", slug), Deleted: n})
}

// Routes serves GET /status/routes?project=.
func (c *Controller) Routes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	res, err := c.uc.Routes(r.Context(), r.URL.Query().Get("project"))
	if err != nil {
		c.fail(w, r, "Failed to list routes", err)
		return
	}
	reply.JSON(w, http.StatusOK, res)
}

func (c *Controller) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrMissingParam):
		reply.Error(w, http.StatusBadRequest, "Missing parameter", err.Error())
	case errors.Is(err, ErrUnknownProject):
		reply.Error(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, ErrUnknownRoute):
		reply.Error(w, http.StatusNotFound, "Route not found", "")
	case errors.Is(err, ErrForbidden):
		reply.Error(w, http.StatusForbidden, "Forbidden in production", "")
	case errors.Is(err, ErrUnauthorized):
		reply.Error(w, http.StatusUnauthorized, "Unauthorized", "")
	default:
		obs.WithTrace(r.Context(), c.log).Error(op, zap.String("path", r.URL.Path), zap.Error(err))
		reply.Error(w, http.StatusInternalServerError, op, "unexpected failure")
	}
}
