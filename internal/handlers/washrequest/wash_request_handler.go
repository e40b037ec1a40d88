// internal/handlers/washrequest/wash_request_handler.go
package washrequest

import (
	"context"
	"net/http"

	"fleetwash-service/internal/domain/washrequest"
	"fleetwash-service/internal/domain/washstatus"
	"fleetwash-service/internal/middleware"
	"fleetwash-service/internal/pkg/response"
	"fleetwash-service/internal/service/technician"
	washsvc "fleetwash-service/internal/service/washrequest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusReader serves the per-vehicle completion records of a request.
type StatusReader interface {
	ListByRequest(ctx context.Context, washRequestID string) ([]washstatus.VehicleWashStatus, error)
}

type WashRequestHandler struct {
	registry *washsvc.Registry
	workflow *technician.WorkflowService
	statuses StatusReader
	logger   *zap.Logger
}

func NewWashRequestHandler(
	registry *washsvc.Registry,
	workflow *technician.WorkflowService,
	statuses StatusReader,
	logger *zap.Logger,
) *WashRequestHandler {
	return &WashRequestHandler{
		registry: registry,
		workflow: workflow,
		statuses: statuses,
		logger:   logger,
	}
}

// container resolves the caller's primed request state. A failure here
// means the backing store is unreachable.
func (h *WashRequestHandler) container(c *gin.Context) (*washsvc.Container, bool) {
	ctr, err := h.registry.For(c.Request.Context(), middleware.MustGetActor(c))
	if err != nil {
		h.logger.Error("failed to prime wash request state", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to load wash requests", err)
		return nil, false
	}
	return ctr, true
}

// List returns the wash requests visible to the caller.
func (h *WashRequestHandler) List(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if c.Query("refresh") == "true" {
		if err := ctr.Refresh(c.Request.Context()); err != nil {
			response.Error(c, http.StatusInternalServerError, "failed to refresh wash requests", err)
			return
		}
	}

	response.Success(c, http.StatusOK, "wash requests retrieved", gin.H{
		"requests": ctr.List(),
		"updating": ctr.IsUpdating(),
	})
}

// Get returns a single wash request by id.
func (h *WashRequestHandler) Get(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	req, found := ctr.Get(c.Param("id"))
	if !found {
		response.NotFound(c, "wash request not found")
		return
	}

	response.Success(c, http.StatusOK, "wash request retrieved", req)
}

// Statuses returns the per-vehicle completion records for a request the
// caller can see.
func (h *WashRequestHandler) Statuses(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, found := ctr.Get(id); !found {
		response.NotFound(c, "wash request not found")
		return
	}

	statuses, err := h.statuses.ListByRequest(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load wash statuses")
		return
	}

	response.Success(c, http.StatusOK, "wash statuses retrieved", statuses)
}

// Create submits a new wash request for the caller.
func (h *WashRequestHandler) Create(c *gin.Context) {
	var req washrequest.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ctr, ok := h.container(c)
	if !ok {
		return
	}

	created, err := ctr.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "failed to create wash request")
		return
	}

	response.Success(c, http.StatusCreated, "wash request created", created)
}

// Cancel cancels the caller's own pending or confirmed request.
func (h *WashRequestHandler) Cancel(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := ctr.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to cancel wash request")
		return
	}

	response.Success(c, http.StatusOK, "wash request cancelled", nil)
}

// Remove drops a request from the caller's local view without touching
// the store.
func (h *WashRequestHandler) Remove(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	ctr.Remove(c.Param("id"))
	response.Success(c, http.StatusOK, "wash request removed from view", nil)
}

// ========== Technician workflow ==========

// Accept claims a pending request for the calling technician.
func (h *WashRequestHandler) Accept(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := h.workflow.AcceptRequest(c.Request.Context(), ctr, c.Param("id")); err != nil {
		response.FromError(c, err, "failed to accept wash request")
		return
	}

	response.Success(c, http.StatusOK, "wash request accepted", nil)
}

// Schedule claims a request and fixes its service date.
func (h *WashRequestHandler) Schedule(c *gin.Context) {
	var req washrequest.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := h.workflow.ScheduleJob(c.Request.Context(), ctr, c.Param("id"), req.ScheduledDate); err != nil {
		response.FromError(c, err, "failed to schedule wash request")
		return
	}

	response.Success(c, http.StatusOK, "wash request scheduled", nil)
}

// Start moves an accepted request into progress.
func (h *WashRequestHandler) Start(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := h.workflow.StartWash(c.Request.Context(), ctr, c.Param("id")); err != nil {
		response.FromError(c, err, "failed to start wash")
		return
	}

	response.Success(c, http.StatusOK, "wash started", nil)
}

// Reopen returns the in-progress request so the technician can resume
// the completion form.
func (h *WashRequestHandler) Reopen(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	req, err := h.workflow.ReopenWash(ctr, c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to reopen wash")
		return
	}

	response.Success(c, http.StatusOK, "wash reopened", req)
}

// Complete records per-vehicle outcomes and closes the request.
func (h *WashRequestHandler) Complete(c *gin.Context) {
	var payload washrequest.CompleteWashRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := h.workflow.CompleteWash(c.Request.Context(), ctr, c.Param("id"), payload); err != nil {
		response.FromError(c, err, "failed to complete wash")
		return
	}

	response.Success(c, http.StatusOK, "wash completed", nil)
}

// CancelAcceptance releases a claimed request back to the pending pool.
func (h *WashRequestHandler) CancelAcceptance(c *gin.Context) {
	ctr, ok := h.container(c)
	if !ok {
		return
	}

	if err := h.workflow.CancelAcceptance(c.Request.Context(), ctr, c.Param("id")); err != nil {
		response.FromError(c, err, "failed to cancel acceptance")
		return
	}

	response.Success(c, http.StatusOK, "acceptance cancelled", nil)
}
