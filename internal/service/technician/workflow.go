// internal/service/technician/workflow.go
package technician

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"
	"fleetwash-service/internal/domain/washstatus"
	"fleetwash-service/internal/metrics"
	xerrors "fleetwash-service/internal/pkg/errors"
	washsvc "fleetwash-service/internal/service/washrequest"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// StatusStore persists per-vehicle wash completion records.
type StatusStore interface {
	UpsertBatch(ctx context.Context, statuses []*washstatus.VehicleWashStatus) error
}

// PhotoStore uploads post-wash photos and returns their public URLs.
type PhotoStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Notifier is the fire-and-forget toast surface. Failures to deliver
// are the notifier's problem, never the workflow's.
type Notifier interface {
	Notify(userID string, event, message string, success bool)
}

// WorkflowService composes the container's generic update into the
// named technician transitions. Every operation validates the actor,
// builds the patch, runs the optimistic update, and reports the outcome
// to the notification surface.
type WorkflowService struct {
	statuses StatusStore
	photos   PhotoStore
	notifier Notifier
	logger   *zap.Logger
}

func NewWorkflowService(statuses StatusStore, photos PhotoStore, notifier Notifier, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		statuses: statuses,
		photos:   photos,
		notifier: notifier,
		logger:   logger,
	}
}

// AcceptRequest moves a pending request to confirmed and assigns the
// acting technician.
func (s *WorkflowService) AcceptRequest(ctx context.Context, c *washsvc.Container, requestID string) error {
	return s.confirm(ctx, c, requestID, nil)
}

// ScheduleJob is accept with a concrete date: the request is confirmed
// and the customer's preferred start is overwritten by the scheduled
// date.
func (s *WorkflowService) ScheduleJob(ctx context.Context, c *washsvc.Container, requestID string, scheduledDate time.Time) error {
	return s.confirm(ctx, c, requestID, &scheduledDate)
}

func (s *WorkflowService) confirm(ctx context.Context, c *washsvc.Container, requestID string, scheduledDate *time.Time) error {
	tech, req, err := s.lookup(c, requestID)
	if err != nil {
		return err
	}
	if req.Status != washrequest.StatusPending {
		return s.fail(tech.ID, "accept", requestID,
			fmt.Errorf("%w: request is %s, not pending", xerrors.ErrInvalidTransition, req.Status))
	}

	status := washrequest.StatusConfirmed
	patch := washrequest.Patch{
		Status:         &status,
		Technician:     &tech.ID,
		PreferredStart: scheduledDate,
	}
	if err := c.Update(ctx, requestID, patch, washsvc.MutationAcceptance); err != nil {
		return s.fail(tech.ID, "accept", requestID, err)
	}
	return s.ok(tech.ID, "accept", requestID, "wash request accepted", string(status))
}

// StartWash moves a confirmed request to in_progress. Only the assigned
// technician may start; a terminal request is a no-op.
func (s *WorkflowService) StartWash(ctx context.Context, c *washsvc.Container, requestID string) error {
	tech, req, err := s.lookup(c, requestID)
	if err != nil {
		return err
	}
	if req.Status.Terminal() || req.Status == washrequest.StatusInProgress {
		return nil
	}
	if req.Status != washrequest.StatusConfirmed {
		return s.fail(tech.ID, "start", requestID,
			fmt.Errorf("%w: request is %s, not confirmed", xerrors.ErrInvalidTransition, req.Status))
	}
	if req.Technician == nil || *req.Technician != tech.ID {
		return s.fail(tech.ID, "start", requestID, xerrors.ErrNotAssigned)
	}

	status := washrequest.StatusInProgress
	if err := c.Update(ctx, requestID, washrequest.Patch{Status: &status}, washsvc.MutationGeneric); err != nil {
		return s.fail(tech.ID, "start", requestID, err)
	}
	return s.ok(tech.ID, "start", requestID, "wash started", string(status))
}

// ReopenWash is a pure local navigation action: it returns the request
// so the caller can reopen its progress view. No remote effect.
func (s *WorkflowService) ReopenWash(c *washsvc.Container, requestID string) (*washrequest.WashRequest, error) {
	tech, req, err := s.lookup(c, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != washrequest.StatusInProgress {
		return nil, fmt.Errorf("%w: request is %s, not in progress", xerrors.ErrInvalidTransition, req.Status)
	}
	if req.Technician == nil || *req.Technician != tech.ID {
		return nil, xerrors.ErrNotAssigned
	}
	return &req, nil
}

// CompleteWash persists the per-vehicle wash statuses and moves the
// request to completed. Re-invoking on a completed request is a no-op.
func (s *WorkflowService) CompleteWash(ctx context.Context, c *washsvc.Container, requestID string, payload washrequest.CompleteWashRequest) error {
	tech, req, err := s.lookup(c, requestID)
	if err != nil {
		return err
	}
	if req.Status == washrequest.StatusCompleted {
		return nil
	}
	if req.Status != washrequest.StatusInProgress {
		return s.fail(tech.ID, "complete", requestID,
			fmt.Errorf("%w: request is %s, not in progress", xerrors.ErrInvalidTransition, req.Status))
	}
	if req.Technician == nil || *req.Technician != tech.ID {
		return s.fail(tech.ID, "complete", requestID, xerrors.ErrNotAssigned)
	}

	records := make([]*washstatus.VehicleWashStatus, 0, len(payload.Statuses))
	for _, vs := range payload.Statuses {
		record := &washstatus.VehicleWashStatus{
			ID:            ulid.Make().String(),
			WashRequestID: requestID,
			VehicleID:     vs.VehicleID,
			TechnicianID:  tech.ID,
			Completed:     vs.Completed,
			Notes:         vs.Notes,
		}
		if vs.PhotoData != nil && *vs.PhotoData != "" {
			url, err := s.uploadPhoto(ctx, requestID, vs.VehicleID, *vs.PhotoData)
			if err != nil {
				return s.fail(tech.ID, "complete", requestID, err)
			}
			record.PhotoURL = &url
		}
		records = append(records, record)
	}

	if err := s.statuses.UpsertBatch(ctx, records); err != nil {
		return s.fail(tech.ID, "complete", requestID, err)
	}

	status := washrequest.StatusCompleted
	if err := c.Update(ctx, requestID, washrequest.Patch{Status: &status}, washsvc.MutationGeneric); err != nil {
		return s.fail(tech.ID, "complete", requestID, err)
	}
	return s.ok(tech.ID, "complete", requestID, "wash completed", string(status))
}

// CancelAcceptance releases a confirmed request back to pending and
// clears the assignment. A terminal request is a no-op.
func (s *WorkflowService) CancelAcceptance(ctx context.Context, c *washsvc.Container, requestID string) error {
	tech, req, err := s.lookup(c, requestID)
	if err != nil {
		return err
	}
	if req.Status.Terminal() {
		return nil
	}
	if req.Status != washrequest.StatusConfirmed {
		return s.fail(tech.ID, "cancel_acceptance", requestID,
			fmt.Errorf("%w: request is %s, not confirmed", xerrors.ErrInvalidTransition, req.Status))
	}
	if req.Technician == nil || *req.Technician != tech.ID {
		return s.fail(tech.ID, "cancel_acceptance", requestID, xerrors.ErrNotAssigned)
	}

	status := washrequest.StatusPending
	patch := washrequest.Patch{Status: &status, ClearTechnician: true}
	if err := c.Update(ctx, requestID, patch, washsvc.MutationAcceptance); err != nil {
		return s.fail(tech.ID, "cancel_acceptance", requestID, err)
	}
	return s.ok(tech.ID, "cancel_acceptance", requestID, "acceptance cancelled", string(status))
}

func (s *WorkflowService) lookup(c *washsvc.Container, requestID string) (identity.Actor, washrequest.WashRequest, error) {
	tech := c.Actor()
	if tech.ID == "" {
		return tech, washrequest.WashRequest{}, xerrors.ErrIdentityRequired
	}
	if !tech.IsTechnician() {
		return tech, washrequest.WashRequest{}, xerrors.ErrForbidden
	}
	req, found := c.Get(requestID)
	if !found {
		return tech, washrequest.WashRequest{}, xerrors.ErrNotFound
	}
	return tech, req, nil
}

func (s *WorkflowService) uploadPhoto(ctx context.Context, requestID, vehicleID, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: photo is not valid base64", xerrors.ErrInvalidInput)
	}
	key := fmt.Sprintf("wash-photos/%s/%s.jpg", requestID, vehicleID)
	return s.photos.Upload(ctx, key, data, "image/jpeg")
}

func (s *WorkflowService) ok(techID, event, requestID, message, toStatus string) error {
	metrics.IncTransition(toStatus, "success")
	s.logger.Info("wash request transition",
		zap.String("event", event),
		zap.String("request_id", requestID),
		zap.String("technician_id", techID),
	)
	if s.notifier != nil {
		s.notifier.Notify(techID, event, message, true)
	}
	return nil
}

func (s *WorkflowService) fail(techID, event, requestID string, err error) error {
	metrics.IncTransition(event, "failure")
	s.logger.Warn("wash request transition failed",
		zap.String("event", event),
		zap.String("request_id", requestID),
		zap.String("technician_id", techID),
		zap.Error(err),
	)
	if s.notifier != nil {
		s.notifier.Notify(techID, event, xerrors.MessageOrDefault(err, "operation failed"), false)
	}
	return err
}
