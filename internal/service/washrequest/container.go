// internal/service/washrequest/container.go
package washrequest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"
	"fleetwash-service/internal/metrics"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Store is the remote table access the container persists through.
type Store interface {
	ListVisible(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error)
	Insert(ctx context.Context, req *washrequest.WashRequest) error
	UpdatePatch(ctx context.Context, id string, patch washrequest.Patch) error
}

// MutationClass decides how soon the reconciliation refresh runs after a
// successful mutation. Acceptance-class mutations re-sync sooner because
// the backend assigns organization defaults on them.
type MutationClass int

const (
	MutationGeneric MutationClass = iota
	MutationAcceptance
)

type Config struct {
	Actor                identity.Actor
	PricePerVehicle      int64 // cents
	ReconcileDelay       time.Duration
	AcceptReconcileDelay time.Duration
}

// Container owns the in-memory wash request list for one actor. The
// list is only ever replaced wholesale (on refresh) or patched in place
// (on optimistic update); callers get deep copies, never references.
//
// Update applies mutations optimistically: the local list changes first,
// the remote write follows, and a failure restores the pre-mutation
// snapshot of the whole collection before the error is surfaced. After a
// successful mutation a delayed refresh re-fetches authoritative state,
// since the backend may apply side effects the optimistic patch cannot
// know about.
type Container struct {
	store  Store
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	requests []washrequest.WashRequest

	// Single-slot update guard: a second Update while one is in
	// flight fails immediately, it is not queued.
	updating atomic.Bool

	timerMu sync.Mutex
	timer   *time.Timer
	closed  bool
}

func NewContainer(store Store, cfg Config, logger *zap.Logger) *Container {
	return &Container{store: store, cfg: cfg, logger: logger}
}

// Actor returns the identity this container was built for.
func (c *Container) Actor() identity.Actor { return c.cfg.Actor }

// IsUpdating reports whether a generic update is in flight.
func (c *Container) IsUpdating() bool { return c.updating.Load() }

// Refresh replaces the whole list with the authoritative remote state,
// re-deriving visibility from the raw rows.
func (c *Container) Refresh(ctx context.Context) error {
	rows, err := c.store.ListVisible(ctx, c.cfg.Actor)
	if err != nil {
		return fmt.Errorf("failed to refresh wash requests: %w", err)
	}
	visible := Visible(rows, c.cfg.Actor)

	c.mu.Lock()
	c.requests = visible
	c.mu.Unlock()
	return nil
}

// List returns a deep copy of the current request list.
func (c *Container) List() []washrequest.WashRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return washrequest.CloneList(c.requests)
}

// Get returns a deep copy of one request.
func (c *Container) Get(id string) (washrequest.WashRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.requests {
		if c.requests[i].ID == id {
			return c.requests[i].Clone(), true
		}
	}
	return washrequest.WashRequest{}, false
}

// Create inserts a new pending request. Price is computed from the
// vehicle count; the technician is always absent at creation.
func (c *Container) Create(ctx context.Context, req washrequest.CreateRequest) (*washrequest.WashRequest, error) {
	if c.cfg.Actor.ID == "" {
		return nil, xerrors.ErrIdentityRequired
	}
	if len(req.Vehicles) == 0 {
		return nil, fmt.Errorf("%w: at least one vehicle is required", xerrors.ErrInvalidInput)
	}

	entity := &washrequest.WashRequest{
		ID:         ulid.Make().String(),
		CustomerID: c.cfg.Actor.ID,
		Vehicles:   append([]string(nil), req.Vehicles...),
		PreferredDates: washrequest.DateRange{
			Start: req.PreferredStart,
			End:   req.PreferredEnd,
		},
		Status:    washrequest.StatusPending,
		Price:     int64(len(req.Vehicles)) * c.cfg.PricePerVehicle,
		Notes:     req.Notes,
		Recurring: req.Recurring,
	}
	if req.LocationID != nil && *req.LocationID != "" {
		entity.LocationID = req.LocationID
	}
	if c.cfg.Actor.OrganizationID != "" {
		org := c.cfg.Actor.OrganizationID
		entity.OrganizationID = &org
	}

	if err := c.store.Insert(ctx, entity); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.requests = append([]washrequest.WashRequest{entity.Clone()}, c.requests...)
	c.mu.Unlock()

	c.scheduleReconcile(MutationGeneric)
	result := entity.Clone()
	return &result, nil
}

// Update applies a partial patch optimistically and persists it. On a
// remote failure the entire collection is restored to its pre-update
// snapshot before the error is returned.
func (c *Container) Update(ctx context.Context, id string, patch washrequest.Patch, class MutationClass) error {
	if !c.updating.CompareAndSwap(false, true) {
		return xerrors.ErrUpdateInFlight
	}
	defer c.updating.Store(false)

	c.mu.Lock()
	idx := -1
	for i := range c.requests {
		if c.requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return xerrors.ErrNotFound
	}

	snapshot := washrequest.CloneList(c.requests)

	patched := c.requests[idx].Clone()
	if err := patch.Apply(&patched, time.Now()); err != nil {
		c.mu.Unlock()
		return err
	}
	c.requests[idx] = patched
	c.mu.Unlock()

	if err := c.store.UpdatePatch(ctx, id, patch); err != nil {
		c.mu.Lock()
		c.requests = snapshot
		c.mu.Unlock()
		metrics.IncRollback()
		c.logger.Warn("optimistic update rolled back",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("failed to persist wash request update: %w", err)
	}

	c.scheduleReconcile(class)
	return nil
}

// Cancel marks a request cancelled. Only the owning customer may cancel,
// and only before the wash starts. Cancellation is a status change, not
// a removal.
func (c *Container) Cancel(ctx context.Context, id string) error {
	req, ok := c.Get(id)
	if !ok {
		return xerrors.ErrNotFound
	}
	if req.CustomerID != c.cfg.Actor.ID {
		return xerrors.ErrForbidden
	}
	if req.Status != washrequest.StatusPending && req.Status != washrequest.StatusConfirmed {
		return fmt.Errorf("%w: cannot cancel a %s request", xerrors.ErrInvalidTransition, req.Status)
	}

	status := washrequest.StatusCancelled
	return c.Update(ctx, id, washrequest.Patch{Status: &status}, MutationGeneric)
}

// Remove drops a request from local state only; the remote store is
// untouched.
func (c *Container) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.requests {
		if c.requests[i].ID == id {
			c.requests = append(c.requests[:i], c.requests[i+1:]...)
			return
		}
	}
}

// Close cancels any pending reconciliation refresh. The container must
// not be used after Close.
func (c *Container) Close() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleReconcile arms (or re-arms) the delayed authoritative refresh.
// The timer is tied to the container lifetime: Close stops it, and a
// newer mutation supersedes an older pending refresh.
func (c *Container) scheduleReconcile(class MutationClass) {
	delay := c.cfg.ReconcileDelay
	if class == MutationAcceptance {
		delay = c.cfg.AcceptReconcileDelay
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(delay, func() {
		metrics.IncReconcile()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("reconciliation refresh failed",
				zap.String("actor_id", c.cfg.Actor.ID),
				zap.Error(err),
			)
		}
	})
}
