// internal/service/washrequest/registry.go
package washrequest

import (
	"context"
	"sync"
	"time"

	"fleetwash-service/internal/domain/identity"

	"go.uber.org/zap"
)

// RegistryConfig carries the per-container defaults.
type RegistryConfig struct {
	PricePerVehicle      int64
	ReconcileDelay       time.Duration
	AcceptReconcileDelay time.Duration
}

// Registry hands out one container per actor. A container is created
// lazily on first use and primed with an initial refresh; subsequent
// requests for the same actor share it.
type Registry struct {
	store  Store
	cfg    RegistryConfig
	logger *zap.Logger

	mu         sync.Mutex
	containers map[string]*Container
}

func NewRegistry(store Store, cfg RegistryConfig, logger *zap.Logger) *Registry {
	return &Registry{
		store:      store,
		cfg:        cfg,
		logger:     logger,
		containers: map[string]*Container{},
	}
}

// For returns the actor's container, creating and priming it if needed.
func (r *Registry) For(ctx context.Context, actor identity.Actor) (*Container, error) {
	r.mu.Lock()
	if c, ok := r.containers[actor.ID]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	c := NewContainer(r.store, Config{
		Actor:                actor,
		PricePerVehicle:      r.cfg.PricePerVehicle,
		ReconcileDelay:       r.cfg.ReconcileDelay,
		AcceptReconcileDelay: r.cfg.AcceptReconcileDelay,
	}, r.logger)

	if err := c.Refresh(ctx); err != nil {
		c.Close()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.containers[actor.ID]; ok {
		// Lost the race; keep the already-primed container.
		c.Close()
		return existing, nil
	}
	r.containers[actor.ID] = c
	return c, nil
}

// Evict closes and removes an actor's container (logout, revocation).
func (r *Registry) Evict(actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.containers[actorID]; ok {
		c.Close()
		delete(r.containers, actorID)
	}
}

// Close shuts down every container.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.containers {
		c.Close()
		delete(r.containers, id)
	}
}
