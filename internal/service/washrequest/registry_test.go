package washrequest

import (
	"context"
	"errors"
	"testing"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryReusesContainerPerActor(t *testing.T) {
	listCalls := 0
	store := &fakeStore{
		listFn: func(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error) {
			listCalls++
			return nil, nil
		},
	}
	r := NewRegistry(store, RegistryConfig{PricePerVehicle: 2500}, zap.NewNop())
	t.Cleanup(r.Close)

	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	c1, err := r.For(context.Background(), actor)
	require.NoError(t, err)
	c2, err := r.For(context.Background(), actor)
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, listCalls, "priming refresh runs once per actor")
}

func TestRegistryPrimeFailure(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error) {
			return nil, errors.New("database unavailable")
		},
	}
	r := NewRegistry(store, RegistryConfig{}, zap.NewNop())
	t.Cleanup(r.Close)

	_, err := r.For(context.Background(), identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})
	require.Error(t, err)
}

func TestRegistryEvict(t *testing.T) {
	store := &fakeStore{}
	r := NewRegistry(store, RegistryConfig{}, zap.NewNop())
	t.Cleanup(r.Close)

	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	c1, err := r.For(context.Background(), actor)
	require.NoError(t, err)

	r.Evict(actor.ID)

	c2, err := r.For(context.Background(), actor)
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)
}
