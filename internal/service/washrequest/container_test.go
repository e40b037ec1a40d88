package washrequest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	listFn   func(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error)
	insertFn func(ctx context.Context, req *washrequest.WashRequest) error
	updateFn func(ctx context.Context, id string, patch washrequest.Patch) error
}

func (f *fakeStore) ListVisible(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error) {
	if f.listFn != nil {
		return f.listFn(ctx, actor)
	}
	return nil, nil
}

func (f *fakeStore) Insert(ctx context.Context, req *washrequest.WashRequest) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, req)
	}
	return nil
}

func (f *fakeStore) UpdatePatch(ctx context.Context, id string, patch washrequest.Patch) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return nil
}

func testConfig(actor identity.Actor) Config {
	return Config{
		Actor:                actor,
		PricePerVehicle:      2500,
		ReconcileDelay:       time.Hour, // never fires within a test
		AcceptReconcileDelay: time.Hour,
	}
}

func newTestContainer(t *testing.T, store Store, actor identity.Actor) *Container {
	t.Helper()
	c := NewContainer(store, testConfig(actor), zap.NewNop())
	t.Cleanup(c.Close)
	return c
}

func TestCreatePendingWithComputedPrice(t *testing.T) {
	var inserted *washrequest.WashRequest
	store := &fakeStore{
		insertFn: func(ctx context.Context, req *washrequest.WashRequest) error {
			inserted = req
			return nil
		},
	}
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer, OrganizationID: "org-a"}
	c := newTestContainer(t, store, actor)

	created, err := c.Create(context.Background(), washrequest.CreateRequest{
		Vehicles:       []string{"v1", "v2", "v3"},
		PreferredStart: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "cust-1", created.CustomerID)
	assert.Equal(t, washrequest.StatusPending, created.Status)
	assert.Nil(t, created.Technician)
	assert.Equal(t, int64(7500), created.Price)
	require.NotNil(t, created.OrganizationID)
	assert.Equal(t, "org-a", *created.OrganizationID)

	// The new request is prepended to the local list.
	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateRequiresVehicles(t *testing.T) {
	c := newTestContainer(t, &fakeStore{}, identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})

	_, err := c.Create(context.Background(), washrequest.CreateRequest{})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreateRequiresIdentity(t *testing.T) {
	c := newTestContainer(t, &fakeStore{}, identity.Actor{})

	_, err := c.Create(context.Background(), washrequest.CreateRequest{Vehicles: []string{"v1"}})
	assert.ErrorIs(t, err, xerrors.ErrIdentityRequired)
}

func TestCreateRemoteFailureLeavesListUntouched(t *testing.T) {
	store := &fakeStore{
		insertFn: func(ctx context.Context, req *washrequest.WashRequest) error {
			return errors.New("connection reset")
		},
	}
	c := newTestContainer(t, store, identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})

	_, err := c.Create(context.Background(), washrequest.CreateRequest{
		Vehicles:       []string{"v1"},
		PreferredStart: time.Now(),
	})
	require.Error(t, err)
	assert.Empty(t, c.List())
}

func TestUpdateRollsBackWholeCollectionOnFailure(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	tech := "tech-1"
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "r1", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
				{ID: "r2", CustomerID: "cust-1", Status: washrequest.StatusConfirmed, Technician: &tech, Vehicles: []string{"v2"}},
			}, nil
		},
		updateFn: func(ctx context.Context, id string, patch washrequest.Patch) error {
			return errors.New("write timeout")
		},
	}
	c := newTestContainer(t, store, actor)
	require.NoError(t, c.Refresh(context.Background()))

	before := c.List()

	confirmed := washrequest.StatusConfirmed
	err := c.Update(context.Background(), "r1", washrequest.Patch{Status: &confirmed, Technician: &tech}, MutationGeneric)
	require.Error(t, err)

	// The whole collection must be restored, not just the patched entry.
	assert.Equal(t, before, c.List())
	assert.False(t, c.IsUpdating())
}

func TestUpdateRejectsWhileInFlight(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "r1", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
			}, nil
		},
		updateFn: func(ctx context.Context, id string, patch washrequest.Patch) error {
			close(entered)
			<-release
			return nil
		},
	}
	c := newTestContainer(t, store, actor)
	require.NoError(t, c.Refresh(context.Background()))

	cancelled := washrequest.StatusCancelled
	done := make(chan error, 1)
	go func() {
		done <- c.Update(context.Background(), "r1", washrequest.Patch{Status: &cancelled}, MutationGeneric)
	}()

	<-entered
	assert.True(t, c.IsUpdating())

	// The second update is rejected immediately, never queued.
	err := c.Update(context.Background(), "r1", washrequest.Patch{Status: &cancelled}, MutationGeneric)
	assert.ErrorIs(t, err, xerrors.ErrUpdateInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.IsUpdating())
}

func TestUpdateUnknownRequest(t *testing.T) {
	c := newTestContainer(t, &fakeStore{}, identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})

	cancelled := washrequest.StatusCancelled
	err := c.Update(context.Background(), "missing", washrequest.Patch{Status: &cancelled}, MutationGeneric)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdateInvalidTransitionLeavesListUntouched(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "r1", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
			}, nil
		},
	}
	c := newTestContainer(t, store, actor)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.List()

	completed := washrequest.StatusCompleted
	err := c.Update(context.Background(), "r1", washrequest.Patch{Status: &completed}, MutationGeneric)
	require.ErrorIs(t, err, xerrors.ErrInvalidTransition)
	assert.Equal(t, before, c.List())
}

func TestCancelRules(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	tech := "tech-1"
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "mine-pending", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
				{ID: "mine-started", CustomerID: "cust-1", Status: washrequest.StatusInProgress, Technician: &tech, Vehicles: []string{"v1"}},
				{ID: "not-mine", CustomerID: "cust-2", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
			}, nil
		},
	}
	// Customers without an organization only see their own rows, but a
	// fleet manager's container can hold colleagues' requests; cancel
	// still checks ownership.
	c := NewContainer(store, testConfig(actor), zap.NewNop())
	t.Cleanup(c.Close)
	c.requests, _ = store.ListVisible(context.Background(), actor)

	require.NoError(t, c.Cancel(context.Background(), "mine-pending"))
	got, ok := c.Get("mine-pending")
	require.True(t, ok)
	assert.Equal(t, washrequest.StatusCancelled, got.Status)

	err := c.Cancel(context.Background(), "mine-started")
	assert.ErrorIs(t, err, xerrors.ErrInvalidTransition)

	err = c.Cancel(context.Background(), "not-mine")
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	err = c.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestRemoveIsLocalOnly(t *testing.T) {
	updates := 0
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "r1", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
			}, nil
		},
		updateFn: func(ctx context.Context, id string, patch washrequest.Patch) error {
			updates++
			return nil
		},
	}
	c := newTestContainer(t, store, identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})
	require.NoError(t, c.Refresh(context.Background()))

	c.Remove("r1")
	assert.Empty(t, c.List())
	assert.Zero(t, updates)
}

func TestListReturnsCopies(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "r1", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
			}, nil
		},
	}
	c := newTestContainer(t, store, identity.Actor{ID: "cust-1", Role: identity.RoleCustomer})
	require.NoError(t, c.Refresh(context.Background()))

	list := c.List()
	list[0].Vehicles[0] = "mutated"
	list[0].Status = washrequest.StatusCancelled

	got, ok := c.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "v1", got.Vehicles[0])
	assert.Equal(t, washrequest.StatusPending, got.Status)
}

func TestRefreshReappliesVisibility(t *testing.T) {
	actor := identity.Actor{ID: "tech-1", Role: identity.RoleTechnician}
	tech2 := "tech-2"
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			return []washrequest.WashRequest{
				{ID: "open", CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"}},
				{ID: "claimed", CustomerID: "cust-2", Status: washrequest.StatusConfirmed, Technician: &tech2, Vehicles: []string{"v2"}},
			}, nil
		},
	}
	c := newTestContainer(t, store, actor)
	require.NoError(t, c.Refresh(context.Background()))

	// Rows claimed by another technician are filtered out even if the
	// store returns them.
	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "open", list[0].ID)
}

func TestReconcileRefreshRunsAfterMutation(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	refreshed := make(chan struct{}, 4)
	calls := 0
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			calls++
			if calls > 1 {
				refreshed <- struct{}{}
			}
			return nil, nil
		},
	}
	cfg := testConfig(actor)
	cfg.ReconcileDelay = 10 * time.Millisecond
	c := NewContainer(store, cfg, zap.NewNop())
	t.Cleanup(c.Close)
	require.NoError(t, c.Refresh(context.Background()))

	_, err := c.Create(context.Background(), washrequest.CreateRequest{
		Vehicles:       []string{"v1"},
		PreferredStart: time.Now(),
	})
	require.NoError(t, err)

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciliation refresh never ran")
	}
}

func TestCloseStopsPendingReconcile(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	calls := 0
	store := &fakeStore{
		listFn: func(ctx context.Context, a identity.Actor) ([]washrequest.WashRequest, error) {
			calls++
			return nil, nil
		},
	}
	cfg := testConfig(actor)
	cfg.ReconcileDelay = 20 * time.Millisecond
	c := NewContainer(store, cfg, zap.NewNop())

	_, err := c.Create(context.Background(), washrequest.CreateRequest{
		Vehicles:       []string{"v1"},
		PreferredStart: time.Now(),
	})
	require.NoError(t, err)

	c.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls)
}
