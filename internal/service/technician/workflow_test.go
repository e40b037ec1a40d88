package technician

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"
	"fleetwash-service/internal/domain/washstatus"
	xerrors "fleetwash-service/internal/pkg/errors"
	washsvc "fleetwash-service/internal/service/washrequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWashStore struct {
	rows     []washrequest.WashRequest
	updateFn func(ctx context.Context, id string, patch washrequest.Patch) error
}

func (f *fakeWashStore) ListVisible(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error) {
	return f.rows, nil
}

func (f *fakeWashStore) Insert(ctx context.Context, req *washrequest.WashRequest) error {
	return nil
}

func (f *fakeWashStore) UpdatePatch(ctx context.Context, id string, patch washrequest.Patch) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return nil
}

type fakeStatusStore struct {
	batches [][]*washstatus.VehicleWashStatus
	err     error
}

func (f *fakeStatusStore) UpsertBatch(ctx context.Context, statuses []*washstatus.VehicleWashStatus) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, statuses)
	return nil
}

type fakePhotoStore struct {
	keys []string
}

func (f *fakePhotoStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://media.test/" + key, nil
}

type toast struct {
	userID  string
	event   string
	success bool
}

type fakeNotifier struct {
	toasts []toast
}

func (f *fakeNotifier) Notify(userID, event, message string, success bool) {
	f.toasts = append(f.toasts, toast{userID: userID, event: event, success: success})
}

type workflowFixture struct {
	svc       *WorkflowService
	container *washsvc.Container
	statuses  *fakeStatusStore
	photos    *fakePhotoStore
	notifier  *fakeNotifier
}

func newFixture(t *testing.T, actor identity.Actor, store *fakeWashStore) *workflowFixture {
	t.Helper()

	c := washsvc.NewContainer(store, washsvc.Config{
		Actor:                actor,
		PricePerVehicle:      2500,
		ReconcileDelay:       time.Hour,
		AcceptReconcileDelay: time.Hour,
	}, zap.NewNop())
	t.Cleanup(c.Close)
	require.NoError(t, c.Refresh(context.Background()))

	statuses := &fakeStatusStore{}
	photos := &fakePhotoStore{}
	notifier := &fakeNotifier{}
	return &workflowFixture{
		svc:       NewWorkflowService(statuses, photos, notifier, zap.NewNop()),
		container: c,
		statuses:  statuses,
		photos:    photos,
		notifier:  notifier,
	}
}

func techActor() identity.Actor {
	return identity.Actor{ID: "tech-1", Role: identity.RoleTechnician}
}

func pendingRow(id string) washrequest.WashRequest {
	return washrequest.WashRequest{
		ID: id, CustomerID: "cust-1", Status: washrequest.StatusPending, Vehicles: []string{"v1"},
	}
}

func assignedRow(id string, status washrequest.Status, techID string) washrequest.WashRequest {
	return washrequest.WashRequest{
		ID: id, CustomerID: "cust-1", Status: status, Technician: &techID, Vehicles: []string{"v1"},
	}
}

func TestAcceptAssignsTechnician(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{rows: []washrequest.WashRequest{pendingRow("r1")}})

	require.NoError(t, f.svc.AcceptRequest(context.Background(), f.container, "r1"))

	got, ok := f.container.Get("r1")
	require.True(t, ok)
	assert.Equal(t, washrequest.StatusConfirmed, got.Status)
	require.NotNil(t, got.Technician)
	assert.Equal(t, "tech-1", *got.Technician)

	require.Len(t, f.notifier.toasts, 1)
	assert.Equal(t, "accept", f.notifier.toasts[0].event)
	assert.True(t, f.notifier.toasts[0].success)
}

func TestAcceptRejectsNonPending(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusConfirmed, "tech-1")},
	})

	err := f.svc.AcceptRequest(context.Background(), f.container, "r1")
	require.ErrorIs(t, err, xerrors.ErrInvalidTransition)
	require.Len(t, f.notifier.toasts, 1)
	assert.False(t, f.notifier.toasts[0].success)
}

func TestScheduleOverridesPreferredStart(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{rows: []washrequest.WashRequest{pendingRow("r1")}})

	scheduled := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.ScheduleJob(context.Background(), f.container, "r1", scheduled))

	got, _ := f.container.Get("r1")
	assert.Equal(t, washrequest.StatusConfirmed, got.Status)
	assert.Equal(t, scheduled, got.PreferredDates.Start)
}

func TestAcceptThenCancelAcceptanceRoundTrip(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{rows: []washrequest.WashRequest{pendingRow("r1")}})

	require.NoError(t, f.svc.AcceptRequest(context.Background(), f.container, "r1"))
	require.NoError(t, f.svc.CancelAcceptance(context.Background(), f.container, "r1"))

	got, ok := f.container.Get("r1")
	require.True(t, ok)
	assert.Equal(t, washrequest.StatusPending, got.Status)
	assert.Nil(t, got.Technician)
}

func TestStartRequiresAssignment(t *testing.T) {
	// An org technician can see a colleague's confirmed request but must
	// not be able to start it.
	org := "org-a"
	actor := identity.Actor{ID: "tech-1", Role: identity.RoleTechnician, OrganizationID: org}
	row := assignedRow("r1", washrequest.StatusConfirmed, "tech-2")
	row.OrganizationID = &org
	f := newFixture(t, actor, &fakeWashStore{
		rows: []washrequest.WashRequest{row},
	})

	err := f.svc.StartWash(context.Background(), f.container, "r1")
	assert.ErrorIs(t, err, xerrors.ErrNotAssigned)
}

func TestStartConfirmedRequest(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusConfirmed, "tech-1")},
	})

	require.NoError(t, f.svc.StartWash(context.Background(), f.container, "r1"))

	got, _ := f.container.Get("r1")
	assert.Equal(t, washrequest.StatusInProgress, got.Status)
}

func TestStartTerminalRequestIsNoop(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusCompleted, "tech-1")},
	})

	require.NoError(t, f.svc.StartWash(context.Background(), f.container, "r1"))

	got, _ := f.container.Get("r1")
	assert.Equal(t, washrequest.StatusCompleted, got.Status)
	assert.Empty(t, f.notifier.toasts)
}

func TestReopenReturnsInProgressRequest(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusInProgress, "tech-1")},
	})

	req, err := f.svc.ReopenWash(f.container, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)

	_, err = f.svc.ReopenWash(f.container, "missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestCompleteWashPersistsStatusesAndPhotos(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusInProgress, "tech-1")},
	})

	photo := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	notes := "rear bumper scratched"
	payload := washrequest.CompleteWashRequest{
		Statuses: []washrequest.CompleteVehicleStatus{
			{VehicleID: "v1", Completed: true, PhotoData: &photo},
			{VehicleID: "v2", Completed: false, Notes: &notes},
		},
	}

	require.NoError(t, f.svc.CompleteWash(context.Background(), f.container, "r1", payload))

	got, _ := f.container.Get("r1")
	assert.Equal(t, washrequest.StatusCompleted, got.Status)

	require.Len(t, f.statuses.batches, 1)
	records := f.statuses.batches[0]
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].WashRequestID)
	assert.Equal(t, "tech-1", records[0].TechnicianID)
	assert.True(t, records[0].Completed)
	require.NotNil(t, records[0].PhotoURL)
	assert.Equal(t, "https://media.test/wash-photos/r1/v1.jpg", *records[0].PhotoURL)
	assert.Nil(t, records[1].PhotoURL)
	require.NotNil(t, records[1].Notes)

	assert.Equal(t, []string{"wash-photos/r1/v1.jpg"}, f.photos.keys)
}

func TestCompleteWashIdempotentOnCompleted(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusCompleted, "tech-1")},
	})

	err := f.svc.CompleteWash(context.Background(), f.container, "r1", washrequest.CompleteWashRequest{
		Statuses: []washrequest.CompleteVehicleStatus{{VehicleID: "v1", Completed: true}},
	})
	require.NoError(t, err)
	assert.Empty(t, f.statuses.batches)
}

func TestCompleteWashRejectsBadPhoto(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusInProgress, "tech-1")},
	})

	bad := "not-base64!!!"
	err := f.svc.CompleteWash(context.Background(), f.container, "r1", washrequest.CompleteWashRequest{
		Statuses: []washrequest.CompleteVehicleStatus{{VehicleID: "v1", Completed: true, PhotoData: &bad}},
	})
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
	assert.Empty(t, f.statuses.batches)
}

func TestCompleteWashStatusStoreFailureKeepsRequestInProgress(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusInProgress, "tech-1")},
	})
	f.statuses.err = errors.New("deadlock detected")

	err := f.svc.CompleteWash(context.Background(), f.container, "r1", washrequest.CompleteWashRequest{
		Statuses: []washrequest.CompleteVehicleStatus{{VehicleID: "v1", Completed: true}},
	})
	require.Error(t, err)

	got, _ := f.container.Get("r1")
	assert.Equal(t, washrequest.StatusInProgress, got.Status)
}

func TestCancelAcceptanceTerminalIsNoop(t *testing.T) {
	f := newFixture(t, techActor(), &fakeWashStore{
		rows: []washrequest.WashRequest{assignedRow("r1", washrequest.StatusCancelled, "tech-1")},
	})

	require.NoError(t, f.svc.CancelAcceptance(context.Background(), f.container, "r1"))
	assert.Empty(t, f.notifier.toasts)
}

func TestWorkflowRejectsNonTechnician(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	f := newFixture(t, actor, &fakeWashStore{rows: []washrequest.WashRequest{pendingRow("r1")}})

	err := f.svc.AcceptRequest(context.Background(), f.container, "r1")
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestAcceptRemoteFailureRollsBack(t *testing.T) {
	store := &fakeWashStore{
		rows: []washrequest.WashRequest{pendingRow("r1")},
		updateFn: func(ctx context.Context, id string, patch washrequest.Patch) error {
			return errors.New("network unreachable")
		},
	}
	f := newFixture(t, techActor(), store)

	err := f.svc.AcceptRequest(context.Background(), f.container, "r1")
	require.Error(t, err)

	got, ok := f.container.Get("r1")
	require.True(t, ok)
	assert.Equal(t, washrequest.StatusPending, got.Status)
	assert.Nil(t, got.Technician)
}
