package washrequest

import (
	"testing"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to in_progress skips confirmation", StatusPending, StatusInProgress, false},
		{"pending to completed skips everything", StatusPending, StatusCompleted, false},
		{"confirmed back to pending", StatusConfirmed, StatusPending, true},
		{"confirmed to in_progress", StatusConfirmed, StatusInProgress, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to completed skips in_progress", StatusConfirmed, StatusCompleted, false},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"in_progress cannot be cancelled", StatusInProgress, StatusCancelled, false},
		{"in_progress cannot revert", StatusInProgress, StatusConfirmed, false},
		{"completed is terminal", StatusCompleted, StatusPending, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"unknown status has no moves", Status("bogus"), StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	assert.Empty(t, AllowedTransitions[StatusCompleted])
	assert.Empty(t, AllowedTransitions[StatusCancelled])
}

func TestPatchApplyStatusTransition(t *testing.T) {
	now := time.Now()
	confirmed := StatusConfirmed
	tech := "tech-1"

	req := &WashRequest{ID: "r1", CustomerID: "c1", Status: StatusPending}
	err := Patch{Status: &confirmed, Technician: &tech}.Apply(req, now)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, req.Status)
	require.NotNil(t, req.Technician)
	assert.Equal(t, "tech-1", *req.Technician)
	assert.Equal(t, now, req.UpdatedAt)
}

func TestPatchApplyRejectsIllegalTransition(t *testing.T) {
	completed := StatusCompleted
	req := &WashRequest{ID: "r1", Status: StatusPending, UpdatedAt: time.Unix(0, 0)}

	err := Patch{Status: &completed}.Apply(req, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrInvalidTransition)
	// Failed apply must leave the request untouched.
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, time.Unix(0, 0), req.UpdatedAt)
}

func TestPatchApplySameStatusIsNoopTransition(t *testing.T) {
	pending := StatusPending
	req := &WashRequest{ID: "r1", Status: StatusPending}

	err := Patch{Status: &pending}.Apply(req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
}

func TestPatchApplyClearTechnician(t *testing.T) {
	tech := "tech-1"
	pending := StatusPending
	req := &WashRequest{ID: "r1", Status: StatusConfirmed, Technician: &tech}

	err := Patch{Status: &pending, ClearTechnician: true}.Apply(req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Nil(t, req.Technician)
}

func TestPatchApplyScheduledDateOverridesPreferredStart(t *testing.T) {
	orig := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	req := &WashRequest{ID: "r1", Status: StatusPending, PreferredDates: DateRange{Start: orig}}

	err := Patch{PreferredStart: &scheduled}.Apply(req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, scheduled, req.PreferredDates.Start)
}

func TestCloneIsDeep(t *testing.T) {
	tech := "tech-1"
	notes := "gate code 1234"
	end := time.Now().Add(48 * time.Hour)
	req := WashRequest{
		ID:             "r1",
		Vehicles:       []string{"v1", "v2"},
		Technician:     &tech,
		Notes:          &notes,
		PreferredDates: DateRange{Start: time.Now(), End: &end},
		Recurring:      &Recurring{Frequency: "weekly", Count: 4},
	}

	clone := req.Clone()
	clone.Vehicles[0] = "mutated"
	*clone.Technician = "mutated"
	*clone.Notes = "mutated"
	*clone.PreferredDates.End = end.Add(time.Hour)
	clone.Recurring.Count = 99

	assert.Equal(t, "v1", req.Vehicles[0])
	assert.Equal(t, "tech-1", *req.Technician)
	assert.Equal(t, "gate code 1234", *req.Notes)
	assert.Equal(t, end, *req.PreferredDates.End)
	assert.Equal(t, 4, req.Recurring.Count)
}
