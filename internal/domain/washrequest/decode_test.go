package washrequest

import (
	"testing"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() Row {
	return Row{
		ID:             "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		CustomerID:     "cust-1",
		Vehicles:       []string{"v1"},
		PreferredStart: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		Status:         "pending",
		Price:          2500,
	}
}

func TestDecodeValidRow(t *testing.T) {
	row := validRow()
	req, err := row.Decode()
	require.NoError(t, err)
	assert.Equal(t, row.ID, req.ID)
	assert.Equal(t, StatusPending, req.Status)
	assert.Nil(t, req.Technician)
	assert.Equal(t, int64(2500), req.Price)
}

func TestDecodeFailsClosed(t *testing.T) {
	tech := "tech-1"
	empty := ""

	tests := []struct {
		name   string
		mutate func(*Row)
	}{
		{"missing id", func(r *Row) { r.ID = "" }},
		{"missing customer", func(r *Row) { r.CustomerID = "" }},
		{"unknown status", func(r *Row) { r.Status = "washing" }},
		{"no vehicles", func(r *Row) { r.Vehicles = nil }},
		{"negative price", func(r *Row) { r.Price = -1 }},
		{"pending with technician", func(r *Row) { r.TechnicianID = &tech }},
		{"confirmed without technician", func(r *Row) { r.Status = "confirmed" }},
		{"confirmed with empty technician", func(r *Row) {
			r.Status = "confirmed"
			r.TechnicianID = &empty
		}},
		{"in_progress without technician", func(r *Row) { r.Status = "in_progress" }},
		{"completed without technician", func(r *Row) { r.Status = "completed" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)
			_, err := row.Decode()
			require.Error(t, err)
			assert.ErrorIs(t, err, xerrors.ErrDecode)
		})
	}
}

func TestDecodeCancelledWithoutTechnician(t *testing.T) {
	// A request cancelled while still pending never had a technician.
	row := validRow()
	row.Status = "cancelled"
	req, err := row.Decode()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, req.Status)
	assert.Nil(t, req.Technician)
}

func TestDecodeNormalizesEmptyOptionals(t *testing.T) {
	empty := ""
	row := validRow()
	row.OrganizationID = &empty
	row.LocationID = &empty

	req, err := row.Decode()
	require.NoError(t, err)
	assert.Nil(t, req.OrganizationID)
	assert.Nil(t, req.LocationID)
}

func TestDecodeRecurring(t *testing.T) {
	freq := "weekly"
	count := 6
	row := validRow()
	row.RecurringFrequency = &freq
	row.RecurringCount = &count

	req, err := row.Decode()
	require.NoError(t, err)
	require.NotNil(t, req.Recurring)
	assert.Equal(t, "weekly", req.Recurring.Frequency)
	assert.Equal(t, 6, req.Recurring.Count)
}
