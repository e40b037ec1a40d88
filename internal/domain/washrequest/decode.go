package washrequest

import (
	"fmt"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"
)

// Row is the raw persisted shape of a wash request before validation.
// Repositories scan into a Row and call Decode; nothing else in the
// codebase builds a WashRequest from untrusted data.
type Row struct {
	ID                 string
	CustomerID         string
	Vehicles           []string
	PreferredStart     time.Time
	PreferredEnd       *time.Time
	Status             string
	TechnicianID       *string
	Price              int64
	Notes              *string
	OrganizationID     *string
	LocationID         *string
	RecurringFrequency *string
	RecurringCount     *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Decode validates a raw row and produces the domain entity. It fails
// closed: a row violating a structural invariant yields an error, never
// a partial entity. Optional relations (location, vehicle details) are
// attached by the repository after decoding and may be absent.
func (row Row) Decode() (WashRequest, error) {
	if row.ID == "" {
		return WashRequest{}, fmt.Errorf("%w: missing id", xerrors.ErrDecode)
	}
	if row.CustomerID == "" {
		return WashRequest{}, fmt.Errorf("%w: request %s has no customer", xerrors.ErrDecode, row.ID)
	}
	status := Status(row.Status)
	if !status.Valid() {
		return WashRequest{}, fmt.Errorf("%w: request %s has unknown status %q", xerrors.ErrDecode, row.ID, row.Status)
	}
	if len(row.Vehicles) == 0 {
		return WashRequest{}, fmt.Errorf("%w: request %s has no vehicles", xerrors.ErrDecode, row.ID)
	}
	if row.Price < 0 {
		return WashRequest{}, fmt.Errorf("%w: request %s has negative price", xerrors.ErrDecode, row.ID)
	}
	// Assignment invariant: a pending request has no technician, a
	// request past pending (other than cancelled) must have one.
	switch status {
	case StatusPending:
		if row.TechnicianID != nil && *row.TechnicianID != "" {
			return WashRequest{}, fmt.Errorf("%w: pending request %s has a technician", xerrors.ErrDecode, row.ID)
		}
	case StatusConfirmed, StatusInProgress, StatusCompleted:
		if row.TechnicianID == nil || *row.TechnicianID == "" {
			return WashRequest{}, fmt.Errorf("%w: %s request %s has no technician", xerrors.ErrDecode, status, row.ID)
		}
	}

	req := WashRequest{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		Vehicles:   append([]string(nil), row.Vehicles...),
		PreferredDates: DateRange{
			Start: row.PreferredStart,
			End:   clonePtr2(row.PreferredEnd),
		},
		Status:         status,
		Technician:     normalizePtr(row.TechnicianID),
		Price:          row.Price,
		Notes:          clonePtr(row.Notes),
		OrganizationID: normalizePtr(row.OrganizationID),
		LocationID:     normalizePtr(row.LocationID),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.RecurringFrequency != nil && *row.RecurringFrequency != "" {
		rec := Recurring{Frequency: *row.RecurringFrequency}
		if row.RecurringCount != nil {
			rec.Count = *row.RecurringCount
		}
		req.Recurring = &rec
	}
	return req, nil
}

// normalizePtr maps both SQL NULL and empty string to "absent".
func normalizePtr(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func clonePtr2(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
