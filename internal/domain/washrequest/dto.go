package washrequest

import "time"

// CreateRequest is the customer-facing creation payload.
type CreateRequest struct {
	Vehicles       []string   `json:"vehicles" binding:"required,min=1"`
	PreferredStart time.Time  `json:"preferred_start" binding:"required"`
	PreferredEnd   *time.Time `json:"preferred_end"`
	Notes          *string    `json:"notes"`
	LocationID     *string    `json:"location_id"`
	Recurring      *Recurring `json:"recurring"`
}

// ScheduleRequest carries the technician's chosen date when scheduling a job.
type ScheduleRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}

// CompleteVehicleStatus is the per-vehicle outcome submitted when a wash
// is completed.
type CompleteVehicleStatus struct {
	VehicleID string  `json:"vehicle_id" binding:"required"`
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes"`
	// PhotoData is an optional inline-encoded post-wash photo; it is
	// uploaded to object storage before persistence.
	PhotoData *string `json:"photo_data"`
}

// CompleteWashRequest is the completion payload for a whole request.
type CompleteWashRequest struct {
	Statuses []CompleteVehicleStatus `json:"statuses" binding:"required,min=1"`
}

// Stats is the admin aggregation over wash requests.
type Stats struct {
	TotalRequests     int64            `json:"total_requests"`
	PendingRequests   int64            `json:"pending_requests"`
	ConfirmedRequests int64            `json:"confirmed_requests"`
	InProgress        int64            `json:"in_progress_requests"`
	CompletedRequests int64            `json:"completed_requests"`
	CancelledRequests int64            `json:"cancelled_requests"`
	CompletedRevenue  int64            `json:"completed_revenue"` // cents
	ByTechnician      map[string]int64 `json:"by_technician,omitempty"`
}
