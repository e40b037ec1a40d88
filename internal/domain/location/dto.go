package location

// CreateLocationRequest for adding a service location.
type CreateLocationRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	City      string   `json:"city" binding:"required"`
	State     string   `json:"state" binding:"required"`
	ZipCode   string   `json:"zip_code" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
	IsDefault bool     `json:"is_default"`
}

// UpdateLocationRequest for updating location details.
type UpdateLocationRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	ZipCode   *string  `json:"zip_code"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}
