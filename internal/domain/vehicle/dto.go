package vehicle

// CreateVehicleRequest for adding a new vehicle.
type CreateVehicleRequest struct {
	Make         string  `json:"make" binding:"required"`
	Model        string  `json:"model" binding:"required"`
	Year         int     `json:"year" binding:"required,min=1900,max=2100"`
	LicensePlate string  `json:"license_plate" binding:"required"`
	Color        string  `json:"color" binding:"required"`
	Type         string  `json:"type" binding:"required"`
	VINNumber    *string `json:"vin_number"`
	AssetNumber  *string `json:"asset_number"`
	// ImageData is an optional inline-encoded image; it is uploaded to
	// object storage and replaced with a URL before persistence.
	ImageData *string `json:"image_data"`
}

// UpdateVehicleRequest for updating vehicle details.
type UpdateVehicleRequest struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	Year         *int    `json:"year" binding:"omitempty,min=1900,max=2100"`
	LicensePlate *string `json:"license_plate"`
	Color        *string `json:"color"`
	Type         *string `json:"type"`
	VINNumber    *string `json:"vin_number"`
	AssetNumber  *string `json:"asset_number"`
	ImageData    *string `json:"image_data"`
}
