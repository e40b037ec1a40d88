// internal/handlers/location/location_handler.go
package location

import (
	"net/http"

	"fleetwash-service/internal/domain/location"
	"fleetwash-service/internal/middleware"
	"fleetwash-service/internal/pkg/response"
	locationUsecase "fleetwash-service/internal/service/location"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LocationHandler struct {
	locationService *locationUsecase.LocationService
	logger          *zap.Logger
}

func NewLocationHandler(locationService *locationUsecase.LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		logger:          logger,
	}
}

// Create registers a service location for the caller's organization.
func (h *LocationHandler) Create(c *gin.Context) {
	var req location.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loc, err := h.locationService.CreateLocation(c.Request.Context(), middleware.MustGetActor(c), &req)
	if err != nil {
		h.logger.Error("location creation failed", zap.Error(err))
		response.FromError(c, err, "failed to create location")
		return
	}

	response.Success(c, http.StatusCreated, "location created", loc)
}

// List returns the organization's locations.
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.locationService.ListLocations(c.Request.Context(), middleware.MustGetActor(c))
	if err != nil {
		response.FromError(c, err, "failed to list locations")
		return
	}

	response.Success(c, http.StatusOK, "locations retrieved", locations)
}

// Update applies mutable location fields.
func (h *LocationHandler) Update(c *gin.Context) {
	var req location.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loc, err := h.locationService.UpdateLocation(c.Request.Context(), middleware.MustGetActor(c), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err, "failed to update location")
		return
	}

	response.Success(c, http.StatusOK, "location updated", loc)
}

// SetDefault marks one location as the organization default.
func (h *LocationHandler) SetDefault(c *gin.Context) {
	if err := h.locationService.SetDefaultLocation(c.Request.Context(), middleware.MustGetActor(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to set default location")
		return
	}

	response.Success(c, http.StatusOK, "default location set", nil)
}

// Delete removes a location.
func (h *LocationHandler) Delete(c *gin.Context) {
	if err := h.locationService.DeleteLocation(c.Request.Context(), middleware.MustGetActor(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to delete location")
		return
	}

	response.Success(c, http.StatusOK, "location deleted", nil)
}
