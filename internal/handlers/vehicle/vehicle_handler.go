// internal/handlers/vehicle/vehicle_handler.go
package vehicle

import (
	"net/http"

	"fleetwash-service/internal/domain/vehicle"
	"fleetwash-service/internal/middleware"
	"fleetwash-service/internal/pkg/response"
	vehicleUsecase "fleetwash-service/internal/service/vehicle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicleService *vehicleUsecase.VehicleService
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *vehicleUsecase.VehicleService, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// Create registers a new vehicle for the caller.
func (h *VehicleHandler) Create(c *gin.Context) {
	var req vehicle.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	v, err := h.vehicleService.CreateVehicle(c.Request.Context(), middleware.MustGetActor(c), &req)
	if err != nil {
		h.logger.Error("vehicle creation failed", zap.Error(err))
		response.FromError(c, err, "failed to create vehicle")
		return
	}

	response.Success(c, http.StatusCreated, "vehicle created", v)
}

// List returns the vehicles visible to the caller.
func (h *VehicleHandler) List(c *gin.Context) {
	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), middleware.MustGetActor(c))
	if err != nil {
		response.FromError(c, err, "failed to list vehicles")
		return
	}

	response.Success(c, http.StatusOK, "vehicles retrieved", vehicles)
}

// Get returns one vehicle by id.
func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicleService.GetVehicle(c.Request.Context(), middleware.MustGetActor(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to get vehicle")
		return
	}

	response.Success(c, http.StatusOK, "vehicle retrieved", v)
}

// Update applies mutable vehicle fields.
func (h *VehicleHandler) Update(c *gin.Context) {
	var req vehicle.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	v, err := h.vehicleService.UpdateVehicle(c.Request.Context(), middleware.MustGetActor(c), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err, "failed to update vehicle")
		return
	}

	response.Success(c, http.StatusOK, "vehicle updated", v)
}

// Delete removes a vehicle.
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), middleware.MustGetActor(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to delete vehicle")
		return
	}

	response.Success(c, http.StatusOK, "vehicle deleted", nil)
}
