// internal/service/vehicle/vehicle.go
package vehicle

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/vehicle"
	xerrors "fleetwash-service/internal/pkg/errors"
	"fleetwash-service/internal/repository/postgres"
	"fleetwash-service/internal/storage"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type VehicleService struct {
	vehicleRepo *postgres.VehicleRepository
	store       storage.ObjectStore
	logger      *zap.Logger
}

func NewVehicleService(vehicleRepo *postgres.VehicleRepository, store storage.ObjectStore, logger *zap.Logger) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		store:       store,
		logger:      logger,
	}
}

// CreateVehicle adds a vehicle for the acting customer. An inline image
// is uploaded to object storage and stored as a URL.
func (s *VehicleService) CreateVehicle(ctx context.Context, actor identity.Actor, req *vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error) {
	if actor.ID == "" {
		return nil, xerrors.ErrIdentityRequired
	}

	v := &vehicle.Vehicle{
		ID:           ulid.Make().String(),
		CustomerID:   actor.ID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		Type:         req.Type,
		VINNumber:    req.VINNumber,
		AssetNumber:  req.AssetNumber,
	}
	if actor.OrganizationID != "" {
		org := actor.OrganizationID
		v.OrganizationID = &org
	}

	if req.ImageData != nil && *req.ImageData != "" {
		url, err := s.uploadImage(ctx, v.ID, *req.ImageData)
		if err != nil {
			return nil, err
		}
		v.ImageURL = &url
	}

	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		s.logger.Error("failed to create vehicle", zap.Error(err))
		return nil, err
	}

	s.logger.Info("vehicle created",
		zap.String("vehicle_id", v.ID),
		zap.String("customer_id", actor.ID),
	)
	return v, nil
}

// GetVehicle retrieves one vehicle, enforcing ownership.
func (s *VehicleService) GetVehicle(ctx context.Context, actor identity.Actor, vehicleID string) (*vehicle.Vehicle, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicles returns the actor's fleet: the organization's vehicles
// when affiliated, otherwise the actor's own.
func (s *VehicleService) ListVehicles(ctx context.Context, actor identity.Actor) ([]vehicle.Vehicle, error) {
	if actor.ID == "" {
		return nil, xerrors.ErrIdentityRequired
	}
	if actor.HasOrganization() {
		return s.vehicleRepo.ListByOrganization(ctx, actor.OrganizationID)
	}
	return s.vehicleRepo.ListByCustomer(ctx, actor.ID)
}

// UpdateVehicle applies the provided fields to an owned vehicle.
func (s *VehicleService) UpdateVehicle(ctx context.Context, actor identity.Actor, vehicleID string, req *vehicle.UpdateVehicleRequest) (*vehicle.Vehicle, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, v); err != nil {
		return nil, err
	}

	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.LicensePlate != nil {
		v.LicensePlate = *req.LicensePlate
	}
	if req.Color != nil {
		v.Color = *req.Color
	}
	if req.Type != nil {
		v.Type = *req.Type
	}
	if req.VINNumber != nil {
		v.VINNumber = req.VINNumber
	}
	if req.AssetNumber != nil {
		v.AssetNumber = req.AssetNumber
	}
	if req.ImageData != nil && *req.ImageData != "" {
		url, err := s.uploadImage(ctx, v.ID, *req.ImageData)
		if err != nil {
			return nil, err
		}
		v.ImageURL = &url
	}

	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		s.logger.Error("failed to update vehicle", zap.Error(err))
		return nil, err
	}
	return v, nil
}

// DeleteVehicle removes an owned vehicle and its stored image.
func (s *VehicleService) DeleteVehicle(ctx context.Context, actor identity.Actor, vehicleID string) error {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, v); err != nil {
		return err
	}
	if err := s.vehicleRepo.Delete(ctx, vehicleID); err != nil {
		return err
	}
	if v.ImageURL != nil {
		if err := s.store.Delete(ctx, fmt.Sprintf("vehicle-images/%s", vehicleID)); err != nil {
			s.logger.Warn("failed to delete vehicle image",
				zap.String("vehicle_id", vehicleID), zap.Error(err))
		}
	}
	return nil
}

func (s *VehicleService) authorize(actor identity.Actor, v *vehicle.Vehicle) error {
	if actor.Role == identity.RoleAdmin {
		return nil
	}
	if v.CustomerID == actor.ID {
		return nil
	}
	if actor.HasOrganization() && v.OrganizationID != nil && *v.OrganizationID == actor.OrganizationID {
		return nil
	}
	return xerrors.ErrForbidden
}

// uploadImage accepts either a bare base64 payload or a data URL and
// stores the decoded bytes.
func (s *VehicleService) uploadImage(ctx context.Context, vehicleID, encoded string) (string, error) {
	contentType := "image/jpeg"
	if strings.HasPrefix(encoded, "data:") {
		parts := strings.SplitN(encoded, ",", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("%w: malformed data URL", xerrors.ErrInvalidInput)
		}
		meta := strings.TrimSuffix(strings.TrimPrefix(parts[0], "data:"), ";base64")
		if meta != "" {
			contentType = meta
		}
		encoded = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: image is not valid base64", xerrors.ErrInvalidInput)
	}

	key := fmt.Sprintf("vehicle-images/%s", vehicleID)
	return s.store.Upload(ctx, key, data, contentType)
}
