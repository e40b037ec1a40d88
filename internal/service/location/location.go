// internal/service/location/location.go
package location

import (
	"context"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/location"
	xerrors "fleetwash-service/internal/pkg/errors"
	"fleetwash-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type LocationService struct {
	locationRepo *postgres.LocationRepository
	logger       *zap.Logger
}

func NewLocationService(locationRepo *postgres.LocationRepository, logger *zap.Logger) *LocationService {
	return &LocationService{locationRepo: locationRepo, logger: logger}
}

// CreateLocation adds a service location for the actor's organization.
// If the new location is flagged default it displaces any previous
// default.
func (s *LocationService) CreateLocation(ctx context.Context, actor identity.Actor, req *location.CreateLocationRequest) (*location.Location, error) {
	if !actor.HasOrganization() {
		return nil, xerrors.ErrForbidden
	}

	org := actor.OrganizationID
	l := &location.Location{
		ID:             ulid.Make().String(),
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Notes:          req.Notes,
		OrganizationID: &org,
	}

	if err := s.locationRepo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create location", zap.Error(err))
		return nil, err
	}

	if req.IsDefault {
		if err := s.locationRepo.SetDefault(ctx, org, l.ID); err != nil {
			return nil, err
		}
		l.IsDefault = true
	}
	return l, nil
}

// ListLocations returns the organization's locations.
func (s *LocationService) ListLocations(ctx context.Context, actor identity.Actor) ([]location.Location, error) {
	if !actor.HasOrganization() {
		return []location.Location{}, nil
	}
	return s.locationRepo.ListByOrganization(ctx, actor.OrganizationID)
}

// UpdateLocation applies the provided fields.
func (s *LocationService) UpdateLocation(ctx context.Context, actor identity.Actor, locationID string, req *location.UpdateLocationRequest) (*location.Location, error) {
	l, err := s.authorize(ctx, actor, locationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Address != nil {
		l.Address = *req.Address
	}
	if req.City != nil {
		l.City = *req.City
	}
	if req.State != nil {
		l.State = *req.State
	}
	if req.ZipCode != nil {
		l.ZipCode = *req.ZipCode
	}
	if req.Latitude != nil {
		l.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		l.Longitude = req.Longitude
	}
	if req.Notes != nil {
		l.Notes = req.Notes
	}

	if err := s.locationRepo.Update(ctx, l); err != nil {
		s.logger.Error("failed to update location", zap.Error(err))
		return nil, err
	}
	return l, nil
}

// SetDefaultLocation marks one location as the organization default,
// clearing the previous one atomically.
func (s *LocationService) SetDefaultLocation(ctx context.Context, actor identity.Actor, locationID string) error {
	if _, err := s.authorize(ctx, actor, locationID); err != nil {
		return err
	}
	return s.locationRepo.SetDefault(ctx, actor.OrganizationID, locationID)
}

// DeleteLocation removes a location.
func (s *LocationService) DeleteLocation(ctx context.Context, actor identity.Actor, locationID string) error {
	if _, err := s.authorize(ctx, actor, locationID); err != nil {
		return err
	}
	return s.locationRepo.Delete(ctx, locationID)
}

func (s *LocationService) authorize(ctx context.Context, actor identity.Actor, locationID string) (*location.Location, error) {
	l, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if actor.Role == identity.RoleAdmin {
		return l, nil
	}
	if !actor.HasOrganization() || l.OrganizationID == nil || *l.OrganizationID != actor.OrganizationID {
		return nil, xerrors.ErrForbidden
	}
	return l, nil
}
