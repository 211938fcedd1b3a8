package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, companyID string) ([]models.Room, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
}

type serviceRepository interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Service, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	Deactivate(ctx context.Context, companyID, id string) error
}

// CatalogService manages rooms and billable procedures.
type CatalogService struct {
	rooms     roomRepository
	services  serviceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(rooms roomRepository, services serviceRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{rooms: rooms, services: services, validator: validate, logger: logger}
}

// ListRooms returns all rooms for the tenant.
func (s *CatalogService) ListRooms(ctx context.Context, companyID string) ([]models.Room, error) {
	rooms, err := s.rooms.List(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// GetRoom loads one room.
func (s *CatalogService) GetRoom(ctx context.Context, companyID, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// CreateRoom registers a consultation room.
func (s *CatalogService) CreateRoom(ctx context.Context, companyID string, req dto.RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room := &models.Room{CompanyID: companyID, Name: req.Name, Active: true}
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// UpdateRoom edits a consultation room.
func (s *CatalogService) UpdateRoom(ctx context.Context, companyID, id string, req dto.RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room, err := s.GetRoom(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	room.Name = req.Name
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// ListServices returns billable procedures with filtering.
func (s *CatalogService) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error) {
	services, total, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return services, total, nil
}

// GetService loads one procedure.
func (s *CatalogService) GetService(ctx context.Context, companyID, id string) (*models.Service, error) {
	service, err := s.services.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return service, nil
}

// CreateService registers a billable procedure.
func (s *CatalogService) CreateService(ctx context.Context, companyID string, req dto.ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	service := &models.Service{
		CompanyID:       companyID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}
	if req.Active != nil {
		service.Active = *req.Active
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}
	return service, nil
}

// UpdateService edits a billable procedure.
func (s *CatalogService) UpdateService(ctx context.Context, companyID, id string, req dto.ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	service, err := s.GetService(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	service.Name = req.Name
	service.DurationMinutes = req.DurationMinutes
	service.Price = req.Price
	if req.Active != nil {
		service.Active = *req.Active
	}
	if err := s.services.Update(ctx, service); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}
	return service, nil
}

// DeactivateService soft-deletes a procedure.
func (s *CatalogService) DeactivateService(ctx context.Context, companyID, id string) error {
	if _, err := s.GetService(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.services.Deactivate(ctx, companyID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate service")
	}
	return nil
}
