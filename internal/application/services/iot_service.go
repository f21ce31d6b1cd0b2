package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
)

// IoTService orchestrates gateway and entity operations.
type IoTService struct {
	iotRepo  repositories.IoTRepository
	growRepo repositories.GrowRepository
	logger   *logging.ChanneledLogger
}

// NewIoTService creates a new IoT application service.
func NewIoTService(iotRepo repositories.IoTRepository, growRepo repositories.GrowRepository, logger *logging.ChanneledLogger) *IoTService {
	return &IoTService{
		iotRepo:  iotRepo,
		growRepo: growRepo,
		logger:   logger,
	}
}

// GetGateway returns one of the user's gateways.
func (s *IoTService) GetGateway(userID, id int64) (*cultivation.IoTGateway, error) {
	gw, err := s.iotRepo.FindGatewayByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway %d: %w", id, err)
	}
	if gw == nil {
		return nil, fmt.Errorf("%w: gateway %d", ErrNotFound, id)
	}
	return gw, nil
}

// ListGateways returns a page of the user's gateways.
func (s *IoTService) ListGateways(userID int64, offset, limit int) ([]*cultivation.IoTGateway, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	gateways, err := s.iotRepo.FindGateways(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list gateways: %w", err)
	}
	return gateways, nil
}

// CreateGateway stores a new gateway for the user.
func (s *IoTService) CreateGateway(userID int64, gw *cultivation.IoTGateway) (*cultivation.IoTGateway, error) {
	if gw == nil || gw.Name == "" || gw.APIURL == "" || gw.APIKey == "" {
		return nil, fmt.Errorf("%w: name, api url, and api key are required", ErrInvalidInput)
	}
	if gw.Type == "" {
		gw.Type = cultivation.GatewayTypeHomeAssistant
	}

	if gw.GrowID != nil {
		if err := s.verifyGrow(userID, *gw.GrowID); err != nil {
			return nil, err
		}
	}

	gw.UserID = userID
	if err := s.iotRepo.StoreGateway(gw); err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	s.logger.IoT().Info("Gateway created", "gatewayId", gw.ID, "userId", userID, "type", gw.Type)
	return gw, nil
}

// UpdateGateway overwrites one of the user's gateways.
func (s *IoTService) UpdateGateway(userID, id int64, gw *cultivation.IoTGateway) (*cultivation.IoTGateway, error) {
	if gw == nil || gw.Name == "" || gw.APIURL == "" || gw.APIKey == "" {
		return nil, fmt.Errorf("%w: name, api url, and api key are required", ErrInvalidInput)
	}

	existing, err := s.iotRepo.FindGatewayByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify gateway %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: gateway %d", ErrNotFound, id)
	}

	if gw.GrowID != nil {
		if err := s.verifyGrow(userID, *gw.GrowID); err != nil {
			return nil, err
		}
	}

	gw.ID = id
	gw.UserID = userID
	gw.Type = existing.Type
	if err := s.iotRepo.UpdateGateway(gw); err != nil {
		return nil, fmt.Errorf("failed to update gateway %d: %w", id, err)
	}
	return gw, nil
}

// DeleteGateway removes a gateway and its entities.
func (s *IoTService) DeleteGateway(userID, id int64) error {
	existing, err := s.iotRepo.FindGatewayByID(userID, id)
	if err != nil {
		return fmt.Errorf("failed to verify gateway %d: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: gateway %d", ErrNotFound, id)
	}

	if err := s.iotRepo.DeleteGateway(userID, id); err != nil {
		return fmt.Errorf("failed to delete gateway %d: %w", id, err)
	}

	s.logger.IoT().Info("Gateway deleted", "gatewayId", id, "userId", userID)
	return nil
}

// ListEntities returns the entities enabled on one of the user's gateways.
func (s *IoTService) ListEntities(userID, gatewayID int64) ([]*cultivation.IoTEntity, error) {
	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return nil, err
	}
	entities, err := s.iotRepo.FindEntities(gatewayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// CreateEntity registers an entity on one of the user's gateways.
func (s *IoTService) CreateEntity(userID, gatewayID int64, e *cultivation.IoTEntity) (*cultivation.IoTEntity, error) {
	if e == nil || e.EntityID == "" || e.EntityType == "" {
		return nil, fmt.Errorf("%w: entity id and type are required", ErrInvalidInput)
	}

	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return nil, err
	}
	if e.LinkedGrowID != nil {
		if err := s.verifyGrow(userID, *e.LinkedGrowID); err != nil {
			return nil, err
		}
	}

	e.GatewayID = gatewayID
	if err := s.iotRepo.StoreEntity(e); err != nil {
		return nil, fmt.Errorf("failed to create entity: %w", err)
	}
	return e, nil
}

// UpdateEntity mutates an entity on one of the user's gateways.
func (s *IoTService) UpdateEntity(userID, gatewayID, id int64, e *cultivation.IoTEntity) (*cultivation.IoTEntity, error) {
	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return nil, err
	}

	existing, err := s.iotRepo.FindEntityByID(gatewayID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify entity %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: entity %d", ErrNotFound, id)
	}

	if e.LinkedGrowID != nil {
		if err := s.verifyGrow(userID, *e.LinkedGrowID); err != nil {
			return nil, err
		}
	}

	e.ID = id
	e.GatewayID = gatewayID
	e.EntityID = existing.EntityID
	if e.EntityType == "" {
		e.EntityType = existing.EntityType
	}
	if err := s.iotRepo.UpdateEntity(e); err != nil {
		return nil, fmt.Errorf("failed to update entity %d: %w", id, err)
	}
	return e, nil
}

// LinkEntity attaches an entity to one of the user's grows for monitoring.
func (s *IoTService) LinkEntity(userID, gatewayID, id, growID int64) (*cultivation.IoTEntity, error) {
	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return nil, err
	}

	existing, err := s.iotRepo.FindEntityByID(gatewayID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify entity %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: entity %d", ErrNotFound, id)
	}
	if err := s.verifyGrow(userID, growID); err != nil {
		return nil, err
	}

	existing.LinkedGrowID = &growID
	if err := s.iotRepo.UpdateEntity(existing); err != nil {
		return nil, fmt.Errorf("failed to link entity %d: %w", id, err)
	}

	s.logger.IoT().Info("Entity linked to grow", "entityId", id, "growId", growID)
	return existing, nil
}

// UnlinkEntity detaches an entity from its grow. Unlinking an already
// unlinked entity is a no-op.
func (s *IoTService) UnlinkEntity(userID, gatewayID, id int64) (*cultivation.IoTEntity, error) {
	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return nil, err
	}

	existing, err := s.iotRepo.FindEntityByID(gatewayID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify entity %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: entity %d", ErrNotFound, id)
	}

	existing.LinkedGrowID = nil
	if err := s.iotRepo.UpdateEntity(existing); err != nil {
		return nil, fmt.Errorf("failed to unlink entity %d: %w", id, err)
	}
	return existing, nil
}

// DeleteEntity removes an entity from one of the user's gateways.
func (s *IoTService) DeleteEntity(userID, gatewayID, id int64) error {
	if _, err := s.GetGateway(userID, gatewayID); err != nil {
		return err
	}

	existing, err := s.iotRepo.FindEntityByID(gatewayID, id)
	if err != nil {
		return fmt.Errorf("failed to verify entity %d: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: entity %d", ErrNotFound, id)
	}

	if err := s.iotRepo.DeleteEntity(gatewayID, id); err != nil {
		return fmt.Errorf("failed to delete entity %d: %w", id, err)
	}
	return nil
}

func (s *IoTService) verifyGrow(userID, growID int64) error {
	g, err := s.growRepo.FindByID(userID, growID)
	if err != nil {
		return fmt.Errorf("failed to verify grow %d: %w", growID, err)
	}
	if g == nil {
		return fmt.Errorf("%w: grow %d", ErrNotFound, growID)
	}
	return nil
}
