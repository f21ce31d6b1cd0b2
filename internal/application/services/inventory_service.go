package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
)

var validItemTypes = map[string]bool{
	cultivation.ItemTypeSyringe: true,
	cultivation.ItemTypeSpawn:   true,
	cultivation.ItemTypeBulk:    true,
	cultivation.ItemTypeOther:   true,
}

// InventoryService orchestrates inventory item CRUD. Items linked to a grow
// are in-use and protected from mutation and deletion.
type InventoryService struct {
	inventoryRepo repositories.InventoryRepository
}

// NewInventoryService creates a new inventory application service.
func NewInventoryService(inventoryRepo repositories.InventoryRepository) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
	}
}

// GetByID returns one of the user's inventory items.
func (s *InventoryService) GetByID(userID, id int64) (*cultivation.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
	}
	return item, nil
}

// List returns the user's inventory, optionally filtered by availability and
// item type.
func (s *InventoryService) List(userID int64, filter repositories.InventoryFilter) ([]*cultivation.InventoryItem, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.ItemType != "" && !validItemTypes[filter.ItemType] {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, filter.ItemType)
	}

	items, err := s.inventoryRepo.FindAll(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// ListAvailable returns the user's available items grouped by item type, the
// shape the grow-assignment picker consumes. Every type key is present even
// when empty.
func (s *InventoryService) ListAvailable(userID int64) (map[string][]*cultivation.InventoryItem, error) {
	items, err := s.inventoryRepo.FindAll(userID, repositories.InventoryFilter{
		AvailableOnly: true,
		Limit:         500,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list available inventory: %w", err)
	}

	grouped := map[string][]*cultivation.InventoryItem{
		cultivation.ItemTypeSyringe: {},
		cultivation.ItemTypeSpawn:   {},
		cultivation.ItemTypeBulk:    {},
		cultivation.ItemTypeOther:   {},
	}
	for _, item := range items {
		grouped[item.Type] = append(grouped[item.Type], item)
	}
	return grouped, nil
}

// Create stores a new inventory item for the user. New items always start
// available.
func (s *InventoryService) Create(userID int64, item *cultivation.InventoryItem) (*cultivation.InventoryItem, error) {
	if item == nil || !validItemTypes[item.Type] {
		return nil, fmt.Errorf("%w: a valid item type is required", ErrInvalidInput)
	}
	if item.SourceDate == "" {
		return nil, fmt.Errorf("%w: source date is required", ErrInvalidInput)
	}

	item.UserID = userID
	item.InUse = false
	item.GrowID = nil
	if err := s.inventoryRepo.Store(item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

// Update overwrites one of the user's inventory items. In-use items reject
// mutation until their grow releases them.
func (s *InventoryService) Update(userID, id int64, item *cultivation.InventoryItem) (*cultivation.InventoryItem, error) {
	if item == nil || !validItemTypes[item.Type] {
		return nil, fmt.Errorf("%w: a valid item type is required", ErrInvalidInput)
	}

	existing, err := s.inventoryRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify inventory item %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
	}
	if existing.InUse {
		return nil, fmt.Errorf("%w: inventory item %d is in use by a grow", ErrConflict, id)
	}

	item.ID = id
	item.UserID = userID
	item.InUse = existing.InUse
	item.GrowID = existing.GrowID
	if err := s.inventoryRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item %d: %w", id, err)
	}
	return item, nil
}

// Delete removes one of the user's inventory items. In-use items cannot be
// deleted.
func (s *InventoryService) Delete(userID, id int64) error {
	existing, err := s.inventoryRepo.FindByID(userID, id)
	if err != nil {
		return fmt.Errorf("failed to verify inventory item %d: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
	}
	if existing.InUse {
		return fmt.Errorf("%w: inventory item %d is in use by a grow", ErrConflict, id)
	}

	if err := s.inventoryRepo.Delete(userID, id); err != nil {
		return fmt.Errorf("failed to delete inventory item %d: %w", id, err)
	}
	return nil
}
