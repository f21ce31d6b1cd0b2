package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
)

// GrowService orchestrates grow CRUD. Every operation is scoped to the
// authenticated user; a grow belonging to someone else reads as not found.
type GrowService struct {
	growRepo      repositories.GrowRepository
	inventoryRepo repositories.InventoryRepository
}

// NewGrowService creates a new grow application service.
func NewGrowService(growRepo repositories.GrowRepository, inventoryRepo repositories.InventoryRepository) *GrowService {
	return &GrowService{
		growRepo:      growRepo,
		inventoryRepo: inventoryRepo,
	}
}

// GetByID returns one of the user's grows.
func (s *GrowService) GetByID(userID, id int64) (*cultivation.Grow, error) {
	g, err := s.growRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get grow %d: %w", id, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: grow %d", ErrNotFound, id)
	}
	return g, nil
}

// List returns a page of the user's grows.
func (s *GrowService) List(userID int64, offset, limit int) ([]*cultivation.Grow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	grows, err := s.growRepo.FindAll(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list grows: %w", err)
	}
	return grows, nil
}

// Create stores a new grow for the user.
func (s *GrowService) Create(userID int64, g *cultivation.Grow) (*cultivation.Grow, error) {
	if g == nil || g.Species == "" {
		return nil, fmt.Errorf("%w: species is required", ErrInvalidInput)
	}

	g.UserID = userID
	if err := s.growRepo.Store(g); err != nil {
		return nil, fmt.Errorf("failed to create grow: %w", err)
	}
	return g, nil
}

// Update overwrites one of the user's grows.
func (s *GrowService) Update(userID, id int64, g *cultivation.Grow) (*cultivation.Grow, error) {
	if g == nil || g.Species == "" {
		return nil, fmt.Errorf("%w: species is required", ErrInvalidInput)
	}

	existing, err := s.growRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify grow %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: grow %d", ErrNotFound, id)
	}

	g.ID = id
	g.UserID = userID
	if err := s.growRepo.Update(g); err != nil {
		return nil, fmt.Errorf("failed to update grow %d: %w", id, err)
	}
	return g, nil
}

// Delete removes one of the user's grows and releases any inventory items
// assigned to it.
func (s *GrowService) Delete(userID, id int64) error {
	existing, err := s.growRepo.FindByID(userID, id)
	if err != nil {
		return fmt.Errorf("failed to verify grow %d: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: grow %d", ErrNotFound, id)
	}

	items, err := s.inventoryRepo.FindAll(userID, repositories.InventoryFilter{Limit: 1000})
	if err != nil {
		return fmt.Errorf("failed to load inventory for grow %d: %w", id, err)
	}
	for _, item := range items {
		if item.GrowID != nil && *item.GrowID == id {
			item.GrowID = nil
			item.InUse = false
			if err := s.inventoryRepo.Update(item); err != nil {
				return fmt.Errorf("failed to release inventory item %d: %w", item.ID, err)
			}
		}
	}

	if err := s.growRepo.Delete(userID, id); err != nil {
		return fmt.Errorf("failed to delete grow %d: %w", id, err)
	}
	return nil
}

// AssignInventory links an available inventory item to a grow and marks it
// in-use.
func (s *GrowService) AssignInventory(userID, growID, itemID int64) (*cultivation.InventoryItem, error) {
	g, err := s.growRepo.FindByID(userID, growID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify grow %d: %w", growID, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: grow %d", ErrNotFound, growID)
	}

	item, err := s.inventoryRepo.FindByID(userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, itemID)
	}
	if !item.IsAvailable() {
		return nil, fmt.Errorf("%w: inventory item %d is already in use", ErrConflict, itemID)
	}

	item.GrowID = &growID
	item.InUse = true
	if err := s.inventoryRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to assign inventory item %d: %w", itemID, err)
	}
	return item, nil
}
