package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
)

// TekService orchestrates shareable tek operations: visibility rules,
// view/import counters, and creator-only mutation.
type TekService struct {
	tekRepo repositories.TekRepository
	logger  *logging.ChanneledLogger
}

// NewTekService creates a new tek application service.
func NewTekService(tekRepo repositories.TekRepository, logger *logging.ChanneledLogger) *TekService {
	return &TekService{
		tekRepo: tekRepo,
		logger:  logger,
	}
}

// GetByID returns a tek the user may read and bumps its view counter.
func (s *TekService) GetByID(userID, id int64) (*cultivation.Tek, error) {
	t, err := s.tekRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tek %d: %w", id, err)
	}
	if t == nil || !t.VisibleTo(userID) {
		// Hidden teks read as missing so existence never leaks.
		return nil, fmt.Errorf("%w: tek %d", ErrNotFound, id)
	}

	if t.CreatedBy != userID {
		if err := s.tekRepo.IncrementViewCount(id); err != nil {
			s.logger.Cultivation().Warn("Failed to bump tek view count", "tekId", id, "error", err.Error())
		} else {
			t.ViewCount++
		}
	}
	return t, nil
}

// List returns every tek visible to the user: public ones plus their own.
func (s *TekService) List(userID int64, offset, limit int) ([]*cultivation.Tek, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	teks, err := s.tekRepo.FindVisible(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list teks: %w", err)
	}
	return teks, nil
}

// ListMine returns only the user's own teks, private ones included.
func (s *TekService) ListMine(userID int64, offset, limit int) ([]*cultivation.Tek, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	teks, err := s.tekRepo.FindByCreator(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list teks: %w", err)
	}
	return teks, nil
}

// Create stores a new tek owned by the user.
func (s *TekService) Create(userID int64, t *cultivation.Tek) (*cultivation.Tek, error) {
	if t == nil || t.Name == "" || t.Species == "" {
		return nil, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}

	t.CreatedBy = userID
	if err := s.tekRepo.Store(t); err != nil {
		return nil, fmt.Errorf("failed to create tek: %w", err)
	}

	s.logger.Cultivation().Info("Tek created", "tekId", t.ID, "createdBy", userID, "public", t.IsPublic)
	return t, nil
}

// Update overwrites a tek. Only the creator may mutate it.
func (s *TekService) Update(userID, id int64, t *cultivation.Tek) (*cultivation.Tek, error) {
	if t == nil || t.Name == "" || t.Species == "" {
		return nil, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}

	existing, err := s.tekRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify tek %d: %w", id, err)
	}
	if existing == nil || !existing.VisibleTo(userID) {
		return nil, fmt.Errorf("%w: tek %d", ErrNotFound, id)
	}
	if existing.CreatedBy != userID {
		return nil, fmt.Errorf("%w: only the creator may modify a tek", ErrForbidden)
	}

	t.ID = id
	t.CreatedBy = existing.CreatedBy
	if err := s.tekRepo.Update(t); err != nil {
		return nil, fmt.Errorf("failed to update tek %d: %w", id, err)
	}
	return t, nil
}

// Delete removes a tek. Only the creator may delete it.
func (s *TekService) Delete(userID, id int64) error {
	existing, err := s.tekRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("failed to verify tek %d: %w", id, err)
	}
	if existing == nil || !existing.VisibleTo(userID) {
		return fmt.Errorf("%w: tek %d", ErrNotFound, id)
	}
	if existing.CreatedBy != userID {
		return fmt.Errorf("%w: only the creator may delete a tek", ErrForbidden)
	}

	if err := s.tekRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete tek %d: %w", id, err)
	}
	return nil
}

// RecordImport bumps a tek's import counter when a user pulls it into a grow.
func (s *TekService) RecordImport(userID, id int64) error {
	existing, err := s.tekRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("failed to verify tek %d: %w", id, err)
	}
	if existing == nil || !existing.VisibleTo(userID) {
		return fmt.Errorf("%w: tek %d", ErrNotFound, id)
	}

	if err := s.tekRepo.IncrementImportCount(id); err != nil {
		return fmt.Errorf("failed to record tek import: %w", err)
	}
	return nil
}
