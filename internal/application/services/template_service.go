package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
)

// TemplateService orchestrates monotub tek template operations.
type TemplateService struct {
	templateRepo repositories.TemplateRepository
	growRepo     repositories.GrowRepository
}

// NewTemplateService creates a new template application service.
func NewTemplateService(templateRepo repositories.TemplateRepository, growRepo repositories.GrowRepository) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		growRepo:     growRepo,
	}
}

// GetByID returns a template the user may read.
func (s *TemplateService) GetByID(userID, id int64) (*cultivation.Template, error) {
	t, err := s.templateRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template %d: %w", id, err)
	}
	if t == nil || !t.VisibleTo(userID) {
		return nil, fmt.Errorf("%w: template %d", ErrNotFound, id)
	}
	return t, nil
}

// ListPublic returns the public template catalog, optionally filtered by
// species, most-used first.
func (s *TemplateService) ListPublic(species string, offset, limit int) ([]*cultivation.Template, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	templates, err := s.templateRepo.FindPublic(species, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// ListMine returns the user's own templates.
func (s *TemplateService) ListMine(userID int64, offset, limit int) ([]*cultivation.Template, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	templates, err := s.templateRepo.FindByCreator(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Create stores a new template owned by the user.
func (s *TemplateService) Create(userID int64, t *cultivation.Template) (*cultivation.Template, error) {
	if t == nil || t.Name == "" || t.Species == "" {
		return nil, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}
	if t.SpawnType == "" || t.BulkType == "" || t.SpawnAmount <= 0 || t.BulkAmount <= 0 {
		return nil, fmt.Errorf("%w: spawn and bulk inputs are required", ErrInvalidInput)
	}
	if t.TekType == "" {
		t.TekType = cultivation.DefaultTekType
	}

	t.CreatedBy = userID
	if err := s.templateRepo.Store(t); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return t, nil
}

// Update overwrites a template. Only the creator may mutate it.
func (s *TemplateService) Update(userID, id int64, t *cultivation.Template) (*cultivation.Template, error) {
	if t == nil || t.Name == "" || t.Species == "" {
		return nil, fmt.Errorf("%w: name and species are required", ErrInvalidInput)
	}

	existing, err := s.templateRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify template %d: %w", id, err)
	}
	if existing == nil || !existing.VisibleTo(userID) {
		return nil, fmt.Errorf("%w: template %d", ErrNotFound, id)
	}
	if existing.CreatedBy != userID {
		return nil, fmt.Errorf("%w: only the creator may modify a template", ErrForbidden)
	}

	t.ID = id
	t.CreatedBy = existing.CreatedBy
	if t.TekType == "" {
		t.TekType = existing.TekType
	}
	if err := s.templateRepo.Update(t); err != nil {
		return nil, fmt.Errorf("failed to update template %d: %w", id, err)
	}
	return t, nil
}

// Delete removes a template. Only the creator may delete it.
func (s *TemplateService) Delete(userID, id int64) error {
	existing, err := s.templateRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("failed to verify template %d: %w", id, err)
	}
	if existing == nil || !existing.VisibleTo(userID) {
		return fmt.Errorf("%w: template %d", ErrNotFound, id)
	}
	if existing.CreatedBy != userID {
		return fmt.Errorf("%w: only the creator may delete a template", ErrForbidden)
	}

	if err := s.templateRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete template %d: %w", id, err)
	}
	return nil
}

// CreateFromGrow seeds a new template from one of the user's existing grows.
// The request supplies the name and the spawn/bulk amounts; species, variant,
// and substrate types default to the grow's values when absent.
func (s *TemplateService) CreateFromGrow(userID, growID int64, t *cultivation.Template) (*cultivation.Template, error) {
	g, err := s.growRepo.FindByID(userID, growID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grow %d: %w", growID, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: grow %d", ErrNotFound, growID)
	}

	if t == nil {
		t = &cultivation.Template{}
	}
	if t.Species == "" {
		t.Species = g.Species
	}
	if t.Variant == "" {
		t.Variant = g.Variant
	}
	if t.SpawnType == "" {
		t.SpawnType = g.SpawnSubstrate
	}
	if t.BulkType == "" {
		t.BulkType = g.BulkSubstrate
	}
	return s.Create(userID, t)
}

// InstantiateGrow creates a grow from a template and bumps the template's
// usage counter.
func (s *TemplateService) InstantiateGrow(userID, templateID int64, inoculationDate string) (*cultivation.Grow, error) {
	t, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template %d: %w", templateID, err)
	}
	if t == nil || !t.VisibleTo(userID) {
		return nil, fmt.Errorf("%w: template %d", ErrNotFound, templateID)
	}

	g := &cultivation.Grow{
		Species:         t.Species,
		Variant:         t.Variant,
		InoculationDate: inoculationDate,
		SpawnSubstrate:  t.SpawnType,
		BulkSubstrate:   t.BulkType,
		UserID:          userID,
	}
	if err := s.growRepo.Store(g); err != nil {
		return nil, fmt.Errorf("failed to create grow from template %d: %w", templateID, err)
	}

	if err := s.templateRepo.IncrementUsageCount(templateID); err != nil {
		return nil, fmt.Errorf("failed to record template usage: %w", err)
	}
	return g, nil
}
