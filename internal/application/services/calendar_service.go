package services

import (
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
)

// CalendarService orchestrates calendar task instances. Ownership is checked
// through the task's grow; tasks on someone else's grow read as not found.
type CalendarService struct {
	calendarRepo repositories.CalendarRepository
}

// NewCalendarService creates a new calendar application service.
func NewCalendarService(calendarRepo repositories.CalendarRepository) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
	}
}

// GetByID returns one of the user's calendar tasks.
func (s *CalendarService) GetByID(userID, id int64) (*cultivation.CalendarTask, error) {
	task, err := s.calendarRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar task %d: %w", id, err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: calendar task %d", ErrNotFound, id)
	}
	return task, nil
}

// List returns the user's calendar tasks, optionally scoped to one grow,
// ordered by date and time.
func (s *CalendarService) List(userID int64, growID *int64) ([]*cultivation.CalendarTask, error) {
	tasks, err := s.calendarRepo.FindAll(userID, growID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar tasks: %w", err)
	}
	return tasks, nil
}

// Create stores a single task instance on one of the user's grows.
func (s *CalendarService) Create(userID int64, task *cultivation.CalendarTask) (*cultivation.CalendarTask, error) {
	if err := validateTask(task); err != nil {
		return nil, err
	}

	owns, err := s.calendarRepo.OwnsGrow(userID, task.GrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify grow %d: %w", task.GrowID, err)
	}
	if !owns {
		return nil, fmt.Errorf("%w: grow %d", ErrNotFound, task.GrowID)
	}

	if task.Status == "" {
		task.Status = cultivation.TaskStatusPending
	}
	if err := s.calendarRepo.Store(task); err != nil {
		return nil, fmt.Errorf("failed to create calendar task: %w", err)
	}
	return task, nil
}

// CreateBatch stores a set of generated task instances atomically. Every
// task must target a grow the user owns.
func (s *CalendarService) CreateBatch(userID int64, tasks []*cultivation.CalendarTask) ([]*cultivation.CalendarTask, error) {
	if len(tasks) == 0 {
		return []*cultivation.CalendarTask{}, nil
	}

	verified := map[int64]bool{}
	for _, task := range tasks {
		if err := validateTask(task); err != nil {
			return nil, err
		}
		if verified[task.GrowID] {
			continue
		}
		owns, err := s.calendarRepo.OwnsGrow(userID, task.GrowID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify grow %d: %w", task.GrowID, err)
		}
		if !owns {
			return nil, fmt.Errorf("%w: grow %d", ErrNotFound, task.GrowID)
		}
		verified[task.GrowID] = true
	}

	for _, task := range tasks {
		if task.Status == "" {
			task.Status = cultivation.TaskStatusPending
		}
	}
	if err := s.calendarRepo.StoreBulk(tasks); err != nil {
		return nil, fmt.Errorf("failed to create calendar tasks: %w", err)
	}
	return tasks, nil
}

// Update mutates one of the user's tasks, typically to mark it completed.
func (s *CalendarService) Update(userID, id int64, task *cultivation.CalendarTask) (*cultivation.CalendarTask, error) {
	existing, err := s.calendarRepo.FindByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify calendar task %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: calendar task %d", ErrNotFound, id)
	}

	if task.Status != "" && task.Status != cultivation.TaskStatusPending && task.Status != cultivation.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, task.Status)
	}

	merged := *existing
	if task.Action != "" {
		merged.Action = task.Action
	}
	if task.StageKey != "" {
		merged.StageKey = task.StageKey
	}
	if task.Date != "" {
		if _, err := time.Parse("2006-01-02", task.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		merged.Date = task.Date
	}
	if task.Time != "" {
		merged.Time = task.Time
	}
	if task.Status != "" {
		merged.Status = task.Status
	}

	if err := s.calendarRepo.Update(&merged); err != nil {
		return nil, fmt.Errorf("failed to update calendar task %d: %w", id, err)
	}
	return &merged, nil
}

// Delete removes a single task instance.
func (s *CalendarService) Delete(userID, id int64) error {
	existing, err := s.calendarRepo.FindByID(userID, id)
	if err != nil {
		return fmt.Errorf("failed to verify calendar task %d: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: calendar task %d", ErrNotFound, id)
	}

	if err := s.calendarRepo.Delete(userID, id); err != nil {
		return fmt.Errorf("failed to delete calendar task %d: %w", id, err)
	}
	return nil
}

// DeleteByParentTask removes every instance generated from one tek stage
// task and reports how many were removed.
func (s *CalendarService) DeleteByParentTask(userID int64, parentTaskID string) (int64, error) {
	if parentTaskID == "" {
		return 0, fmt.Errorf("%w: parent task id is required", ErrInvalidInput)
	}
	deleted, err := s.calendarRepo.DeleteByParentTask(userID, parentTaskID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete calendar tasks: %w", err)
	}
	return deleted, nil
}

func validateTask(task *cultivation.CalendarTask) error {
	if task == nil || task.Action == "" || task.GrowID == 0 {
		return fmt.Errorf("%w: action and grow id are required", ErrInvalidInput)
	}
	if task.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", task.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}
