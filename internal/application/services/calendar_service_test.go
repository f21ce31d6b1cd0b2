package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
)

// fakeCalendarRepo is an in-memory CalendarRepository. Ownership is modeled
// with an explicit grow-to-owner map, mirroring how the real repository
// resolves ownership through the grows table.
type fakeCalendarRepo struct {
	nextID     int64
	tasks      map[int64]*cultivation.CalendarTask
	growOwners map[int64]int64
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{
		tasks:      make(map[int64]*cultivation.CalendarTask),
		growOwners: make(map[int64]int64),
	}
}

func (r *fakeCalendarRepo) FindByID(userID, id int64) (*cultivation.CalendarTask, error) {
	task, ok := r.tasks[id]
	if !ok || r.growOwners[task.GrowID] != userID {
		return nil, nil
	}
	clone := *task
	return &clone, nil
}

func (r *fakeCalendarRepo) FindAll(userID int64, growID *int64) ([]*cultivation.CalendarTask, error) {
	var result []*cultivation.CalendarTask
	for _, task := range r.tasks {
		if r.growOwners[task.GrowID] != userID {
			continue
		}
		if growID != nil && task.GrowID != *growID {
			continue
		}
		clone := *task
		result = append(result, &clone)
	}
	return result, nil
}

func (r *fakeCalendarRepo) Store(task *cultivation.CalendarTask) error {
	r.nextID++
	task.ID = r.nextID
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeCalendarRepo) StoreBulk(tasks []*cultivation.CalendarTask) error {
	for _, task := range tasks {
		if err := r.Store(task); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCalendarRepo) Update(task *cultivation.CalendarTask) error {
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeCalendarRepo) Delete(userID, id int64) error {
	if task, ok := r.tasks[id]; ok && r.growOwners[task.GrowID] == userID {
		delete(r.tasks, id)
	}
	return nil
}

func (r *fakeCalendarRepo) DeleteByParentTask(userID int64, parentTaskID string) (int64, error) {
	var deleted int64
	for id, task := range r.tasks {
		if task.ParentTaskID == parentTaskID && r.growOwners[task.GrowID] == userID {
			delete(r.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeCalendarRepo) OwnsGrow(userID, growID int64) (bool, error) {
	return r.growOwners[growID] == userID, nil
}

func calendarTask(growID int64, date string) *cultivation.CalendarTask {
	return &cultivation.CalendarTask{
		ParentTaskID: "tek-task-1",
		GrowID:       growID,
		Action:       "Mist the substrate",
		StageKey:     "fruiting",
		Date:         date,
		Time:         "09:00",
	}
}

func TestCalendarCreateDefaultsToPending(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	created, err := svc.Create(1, calendarTask(10, "2026-08-25"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, cultivation.TaskStatusPending, created.Status)
}

func TestCalendarCreateRejectsForeignGrow(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 2
	svc := NewCalendarService(repo)

	_, err := svc.Create(1, calendarTask(10, "2026-08-25"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalendarCreateValidatesInput(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	missingAction := calendarTask(10, "2026-08-25")
	missingAction.Action = ""
	_, err := svc.Create(1, missingAction)
	assert.ErrorIs(t, err, ErrInvalidInput)

	badDate := calendarTask(10, "25/08/2026")
	_, err = svc.Create(1, badDate)
	assert.ErrorIs(t, err, ErrInvalidInput)

	noDate := calendarTask(10, "")
	_, err = svc.Create(1, noDate)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalendarCreateBatch(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	tasks := []*cultivation.CalendarTask{
		calendarTask(10, "2026-08-25"),
		calendarTask(10, "2026-08-26"),
	}
	created, err := svc.CreateBatch(1, tasks)
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, task := range created {
		assert.NotZero(t, task.ID)
		assert.Equal(t, cultivation.TaskStatusPending, task.Status)
	}
}

func TestCalendarCreateBatchRejectsWhenAnyGrowIsForeign(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	repo.growOwners[11] = 2
	svc := NewCalendarService(repo)

	tasks := []*cultivation.CalendarTask{
		calendarTask(10, "2026-08-25"),
		calendarTask(11, "2026-08-26"),
	}
	_, err := svc.CreateBatch(1, tasks)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.tasks, "nothing should be stored when any grow fails ownership")
}

func TestCalendarUpdateMergesFields(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	created, err := svc.Create(1, calendarTask(10, "2026-08-25"))
	require.NoError(t, err)

	updated, err := svc.Update(1, created.ID, &cultivation.CalendarTask{Status: cultivation.TaskStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, cultivation.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Mist the substrate", updated.Action)
	assert.Equal(t, "2026-08-25", updated.Date)
}

func TestCalendarUpdateRejectsUnknownStatus(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	created, err := svc.Create(1, calendarTask(10, "2026-08-25"))
	require.NoError(t, err)

	_, err = svc.Update(1, created.ID, &cultivation.CalendarTask{Status: "postponed"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalendarUpdateNotFoundForForeignTask(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 2
	svc := NewCalendarService(repo)

	foreign := calendarTask(10, "2026-08-25")
	require.NoError(t, repo.Store(foreign))

	_, err := svc.Update(1, foreign.ID, &cultivation.CalendarTask{Status: cultivation.TaskStatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalendarDeleteByParentTask(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.growOwners[10] = 1
	svc := NewCalendarService(repo)

	_, err := svc.Create(1, calendarTask(10, "2026-08-25"))
	require.NoError(t, err)
	_, err = svc.Create(1, calendarTask(10, "2026-08-26"))
	require.NoError(t, err)

	deleted, err := svc.DeleteByParentTask(1, "tek-task-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.DeleteByParentTask(1, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
