package cultivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
)

func newCalendarFixture(t *testing.T) (*CalendarRepository, *GrowRepository) {
	t.Helper()
	db, logger := openTestDB(t)
	return NewCalendarRepository(db, logger), NewGrowRepository(db, logger)
}

func newTask(growID int64, parentTaskID, date string) *cultivation.CalendarTask {
	return &cultivation.CalendarTask{
		ParentTaskID: parentTaskID,
		GrowID:       growID,
		Action:       "Mist the substrate",
		StageKey:     "fruiting",
		Date:         date,
		Time:         "09:00",
		Status:       cultivation.TaskStatusPending,
	}
}

func TestCalendarStoreAndFindThroughGrowOwnership(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	task := newTask(grow.ID, "tek-task-1", "2026-08-25")
	require.NoError(t, calRepo.Store(task))
	assert.NotZero(t, task.ID)

	found, err := calRepo.FindByID(1, task.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Mist the substrate", found.Action)
	assert.Equal(t, "fruiting", found.StageKey)
	assert.Equal(t, cultivation.TaskStatusPending, found.Status)

	// Tasks have no user column; ownership resolves through the grow.
	other, err := calRepo.FindByID(2, task.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestCalendarFindAllOrdersByDateAndFiltersByGrow(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	growA := storeGrow(t, growRepo, 1, "P. cubensis")
	growB := storeGrow(t, growRepo, 1, "P. ostreatus")

	require.NoError(t, calRepo.Store(newTask(growA.ID, "p1", "2026-08-27")))
	require.NoError(t, calRepo.Store(newTask(growA.ID, "p1", "2026-08-25")))
	require.NoError(t, calRepo.Store(newTask(growB.ID, "p2", "2026-08-26")))

	all, err := calRepo.FindAll(1, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-08-25", all[0].Date)
	assert.Equal(t, "2026-08-26", all[1].Date)
	assert.Equal(t, "2026-08-27", all[2].Date)

	scoped, err := calRepo.FindAll(1, &growB.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, growB.ID, scoped[0].GrowID)

	none, err := calRepo.FindAll(2, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCalendarStoreBulkAssignsIDs(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	tasks := []*cultivation.CalendarTask{
		newTask(grow.ID, "p1", "2026-08-25"),
		newTask(grow.ID, "p1", "2026-08-26"),
		newTask(grow.ID, "p1", "2026-08-27"),
	}
	require.NoError(t, calRepo.StoreBulk(tasks))

	for _, task := range tasks {
		assert.NotZero(t, task.ID)
	}

	all, err := calRepo.FindAll(1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCalendarStoreBulkEmptyIsNoOp(t *testing.T) {
	calRepo, _ := newCalendarFixture(t)
	require.NoError(t, calRepo.StoreBulk(nil))
}

func TestCalendarUpdate(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	task := newTask(grow.ID, "p1", "2026-08-25")
	require.NoError(t, calRepo.Store(task))

	task.Status = cultivation.TaskStatusCompleted
	task.Time = "18:30"
	require.NoError(t, calRepo.Update(task))

	found, err := calRepo.FindByID(1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, cultivation.TaskStatusCompleted, found.Status)
	assert.Equal(t, "18:30", found.Time)
}

func TestCalendarDeleteScopedToOwner(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	task := newTask(grow.ID, "p1", "2026-08-25")
	require.NoError(t, calRepo.Store(task))

	require.NoError(t, calRepo.Delete(2, task.ID))
	found, err := calRepo.FindByID(1, task.ID)
	require.NoError(t, err)
	require.NotNil(t, found, "wrong owner must not delete")

	require.NoError(t, calRepo.Delete(1, task.ID))
	found, err = calRepo.FindByID(1, task.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCalendarDeleteByParentTask(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	require.NoError(t, calRepo.Store(newTask(grow.ID, "p1", "2026-08-25")))
	require.NoError(t, calRepo.Store(newTask(grow.ID, "p1", "2026-08-26")))
	require.NoError(t, calRepo.Store(newTask(grow.ID, "p2", "2026-08-27")))

	deleted, err := calRepo.DeleteByParentTask(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := calRepo.FindAll(1, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "p2", remaining[0].ParentTaskID)
}

func TestCalendarOwnsGrow(t *testing.T) {
	calRepo, growRepo := newCalendarFixture(t)
	grow := storeGrow(t, growRepo, 1, "P. cubensis")

	owns, err := calRepo.OwnsGrow(1, grow.ID)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = calRepo.OwnsGrow(2, grow.ID)
	require.NoError(t, err)
	assert.False(t, owns)
}
