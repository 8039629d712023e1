package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

func task(id int64, status models.Status) models.Task {
	return models.Task{ID: id, TaskInput: models.TaskInput{
		Title:     "card",
		Status:    status,
		Priority:  models.PriorityHigh,
		ProjectID: 3,
		DueDate:   "2026-12-24",
	}}
}

func TestColumns(t *testing.T) {
	tasks := []models.Task{
		task(1, models.StatusCompleted),
		task(2, models.StatusPending),
		task(3, "Archivada"),
		task(4, models.StatusPending),
	}

	cols := board.Columns(tasks)
	require.Len(t, cols, 4)
	for i, s := range models.Statuses {
		assert.Equal(t, s, cols[i].Status)
	}
	assert.Len(t, cols[0].Tasks, 2)
	assert.Empty(t, cols[1].Tasks)
	assert.Len(t, cols[2].Tasks, 1)
	assert.Empty(t, cols[3].Tasks)
}

func TestDrop_ChangesOnlyStatus(t *testing.T) {
	snap := cache.Snapshot{Tasks: []models.Task{task(9, models.StatusPending)}}

	var d board.Drag
	d.Begin(snap.Tasks[0])
	assert.True(t, d.Active())
	assert.Equal(t, int64(9), d.TaskID())

	in, id, ok := d.Drop(models.StatusCompleted, snap)
	require.True(t, ok)
	assert.Equal(t, int64(9), id)

	want := snap.Tasks[0].Input()
	want.Status = models.StatusCompleted
	assert.Equal(t, want, in)
	assert.False(t, d.Active())
}

func TestDrop_NoIntent(t *testing.T) {
	pending := task(9, models.StatusPending)

	tests := []struct {
		name   string
		snap   cache.Snapshot
		target models.Status
	}{
		{name: "same column", snap: cache.Snapshot{Tasks: []models.Task{pending}}, target: models.StatusPending},
		{name: "task vanished", snap: cache.Snapshot{}, target: models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d board.Drag
			d.Begin(pending)
			_, _, ok := d.Drop(tt.target, tt.snap)
			assert.False(t, ok)
			assert.False(t, d.Active())
		})
	}
}

func TestDrop_UsesCachedStatus(t *testing.T) {
	// the card was picked up as Pending but a refresh moved it meanwhile
	snap := cache.Snapshot{Tasks: []models.Task{task(9, models.StatusCompleted)}}
	var d board.Drag
	d.Begin(task(9, models.StatusPending))

	_, _, ok := d.Drop(models.StatusCompleted, snap)
	assert.False(t, ok)
}

func TestDropWhileIdle(t *testing.T) {
	var d board.Drag
	_, _, ok := d.Drop(models.StatusCompleted, cache.Snapshot{Tasks: []models.Task{task(1, models.StatusPending)}})
	assert.False(t, ok)
}

func TestCancel(t *testing.T) {
	var d board.Drag
	d.Begin(task(1, models.StatusPending))
	d.Cancel()
	assert.False(t, d.Active())
	assert.Zero(t, d.TaskID())
}

func TestMoveClamps(t *testing.T) {
	var d board.Drag
	d.Begin(task(1, models.StatusPending))

	d.Move(-1)
	assert.Equal(t, models.StatusPending, d.Target())
	d.Move(2)
	assert.Equal(t, models.StatusCompleted, d.Target())
	d.Move(5)
	assert.Equal(t, models.StatusBlocked, d.Target())
}

func TestColumnAt(t *testing.T) {
	s, ok := board.ColumnAt(0, 80)
	assert.True(t, ok)
	assert.Equal(t, models.StatusPending, s)

	s, ok = board.ColumnAt(79, 80)
	assert.True(t, ok)
	assert.Equal(t, models.StatusBlocked, s)

	s, ok = board.ColumnAt(45, 80)
	assert.True(t, ok)
	assert.Equal(t, models.StatusCompleted, s)

	_, ok = board.ColumnAt(80, 80)
	assert.False(t, ok)
	_, ok = board.ColumnAt(-1, 80)
	assert.False(t, ok)
}
