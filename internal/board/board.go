// Package board groups tasks into status columns and tracks a single
// drag of a card between them.
package board

import (
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

// Column is one status lane of the board
type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Columns groups tasks by status in board order. Tasks with a status
// outside models.Statuses are left off the board.
func Columns(tasks []models.Task) []Column {
	cols := make([]Column, len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = Column{Status: s}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// ColumnAt maps an x offset inside a board of the given width to the
// column under it.
func ColumnAt(x, width int) (models.Status, bool) {
	if width <= 0 || x < 0 || x >= width {
		return "", false
	}
	n := len(models.Statuses)
	i := x * n / width
	return models.Statuses[i], true
}

type state int

const (
	idle state = iota
	dragging
)

// Drag is the Idle -> Dragging -> Idle state machine for one card
type Drag struct {
	state  state
	taskID int64
	origin models.Status
	target models.Status
}

// Begin picks up t. Any drag already in progress is replaced.
func (d *Drag) Begin(t models.Task) {
	d.state = dragging
	d.taskID = t.ID
	d.origin = t.Status
	d.target = t.Status
}

func (d *Drag) Active() bool {
	return d.state == dragging
}

// TaskID is the card being dragged, 0 when idle
func (d *Drag) TaskID() int64 {
	if d.state != dragging {
		return 0
	}
	return d.taskID
}

// Target is the column the card would land in
func (d *Drag) Target() models.Status {
	return d.target
}

// Move shifts the target column by delta, clamped to the board
func (d *Drag) Move(delta int) {
	if d.state != dragging {
		return
	}
	i := 0
	for j, s := range models.Statuses {
		if s == d.target {
			i = j
			break
		}
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i >= len(models.Statuses) {
		i = len(models.Statuses) - 1
	}
	d.target = models.Statuses[i]
}

// Hover sets the target column directly
func (d *Drag) Hover(status models.Status) {
	if d.state == dragging {
		d.target = status
	}
}

// Drop ends the drag over status. It returns the update to send only when
// the task still exists in snap and its cached status differs from status.
// The body is the cached task with the status replaced.
func (d *Drag) Drop(status models.Status, snap cache.Snapshot) (models.TaskInput, int64, bool) {
	if d.state != dragging {
		return models.TaskInput{}, 0, false
	}
	id := d.taskID
	d.Cancel()

	t, ok := snap.Task(id)
	if !ok || t.Status == status {
		return models.TaskInput{}, 0, false
	}
	in := t.Input()
	in.Status = status
	return in, id, true
}

// Cancel abandons the drag without side effects
func (d *Drag) Cancel() {
	*d = Drag{}
}
