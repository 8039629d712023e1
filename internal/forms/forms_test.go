package forms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/models"
)

func sampleTask() models.Task {
	return models.Task{
		ID: 7,
		TaskInput: models.TaskInput{
			Title:          "Write docs",
			Description:    "README and guides",
			Status:         models.StatusInProgress,
			Priority:       models.PriorityHigh,
			ProjectID:      2,
			AssignedTo:     1,
			DueDate:        "2026-11-01",
			EstimatedHours: 3.5,
		},
	}
}

func TestTaskForm_NewIsCreateMode(t *testing.T) {
	f := forms.NewTaskForm()
	assert.Equal(t, forms.ModeCreate, f.Mode())
	assert.Equal(t, models.StatusPending, f.Status)
	assert.Equal(t, models.PriorityMedium, f.Priority)
}

func TestTaskForm_SelectEntersEditMode(t *testing.T) {
	f := forms.NewTaskForm()
	f.Select(sampleTask())

	assert.Equal(t, forms.ModeEdit, f.Mode())
	assert.Equal(t, int64(7), f.SelectedID)
	assert.Equal(t, "3.5", f.Hours)
	assert.Equal(t, sampleTask().Input(), f.Input())
}

func TestTaskForm_ClearReturnsToCreateMode(t *testing.T) {
	f := forms.NewTaskForm()
	f.Select(sampleTask())
	f.Clear()

	assert.Equal(t, forms.ModeCreate, f.Mode())
	assert.Equal(t, forms.NewTaskForm(), f)
}

func TestTaskForm_InputDefaults(t *testing.T) {
	tests := []struct {
		name  string
		form  forms.TaskForm
		hours float64
	}{
		{name: "blank hours", form: forms.TaskForm{Title: "A"}, hours: 0},
		{name: "garbage hours", form: forms.TaskForm{Title: "A", Hours: "lots"}, hours: 0},
		{name: "decimal hours", form: forms.TaskForm{Title: "A", Hours: " 2.25 "}, hours: 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.form.Input()
			assert.Equal(t, tt.hours, in.EstimatedHours)
			assert.Equal(t, models.StatusPending, in.Status)
			assert.Equal(t, models.PriorityMedium, in.Priority)
			assert.Zero(t, in.ProjectID)
			assert.Zero(t, in.AssignedTo)
		})
	}
}

func TestTaskForm_Submit(t *testing.T) {
	f := forms.NewTaskForm()
	_, err := f.Submit()
	assert.ErrorIs(t, err, forms.ErrRequired)

	f.Title = "  New task  "
	sub, err := f.Submit()
	require.NoError(t, err)
	assert.True(t, sub.Create)
	assert.Zero(t, sub.ID)
	assert.Equal(t, "New task", sub.Input.Title)

	f.Select(sampleTask())
	sub, err = f.Submit()
	require.NoError(t, err)
	assert.False(t, sub.Create)
	assert.Equal(t, int64(7), sub.ID)
}

func TestTaskForm_ReconcileDropsStaleSelection(t *testing.T) {
	f := forms.NewTaskForm()
	f.Select(sampleTask())

	assert.False(t, f.Reconcile(cache.Snapshot{Tasks: []models.Task{sampleTask()}}))
	assert.Equal(t, forms.ModeEdit, f.Mode())

	assert.True(t, f.Reconcile(cache.Snapshot{}))
	assert.Equal(t, forms.ModeCreate, f.Mode())
	assert.Empty(t, f.Title)
}

func TestProjectForm(t *testing.T) {
	var f forms.ProjectForm
	assert.Equal(t, forms.ModeCreate, f.Mode())

	_, err := f.Submit()
	assert.ErrorIs(t, err, forms.ErrRequired)

	p := models.Project{ID: 3, ProjectInput: models.ProjectInput{Name: "Alpha", Description: "first"}}
	f.Select(p)
	sub, err := f.Submit()
	require.NoError(t, err)
	assert.False(t, sub.Create)
	assert.Equal(t, int64(3), sub.ID)
	assert.Equal(t, p.ProjectInput, sub.Input)

	assert.True(t, f.Reconcile(cache.Snapshot{}))
	assert.Equal(t, forms.ModeCreate, f.Mode())
}

func TestChoices(t *testing.T) {
	snap := cache.Snapshot{
		Projects: []models.Project{{ID: 4, ProjectInput: models.ProjectInput{Name: "Alpha"}}},
		Users:    []models.User{{ID: 1, Username: "admin"}, {ID: 2, Username: "ana"}},
	}

	projects := forms.ProjectChoices(snap)
	require.Len(t, projects, 2)
	assert.Equal(t, forms.Choice{ID: 0, Label: cache.NoProject}, projects[0])

	users := forms.UserChoices(snap)
	assert.Equal(t, int64(1), forms.Cycle(users, 0, 1))
	assert.Equal(t, int64(2), forms.Cycle(users, 0, -1))
	assert.Equal(t, int64(0), forms.Cycle(users, 2, 1))
	assert.Equal(t, "ana", forms.Label(users, 2, "?"))
	assert.Equal(t, "?", forms.Label(users, 99, "?"))
}

func TestCycleStatusWraps(t *testing.T) {
	assert.Equal(t, models.StatusInProgress, forms.CycleStatus(models.StatusPending, 1))
	assert.Equal(t, models.StatusBlocked, forms.CycleStatus(models.StatusPending, -1))
	assert.Equal(t, models.PriorityLow, forms.CyclePriority(models.PriorityCritical, 1))
}
