package forms

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

// ErrRequired is returned when a required field is blank
var ErrRequired = errors.New("required field is empty")

// Mode is create or edit, decided by whether a selection is set
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Submission is the request a submit turns into
type Submission[T any] struct {
	Create bool
	ID     int64 // target of an update; 0 on create
	Input  T
}

// TaskForm holds the task form fields and the selected task
type TaskForm struct {
	SelectedID  int64
	Title       string
	Description string
	Status      models.Status
	Priority    models.Priority
	ProjectID   int64
	AssignedTo  int64
	DueDate     string
	Hours       string
}

// NewTaskForm returns an empty form in create mode
func NewTaskForm() TaskForm {
	f := TaskForm{}
	f.Clear()
	return f
}

func (f TaskForm) Mode() Mode {
	if f.SelectedID != 0 {
		return ModeEdit
	}
	return ModeCreate
}

// Select fills the form from a cached task and switches to edit mode
func (f *TaskForm) Select(t models.Task) {
	f.SelectedID = t.ID
	f.Title = t.Title
	f.Description = t.Description
	f.Status = t.Status
	f.Priority = t.Priority
	f.ProjectID = t.ProjectID
	f.AssignedTo = t.AssignedTo
	f.DueDate = t.DueDate
	f.Hours = ""
	if t.EstimatedHours != 0 {
		f.Hours = strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)
	}
}

// Clear resets every field and the selection
func (f *TaskForm) Clear() {
	*f = TaskForm{Status: models.StatusPending, Priority: models.PriorityMedium}
}

// Reconcile clears the form when its selection no longer exists in snap.
// It reports whether the selection was dropped.
func (f *TaskForm) Reconcile(snap cache.Snapshot) bool {
	if f.SelectedID == 0 {
		return false
	}
	if _, ok := snap.Task(f.SelectedID); ok {
		return false
	}
	f.Clear()
	return true
}

// Input builds the request body. Unset references are 0 and unparseable
// hours are 0; anything else is left for the server to judge.
func (f TaskForm) Input() models.TaskInput {
	hours, err := strconv.ParseFloat(strings.TrimSpace(f.Hours), 64)
	if err != nil {
		hours = 0
	}
	status := f.Status
	if status == "" {
		status = models.StatusPending
	}
	priority := f.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	return models.TaskInput{
		Title:          strings.TrimSpace(f.Title),
		Description:    f.Description,
		Status:         status,
		Priority:       priority,
		ProjectID:      f.ProjectID,
		AssignedTo:     f.AssignedTo,
		DueDate:        strings.TrimSpace(f.DueDate),
		EstimatedHours: hours,
	}
}

// Submit decides between create and update
func (f TaskForm) Submit() (Submission[models.TaskInput], error) {
	in := f.Input()
	if in.Title == "" {
		return Submission[models.TaskInput]{}, ErrRequired
	}
	return Submission[models.TaskInput]{Create: f.Mode() == ModeCreate, ID: f.SelectedID, Input: in}, nil
}

// ProjectForm holds the project form fields and the selected project
type ProjectForm struct {
	SelectedID  int64
	Name        string
	Description string
}

func (f ProjectForm) Mode() Mode {
	if f.SelectedID != 0 {
		return ModeEdit
	}
	return ModeCreate
}

func (f *ProjectForm) Select(p models.Project) {
	f.SelectedID = p.ID
	f.Name = p.Name
	f.Description = p.Description
}

func (f *ProjectForm) Clear() {
	*f = ProjectForm{}
}

// Reconcile clears the form when its selection no longer exists in snap
func (f *ProjectForm) Reconcile(snap cache.Snapshot) bool {
	if f.SelectedID == 0 {
		return false
	}
	if _, ok := snap.Project(f.SelectedID); ok {
		return false
	}
	f.Clear()
	return true
}

func (f ProjectForm) Input() models.ProjectInput {
	return models.ProjectInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
}

func (f ProjectForm) Submit() (Submission[models.ProjectInput], error) {
	in := f.Input()
	if in.Name == "" {
		return Submission[models.ProjectInput]{}, ErrRequired
	}
	return Submission[models.ProjectInput]{Create: f.Mode() == ModeCreate, ID: f.SelectedID, Input: in}, nil
}
