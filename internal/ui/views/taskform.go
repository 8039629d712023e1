package views

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldProject
	fieldAssignee
	fieldDueDate
	fieldHours
	fieldSave
	fieldCount
)

// TaskFormView edits a forms.TaskForm with text inputs and cycling selects
type TaskFormView struct {
	env  *Env
	form forms.TaskForm
	open bool

	title    textinput.Model
	desc     textarea.Model
	dueDate  textinput.Model
	hours    textinput.Model
	focusIdx int
}

func NewTaskFormView(env *Env) *TaskFormView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.CharLimit = 5000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	dueDate := textinput.New()
	dueDate.Placeholder = "YYYY-MM-DD"
	dueDate.CharLimit = 10

	hours := textinput.New()
	hours.Placeholder = "0"
	hours.CharLimit = 8

	return &TaskFormView{
		env:     env,
		form:    forms.NewTaskForm(),
		title:   title,
		desc:    desc,
		dueDate: dueDate,
		hours:   hours,
	}
}

// Open shows the form, editing t or creating when t is nil
func (v *TaskFormView) Open(t *models.Task) tea.Cmd {
	if t == nil {
		v.form.Clear()
	} else {
		v.form.Select(*t)
	}
	v.load()
	v.open = true
	v.focusIdx = fieldTitle
	v.updateFocus()
	return textinput.Blink
}

// Close hides the form and drops the selection
func (v *TaskFormView) Close() {
	v.open = false
	v.form.Clear()
	v.load()
}

func (v *TaskFormView) IsOpen() bool {
	return v.open
}

// Form returns the bound form state
func (v *TaskFormView) Form() forms.TaskForm {
	v.sync()
	return v.form
}

// Reconcile drops a selection the latest snapshot no longer has
func (v *TaskFormView) Reconcile(snap cache.Snapshot) {
	if v.form.Reconcile(snap) {
		v.open = false
		v.load()
	}
}

func (v *TaskFormView) SetWidth(width int) {
	inputWidth := clamp(width-18, 20, 60)
	v.desc.SetWidth(inputWidth)
}

// load copies the form into the inputs
func (v *TaskFormView) load() {
	v.title.SetValue(v.form.Title)
	v.desc.SetValue(v.form.Description)
	v.dueDate.SetValue(v.form.DueDate)
	v.hours.SetValue(v.form.Hours)
}

// sync copies the inputs into the form
func (v *TaskFormView) sync() {
	v.form.Title = v.title.Value()
	v.form.Description = v.desc.Value()
	v.form.DueDate = v.dueDate.Value()
	v.form.Hours = v.hours.Value()
}

func (v *TaskFormView) Init() tea.Cmd { return nil }

func (v *TaskFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	k := v.env.Keys

	switch {
	case key.Matches(keyMsg, k.Back):
		v.Close()
		return v, nil
	case key.Matches(keyMsg, k.Save):
		return v, v.submit()
	case key.Matches(keyMsg, k.Clear):
		v.form.Clear()
		v.load()
		return v, nil
	case key.Matches(keyMsg, k.Tab):
		v.cycleFocus(1)
		return v, nil
	case key.Matches(keyMsg, k.ShiftTab):
		v.cycleFocus(-1)
		return v, nil
	}

	if v.isSelect() {
		switch keyMsg.String() {
		case "left", "h":
			v.cycleValue(-1)
		case "right", "l", " ":
			v.cycleValue(1)
		case "enter", "down":
			v.cycleFocus(1)
		case "up":
			v.cycleFocus(-1)
		}
		return v, nil
	}

	if v.focusIdx == fieldSave {
		if key.Matches(keyMsg, k.Enter) {
			return v, v.submit()
		}
		return v, nil
	}

	if key.Matches(keyMsg, k.Enter) && v.focusIdx != fieldDescription {
		v.cycleFocus(1)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case fieldTitle:
		v.title, cmd = v.title.Update(msg)
	case fieldDescription:
		v.desc, cmd = v.desc.Update(msg)
	case fieldDueDate:
		v.dueDate, cmd = v.dueDate.Update(msg)
	case fieldHours:
		v.hours, cmd = v.hours.Update(msg)
	}
	return v, cmd
}

func (v *TaskFormView) isSelect() bool {
	switch v.focusIdx {
	case fieldStatus, fieldPriority, fieldProject, fieldAssignee:
		return true
	}
	return false
}

func (v *TaskFormView) cycleValue(delta int) {
	snap := v.env.Cache.Snapshot()
	switch v.focusIdx {
	case fieldStatus:
		v.form.Status = forms.CycleStatus(v.form.Status, delta)
	case fieldPriority:
		v.form.Priority = forms.CyclePriority(v.form.Priority, delta)
	case fieldProject:
		v.form.ProjectID = forms.Cycle(forms.ProjectChoices(snap), v.form.ProjectID, delta)
	case fieldAssignee:
		v.form.AssignedTo = forms.Cycle(forms.UserChoices(snap), v.form.AssignedTo, delta)
	}
}

func (v *TaskFormView) cycleFocus(dir int) {
	v.focusIdx = (v.focusIdx + dir + fieldCount) % fieldCount
	v.updateFocus()
}

func (v *TaskFormView) updateFocus() {
	v.title.Blur()
	v.desc.Blur()
	v.dueDate.Blur()
	v.hours.Blur()

	switch v.focusIdx {
	case fieldTitle:
		v.title.Focus()
	case fieldDescription:
		v.desc.Focus()
	case fieldDueDate:
		v.dueDate.Focus()
	case fieldHours:
		v.hours.Focus()
	}
}

func (v *TaskFormView) submit() tea.Cmd {
	v.sync()
	sub, err := v.form.Submit()
	if errors.Is(err, forms.ErrRequired) {
		return notice("Title is required", ToastError)
	}

	api := v.env.API
	if sub.Create {
		return v.env.Request(func(ctx context.Context) tea.Msg {
			if _, err := api.CreateTask(ctx, sub.Input); err != nil {
				return Failed{Action: "Error creating task", Err: err}
			}
			return Mutated{Kind: KindTask, Notice: "Task created"}
		})
	}
	return v.env.Request(func(ctx context.Context) tea.Msg {
		if _, err := api.UpdateTask(ctx, sub.ID, sub.Input); err != nil {
			return Failed{Action: "Error updating task", Err: err}
		}
		return Mutated{Kind: KindTask, Notice: "Task updated"}
	})
}

func (v *TaskFormView) View() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)
	inputWidth := clamp(contentWidth-18, 20, 60)
	snap := v.env.Cache.Snapshot()

	heading := "New Task"
	if v.form.Mode() == forms.ModeEdit {
		heading = "Edit Task #" + strconv.FormatInt(v.form.SelectedID, 10)
	}

	input := func(idx int, content string) string {
		st := s.Input
		if v.focusIdx == idx {
			st = s.InputFocused
		}
		return st.Width(inputWidth).Render(content)
	}
	choice := func(idx int, content string) string {
		if v.focusIdx == idx {
			return s.ListSelected.Render("◀ " + content + " ▶")
		}
		return s.ListItem.Render("  " + content)
	}
	row := func(label, field string) string {
		return lipgloss.JoinHorizontal(lipgloss.Center, s.Label.Render(label), field)
	}

	btnStyle := s.Button
	if v.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}
	button := " Create "
	if v.form.Mode() == forms.ModeEdit {
		button = " Update "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		row("Title", input(fieldTitle, v.title.View())),
		row("Description", input(fieldDescription, v.desc.View())),
		row("Status", choice(fieldStatus, s.Status(v.form.Status))),
		row("Priority", choice(fieldPriority, s.Priority(v.form.Priority))),
		row("Project", choice(fieldProject, forms.Label(forms.ProjectChoices(snap), v.form.ProjectID, cache.NoProject))),
		row("Assignee", choice(fieldAssignee, forms.Label(forms.UserChoices(snap), v.form.AssignedTo, cache.Unassigned))),
		row("Due date", input(fieldDueDate, v.dueDate.View())),
		row("Est. hours", input(fieldHours, v.hours.View())),
		"",
		btnStyle.Render(button),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: change • Ctrl+S: save • Ctrl+U: clear • Esc: cancel"),
	)
	return form
}
