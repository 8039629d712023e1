package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/report"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// TaskListView shows the stats header, the task table and the task form
type TaskListView struct {
	env    *Env
	tasks  []models.Task
	stats  report.Stats
	snap   cache.Snapshot
	cursor int
	offset int

	form   *TaskFormView
	detail *TaskDetailView

	// Delete confirmation
	confirmingDelete bool
	deleteTarget     models.Task
}

// NewTaskListView creates a new task list view
func NewTaskListView(env *Env) *TaskListView {
	return &TaskListView{
		env:    env,
		form:   NewTaskFormView(env),
		detail: NewTaskDetailView(env),
	}
}

func (v *TaskListView) Title() string { return "Tasks" }

func (v *TaskListView) Init() tea.Cmd { return nil }

// Stats returns the figures shown in the header
func (v *TaskListView) Stats() report.Stats {
	return v.stats
}

// Form exposes the task form for inspection
func (v *TaskListView) Form() *TaskFormView {
	return v.form
}

// Refresh rebuilds rows from a committed snapshot
func (v *TaskListView) Refresh(snap cache.Snapshot) {
	v.snap = snap
	v.tasks = snap.Tasks
	v.stats = report.ComputeStats(snap.Tasks)
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.form.Reconcile(snap)
	v.detail.Reconcile(snap)
	if v.confirmingDelete {
		if _, ok := snap.Task(v.deleteTarget.ID); !ok {
			v.confirmingDelete = false
		}
	}
}

// Reset forgets everything tied to the signed-in user
func (v *TaskListView) Reset() {
	v.Refresh(cache.Snapshot{})
	v.cursor, v.offset = 0, 0
	v.form.Close()
	v.detail.Close()
	v.confirmingDelete = false
}

// Capturing reports whether keys belong to this view rather than the app
func (v *TaskListView) Capturing() bool {
	return v.form.IsOpen() || v.detail.IsOpen() || v.confirmingDelete
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.form.SetWidth(styles.ContentWidth(v.env.Width))
		v.detail.Update(msg)
		return v, nil

	case Mutated:
		if msg.Kind == KindTask {
			v.form.Close()
		}
		return v, nil

	case OpenTask:
		for i, t := range v.tasks {
			if t.ID == msg.ID {
				v.cursor = i
				v.form.Close()
				return v, v.detail.Open(t)
			}
		}
		return v, nil

	case detailLoadedMsg, commentAddedMsg:
		_, cmd := v.detail.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.form.IsOpen() {
			_, cmd := v.form.Update(msg)
			return v, cmd
		}
		if v.detail.IsOpen() {
			if !v.detail.Typing() && key.Matches(msg, v.env.Keys.Edit) {
				t := v.detail.Task()
				v.detail.Close()
				return v, v.form.Open(&t)
			}
			_, cmd := v.detail.Update(msg)
			return v, cmd
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.env.Keys

	switch {
	case key.Matches(msg, k.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, k.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case key.Matches(msg, k.New):
		return v, v.form.Open(nil)
	case key.Matches(msg, k.Edit):
		if t, ok := v.selected(); ok {
			return v, v.form.Open(&t)
		}
	case key.Matches(msg, k.Enter):
		if t, ok := v.selected(); ok {
			return v, v.detail.Open(t)
		}
	case key.Matches(msg, k.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = t
		}
	}
	return v, nil
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		api := v.env.API
		return v, v.env.Request(func(ctx context.Context) tea.Msg {
			if err := api.DeleteTask(ctx, id); err != nil {
				return Failed{Action: "Error deleting task", Err: err}
			}
			return Mutated{Kind: KindTask, Notice: "Task deleted"}
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

// Help lists the bindings that apply right now
func (v *TaskListView) Help() []key.Binding {
	k := v.env.Keys
	switch {
	case v.confirmingDelete:
		return nil
	case v.form.IsOpen():
		return []key.Binding{k.Tab, k.Save, k.Clear, k.Back}
	case v.detail.IsOpen():
		return v.detail.Help()
	}
	return []key.Binding{k.Up, k.Down, k.Enter, k.New, k.Edit, k.Delete}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.form.IsOpen() {
		return v.form.View()
	}
	if v.detail.IsOpen() {
		return v.detail.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderStats(),
		"",
		v.renderTable(),
	)
}

func (v *TaskListView) renderStats() string {
	s := v.env.Styles
	stat := func(label string, n int) string {
		return s.Stat.Render(label + " " + s.StatValue.Render(strconv.Itoa(n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total", v.stats.Total),
		stat("Completed", v.stats.Completed),
		stat("Pending", v.stats.Pending),
		stat("High priority", v.stats.HighPriority),
	)
}

func (v *TaskListView) renderTable() string {
	s := v.env.Styles
	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	width := styles.ContentWidth(v.env.Width)
	visible := max(v.env.Height-6, 1)
	start, end := window(v.cursor, v.offset, len(v.tasks), visible)
	v.offset = start

	rows := taskRows(s, v.snap, v.tasks[start:end], width)
	return renderTable(s, width, taskHeaders, rows, v.cursor-start)
}

var taskHeaders = []string{"ID", "Title", "Status", "Priority", "Project", "Assignee"}

func taskRows(s *styles.Styles, snap cache.Snapshot, tasks []models.Task, width int) [][]string {
	titleWidth := max(width-62, 12)
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			truncate(t.Title, titleWidth),
			s.Status(t.Status),
			s.Priority(t.Priority),
			truncate(snap.ProjectName(t.ProjectID), 14),
			truncate(snap.UserName(t.AssignedTo), 12),
		})
	}
	return rows
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTarget.Title)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	return lipgloss.Place(contentWidth, max(v.env.Height, 1),
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
