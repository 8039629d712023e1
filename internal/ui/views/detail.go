package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/logger"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type detailLoadedMsg struct {
	taskID   int64
	comments []models.Comment
	history  []models.HistoryEntry
}

type commentAddedMsg struct {
	taskID int64
}

// TaskDetailView shows one task with its description, comments and history
type TaskDetailView struct {
	env  *Env
	task models.Task
	open bool

	comments []models.Comment
	history  []models.HistoryEntry
	loaded   bool

	viewport viewport.Model
	input    textarea.Model
	typing   bool

	renderer      *glamour.TermRenderer
	rendererWidth int
}

func NewTaskDetailView(env *Env) *TaskDetailView {
	input := textarea.New()
	input.Placeholder = "Add a comment..."
	input.CharLimit = 2000
	input.SetWidth(50)
	input.SetHeight(3)
	input.ShowLineNumbers = false

	return &TaskDetailView{
		env:      env,
		viewport: viewport.New(80, 20),
		input:    input,
	}
}

// Open shows t and loads its comments and history
func (v *TaskDetailView) Open(t models.Task) tea.Cmd {
	v.task = t
	v.open = true
	v.loaded = false
	v.comments = nil
	v.history = nil
	v.typing = false
	v.input.Reset()
	v.resize()
	v.viewport.GotoTop()
	v.render()
	return v.load()
}

func (v *TaskDetailView) Close() {
	v.open = false
	v.typing = false
	v.input.Blur()
	v.input.Reset()
}

func (v *TaskDetailView) IsOpen() bool { return v.open }

// Typing reports whether the comment box has focus
func (v *TaskDetailView) Typing() bool { return v.typing }

func (v *TaskDetailView) Task() models.Task { return v.task }

// Comments returns the comments loaded for the open task
func (v *TaskDetailView) Comments() []models.Comment { return v.comments }

// Reconcile closes the pane when its task is gone and picks up edits
func (v *TaskDetailView) Reconcile(snap cache.Snapshot) {
	if !v.open {
		return
	}
	t, ok := snap.Task(v.task.ID)
	if !ok {
		v.Close()
		return
	}
	v.task = t
	v.render()
}

func (v *TaskDetailView) load() tea.Cmd {
	api := v.env.API
	id := v.task.ID
	return v.env.Request(func(ctx context.Context) tea.Msg {
		msg := detailLoadedMsg{taskID: id}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			comments, err := api.ListComments(ctx, id)
			if err != nil {
				return fmt.Errorf("list comments: %w", err)
			}
			msg.comments = comments
			return nil
		})
		g.Go(func() error {
			history, err := api.TaskHistory(ctx, id)
			if err != nil {
				return fmt.Errorf("task history: %w", err)
			}
			msg.history = history
			return nil
		})
		if err := g.Wait(); err != nil {
			return Failed{Action: "Error loading task activity", Err: err}
		}
		return msg
	})
}

func (v *TaskDetailView) Init() tea.Cmd { return nil }

func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize()
		v.render()
		return v, nil

	case detailLoadedMsg:
		if !v.open || msg.taskID != v.task.ID {
			return v, nil
		}
		v.comments = msg.comments
		v.history = msg.history
		v.loaded = true
		v.render()
		return v, nil

	case commentAddedMsg:
		if !v.open || msg.taskID != v.task.ID {
			return v, nil
		}
		v.typing = false
		v.input.Blur()
		v.input.Reset()
		return v, tea.Batch(notice("Comment added", ToastSuccess), v.load())

	case tea.KeyMsg:
		if v.typing {
			return v.updateTyping(msg)
		}
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Back):
			v.Close()
			return v, nil
		case key.Matches(msg, k.Comment):
			v.typing = true
			v.input.Focus()
			return v, textarea.Blink
		case key.Matches(msg, k.Reload):
			return v, v.load()
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TaskDetailView) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Back):
		v.typing = false
		v.input.Blur()
		return v, nil
	case key.Matches(msg, k.Save):
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			return v, nil
		}
		api := v.env.API
		id := v.task.ID
		return v, v.env.Request(func(ctx context.Context) tea.Msg {
			if _, err := api.AddComment(ctx, id, text); err != nil {
				return Failed{Action: "Error adding comment", Err: err}
			}
			return commentAddedMsg{taskID: id}
		})
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TaskDetailView) Help() []key.Binding {
	k := v.env.Keys
	if v.typing {
		return []key.Binding{k.Save, k.Back}
	}
	return []key.Binding{k.Up, k.Down, k.Comment, k.Edit, k.Reload, k.Back}
}

func (v *TaskDetailView) resize() {
	width := styles.ContentWidth(v.env.Width)
	v.viewport.Width = max(width, 20)
	v.viewport.Height = max(v.env.Height-12, 5)
	v.input.SetWidth(clamp(width-4, 20, 70))
}

// render rebuilds the scrollable body
func (v *TaskDetailView) render() {
	s := v.env.Styles
	snap := v.env.Cache.Snapshot()
	width := v.viewport.Width

	meta := []string{
		s.Status(v.task.Status) + " " + s.Priority(v.task.Priority),
		s.TitleMuted.Render("Project: ") + snap.ProjectName(v.task.ProjectID),
		s.TitleMuted.Render("Assignee: ") + snap.UserName(v.task.AssignedTo),
	}
	if v.task.DueDate != "" {
		meta = append(meta, s.TitleMuted.Render("Due: ")+v.task.DueDate)
	}
	if v.task.EstimatedHours != 0 || v.task.ActualHours != 0 {
		meta = append(meta, s.TitleMuted.Render("Hours: ")+
			fmt.Sprintf("%s estimated, %s spent",
				strconv.FormatFloat(v.task.EstimatedHours, 'f', -1, 64),
				strconv.FormatFloat(v.task.ActualHours, 'f', -1, 64)))
	}
	if v.task.UpdatedAt != "" {
		meta = append(meta, s.TitleMuted.Render("Updated "+relative(v.task.UpdatedAt)))
	}

	sections := []string{
		lipgloss.JoinVertical(lipgloss.Left, meta...),
		"",
		v.markdown(v.task.Description, width),
		"",
		s.Title.Render(fmt.Sprintf("Comments (%d)", len(v.comments))),
	}

	switch {
	case !v.loaded:
		sections = append(sections, s.TitleMuted.Render("Loading..."))
	case len(v.comments) == 0:
		sections = append(sections, s.TitleMuted.Render("No comments yet"))
	default:
		for _, c := range v.comments {
			sections = append(sections,
				s.HelpKey.Render(snap.UserName(c.UserID))+" "+s.TitleMuted.Render(relative(c.CreatedAt)),
				lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(c.Text),
			)
		}
	}

	sections = append(sections, "", s.Title.Render("History"))
	if v.loaded && len(v.history) == 0 {
		sections = append(sections, s.TitleMuted.Render("No history"))
	}
	for _, e := range v.history {
		sections = append(sections, historyLine(s, snap, e, false))
	}

	v.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// markdown renders a description, falling back to plain text
func (v *TaskDetailView) markdown(text string, width int) string {
	s := v.env.Styles
	if strings.TrimSpace(text) == "" {
		return s.TitleMuted.Render("No description")
	}
	if v.renderer == nil || v.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-4, 10)),
		)
		if err != nil {
			logger.Warn("markdown renderer unavailable", zap.Error(err))
			return lipgloss.NewStyle().Width(width).Render(text)
		}
		v.renderer, v.rendererWidth = r, width
	}
	out, err := v.renderer.Render(text)
	if err != nil {
		logger.Warn("render description", zap.Int64("task_id", v.task.ID), zap.Error(err))
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Trim(out, "\n")
}

func (v *TaskDetailView) View() string {
	s := v.env.Styles
	header := s.Title.Render(fmt.Sprintf("#%d %s", v.task.ID, v.task.Title))

	parts := []string{header, "", v.viewport.View()}
	if v.typing {
		parts = append(parts, "", s.InputFocused.Render(v.input.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// historyLine renders one audit entry; withTask prefixes the task id
func historyLine(s *styles.Styles, snap cache.Snapshot, e models.HistoryEntry, withTask bool) string {
	who := s.HelpKey.Render(snap.UserName(e.UserID))
	line := who + " " + describe(e)
	if withTask {
		title := "#" + strconv.FormatInt(e.TaskID, 10)
		if t, ok := snap.Task(e.TaskID); ok {
			title += " " + t.Title
		}
		line = s.TitleMuted.Render(title) + " " + line
	}
	return line + " " + s.TitleMuted.Render(relative(e.Timestamp))
}

func describe(e models.HistoryEntry) string {
	switch e.Action {
	case "CREATED":
		return "created the task"
	case "DELETED":
		return "deleted the task"
	case "STATUS_CHANGED":
		return fmt.Sprintf("moved it from %s to %s",
			models.Status(e.OldValue).Label(), models.Status(e.NewValue).Label())
	case "TITLE_CHANGED":
		return fmt.Sprintf("renamed it from %q to %q", e.OldValue, e.NewValue)
	}
	action := strings.ToLower(strings.ReplaceAll(e.Action, "_", " "))
	switch {
	case e.OldValue != "" && e.NewValue != "":
		return fmt.Sprintf("%s: %s → %s", action, e.OldValue, e.NewValue)
	case e.NewValue != "":
		return fmt.Sprintf("%s: %s", action, e.NewValue)
	}
	return action
}
