package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/report"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// SearchView filters the cached tasks by text, status and priority
type SearchView struct {
	env      *Env
	input    textinput.Model
	focused  bool
	status   models.Status
	priority models.Priority

	snap    cache.Snapshot
	results []models.Task
	cursor  int
	offset  int
}

func NewSearchView(env *Env) *SearchView {
	input := textinput.New()
	input.Placeholder = "Search title or description..."
	input.CharLimit = 100

	return &SearchView{env: env, input: input}
}

func (v *SearchView) Title() string { return "Search" }

func (v *SearchView) Init() tea.Cmd { return nil }

func (v *SearchView) Refresh(snap cache.Snapshot) {
	v.snap = snap
	v.apply()
}

func (v *SearchView) Reset() {
	v.input.Reset()
	v.input.Blur()
	v.focused = false
	v.status, v.priority = "", ""
	v.cursor, v.offset = 0, 0
	v.Refresh(cache.Snapshot{})
}

func (v *SearchView) Capturing() bool {
	return v.focused
}

// Query returns the active filter
func (v *SearchView) Query() report.Query {
	return report.Query{Text: v.input.Value(), Status: v.status, Priority: v.priority}
}

// Results returns the tasks matching the active filter
func (v *SearchView) Results() []models.Task {
	return v.results
}

func (v *SearchView) apply() {
	v.results = report.Search(v.snap.Tasks, v.Query())
	if v.cursor >= len(v.results) {
		v.cursor = max(0, len(v.results)-1)
	}
}

func (v *SearchView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	k := v.env.Keys

	if v.focused {
		switch {
		case key.Matches(keyMsg, k.Back), key.Matches(keyMsg, k.Enter):
			v.focused = false
			v.input.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		v.apply()
		return v, cmd
	}

	switch {
	case key.Matches(keyMsg, k.Search):
		v.focused = true
		v.input.Focus()
		return v, textinput.Blink
	case key.Matches(keyMsg, k.FilterStatus):
		v.status = cycleOptional(models.Statuses, v.status)
		v.apply()
	case key.Matches(keyMsg, k.FilterPriority):
		v.priority = cycleOptional(models.Priorities, v.priority)
		v.apply()
	case key.Matches(keyMsg, k.Clear), key.Matches(keyMsg, k.Back):
		v.input.Reset()
		v.status, v.priority = "", ""
		v.apply()
	case key.Matches(keyMsg, k.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(keyMsg, k.Down):
		if v.cursor < len(v.results)-1 {
			v.cursor++
		}
	case key.Matches(keyMsg, k.Enter):
		if v.cursor < len(v.results) {
			id := v.results[v.cursor].ID
			return v, func() tea.Msg { return OpenTask{ID: id} }
		}
	}
	return v, nil
}

// cycleOptional steps "" -> values[0] -> ... -> values[n-1] -> ""
func cycleOptional[T comparable](values []T, current T) T {
	var zero T
	if current == zero {
		return values[0]
	}
	for i, val := range values {
		if val == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return zero
}

func (v *SearchView) Help() []key.Binding {
	k := v.env.Keys
	if v.focused {
		return []key.Binding{k.Enter, k.Back}
	}
	return []key.Binding{k.Search, k.FilterStatus, k.FilterPriority, k.Clear, k.Enter}
}

func (v *SearchView) View() string {
	s := v.env.Styles
	width := styles.ContentWidth(v.env.Width)

	inputStyle := s.Input
	if v.focused {
		inputStyle = s.InputFocused
	}

	statusLabel := "any status"
	if v.status != "" {
		statusLabel = v.status.Label()
	}
	priorityLabel := "any priority"
	if v.priority != "" {
		priorityLabel = v.priority.Label()
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center,
		inputStyle.Width(clamp(width-40, 20, 50)).Render(v.input.View()),
		" ",
		s.Button.Render(statusLabel+" ▼"),
		" ",
		s.Button.Render(priorityLabel+" ▼"),
	)

	summary := s.TitleMuted.Render(fmt.Sprintf("All %d tasks", len(v.snap.Tasks)))
	if v.Query().IsActive() {
		summary = s.TitleMuted.Render(fmt.Sprintf("%d of %d tasks", len(v.results), len(v.snap.Tasks)))
	}

	var body string
	if len(v.results) == 0 {
		body = s.TitleMuted.Render("No matching tasks")
	} else {
		start, end := window(v.cursor, v.offset, len(v.results), max(v.env.Height-6, 1))
		v.offset = start
		rows := taskRows(s, v.snap, v.results[start:end], width)
		body = renderTable(s, width, taskHeaders, rows, v.cursor-start)
	}

	return lipgloss.JoinVertical(lipgloss.Left, bar, summary, "", body)
}
