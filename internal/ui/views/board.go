package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

const (
	boardHeaderLines = 2
	cardLines        = 3
)

// BoardView lays tasks out in status columns and moves them by drag
type BoardView struct {
	env     *Env
	snap    cache.Snapshot
	columns []board.Column

	col    int
	row    int
	offset int

	drag   board.Drag
	follow int64 // task to put the cursor on after the next refresh
}

func NewBoardView(env *Env) *BoardView {
	return &BoardView{env: env, columns: board.Columns(nil)}
}

func (v *BoardView) Title() string { return "Board" }

func (v *BoardView) Init() tea.Cmd { return nil }

func (v *BoardView) Refresh(snap cache.Snapshot) {
	v.snap = snap
	v.columns = board.Columns(snap.Tasks)

	if v.drag.Active() {
		if _, ok := snap.Task(v.drag.TaskID()); !ok {
			v.drag.Cancel()
		}
	}
	if v.follow != 0 {
		for c, col := range v.columns {
			for r, t := range col.Tasks {
				if t.ID == v.follow {
					v.col, v.row = c, r
				}
			}
		}
		v.follow = 0
	}
	v.clampCursor()
}

func (v *BoardView) Reset() {
	v.drag.Cancel()
	v.col, v.row, v.offset, v.follow = 0, 0, 0, 0
	v.Refresh(cache.Snapshot{})
}

// Capturing holds the keyboard while a card is picked up
func (v *BoardView) Capturing() bool {
	return v.drag.Active()
}

// Dragging is the id of the card in hand, or 0
func (v *BoardView) Dragging() int64 {
	return v.drag.TaskID()
}

func (v *BoardView) clampCursor() {
	v.col = clamp(v.col, 0, len(v.columns)-1)
	n := len(v.columns[v.col].Tasks)
	v.row = clamp(v.row, 0, max(n-1, 0))
}

func (v *BoardView) selected() (models.Task, bool) {
	tasks := v.columns[v.col].Tasks
	if v.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.row], true
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.updateKeys(msg)
	case tea.MouseMsg:
		return v, v.updateMouse(msg)
	}
	return v, nil
}

func (v *BoardView) updateKeys(msg tea.KeyMsg) tea.Cmd {
	k := v.env.Keys

	if v.drag.Active() {
		switch {
		case key.Matches(msg, k.Left):
			v.drag.Move(-1)
		case key.Matches(msg, k.Right):
			v.drag.Move(1)
		case key.Matches(msg, k.Grab), key.Matches(msg, k.Enter):
			return v.drop(v.drag.Target())
		case key.Matches(msg, k.Back):
			v.drag.Cancel()
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.Left):
		v.col--
		v.clampCursor()
	case key.Matches(msg, k.Right):
		v.col++
		v.clampCursor()
	case key.Matches(msg, k.Up):
		v.row--
		v.clampCursor()
	case key.Matches(msg, k.Down):
		v.row++
		v.clampCursor()
	case key.Matches(msg, k.Grab):
		if t, ok := v.selected(); ok {
			v.drag.Begin(t)
		}
	case key.Matches(msg, k.Enter):
		if t, ok := v.selected(); ok {
			id := t.ID
			return func() tea.Msg { return OpenTask{ID: id} }
		}
	}
	return nil
}

// updateMouse handles a press on a card and the release over a column.
// Coordinates are relative to the top-left corner of the board.
func (v *BoardView) updateMouse(msg tea.MouseMsg) tea.Cmd {
	width := v.columnWidth() * len(v.columns)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		status, ok := board.ColumnAt(msg.X, width)
		if !ok || msg.Y < boardHeaderLines {
			return nil
		}
		c := v.columnIndex(status)
		r := v.offset + (msg.Y-boardHeaderLines)/cardLines
		// below the last drawn card is the "+N more" line, not a card
		if r >= v.offset+v.visibleCards() || r >= len(v.columns[c].Tasks) {
			return nil
		}
		v.col, v.row = c, r
		v.drag.Begin(v.columns[c].Tasks[r])

	case tea.MouseActionMotion:
		if status, ok := board.ColumnAt(msg.X, width); ok && v.drag.Active() {
			v.drag.Hover(status)
		}

	case tea.MouseActionRelease:
		if !v.drag.Active() {
			return nil
		}
		status, ok := board.ColumnAt(msg.X, width)
		if !ok || msg.Y < 0 || msg.Y >= v.env.Height {
			v.drag.Cancel()
			return nil
		}
		return v.drop(status)
	}
	return nil
}

func (v *BoardView) drop(status models.Status) tea.Cmd {
	in, id, ok := v.drag.Drop(status, v.env.Cache.Snapshot())
	if !ok {
		return nil
	}
	v.follow = id
	api := v.env.API
	return v.env.Request(func(ctx context.Context) tea.Msg {
		if _, err := api.UpdateTask(ctx, id, in); err != nil {
			return Failed{Action: "Error moving task", Err: err}
		}
		return Mutated{
			Kind:      KindTask,
			Notice:    "Moved to " + in.Status.Label(),
			Celebrate: in.Status == models.StatusCompleted,
		}
	})
}

func (v *BoardView) columnIndex(status models.Status) int {
	for i, c := range v.columns {
		if c.Status == status {
			return i
		}
	}
	return 0
}

func (v *BoardView) columnWidth() int {
	return max(styles.ContentWidth(v.env.Width)/len(v.columns), 12)
}

func (v *BoardView) visibleCards() int {
	return max((v.env.Height-boardHeaderLines)/cardLines, 1)
}

func (v *BoardView) Help() []key.Binding {
	k := v.env.Keys
	if v.drag.Active() {
		return []key.Binding{k.Left, k.Right, k.Grab, k.Back}
	}
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Grab, k.Enter}
}

func (v *BoardView) View() string {
	s := v.env.Styles
	colWidth := v.columnWidth()
	visible := v.visibleCards()

	// one shared offset keeps rows aligned across columns for mouse hits
	start, _ := window(v.row, v.offset, len(v.columns[v.col].Tasks), visible)
	v.offset = start

	cols := make([]string, len(v.columns))
	for i, col := range v.columns {
		style := s.Column
		if v.drag.Active() && v.drag.Target() == col.Status {
			style = s.ColumnTarget
		}

		lines := []string{
			s.Status(col.Status) + s.TitleMuted.Render(fmt.Sprintf(" %d", len(col.Tasks))),
			s.TableBorder.Render(strings.Repeat("─", max(colWidth-2, 0))),
		}
		end := min(v.offset+visible, len(col.Tasks))
		for r := v.offset; r < end; r++ {
			lines = append(lines, v.renderCard(col.Tasks[r], i == v.col && r == v.row, colWidth-2))
		}
		if hidden := len(col.Tasks) - end; hidden > 0 {
			lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("+%d more", hidden)))
		}
		cols[i] = style.Width(colWidth).Height(v.env.Height).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *BoardView) renderCard(t models.Task, active bool, width int) string {
	s := v.env.Styles

	style, marker := s.Card, "  "
	switch {
	case v.drag.TaskID() == t.ID:
		style, marker = s.CardDragged, "⇢ "
	case active:
		style, marker = s.CardActive, "▸ "
	}

	title := style.Render(marker + truncate(t.Title, width-2))
	meta := s.TitleMuted.Render("  #"+strconv.FormatInt(t.ID, 10)+" ") +
		s.PriorityBadge(t.Priority).UnsetPadding().Render(t.Priority.Label()) +
		s.TitleMuted.Render(" "+truncate(v.snap.UserName(t.AssignedTo), max(width-16, 4)))
	return lipgloss.JoinVertical(lipgloss.Left, title, meta, "")
}
