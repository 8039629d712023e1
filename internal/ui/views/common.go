package views

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// API is the slice of the backend the views write through
type API interface {
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	AddComment(ctx context.Context, taskID int64, text string) (*models.Comment, error)
	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	TaskHistory(ctx context.Context, taskID int64) ([]models.HistoryEntry, error)
	AllHistory(ctx context.Context) ([]models.HistoryEntry, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) error
}

// Session logs users in
type Session interface {
	Login(ctx context.Context, username, password string) (string, error)
	Username() string
}

// Env is the application state shared by every view. The app owns it and
// hands each view the same pointer.
type Env struct {
	API        API
	Session    Session
	Cache      *cache.Cache
	Styles     *styles.Styles
	Keys       keys.KeyMap
	ExportPath string

	Width  int
	Height int

	inflight int
	session  int
}

// Request runs fn off the update loop and counts it as in flight until
// the app sees the resulting Done.
func (e *Env) Request(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	e.inflight++
	session := e.session
	return func() tea.Msg {
		return Done{Msg: fn(context.Background()), session: session}
	}
}

// EndSession marks every request started so far as stale
func (e *Env) EndSession() {
	e.session++
}

// Stale reports whether d answers a request from an ended session
func (e *Env) Stale(d Done) bool {
	return d.session != e.session
}

// Finish marks one request as completed
func (e *Env) Finish() {
	if e.inflight > 0 {
		e.inflight--
	}
}

// Loading reports whether any request is in flight
func (e *Env) Loading() bool {
	return e.inflight > 0
}

// Done wraps the result of a request started with Env.Request
type Done struct {
	Msg     tea.Msg
	session int
}

// Kind names the record type a write touched
type Kind int

const (
	KindTask Kind = iota
	KindProject
)

// Mutated reports a successful task or project write. The app answers it
// with a full refresh.
type Mutated struct {
	Kind      Kind
	Notice    string
	Celebrate bool
}

// ActionLogin is the Failed action of a login attempt
const ActionLogin = "Login"

// Failed reports a failed action
type Failed struct {
	Action string
	Err    error
}

// ToastKind picks the toast style
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
	ToastCelebrate
)

// Notice asks the app to show a toast
type Notice struct {
	Text string
	Kind ToastKind
}

// LoggedIn is sent once the session holds a token
type LoggedIn struct {
	Username string
}

// OpenTask asks the app to show a task in the tasks tab
type OpenTask struct {
	ID int64
}

func notice(text string, kind ToastKind) tea.Cmd {
	return func() tea.Msg {
		return Notice{Text: text, Kind: kind}
	}
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// relative renders an API timestamp as "3 minutes ago"; unparseable values
// are shown as they came.
func relative(ts string) string {
	t, ok := models.ParseTime(ts)
	if !ok {
		return ts
	}
	return humanize.RelTime(t, time.Now(), "ago", "from now")
}

// truncate shortens s to width cells, styled or not
func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// window returns the [start, end) slice of n rows that keeps cursor in a
// viewport of size rows.
func window(cursor, offset, n, size int) (int, int) {
	size = max(size, 1)
	if cursor < offset {
		offset = cursor
	} else if cursor >= offset+size {
		offset = cursor - size + 1
	}
	offset = clamp(offset, 0, max(n-size, 0))
	return offset, min(offset+size, n)
}

// renderTable draws rows with the shared table look; selected is the index
// into rows, or -1.
func renderTable(s *styles.Styles, width int, headers []string, rows [][]string, selected int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.TableBorder).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.TableHeader
			case row == selected:
				return s.ListSelected
			}
			return s.TableCell
		})
	return t.Render()
}
