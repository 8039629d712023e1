package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/logger"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"github.com/tgienger/taskboard/internal/ui/views"
	"go.uber.org/zap"
)

// Screen is the top-level mode of the app
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
)

// Tab indexes
const (
	TabTasks = iota
	TabBoard
	TabProjects
	TabSearch
	TabReports
	TabActivity
)

// chrome is the number of lines around the tab content: title bar, tab
// bar, a blank line, the toast line and the help line.
const (
	headerLines = 3
	footerLines = 2
)

const defaultToastTTL = 3 * time.Second

// SessionStore is what the app needs from the session
type SessionStore interface {
	views.Session
	Authenticated() bool
	Logout()
}

type tab interface {
	tea.Model
	Title() string
	Capturing() bool
	Help() []key.Binding
	Refresh(cache.Snapshot)
	Reset()
}

type toast struct {
	text string
	kind views.ToastKind
	at   time.Time
}

type refreshedMsg struct {
	snap cache.Snapshot
}

type toastExpiredMsg struct{}

// Options tune the app
type Options struct {
	ExportPath string
	ToastTTL   time.Duration
}

// App is the single owner of application state. Views get a pointer to
// the shared env and report back through messages.
type App struct {
	env     *views.Env
	session SessionStore
	cache   *cache.Cache
	help    help.Model

	screen   Screen
	login    *views.LoginView
	tasks    *views.TaskListView
	board    *views.BoardView
	projects *views.ProjectListView
	search   *views.SearchView
	reports  *views.ReportView
	activity *views.ActivityView
	tabs     []tab
	active   int

	toasts   []toast
	toastTTL time.Duration
	now      func() time.Time

	width  int
	height int
}

// NewApp wires the views to the client, session and cache
func NewApp(client views.API, session SessionStore, c *cache.Cache, opts Options) *App {
	if opts.ExportPath == "" {
		opts.ExportPath = "export_tasks.csv"
	}
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = defaultToastTTL
	}

	env := &views.Env{
		API:        client,
		Session:    session,
		Cache:      c,
		Styles:     styles.NewStyles(),
		Keys:       keys.DefaultKeyMap(),
		ExportPath: opts.ExportPath,
		Width:      80,
		Height:     24 - headerLines - footerLines,
	}

	a := &App{
		env:      env,
		session:  session,
		cache:    c,
		help:     help.New(),
		login:    views.NewLoginView(env),
		tasks:    views.NewTaskListView(env),
		board:    views.NewBoardView(env),
		projects: views.NewProjectListView(env),
		search:   views.NewSearchView(env),
		reports:  views.NewReportView(env),
		activity: views.NewActivityView(env),
		toastTTL: opts.ToastTTL,
		now:      time.Now,
		width:    80,
		height:   24,
	}
	a.tabs = []tab{a.tasks, a.board, a.projects, a.search, a.reports, a.activity}

	a.help.Styles.ShortKey = env.Styles.HelpKey
	a.help.Styles.ShortDesc = env.Styles.HelpDesc
	a.help.Styles.ShortSeparator = env.Styles.Help

	for _, t := range a.tabs {
		c.OnRefresh(t.Refresh)
	}

	if session.Authenticated() {
		a.screen = ScreenDashboard
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.screen == ScreenDashboard {
		return a.refresh()
	}
	return a.login.Init()
}

// Screen reports which top-level screen is showing
func (a *App) Screen() Screen { return a.screen }

// ActiveTab is the index of the visible tab
func (a *App) ActiveTab() int { return a.active }

// Loading reports whether a request is in flight
func (a *App) Loading() bool { return a.env.Loading() }

func (a *App) Login() *views.LoginView          { return a.login }
func (a *App) Tasks() *views.TaskListView       { return a.tasks }
func (a *App) Board() *views.BoardView          { return a.board }
func (a *App) Projects() *views.ProjectListView { return a.projects }
func (a *App) Search() *views.SearchView        { return a.search }
func (a *App) Reports() *views.ReportView       { return a.reports }
func (a *App) Activity() *views.ActivityView    { return a.activity }

// Toasts returns the messages currently on screen
func (a *App) Toasts() []string {
	out := make([]string, len(a.toasts))
	for i, t := range a.toasts {
		out[i] = t.text
	}
	return out
}

func (a *App) refresh() tea.Cmd {
	c := a.cache
	return a.env.Request(func(ctx context.Context) tea.Msg {
		snap, err := c.Fetch(ctx)
		if err != nil {
			return views.Failed{Action: "Error loading data", Err: err}
		}
		return refreshedMsg{snap: snap}
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.pruneToasts()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.env.Width = msg.Width
		a.env.Height = max(msg.Height-headerLines-footerLines, 1)
		a.help.Width = styles.ContentWidth(msg.Width)
		var cmds []tea.Cmd
		for _, t := range a.tabs {
			_, cmd := t.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case views.Done:
		a.env.Finish()
		if a.env.Stale(msg) {
			logger.Debug("dropped response from ended session", zap.String("msg", fmt.Sprintf("%T", msg.Msg)))
			return a, nil
		}
		return a.Update(msg.Msg)

	case refreshedMsg:
		if a.screen != ScreenDashboard {
			return a, nil
		}
		a.cache.Commit(msg.snap)
		return a, nil

	case views.LoggedIn:
		logger.Debug("dashboard opened", zap.String("username", msg.Username))
		a.screen = ScreenDashboard
		a.active = TabTasks
		a.login.Reset("")
		return a, a.refresh()

	case views.Mutated:
		if a.screen != ScreenDashboard {
			return a, nil
		}
		cmds := []tea.Cmd{a.refresh()}
		for _, t := range a.tabs {
			_, cmd := t.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, a.addToast(msg.Notice, views.ToastSuccess))
		if msg.Celebrate {
			cmds = append(cmds, a.addToast("🎉 Task completed!", views.ToastCelebrate))
		}
		return a, tea.Batch(cmds...)

	case views.Failed:
		return a, a.fail(msg)

	case views.Notice:
		return a, a.addToast(msg.Text, msg.Kind)

	case views.OpenTask:
		if a.screen != ScreenDashboard {
			return a, nil
		}
		a.active = TabTasks
		_, cmd := a.tasks.Update(msg)
		return a, cmd

	case toastExpiredMsg:
		return a, nil

	case tea.KeyMsg:
		return a, a.updateKeys(msg)

	case tea.MouseMsg:
		if a.screen == ScreenDashboard && a.active == TabBoard {
			msg.X -= styles.LeftOffset(a.width)
			msg.Y -= headerLines
			_, cmd := a.board.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// everything else is a view's own async result
	if a.screen != ScreenDashboard {
		return a, nil
	}
	var cmds []tea.Cmd
	for _, t := range a.tabs {
		_, cmd := t.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) updateKeys(msg tea.KeyMsg) tea.Cmd {
	k := a.env.Keys
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if a.screen == ScreenLogin {
		_, cmd := a.login.Update(msg)
		return cmd
	}

	current := a.tabs[a.active]
	if current.Capturing() {
		_, cmd := current.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Logout):
		a.session.Logout()
		a.signOut("Logged out")
		return nil
	case key.Matches(msg, k.Refresh):
		return a.refresh()
	case key.Matches(msg, k.NextTab):
		return a.switchTab((a.active + 1) % len(a.tabs))
	case key.Matches(msg, k.PrevTab):
		return a.switchTab((a.active + len(a.tabs) - 1) % len(a.tabs))
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(len(a.tabs)) {
		return a.switchTab(int(s[0] - '1'))
	}

	_, cmd := current.Update(msg)
	return cmd
}

func (a *App) switchTab(i int) tea.Cmd {
	if i == a.active {
		return nil
	}
	a.active = i
	return a.tabs[i].Init()
}

// fail shows an error. An expired session ends up on the login screen no
// matter which request noticed it.
func (a *App) fail(msg views.Failed) tea.Cmd {
	if errors.Is(msg.Err, api.ErrSessionExpired) {
		logger.Warn("session expired", zap.String("action", msg.Action))
		if a.screen == ScreenDashboard {
			a.session.Logout()
			a.signOut("Session expired, please log in again")
		}
		return nil
	}

	logger.Error(msg.Action, msg.Err)
	if a.screen == ScreenLogin {
		if msg.Action == views.ActionLogin {
			a.login.SetError(msg.Err.Error())
		}
		return nil
	}
	return a.addToast(fmt.Sprintf("%s: %s", msg.Action, msg.Err.Error()), views.ToastError)
}

// signOut drops every trace of the previous user from memory
func (a *App) signOut(message string) {
	a.env.EndSession()
	a.screen = ScreenLogin
	a.active = TabTasks
	a.cache.Reset()
	for _, t := range a.tabs {
		t.Reset()
	}
	a.toasts = nil
	a.login.Reset(message)
}

func (a *App) addToast(text string, kind views.ToastKind) tea.Cmd {
	if text == "" {
		return nil
	}
	a.toasts = append(a.toasts, toast{text: text, kind: kind, at: a.now()})
	return tea.Tick(a.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

func (a *App) pruneToasts() {
	now := a.now()
	kept := a.toasts[:0]
	for _, t := range a.toasts {
		if now.Sub(t.at) < a.toastTTL {
			kept = append(kept, t)
		}
	}
	a.toasts = kept
}

func (a *App) View() string {
	if a.screen == ScreenLogin {
		return a.login.View()
	}

	s := a.env.Styles
	width := styles.ContentWidth(a.width)
	current := a.tabs[a.active]

	user := s.TitleMuted.Render(a.session.Username())
	if a.env.Loading() {
		user = s.Loading.Render("Loading… ") + user
	}
	title := s.Title.Render("taskboard")
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(user)-2, 1)
	titleBar := s.TitleBar.Render(title + strings.Repeat(" ", gap) + user)

	tabs := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		label := fmt.Sprintf("%d %s", i+1, t.Title())
		if i == TabActivity && a.activity.Unread() > 0 {
			label += fmt.Sprintf(" (%d)", a.activity.Unread())
		}
		if i == a.active {
			tabs[i] = s.TabActive.Render(label)
		} else {
			tabs[i] = s.Tab.Render(label)
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	content := lipgloss.NewStyle().
		Width(width).
		Height(a.env.Height).
		MaxHeight(a.env.Height).
		Render(current.View())

	page := lipgloss.JoinVertical(lipgloss.Left,
		titleBar,
		tabBar,
		"",
		content,
		a.renderToasts(),
		a.help.ShortHelpView(append(current.Help(), a.env.Keys.NextTab, a.env.Keys.Quit)),
	)
	return styles.CenterView(lipgloss.NewStyle().Width(width).Render(page), a.width, a.height)
}

func (a *App) renderToasts() string {
	s := a.env.Styles
	parts := make([]string, 0, len(a.toasts))
	for _, t := range a.toasts {
		style := s.ToastInfo
		switch t.kind {
		case views.ToastSuccess:
			style = s.ToastSuccess
		case views.ToastError:
			style = s.ToastError
		case views.ToastCelebrate:
			style = s.ToastCelebrate
		}
		parts = append(parts, style.Render(t.text))
	}
	return strings.Join(parts, " ")
}
