package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"golang.org/x/sync/errgroup"
)

type activityLoadedMsg struct {
	history       []models.HistoryEntry
	notifications []models.Notification
}

type notificationsReadMsg struct{}

// ActivityView shows the full history feed and the user's notifications
type ActivityView struct {
	env           *Env
	snap          cache.Snapshot
	history       []models.HistoryEntry
	notifications []models.Notification
	loaded        bool
}

func NewActivityView(env *Env) *ActivityView {
	return &ActivityView{env: env}
}

func (v *ActivityView) Title() string { return "Activity" }

// Init reloads the feed every time the tab is opened
func (v *ActivityView) Init() tea.Cmd {
	return v.load()
}

func (v *ActivityView) Refresh(snap cache.Snapshot) {
	v.snap = snap
}

func (v *ActivityView) Reset() {
	v.snap = cache.Snapshot{}
	v.history, v.notifications = nil, nil
	v.loaded = false
}

func (v *ActivityView) Capturing() bool { return false }

// Unread counts notifications not yet marked read
func (v *ActivityView) Unread() int {
	n := 0
	for _, note := range v.notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

func (v *ActivityView) load() tea.Cmd {
	api := v.env.API
	return v.env.Request(func(ctx context.Context) tea.Msg {
		var msg activityLoadedMsg
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			history, err := api.AllHistory(ctx)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			msg.history = history
			return nil
		})
		g.Go(func() error {
			notifications, err := api.Notifications(ctx)
			if err != nil {
				return fmt.Errorf("notifications: %w", err)
			}
			msg.notifications = notifications
			return nil
		})
		if err := g.Wait(); err != nil {
			return Failed{Action: "Error loading activity", Err: err}
		}
		return msg
	})
}

func (v *ActivityView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityLoadedMsg:
		v.history = msg.history
		v.notifications = msg.notifications
		v.loaded = true
		return v, nil

	case notificationsReadMsg:
		return v, tea.Batch(notice("Notifications marked as read", ToastSuccess), v.load())

	case tea.KeyMsg:
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Reload):
			return v, v.load()
		case key.Matches(msg, k.MarkRead):
			api := v.env.API
			return v, v.env.Request(func(ctx context.Context) tea.Msg {
				if err := api.MarkNotificationsRead(ctx); err != nil {
					return Failed{Action: "Error marking notifications", Err: err}
				}
				return notificationsReadMsg{}
			})
		}
	}
	return v, nil
}

func (v *ActivityView) Help() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Reload, k.MarkRead}
}

func (v *ActivityView) View() string {
	s := v.env.Styles
	width := styles.ContentWidth(v.env.Width)
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	half := max(v.env.Height/2-2, 3)

	notes := []string{s.Title.Render(fmt.Sprintf("Notifications (%d unread)", v.Unread()))}
	if len(v.notifications) == 0 {
		notes = append(notes, s.TitleMuted.Render("Nothing new"))
	}
	for i, n := range v.notifications {
		if i == half {
			notes = append(notes, s.TitleMuted.Render(fmt.Sprintf("+%d more", len(v.notifications)-i)))
			break
		}
		marker := s.HelpKey.Render("● ")
		text := s.ListItem.UnsetPadding().Render(truncate(n.Message, width-24))
		if n.Read {
			marker = "  "
			text = s.TitleMuted.Render(truncate(n.Message, width-24))
		}
		notes = append(notes, marker+text+" "+s.TitleMuted.Render(relative(n.CreatedAt)))
	}

	feed := []string{s.Title.Render("Recent history")}
	if len(v.history) == 0 {
		feed = append(feed, s.TitleMuted.Render("No history yet"))
	}
	for i, e := range v.history {
		if i == half {
			feed = append(feed, s.TitleMuted.Render(fmt.Sprintf("+%d more", len(v.history)-i)))
			break
		}
		feed = append(feed, truncate(historyLine(s, v.snap, e, true), width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinVertical(lipgloss.Left, notes...),
		"",
		lipgloss.JoinVertical(lipgloss.Left, feed...),
	)
}
