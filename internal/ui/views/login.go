package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// LoginView asks for credentials
type LoginView struct {
	env      *Env
	username textinput.Model
	password textinput.Model
	focusIdx int // 0=username, 1=password, 2=button
	message  string
	pending  bool
}

func NewLoginView(env *Env) *LoginView {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	v := &LoginView{env: env, username: username, password: password}
	v.updateFocus()
	return v
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the form and shows message above it
func (v *LoginView) Reset(message string) {
	v.username.Reset()
	v.password.Reset()
	v.focusIdx = 0
	v.pending = false
	v.message = message
	v.updateFocus()
}

// SetError shows a failed attempt and keeps the username
func (v *LoginView) SetError(message string) {
	v.pending = false
	v.message = message
	v.password.Reset()
	v.focusIdx = 1
	v.updateFocus()
}

func (v *LoginView) Message() string {
	return v.message
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	k := v.env.Keys

	switch {
	case key.Matches(keyMsg, k.Tab), keyMsg.String() == "down":
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil
	case key.Matches(keyMsg, k.ShiftTab), keyMsg.String() == "up":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil
	case key.Matches(keyMsg, k.Enter):
		if v.focusIdx == 0 {
			v.focusIdx = 1
			v.updateFocus()
			return v, nil
		}
		return v, v.submit()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) submit() tea.Cmd {
	if v.pending {
		return nil
	}
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		v.message = "Username and password are required"
		return nil
	}

	v.pending = true
	v.message = ""
	session := v.env.Session
	return v.env.Request(func(ctx context.Context) tea.Msg {
		if _, err := session.Login(ctx, username, password); err != nil {
			return Failed{Action: ActionLogin, Err: err}
		}
		return LoggedIn{Username: username}
	})
}

func (v *LoginView) updateFocus() {
	v.username.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.username.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	userStyle, passStyle, btnStyle := s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		userStyle = s.InputFocused
	case 1:
		passStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	button := " Log in "
	if v.pending {
		button = " Logging in… "
	}

	rows := []string{
		s.Title.Render("taskboard"),
		s.TitleMuted.Render("Sign in to continue"),
		"",
		"Username:",
		userStyle.Width(inputWidth).Render(v.username.View()),
		"",
		"Password:",
		passStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(button),
	}
	if v.message != "" {
		rows = append(rows, "", s.ErrorText.Width(inputWidth).Render(v.message))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Enter: log in • Ctrl+C: quit"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.env.Height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.env.Width, v.env.Height)
}
