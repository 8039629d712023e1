package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/logger"
	"github.com/tgienger/taskboard/internal/report"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"go.uber.org/zap"
)

// ReportView prints the text reports and writes the CSV export
type ReportView struct {
	env  *Env
	snap cache.Snapshot
	kind report.Kind
	text string
}

func NewReportView(env *Env) *ReportView {
	v := &ReportView{env: env, kind: report.KindTasks}
	v.build()
	return v
}

func (v *ReportView) Title() string { return "Reports" }

func (v *ReportView) Init() tea.Cmd { return nil }

func (v *ReportView) Refresh(snap cache.Snapshot) {
	v.snap = snap
	v.build()
}

func (v *ReportView) Reset() {
	v.kind = report.KindTasks
	v.Refresh(cache.Snapshot{})
}

func (v *ReportView) Capturing() bool { return false }

// Text returns the report currently shown
func (v *ReportView) Text() string { return v.text }

func (v *ReportView) build() {
	v.text = report.Format(v.kind, report.Build(v.kind, v.snap))
}

func (v *ReportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	k := v.env.Keys

	switch {
	case key.Matches(keyMsg, k.ReportTasks):
		v.kind = report.KindTasks
		v.build()
	case key.Matches(keyMsg, k.ReportProjects):
		v.kind = report.KindProjects
		v.build()
	case key.Matches(keyMsg, k.Export):
		return v, v.export()
	}
	return v, nil
}

func (v *ReportView) export() tea.Cmd {
	path := v.env.ExportPath
	snap := v.snap
	return func() tea.Msg {
		if err := report.ExportFile(path, snap); err != nil {
			return Failed{Action: "Error exporting tasks", Err: err}
		}
		logger.Info("exported tasks", zap.String("path", path), zap.Int("tasks", len(snap.Tasks)))
		return Notice{Text: "Exported to " + path, Kind: ToastSuccess}
	}
}

func (v *ReportView) Help() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.ReportTasks, k.ReportProjects, k.Export}
}

func (v *ReportView) View() string {
	s := v.env.Styles
	width := styles.ContentWidth(v.env.Width)

	tasksBtn, projectsBtn := s.Button, s.Button
	if v.kind == report.KindTasks {
		tasksBtn = s.ButtonFocused
	} else {
		projectsBtn = s.ButtonFocused
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		tasksBtn.Render("Tasks report"),
		" ",
		projectsBtn.Render("Projects report"),
		" ",
		s.Button.Render("Export CSV"),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		buttons,
		"",
		s.FilterBar.Width(clamp(width-2, 20, 70)).Render(v.text),
		"",
		s.TitleMuted.Render("Export file: "+v.env.ExportPath),
	)
}
