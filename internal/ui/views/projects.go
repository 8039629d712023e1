package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// ProjectListView lists projects with their task counts and edits them
type ProjectListView struct {
	env      *Env
	projects []models.Project
	counts   map[int64]int
	cursor   int
	offset   int

	// Create/edit form
	form     forms.ProjectForm
	editing  bool
	newName  textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=name, 1=desc, 2=confirm

	confirmingDelete bool
	deleteTarget     models.Project
}

func NewProjectListView(env *Env) *ProjectListView {
	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 500

	return &ProjectListView{
		env:     env,
		counts:  map[int64]int{},
		newName: newName,
		newDesc: newDesc,
	}
}

func (v *ProjectListView) Title() string { return "Projects" }

func (v *ProjectListView) Init() tea.Cmd { return nil }

func (v *ProjectListView) Refresh(snap cache.Snapshot) {
	v.projects = snap.Projects
	v.counts = make(map[int64]int, len(snap.Projects))
	for _, t := range snap.Tasks {
		v.counts[t.ProjectID]++
	}
	if v.cursor >= len(v.projects) {
		v.cursor = max(0, len(v.projects)-1)
	}
	if v.form.Reconcile(snap) {
		v.editing = false
	}
	if v.confirmingDelete {
		if _, ok := snap.Project(v.deleteTarget.ID); !ok {
			v.confirmingDelete = false
		}
	}
}

func (v *ProjectListView) Reset() {
	v.Refresh(cache.Snapshot{})
	v.cursor, v.offset = 0, 0
	v.closeForm()
	v.confirmingDelete = false
}

func (v *ProjectListView) Capturing() bool {
	return v.editing || v.confirmingDelete
}

// Form returns the bound form state
func (v *ProjectListView) Form() forms.ProjectForm {
	return v.form
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Mutated:
		if msg.Kind == KindProject {
			v.closeForm()
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}

		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, k.Down):
			if v.cursor < len(v.projects)-1 {
				v.cursor++
			}
		case key.Matches(msg, k.New):
			v.form.Clear()
			return v, v.openForm()
		case key.Matches(msg, k.Edit), key.Matches(msg, k.Enter):
			if p, ok := v.selected(); ok {
				v.form.Select(p)
				return v, v.openForm()
			}
		case key.Matches(msg, k.Delete):
			if p, ok := v.selected(); ok {
				v.confirmingDelete = true
				v.deleteTarget = p
			}
		}
	}
	return v, nil
}

func (v *ProjectListView) selected() (models.Project, bool) {
	if v.cursor < 0 || v.cursor >= len(v.projects) {
		return models.Project{}, false
	}
	return v.projects[v.cursor], true
}

func (v *ProjectListView) openForm() tea.Cmd {
	v.editing = true
	v.focusIdx = 0
	v.newName.SetValue(v.form.Name)
	v.newDesc.SetValue(v.form.Description)
	v.updateFocus()
	return textinput.Blink
}

func (v *ProjectListView) closeForm() {
	v.editing = false
	v.form.Clear()
	v.newName.Reset()
	v.newDesc.Reset()
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		api := v.env.API
		return v, v.env.Request(func(ctx context.Context) tea.Msg {
			if err := api.DeleteProject(ctx, id); err != nil {
				return Failed{Action: "Error deleting project", Err: err}
			}
			return Mutated{Kind: KindProject, Notice: "Project deleted"}
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Back):
		v.closeForm()
		return v, nil

	case key.Matches(msg, k.Save):
		return v, v.save()

	case key.Matches(msg, k.ShiftTab):
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, k.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, k.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.save()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *ProjectListView) save() tea.Cmd {
	v.form.Name = v.newName.Value()
	v.form.Description = v.newDesc.Value()
	sub, err := v.form.Submit()
	if errors.Is(err, forms.ErrRequired) {
		return notice("Project name is required", ToastError)
	}

	api := v.env.API
	if sub.Create {
		return v.env.Request(func(ctx context.Context) tea.Msg {
			if _, err := api.CreateProject(ctx, sub.Input); err != nil {
				return Failed{Action: "Error creating project", Err: err}
			}
			return Mutated{Kind: KindProject, Notice: "Project created"}
		})
	}
	return v.env.Request(func(ctx context.Context) tea.Msg {
		if _, err := api.UpdateProject(ctx, sub.ID, sub.Input); err != nil {
			return Failed{Action: "Error updating project", Err: err}
		}
		return Mutated{Kind: KindProject, Notice: "Project updated"}
	})
}

func (v *ProjectListView) Help() []key.Binding {
	k := v.env.Keys
	switch {
	case v.confirmingDelete:
		return nil
	case v.editing:
		return []key.Binding{k.Tab, k.Save, k.Back}
	}
	return []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Delete}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderForm()
	}
	if len(v.projects) == 0 {
		return v.renderEmpty()
	}

	s := v.env.Styles
	width := styles.ContentWidth(v.env.Width)
	start, end := window(v.cursor, v.offset, len(v.projects), max(v.env.Height-2, 1))
	v.offset = start

	rows := make([][]string, 0, end-start)
	for _, p := range v.projects[start:end] {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			truncate(p.Name, 24),
			truncate(p.Description, max(width-46, 10)),
			strconv.Itoa(v.counts[p.ID]),
		})
	}
	return renderTable(s, width, []string{"ID", "Name", "Description", "Tasks"}, rows, v.cursor-start)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
	return lipgloss.Place(contentWidth, max(v.env.Height, 1),
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (v *ProjectListView) renderForm() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	heading, button := "New Project", " Create "
	if v.form.Mode() == forms.ModeEdit {
		heading, button = "Edit Project #"+strconv.FormatInt(v.form.SelectedID, 10), " Update "
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(button),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	return lipgloss.Place(contentWidth, max(v.env.Height, 1),
		lipgloss.Center, lipgloss.Center,
		form,
	)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.env.Styles
	contentWidth := styles.ContentWidth(v.env.Width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTarget.Name)),
		s.TitleMuted.Render(fmt.Sprintf("%d task(s) reference it.", v.counts[v.deleteTarget.ID])),
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
