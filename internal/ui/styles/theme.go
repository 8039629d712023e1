package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Cursor      lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Cursor:      lipgloss.Color("#c0caf5"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the widest the dashboard grows; four board columns need the room
const MaxWidth = 100

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// LeftOffset is the column where centered content starts
func LeftOffset(terminalWidth int) int {
	if terminalWidth <= MaxWidth {
		return 0
	}
	return (terminalWidth - MaxWidth) / 2
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Title bar
	TitleBar   lipgloss.Style
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Lists and tables
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	TableHeader  lipgloss.Style
	TableCell    lipgloss.Style
	TableBorder  lipgloss.Style

	// Filter bar and popups
	FilterBar lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Label        lipgloss.Style
	ErrorText    lipgloss.Style

	// Stats
	Stat      lipgloss.Style
	StatValue lipgloss.Style

	// Board
	Column       lipgloss.Style
	ColumnTarget lipgloss.Style
	Card         lipgloss.Style
	CardActive   lipgloss.Style
	CardDragged  lipgloss.Style

	// Badges
	BadgeNeutral lipgloss.Style
	status       map[models.Status]lipgloss.Style
	priority     map[models.Priority]lipgloss.Style

	// Toasts
	ToastInfo      lipgloss.Style
	ToastSuccess   lipgloss.Style
	ToastError     lipgloss.Style
	ToastCelebrate lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	Loading lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	s := &Styles{
		TitleBar: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Tab: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		TableHeader: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Padding(0, 1).
			Bold(true),

		TableCell: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TableBorder: lipgloss.NewStyle().
			Foreground(t.Border),

		FilterBar: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Width(12),

		ErrorText: lipgloss.NewStyle().
			Foreground(t.Error),

		Stat: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Foreground(t.ForegroundDim).
			Padding(0, 1).
			MarginRight(1),

		StatValue: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		Column: lipgloss.NewStyle().
			Padding(0, 1),

		ColumnTarget: lipgloss.NewStyle().
			Padding(0, 1).
			Background(t.Selection),

		Card: lipgloss.NewStyle().
			Foreground(t.Foreground),

		CardActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		CardDragged: lipgloss.NewStyle().
			Foreground(t.Accent).
			Italic(true),

		BadgeNeutral: badge.
			Foreground(t.Foreground).
			Background(t.Border),

		ToastInfo: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Info).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Success).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Error).
			Padding(0, 1),

		ToastCelebrate: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Secondary).
			Padding(0, 1).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(t.Border),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Loading: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),
	}

	s.status = map[models.Status]lipgloss.Style{
		models.StatusPending:    badge.Foreground(t.Background).Background(t.Warning),
		models.StatusInProgress: badge.Foreground(t.Background).Background(t.Info),
		models.StatusCompleted:  badge.Foreground(t.Background).Background(t.Success),
		models.StatusBlocked:    badge.Foreground(t.Background).Background(t.Error),
	}
	s.priority = map[models.Priority]lipgloss.Style{
		models.PriorityLow:      badge.Foreground(t.ForegroundDim),
		models.PriorityMedium:   badge.Foreground(t.Accent),
		models.PriorityHigh:     badge.Foreground(t.Warning),
		models.PriorityCritical: badge.Foreground(t.Error),
	}

	return s
}

// StatusBadge returns the badge style for a status. Unknown values get the
// neutral style.
func (s *Styles) StatusBadge(status models.Status) lipgloss.Style {
	if st, ok := s.status[status]; ok {
		return st
	}
	return s.BadgeNeutral
}

// PriorityBadge returns the badge style for a priority
func (s *Styles) PriorityBadge(p models.Priority) lipgloss.Style {
	if st, ok := s.priority[p]; ok {
		return st
	}
	return s.BadgeNeutral
}

// Status renders a status badge with its display label
func (s *Styles) Status(status models.Status) string {
	label := status.Label()
	if label == "" {
		label = "unknown"
	}
	return s.StatusBadge(status).Render(label)
}

// Priority renders a priority badge with its display label
func (s *Styles) Priority(p models.Priority) string {
	label := p.Label()
	if label == "" {
		label = "unknown"
	}
	return s.PriorityBadge(p).Render(label)
}
