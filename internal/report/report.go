package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

// Query is the search form. Empty fields are inactive.
type Query struct {
	Text     string
	Status   models.Status
	Priority models.Priority
}

// IsActive returns true if any predicate is set
func (q Query) IsActive() bool {
	return strings.TrimSpace(q.Text) != "" || q.Status != "" || q.Priority != ""
}

// Matches returns true if the task passes every active predicate
func (q Query) Matches(t models.Task) bool {
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		if !strings.Contains(strings.ToLower(t.Title), text) &&
			!strings.Contains(strings.ToLower(t.Description), text) {
			return false
		}
	}
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	return true
}

// Search filters tasks client-side, keeping their order
func Search(tasks []models.Task, q Query) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Matches(t) {
			result = append(result, t)
		}
	}
	return result
}

// Stats are the dashboard counters
type Stats struct {
	Total        int
	Completed    int
	Pending      int
	HighPriority int
}

// ComputeStats counts tasks for the dashboard header
func ComputeStats(tasks []models.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusPending:
			s.Pending++
		}
		if t.Priority == models.PriorityHigh || t.Priority == models.PriorityCritical {
			s.HighPriority++
		}
	}
	return s
}

// Line is one row of a report
type Line struct {
	Label string
	Count int
}

// Kind selects a report
type Kind string

const (
	KindTasks    Kind = "tasks"
	KindProjects Kind = "projects"
)

// ParseKind validates a report name
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindTasks:
		return KindTasks, nil
	case KindProjects:
		return KindProjects, nil
	}
	return "", fmt.Errorf("unknown report %q (want tasks or projects)", s)
}

// ByStatus counts tasks per status in order of first appearance. A task
// without a status counts as pending; a status outside the known set keeps
// its raw value so it never shares a label with a known one.
func ByStatus(tasks []models.Task) []Line {
	var lines []Line
	index := map[models.Status]int{}
	for _, t := range tasks {
		status := t.Status
		if status == "" {
			status = models.StatusPending
		}
		i, ok := index[status]
		if !ok {
			i = len(lines)
			index[status] = i
			lines = append(lines, Line{Label: statusLabel(status)})
		}
		lines[i].Count++
	}
	return lines
}

func statusLabel(s models.Status) string {
	if s.Known() {
		return s.Label()
	}
	return string(s) + " (unknown)"
}

// ByProject counts tasks per project, one line per project including
// projects without tasks
func ByProject(tasks []models.Task, projects []models.Project) []Line {
	counts := map[int64]int{}
	for _, t := range tasks {
		counts[t.ProjectID]++
	}
	lines := make([]Line, len(projects))
	for i, p := range projects {
		lines[i] = Line{Label: p.Name, Count: counts[p.ID]}
	}
	return lines
}

// Build produces the lines of the given report
func Build(kind Kind, snap cache.Snapshot) []Line {
	if kind == KindProjects {
		return ByProject(snap.Tasks, snap.Projects)
	}
	return ByStatus(snap.Tasks)
}

// Format renders a report as plain text
func Format(kind Kind, lines []Line) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== REPORT: %s ===\n\n", strings.ToUpper(string(kind)))
	for _, l := range lines {
		fmt.Fprintf(&b, "%s: %d tasks\n", l.Label, l.Count)
	}
	return b.String()
}

// WriteCSV exports tasks as CSV with every string field quoted
func WriteCSV(w io.Writer, snap cache.Snapshot) error {
	if _, err := io.WriteString(w, "ID,Title,Status,Priority,Project\n"); err != nil {
		return err
	}
	for _, t := range snap.Tasks {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%s,%s\n",
			t.ID,
			quote(t.Title),
			quote(string(t.Status)),
			quote(string(t.Priority)),
			quote(snap.ProjectName(t.ProjectID)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportFile writes the CSV export to path, replacing any existing file
func ExportFile(path string, snap cache.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, snap)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
