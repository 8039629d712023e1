package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/apitest"
	"github.com/tgienger/taskboard/internal/models"
)

func newServer(t *testing.T) *apitest.Server {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("TASKBOARD_PASSWORD", "")

	srv := apitest.NewServer(t)
	srv.Tasks = apitest.Fixture(5, 2)
	srv.Projects = []models.Project{
		{ID: 1, ProjectInput: models.ProjectInput{Name: "Alpha"}},
		{ID: 2, ProjectInput: models.ProjectInput{Name: "Empty"}},
	}
	return srv
}

func run(t *testing.T, srv *apitest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", srv.BaseURL()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func login(t *testing.T, srv *apitest.Server) {
	t.Helper()
	out, err := run(t, srv, "", "login", "-u", apitest.Username, "-p", apitest.Password)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged in as admin")
}

func TestReportTasks(t *testing.T) {
	srv := newServer(t)
	login(t, srv)

	out, err := run(t, srv, "", "report", "tasks")
	require.NoError(t, err)
	assert.Equal(t, "=== REPORT: TASKS ===\n\nCompleted: 2 tasks\nPending: 3 tasks\n", out)

	reqs := srv.Requests(http.MethodGet, "/tasks")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+apitest.Token, reqs[0].Auth)
}

func TestReportProjects(t *testing.T) {
	srv := newServer(t)
	login(t, srv)

	out, err := run(t, srv, "", "report", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha: 0 tasks")
	assert.Contains(t, out, "Empty: 0 tasks")
}

func TestReportUnknownKind(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv, "", "report", "people")
	assert.ErrorContains(t, err, "unknown report")
}

func TestReportRequiresLogin(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv, "", "report", "tasks")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, srv.Requests(http.MethodGet, "/tasks"))
}

func TestLoginPromptsForPassword(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, apitest.Password+"\n", "login", "-u", apitest.Username)
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as admin")
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv, "", "login", "-u", apitest.Username, "-p", "nope")
	assert.ErrorContains(t, err, "Incorrect username or password")

	_, err = run(t, srv, "", "report", "tasks")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogout(t *testing.T) {
	srv := newServer(t)
	login(t, srv)

	out, err := run(t, srv, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = run(t, srv, "", "report", "tasks")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestExpiredTokenIsCleared(t *testing.T) {
	srv := newServer(t)
	login(t, srv)
	srv.ExpireSessions()

	_, err := run(t, srv, "", "report", "tasks")
	require.Error(t, err)

	_, err = run(t, srv, "", "report", "tasks")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestExport(t *testing.T) {
	srv := newServer(t)
	login(t, srv)

	path := filepath.Join(t.TempDir(), "tasks.csv")
	out, err := run(t, srv, "", "export", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 5 tasks")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "ID,Title,Status,Priority,Project", lines[0])
	assert.Equal(t, `1,"Task 1","Completada","Media","no project"`, lines[1])
}

func TestConfigDump(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: "+srv.BaseURL())
	assert.Contains(t, out, "file: export_tasks.csv")
}
