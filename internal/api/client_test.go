package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/apitest"
	"github.com/tgienger/taskboard/internal/models"
)

func newClient(srv *apitest.Server, token string) *api.Client {
	c := api.NewClient(srv.BaseURL(), 0)
	c.SetTokenSource(func() string { return token })
	return c
}

func TestLogin(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, "")

	token, err := c.Login(context.Background(), apitest.Username, apitest.Password)
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, token)

	reqs := srv.Requests(http.MethodPost, "/auth/login")
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Auth, "no token held, no auth header")
}

func TestLogin_BadCredentialsIsRequestFailed(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, "")
	called := false
	c.OnUnauthorized(func() { called = true })

	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRequestFailed)
	assert.NotErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, "Incorrect username or password", err.Error())
	assert.False(t, called, "unauthenticated 401 must not run the expiry hook")
}

func TestDo_AttachesHeaders(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, apitest.Token)

	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)

	reqs := srv.Requests(http.MethodGet, "/tasks")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+apitest.Token, reqs[0].Auth)
}

func TestDo_UnauthorizedExpiresSession(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, "stale-token")
	calls := 0
	c.OnUnauthorized(func() { calls++ })

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, calls)
}

func TestDo_NoContent(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Tasks = apitest.Fixture(1, 0)
	c := newClient(srv, apitest.Token)

	require.NoError(t, c.DeleteTask(context.Background(), 1))
	require.NoError(t, c.MarkNotificationsRead(context.Background()))
}

func TestDo_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(srv *apitest.Server)
		wantMsg string
		status  int
	}{
		{
			name: "detail string",
			setup: func(srv *apitest.Server) {
				srv.Fail(http.MethodGet, "/users", http.StatusNotFound, "Task not found")
			},
			wantMsg: "Task not found",
			status:  http.StatusNotFound,
		},
		{
			name: "validation list",
			setup: func(srv *apitest.Server) {
				srv.FailRaw(http.MethodGet, "/users", http.StatusUnprocessableEntity,
					`{"detail":[{"loc":["body","title"],"msg":"field required"},{"msg":"value is not a valid float"}]}`)
			},
			wantMsg: "field required; value is not a valid float",
			status:  http.StatusUnprocessableEntity,
		},
		{
			name: "unparseable body",
			setup: func(srv *apitest.Server) {
				srv.FailRaw(http.MethodGet, "/users", http.StatusInternalServerError, "<html>oops</html>")
			},
			wantMsg: "request failed",
			status:  http.StatusInternalServerError,
		},
		{
			name: "empty detail",
			setup: func(srv *apitest.Server) {
				srv.FailRaw(http.MethodGet, "/users", http.StatusBadGateway, `{"detail":""}`)
			},
			wantMsg: "request failed",
			status:  http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			tt.setup(srv)
			c := newClient(srv, apitest.Token)

			_, err := c.ListUsers(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrRequestFailed)

			var reqErr *api.RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.wantMsg, reqErr.Error())
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, "/users", reqErr.Path)
		})
	}
}

func TestDo_TransportError(t *testing.T) {
	srv := apitest.NewServer(t)
	base := srv.BaseURL()
	srv.Close()

	c := api.NewClient(base, 0)
	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRequestFailed)
}

func TestTaskRoundTrip(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, apitest.Token)
	ctx := context.Background()

	in := models.TaskInput{
		Title:          "Write spec",
		Status:         models.StatusPending,
		Priority:       models.PriorityMedium,
		DueDate:        "2026-11-01",
		EstimatedHours: 2.5,
	}
	created, err := c.CreateTask(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, in, created.Input())

	var sent map[string]any
	require.NoError(t, srv.Requests(http.MethodPost, "/tasks")[0].Decode(&sent))
	assert.Equal(t, float64(0), sent["project_id"])
	assert.Equal(t, float64(0), sent["assigned_to"])
	assert.NotContains(t, sent, "id")

	in.Status = models.StatusCompleted
	updated, err := c.UpdateTask(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	history, err := c.TaskHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "STATUS_CHANGED", history[1].Action)
	assert.Equal(t, "Completada", history[1].NewValue)

	comment, err := c.AddComment(ctx, created.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "looks good", comment.Text)

	comments, err := c.ListComments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	var body map[string]any
	require.NoError(t, srv.Requests(http.MethodPost, "/comments")[0].Decode(&body))
	assert.Equal(t, map[string]any{"task_id": float64(created.ID), "comment_text": "looks good"}, body)
}

func TestProjectRoundTrip(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(srv, apitest.Token)
	ctx := context.Background()

	p, err := c.CreateProject(ctx, models.ProjectInput{Name: "Launch"})
	require.NoError(t, err)

	_, err = c.UpdateProject(ctx, p.ID, models.ProjectInput{Name: "Launch v2", Description: "again"})
	require.NoError(t, err)

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Launch v2", projects[0].Name)

	require.NoError(t, c.DeleteProject(ctx, p.ID))
	projects, err = c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
