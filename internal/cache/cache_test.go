package cache_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/apitest"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

func newCache(t *testing.T) (*cache.Cache, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.Tasks = apitest.Fixture(5, 2)
	srv.Projects = []models.Project{{ID: 1, ProjectInput: models.ProjectInput{Name: "Alpha"}}}

	client := api.NewClient(srv.BaseURL(), 0)
	client.SetTokenSource(func() string { return apitest.Token })
	return cache.New(client), srv
}

func TestRefresh_CommitsAllThree(t *testing.T) {
	c, srv := newCache(t)

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 5)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Users, 1)
	assert.True(t, c.Loaded())
	assert.Equal(t, snap, c.Snapshot())

	assert.Len(t, srv.Requests(http.MethodGet, "/tasks"), 1)
	assert.Len(t, srv.Requests(http.MethodGet, "/projects"), 1)
	assert.Len(t, srv.Requests(http.MethodGet, "/users"), 1)
}

func TestRefresh_Idempotent(t *testing.T) {
	c, _ := newCache(t)

	first, err := c.Refresh(context.Background())
	require.NoError(t, err)
	second, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRefresh_PartialFailureKeepsPreviousSnapshot(t *testing.T) {
	c, srv := newCache(t)

	before, err := c.Refresh(context.Background())
	require.NoError(t, err)

	srv.SetTasks(apitest.Fixture(7, 0))
	srv.Fail(http.MethodGet, "/users", http.StatusInternalServerError, "users unavailable")

	hookRuns := 0
	c.OnRefresh(func(cache.Snapshot) { hookRuns++ })

	_, err = c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRequestFailed)
	assert.Contains(t, err.Error(), "users unavailable")

	assert.Equal(t, before, c.Snapshot(), "no partial commit")
	assert.Len(t, c.Snapshot().Tasks, 5)
	assert.Zero(t, hookRuns)
}

func TestHooksRunInOrder(t *testing.T) {
	c, _ := newCache(t)
	var order []string
	c.OnRefresh(func(s cache.Snapshot) { order = append(order, "stats") })
	c.OnRefresh(func(s cache.Snapshot) { order = append(order, "board") })

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stats", "board"}, order)
}

func TestReset(t *testing.T) {
	c, _ := newCache(t)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	c.Reset()
	assert.False(t, c.Loaded())
	assert.Empty(t, c.Snapshot().Tasks)
}

func TestSnapshotLookups(t *testing.T) {
	snap := cache.Snapshot{
		Tasks:    apitest.Fixture(2, 0),
		Projects: []models.Project{{ID: 3, ProjectInput: models.ProjectInput{Name: "Website"}}},
		Users:    []models.User{{ID: 9, Username: "lee"}},
	}

	assert.Equal(t, "Website", snap.ProjectName(3))
	assert.Equal(t, cache.NoProject, snap.ProjectName(0))
	assert.Equal(t, cache.NoProject, snap.ProjectName(42))
	assert.Equal(t, "lee", snap.UserName(9))
	assert.Equal(t, cache.Unassigned, snap.UserName(0))

	task, ok := snap.Task(2)
	require.True(t, ok)
	assert.Equal(t, "Task 2", task.Title)
	_, ok = snap.Task(99)
	assert.False(t, ok)
}
