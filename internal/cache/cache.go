package cache

import (
	"context"
	"fmt"

	"github.com/tgienger/taskboard/internal/logger"
	"github.com/tgienger/taskboard/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Display fallbacks for missing references
const (
	NoProject  = "no project"
	Unassigned = "unassigned"
)

// Source lists the three cached collections
type Source interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Snapshot is one consistent view of tasks, projects and users
type Snapshot struct {
	Tasks    []models.Task
	Projects []models.Project
	Users    []models.User
}

// Task looks up a task by id
func (s Snapshot) Task(id int64) (models.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Project looks up a project by id
func (s Snapshot) Project(id int64) (models.Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// User looks up a user by id
func (s Snapshot) User(id int64) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// ProjectName resolves a project reference for display
func (s Snapshot) ProjectName(id int64) string {
	if p, ok := s.Project(id); ok {
		return p.Name
	}
	return NoProject
}

// UserName resolves a user reference for display
func (s Snapshot) UserName(id int64) string {
	if u, ok := s.User(id); ok {
		return u.Username
	}
	return Unassigned
}

// Hook runs after every committed snapshot
type Hook func(Snapshot)

// Cache holds the last committed snapshot. It is owned by a single writer
// (the UI loop); Fetch may run anywhere since it touches no cache state.
type Cache struct {
	source  Source
	current Snapshot
	loaded  bool
	hooks   []Hook
}

// New creates an empty cache backed by source
func New(source Source) *Cache {
	return &Cache{source: source}
}

// OnRefresh registers a hook run, in registration order, after each commit
func (c *Cache) OnRefresh(h Hook) {
	c.hooks = append(c.hooks, h)
}

// Fetch loads all three collections concurrently. Any failure fails the
// whole fetch; nothing is committed.
func (c *Cache) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := c.source.ListTasks(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		projects, err := c.source.ListProjects(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		snap.Projects = projects
		return nil
	})
	g.Go(func() error {
		users, err := c.source.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		snap.Users = users
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("refresh failed", err)
		return Snapshot{}, err
	}
	return snap, nil
}

// Commit replaces the current snapshot and runs the hooks
func (c *Cache) Commit(snap Snapshot) {
	c.current = snap
	c.loaded = true
	logger.Debug("snapshot committed",
		zap.Int("tasks", len(snap.Tasks)),
		zap.Int("projects", len(snap.Projects)),
		zap.Int("users", len(snap.Users)))
	for _, h := range c.hooks {
		h(snap)
	}
}

// Refresh fetches and commits in one step
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	snap, err := c.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c.Commit(snap)
	return snap, nil
}

// Snapshot returns the last committed snapshot
func (c *Cache) Snapshot() Snapshot {
	return c.current
}

// Loaded reports whether any snapshot was committed yet
func (c *Cache) Loaded() bool {
	return c.loaded
}

// Reset drops the snapshot, e.g. after logout
func (c *Cache) Reset() {
	c.current = Snapshot{}
	c.loaded = false
}
