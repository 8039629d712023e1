package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tgienger/taskboard/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type commentRequest struct {
	TaskID int64  `json:"task_id"`
	Text   string `json:"comment_text"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", loginRequest{username, password}, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &RequestError{Method: http.MethodPost, Path: "/auth/login", Status: http.StatusOK, Message: "login response carried no token"}
	}
	return resp.AccessToken, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := c.Do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.Do(ctx, http.MethodPost, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces the full record of task id
func (c *Client) UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	if err := c.Do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.Do(ctx, http.MethodPost, "/projects", in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", id), in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := c.Do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AddComment(ctx context.Context, taskID int64, text string) (*models.Comment, error) {
	var comment models.Comment
	if err := c.Do(ctx, http.MethodPost, "/comments", commentRequest{TaskID: taskID, Text: text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/comments/%d", taskID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) TaskHistory(ctx context.Context, taskID int64) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/history/%d", taskID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AllHistory returns the most recent history across all tasks
func (c *Client) AllHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	if err := c.Do(ctx, http.MethodGet, "/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if err := c.Do(ctx, http.MethodGet, "/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	return c.Do(ctx, http.MethodPut, "/notifications/read", nil, nil)
}
