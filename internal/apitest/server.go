// Package apitest runs an in-memory task API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tgienger/taskboard/internal/models"
)

// Default credentials accepted by the fake login endpoint
const (
	Username = "admin"
	Password = "admin"
	Token    = "test-token"
)

// Request is one request the server received
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// Decode unmarshals the recorded body into v
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type failure struct {
	status int
	detail string
	raw    string
}

// Server is a fake backend. Its fields may be seeded before the first
// request; after that use the locked accessors.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	Tasks         []models.Task
	Projects      []models.Project
	Users         []models.User
	Comments      []models.Comment
	History       []models.HistoryEntry
	Notifications []models.Notification

	token    string
	nextID   int64
	failures map[string]failure
	requests []Request
}

// NewServer starts a fake backend that is closed with the test
func NewServer(t testing.TB) *Server {
	s := &Server{
		Users:    []models.User{{ID: 1, Username: Username}},
		token:    Token,
		nextID:   100,
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to api.NewClient
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Fail makes every request matching method and path (without the /api
// prefix) answer with status and {"detail": detail}
func (s *Server) Fail(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

// FailRaw answers matching requests with status and a verbatim body
func (s *Server) FailRaw(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, raw: body}
}

// Heal removes an injected failure
func (s *Server) Heal(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// ExpireSessions invalidates every issued token
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = "expired-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

// Requests returns the recorded requests matching method and path. An
// empty method or path matches anything.
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// SetTasks replaces the task collection
func (s *Server) SetTasks(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tasks = tasks
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(s.record)
		r.Use(s.inject)

		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.createTask)
			r.Put("/tasks/{id}", s.updateTask)
			r.Delete("/tasks/{id}", s.deleteTask)

			r.Get("/projects", s.listProjects)
			r.Post("/projects", s.createProject)
			r.Put("/projects/{id}", s.updateProject)
			r.Delete("/projects/{id}", s.deleteProject)

			r.Get("/users", s.listUsers)

			r.Post("/comments", s.createComment)
			r.Get("/comments/{taskID}", s.listComments)

			r.Get("/history", s.allHistory)
			r.Get("/history/{taskID}", s.taskHistory)

			r.Get("/notifications", s.listNotifications)
			r.Put("/notifications/read", s.markRead)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.raw != "" {
			w.WriteHeader(f.status)
			io.WriteString(w, f.raw)
			return
		}
		writeError(w, f.status, f.detail)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if req.Username != Username || req.Password != Password {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Task{}, s.Tasks...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ts := now()
	task := models.Task{ID: s.nextID, TaskInput: in, CreatedBy: 1, CreatedAt: ts, UpdatedAt: ts}
	s.Tasks = append(s.Tasks, task)
	s.addHistory(task.ID, "CREATED", "", in.Title)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	var in models.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.Tasks {
		if t.ID != id {
			continue
		}
		if t.Status != in.Status {
			s.addHistory(id, "STATUS_CHANGED", string(t.Status), string(in.Status))
		}
		if t.Title != in.Title {
			s.addHistory(id, "TITLE_CHANGED", t.Title, in.Title)
		}
		t.TaskInput = in
		t.UpdatedAt = now()
		s.Tasks[i] = t
		writeJSON(w, http.StatusOK, t)
		return
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.Tasks {
		if t.ID == id {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			s.addHistory(id, "DELETED", t.Title, "")
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

// addHistory must be called with mu held
func (s *Server) addHistory(taskID int64, action, oldValue, newValue string) {
	s.History = append(s.History, models.HistoryEntry{
		ID:        int64(len(s.History) + 1),
		TaskID:    taskID,
		UserID:    1,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: now(),
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Project{}, s.Projects...))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := models.Project{ID: s.nextID, ProjectInput: in}
	s.Projects = append(s.Projects, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	var in models.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.Projects {
		if p.ID == id {
			s.Projects[i].ProjectInput = in
			writeJSON(w, http.StatusOK, s.Projects[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Project not found")
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.Projects {
		if p.ID == id {
			s.Projects = append(s.Projects[:i], s.Projects[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Project not found")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.User{}, s.Users...))
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TaskID int64  `json:"task_id"`
		Text   string `json:"comment_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Comment{
		ID:        int64(len(s.Comments) + 1),
		TaskID:    in.TaskID,
		UserID:    1,
		Text:      in.Text,
		CreatedAt: now(),
	}
	s.Comments = append(s.Comments, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	taskID, _ := pathID(r, "taskID")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.Comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) allHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, 0, len(s.History))
	for i := len(s.History) - 1; i >= 0; i-- {
		out = append(out, s.History[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) taskHistory(w http.ResponseWriter, r *http.Request) {
	taskID, _ := pathID(r, "taskID")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.HistoryEntry{}
	for _, h := range s.History {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Notification{}, s.Notifications...))
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Notifications {
		s.Notifications[i].Read = true
	}
	w.WriteHeader(http.StatusNoContent)
}

// Fixture returns n tasks titled "Task 1".."Task n", the first completed
// tasks completed and the rest pending
func Fixture(n, completed int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		status := models.StatusPending
		if i < completed {
			status = models.StatusCompleted
		}
		tasks[i] = models.Task{
			ID: int64(i + 1),
			TaskInput: models.TaskInput{
				Title:    fmt.Sprintf("Task %d", i+1),
				Status:   status,
				Priority: models.PriorityMedium,
			},
		}
	}
	return tasks
}
