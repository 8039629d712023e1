package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tgienger/taskboard/internal/logger"
	"go.uber.org/zap"
)

// TokenSlot is the single durable key-value slot holding the bearer token
type TokenSlot interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Authenticator exchanges credentials for a token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Store holds the bearer token and the current user. The token is read by
// request goroutines, so access is locked.
type Store struct {
	slot TokenSlot
	auth Authenticator

	mu       sync.RWMutex
	token    string
	username string
}

// New creates a session store
func New(slot TokenSlot, auth Authenticator) *Store {
	return &Store{slot: slot, auth: auth}
}

// Login authenticates and persists the token
func (s *Store) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	if err := s.slot.Save(token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.username = username
	s.mu.Unlock()

	logger.Info("logged in", zap.String("username", username))
	return token, nil
}

// Logout forgets the token in memory and in the durable slot. It is safe to
// call when already logged out, and from any goroutine.
func (s *Store) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token = ""
	s.username = ""
	s.mu.Unlock()

	if err := s.slot.Clear(); err != nil {
		logger.Error("clear stored token", err)
	}
	if wasAuthenticated {
		logger.Info("logged out")
	}
}

// Restore loads a previously stored token. The token is trusted until the
// first authenticated request says otherwise.
func (s *Store) Restore() (bool, error) {
	token, err := s.slot.Load()
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return false, nil
	}

	s.mu.Lock()
	s.token = token
	s.username = subject(token)
	s.mu.Unlock()
	return true, nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Username is the logged-in user, or "" when unknown
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// subject reads the "sub" claim of a JWT without verifying it; it is only
// used to label the session after a restore.
func subject(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	return claims.Sub
}
