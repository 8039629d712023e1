package session

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSlot struct {
	token   string
	saveErr error
	clears  int
}

func (m *memSlot) Load() (string, error) { return m.token, nil }
func (m *memSlot) Save(t string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = t
	return nil
}
func (m *memSlot) Clear() error {
	m.clears++
	m.token = ""
	return nil
}

type fakeAuth struct {
	token string
	err   error
}

func (f fakeAuth) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

func TestLogin(t *testing.T) {
	slot := &memSlot{}
	s := New(slot, fakeAuth{token: "tok"})

	token, err := s.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, "admin", s.Username())
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", slot.token, "token persisted")
}

func TestLogin_Failure(t *testing.T) {
	slot := &memSlot{}
	s := New(slot, fakeAuth{err: errors.New("Incorrect username or password")})

	_, err := s.Login(context.Background(), "admin", "bad")
	require.Error(t, err)
	assert.False(t, s.Authenticated())
	assert.Empty(t, slot.token)
}

func TestLogin_SaveFailureLeavesLoggedOut(t *testing.T) {
	s := New(&memSlot{saveErr: errors.New("disk full")}, fakeAuth{token: "tok"})

	_, err := s.Login(context.Background(), "admin", "admin")
	require.Error(t, err)
	assert.False(t, s.Authenticated())
}

func TestLogout(t *testing.T) {
	slot := &memSlot{}
	s := New(slot, fakeAuth{token: "tok"})

	_, err := s.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	s.Logout()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Username())
	assert.Empty(t, slot.token)

	// repeated logout still clears
	s.Logout()
	assert.Equal(t, 2, slot.clears)
}

func TestRestore(t *testing.T) {
	t.Run("empty slot", func(t *testing.T) {
		s := New(&memSlot{}, fakeAuth{})
		ok, err := s.Restore()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, s.Authenticated())
	})

	t.Run("stored opaque token", func(t *testing.T) {
		s := New(&memSlot{token: "opaque"}, fakeAuth{})
		ok, err := s.Restore()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "opaque", s.Token())
		assert.Empty(t, s.Username())
	})

	t.Run("stored jwt", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"maria","user_id":7}`))
		s := New(&memSlot{token: "h." + payload + ".sig"}, fakeAuth{})
		ok, err := s.Restore()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "maria", s.Username())
	})
}
