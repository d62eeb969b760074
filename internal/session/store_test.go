package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		ID:    "1",
		Email: "driver@example.com",
		Name:  "Test Driver",
		Role:  RoleUser,
	}
}

func TestStoreGetEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, ok := s.Get()
	assert.False(t, ok, "empty store should report no session")
	assert.Empty(t, s.Token())
}

func TestStoreSetGetClear(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	want := Session{Token: "t1", Profile: testProfile()}
	require.NoError(t, s.Set(want))

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, "t1", s.Token())

	require.NoError(t, s.Clear())
	_, ok = s.Get()
	assert.False(t, ok, "cleared store should report no session")
	assert.Empty(t, s.Token())

	// Clearing twice is not an error.
	require.NoError(t, s.Clear())
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(Session{Token: "t1", Profile: testProfile()}))

	// A fresh store over the same directory simulates a process restart.
	s2, err := NewStore(dir)
	require.NoError(t, err)
	got, ok := s2.Get()
	require.True(t, ok)
	assert.Equal(t, "t1", got.Token)
	assert.Equal(t, "driver@example.com", got.Profile.Email)
}

func TestStoreFailsClosedOnPartialWrites(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name: "token without user",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFile), []byte("t1"), 0o600))
			},
		},
		{
			name: "user without token",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, userFile), []byte(`{"id":"1"}`), 0o600))
			},
		},
		{
			name: "malformed user blob",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFile), []byte("t1"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, userFile), []byte("{not json"), 0o600))
			},
		},
		{
			name: "blank token",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFile), []byte("  \n"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, userFile), []byte(`{"id":"1"}`), 0o600))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			s, err := NewStore(dir)
			require.NoError(t, err)
			_, ok := s.Get()
			assert.False(t, ok, "partial session must read as logged out")
		})
	}
}

func TestStoreTokenIgnoresDamagedProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFile), []byte("t1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, userFile), []byte("{not json"), 0o600))

	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "t1", s.Token(), "gateway still attaches a token with a damaged profile")
}

func TestStoreLastWriteWins(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set(Session{Token: "t1", Profile: testProfile()}))
	second := testProfile()
	second.ID = "2"
	second.Email = "other@example.com"
	require.NoError(t, s.Set(Session{Token: "t2", Profile: second}))

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "t2", got.Token)
	assert.Equal(t, "2", got.Profile.ID)
}
