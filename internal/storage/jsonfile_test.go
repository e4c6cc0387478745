package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earnwatch/earnwatch/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "users.json"), filepath.Join(dir, "feedbacks.json"))
}

func TestLoadUsersMissingFile(t *testing.T) {
	s := newTestFileStore(t)

	snap, err := s.LoadUsers()
	require.NoError(t, err)
	assert.Empty(t, snap.Order)
	assert.Empty(t, snap.Accounts)
}

func TestUsersRoundTripPreservesOrder(t *testing.T) {
	s := newTestFileStore(t)

	lastLogin := "2025-01-02T03:04:05.678Z"
	snap := UserSnapshot{
		Order: []string{"c@x.com", "a@x.com", "b@x.com"},
		Accounts: map[string]*models.Account{
			"c@x.com": {
				Username:  "carol",
				Password:  "$2a$10$fakefakefakefakefakefake",
				Earnings:  60,
				LastLogin: &lastLogin,
				WithdrawRequests: []models.WithdrawRequest{
					{ID: "req-1", Amount: 40, Method: "bank", Date: lastLogin, Approved: true},
				},
			},
			"a@x.com": {Username: "alice", Password: "pw", ScreenTime: 12.5, WithdrawRequests: []models.WithdrawRequest{}},
			"b@x.com": {Username: "bob", Password: "pw", WithdrawRequests: []models.WithdrawRequest{}},
		},
	}

	require.NoError(t, s.SaveUsers(snap))

	loaded, err := s.LoadUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, loaded.Order, "file key order is the insertion order")

	carol := loaded.Accounts["c@x.com"]
	require.NotNil(t, carol)
	assert.Equal(t, "carol", carol.Username)
	assert.Equal(t, 60.0, carol.Earnings)
	require.NotNil(t, carol.LastLogin)
	assert.Equal(t, lastLogin, *carol.LastLogin)
	require.Len(t, carol.WithdrawRequests, 1)
	assert.Equal(t, "req-1", carol.WithdrawRequests[0].ID)
	assert.True(t, carol.WithdrawRequests[0].Approved)

	assert.Equal(t, 12.5, loaded.Accounts["a@x.com"].ScreenTime)
}

func TestLoadLegacyUsersFile(t *testing.T) {
	// A users.json written by the old backend: no request ids, lastLogin
	// present only after a login, withdrawRequests possibly missing.
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	legacy := `{
  "a@x.com": {
    "username": "alice",
    "password": "plain-pw",
    "earnings": 60,
    "screenTime": 120,
    "withdrawRequests": [
      {
        "amount": 40,
        "method": "bank",
        "date": "2024-06-01T10:00:00.000Z",
        "approved": false
      }
    ],
    "lastLogin": "2024-06-01T09:00:00.000Z"
  },
  "b@x.com": {
    "username": "bob",
    "password": "pw2",
    "earnings": 0,
    "screenTime": 0
  }
}`
	require.NoError(t, os.WriteFile(usersPath, []byte(legacy), 0o644))

	s := NewFileStore(usersPath, filepath.Join(dir, "feedbacks.json"))
	snap, err := s.LoadUsers()
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, snap.Order)

	alice := snap.Accounts["a@x.com"]
	require.NotNil(t, alice)
	assert.Equal(t, "plain-pw", alice.Password)
	require.Len(t, alice.WithdrawRequests, 1)
	assert.Empty(t, alice.WithdrawRequests[0].ID)
	assert.Equal(t, "2024-06-01T10:00:00.000Z", alice.WithdrawRequests[0].Date)

	bob := snap.Accounts["b@x.com"]
	require.NotNil(t, bob)
	assert.NotNil(t, bob.WithdrawRequests, "missing request list defaults to empty, not nil")
	assert.Empty(t, bob.WithdrawRequests)
}

func TestSaveUsersLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	s := NewFileStore(usersPath, filepath.Join(dir, "feedbacks.json"))

	require.NoError(t, s.SaveUsers(UserSnapshot{
		Order: []string{"a@x.com"},
		Accounts: map[string]*models.Account{
			"a@x.com": {Username: "alice", Password: "pw", WithdrawRequests: []models.WithdrawRequest{}},
		},
	}))

	_, err := os.Stat(usersPath)
	require.NoError(t, err)
	_, err = os.Stat(usersPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should have been renamed away")
}

func TestFeedbackRoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	entries, err := s.LoadFeedback()
	require.NoError(t, err)
	assert.Empty(t, entries)

	in := []models.FeedbackEntry{
		{Name: "alice", Email: "a@x.com", Message: "great app", Date: "2024-06-01T10:00:00.000Z"},
		{Name: "bob", Email: "b@x.com", Message: "meh", Date: "2024-06-02T10:00:00.000Z"},
	}
	require.NoError(t, s.SaveFeedback(in))

	out, err := s.LoadFeedback()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
