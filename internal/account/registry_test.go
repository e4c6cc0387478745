package account

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earnwatch/earnwatch/internal/models"
	"github.com/earnwatch/earnwatch/internal/storage"
)

type stubStore struct {
	saves int
	fail  bool
	last  storage.UserSnapshot
}

func (s *stubStore) SaveUsers(snap storage.UserSnapshot) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.saves++
	s.last = snap
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 678000000, time.UTC)
}

func newTestRegistry(store *stubStore) *Registry {
	r := NewRegistry(store)
	r.now = fixedClock
	return r
}

func TestSignupProfileRoundTrip(t *testing.T) {
	store := &stubStore{}
	r := newTestRegistry(store)

	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))

	prof, err := r.Profile("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", prof.Email)
	assert.Equal(t, "alice", prof.Username)
	assert.Zero(t, prof.Earnings)
	assert.Zero(t, prof.ScreenTime)
	assert.NotNil(t, prof.WithdrawRequests)
	assert.Empty(t, prof.WithdrawRequests)
	assert.Nil(t, prof.LastLogin)
	assert.Equal(t, 1, store.saves)
}

func TestSignupValidation(t *testing.T) {
	r := newTestRegistry(&stubStore{})

	assert.ErrorIs(t, r.Signup("", "a@x.com", "pw"), ErrMissingFields)
	assert.ErrorIs(t, r.Signup("alice", "", "pw"), ErrMissingFields)
	assert.ErrorIs(t, r.Signup("alice", "a@x.com", ""), ErrMissingFields)

	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))
	// Duplicate email conflicts no matter what the other fields are.
	assert.ErrorIs(t, r.Signup("someone-else", "a@x.com", "other-pw"), ErrUserExists)
}

func TestSignupStoresHashedPassword(t *testing.T) {
	store := &stubStore{}
	r := newTestRegistry(store)

	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))
	stored := store.last.Accounts["a@x.com"].Password
	assert.True(t, strings.HasPrefix(stored, "$2"), "password should be bcrypt hashed, got %q", stored)
	assert.NotEqual(t, "pw1", stored)
}

func TestLogin(t *testing.T) {
	r := newTestRegistry(&stubStore{})
	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))

	_, _, err := r.Login("a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = r.Login("nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	prof, err := r.Profile("a@x.com")
	require.NoError(t, err)
	assert.Nil(t, prof.LastLogin, "failed login must not touch lastLogin")

	username, lastLogin, err := r.Login("a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "2025-01-02T03:04:05.678Z", lastLogin)

	prof, err = r.Profile("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, prof.LastLogin)
	assert.Equal(t, lastLogin, *prof.LastLogin)
}

func TestLoginUpgradesLegacyPlaintextPassword(t *testing.T) {
	store := &stubStore{}
	r := newTestRegistry(store)
	r.Restore(storage.UserSnapshot{
		Order: []string{"old@x.com"},
		Accounts: map[string]*models.Account{
			"old@x.com": {Username: "old", Password: "plain-pw"},
		},
	})

	_, _, err := r.Login("old@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = r.Login("old@x.com", "plain-pw")
	require.NoError(t, err)

	stored := store.last.Accounts["old@x.com"].Password
	assert.True(t, strings.HasPrefix(stored, "$2"), "legacy password should be rehashed on login")

	// The upgraded hash still verifies.
	_, _, err = r.Login("old@x.com", "plain-pw")
	require.NoError(t, err)
}

func TestAddEarnings(t *testing.T) {
	r := newTestRegistry(&stubStore{})
	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))

	_, err := r.AddEarnings("nobody@x.com", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	// Unknown account wins over a bad amount.
	_, err = r.AddEarnings("nobody@x.com", -1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = r.AddEarnings("a@x.com", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = r.AddEarnings("a@x.com", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	total, err := r.AddEarnings("a@x.com", 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	total, err = r.AddEarnings("a@x.com", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 100.5, total)
}

func TestAddScreenTime(t *testing.T) {
	r := newTestRegistry(&stubStore{})
	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))

	_, err := r.AddScreenTime("a@x.com", -3)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	total, err := r.AddScreenTime("a@x.com", 42)
	require.NoError(t, err)
	assert.Equal(t, 42.0, total)

	total, err = r.AddScreenTime("a@x.com", 0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, total)
}

func TestPersistFailureRollsBack(t *testing.T) {
	store := &stubStore{}
	r := newTestRegistry(store)
	require.NoError(t, r.Signup("alice", "a@x.com", "pw1"))
	_, err := r.AddEarnings("a@x.com", 100)
	require.NoError(t, err)

	store.fail = true

	_, err = r.AddEarnings("a@x.com", 50)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidAmount)

	err = r.Signup("bob", "b@x.com", "pw2")
	require.Error(t, err)

	_, _, err = r.Login("a@x.com", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	store.fail = false

	prof, err := r.Profile("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 100.0, prof.Earnings, "failed flush must not change earnings")
	assert.Nil(t, prof.LastLogin, "failed flush must not change lastLogin")

	_, err = r.Profile("b@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound, "failed flush must not create the account")
}

func TestRestoreKeepsOrderAndDefaults(t *testing.T) {
	r := newTestRegistry(&stubStore{})
	r.Restore(storage.UserSnapshot{
		Order: []string{"c@x.com", "a@x.com"},
		Accounts: map[string]*models.Account{
			"c@x.com": {Username: "carol", Password: "pw"},
			"a@x.com": {Username: "alice", Password: "pw"},
		},
	})

	snap := r.Snapshot()
	assert.Equal(t, []string{"c@x.com", "a@x.com"}, snap.Order)
	assert.NotNil(t, snap.Accounts["c@x.com"].WithdrawRequests)
}
