// Package account holds the authoritative in-memory account state and the
// withdrawal workflow operating on it. A single mutex serializes every
// operation end to end: validate, mutate, flush to the store, respond. The
// flush happens inside the critical section and a flush failure rolls the
// mutation back, so a nil error always means the change is durable.
package account

import (
	"crypto/subtle"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/earnwatch/earnwatch/internal/models"
	"github.com/earnwatch/earnwatch/internal/storage"
)

// UserPersister is the slice of the store the registry needs.
type UserPersister interface {
	SaveUsers(snap storage.UserSnapshot) error
}

// Registry maps email to account and remembers signup order so listings stay
// deterministic. The store may be nil (tests).
type Registry struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	order    []string
	store    UserPersister
	now      func() time.Time
}

func NewRegistry(store UserPersister) *Registry {
	return &Registry{
		accounts: make(map[string]*models.Account),
		store:    store,
		now:      time.Now,
	}
}

// Restore replaces the registry state with a loaded snapshot. Called once at
// startup before the server accepts requests.
func (r *Registry) Restore(snap storage.UserSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts = make(map[string]*models.Account, len(snap.Accounts))
	r.order = nil
	for _, email := range snap.Order {
		acct, ok := snap.Accounts[email]
		if !ok {
			continue
		}
		if acct.WithdrawRequests == nil {
			acct.WithdrawRequests = []models.WithdrawRequest{}
		}
		r.accounts[email] = acct
		r.order = append(r.order, email)
	}
}

// Snapshot returns a deep copy of the current state, for the shutdown flush.
func (r *Registry) Snapshot() storage.UserSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := storage.UserSnapshot{
		Order:    append([]string(nil), r.order...),
		Accounts: make(map[string]*models.Account, len(r.accounts)),
	}
	for email, acct := range r.accounts {
		cp := *acct
		cp.WithdrawRequests = append([]models.WithdrawRequest{}, acct.WithdrawRequests...)
		snap.Accounts[email] = &cp
	}
	return snap
}

// Signup registers a new account with zero balances. The password is stored
// as a bcrypt hash, never plaintext.
func (r *Registry) Signup(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrMissingFields
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[email]; exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	r.accounts[email] = &models.Account{
		Username:         username,
		Password:         string(hash),
		WithdrawRequests: []models.WithdrawRequest{},
	}
	r.order = append(r.order, email)

	if err := r.persistLocked(); err != nil {
		delete(r.accounts, email)
		r.order = r.order[:len(r.order)-1]
		return err
	}
	return nil
}

// Login verifies credentials and stamps lastLogin. Unknown email and wrong
// password collapse into the same error so callers can't probe for accounts.
// Records still holding a plaintext password from the old backend are
// verified by direct comparison and upgraded to a hash on the spot.
func (r *Registry) Login(email, password string) (username, lastLogin string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok || !verifyPassword(acct.Password, password) {
		return "", "", ErrInvalidCredentials
	}

	prevLogin, prevPassword := acct.LastLogin, acct.Password
	if !isBcryptHash(acct.Password) {
		if hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); herr == nil {
			acct.Password = string(hash)
		}
	}

	stamp := models.ISOTimestamp(r.now())
	acct.LastLogin = &stamp

	if err := r.persistLocked(); err != nil {
		acct.LastLogin, acct.Password = prevLogin, prevPassword
		return "", "", err
	}
	return acct.Username, stamp, nil
}

// AddEarnings credits amount to the account's earnings and returns the new
// total. The existence check runs before amount validation; an unknown
// account wins even when the amount is also bad.
func (r *Registry) AddEarnings(email string, amount float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return 0, ErrUserNotFound
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, ErrInvalidAmount
	}

	acct.Earnings += amount
	if err := r.persistLocked(); err != nil {
		acct.Earnings -= amount
		return 0, err
	}
	return acct.Earnings, nil
}

// AddScreenTime mirrors AddEarnings for the screen-time accumulator.
func (r *Registry) AddScreenTime(email string, amount float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return 0, ErrUserNotFound
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, ErrInvalidAmount
	}

	acct.ScreenTime += amount
	if err := r.persistLocked(); err != nil {
		acct.ScreenTime -= amount
		return 0, err
	}
	return acct.ScreenTime, nil
}

// Profile returns the public view of an account.
func (r *Registry) Profile(email string) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return models.Profile{}, ErrUserNotFound
	}

	return models.Profile{
		Email:            email,
		Username:         acct.Username,
		Earnings:         acct.Earnings,
		ScreenTime:       acct.ScreenTime,
		WithdrawRequests: append([]models.WithdrawRequest{}, acct.WithdrawRequests...),
		LastLogin:        acct.LastLogin,
	}, nil
}

// persistLocked flushes the full state; the caller holds the mutex. The
// store serializes the snapshot before returning, so handing it the live
// accounts map is safe.
func (r *Registry) persistLocked() error {
	if r.store == nil {
		return nil
	}
	return r.store.SaveUsers(storage.UserSnapshot{
		Order:    append([]string(nil), r.order...),
		Accounts: r.accounts,
	})
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func verifyPassword(stored, supplied string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
