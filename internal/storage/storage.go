// Package storage persists the full application state. The contract is
// deliberately coarse: read everything at startup, rewrite everything after
// each mutation. Backends only have to honor that contract, so the core
// never depends on the storage technology underneath.
package storage

import "github.com/earnwatch/earnwatch/internal/models"

// UserSnapshot carries every account plus the insertion order of their
// emails. Order is what keeps admin listings deterministic across restarts.
type UserSnapshot struct {
	Order    []string
	Accounts map[string]*models.Account
}

// Persister is the durable store behind both in-memory components. SaveUsers
// and SaveFeedback are called synchronously inside the mutating operation's
// critical section; an error means nothing was durably written and the
// caller must roll the mutation back.
type Persister interface {
	LoadUsers() (UserSnapshot, error)
	SaveUsers(snap UserSnapshot) error
	LoadFeedback() ([]models.FeedbackEntry, error)
	SaveFeedback(entries []models.FeedbackEntry) error
	Close() error
}
