// Package feedback is an append-only log of submitted messages. It shares
// nothing with the account state; the two are independent resources with
// independent flushes.
package feedback

import (
	"errors"
	"sync"
	"time"

	"github.com/earnwatch/earnwatch/internal/models"
)

var ErrMissingFields = errors.New("missing required fields")

// FeedbackPersister is the slice of the store the log needs.
type FeedbackPersister interface {
	SaveFeedback(entries []models.FeedbackEntry) error
}

type Log struct {
	mu      sync.Mutex
	entries []models.FeedbackEntry
	store   FeedbackPersister
	now     func() time.Time
}

func NewLog(store FeedbackPersister) *Log {
	return &Log{
		entries: []models.FeedbackEntry{},
		store:   store,
		now:     time.Now,
	}
}

// Restore replaces the log with loaded entries. Called once at startup.
func (l *Log) Restore(entries []models.FeedbackEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]models.FeedbackEntry{}, entries...)
}

// Submit appends an entry and flushes. A flush failure drops the entry
// again so memory and disk stay in step.
func (l *Log) Submit(name, email, message string) error {
	if name == "" || email == "" || message == "" {
		return ErrMissingFields
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, models.FeedbackEntry{
		Name:    name,
		Email:   email,
		Message: message,
		Date:    models.ISOTimestamp(l.now()),
	})

	if l.store != nil {
		if err := l.store.SaveFeedback(l.entries); err != nil {
			l.entries = l.entries[:len(l.entries)-1]
			return err
		}
	}
	return nil
}

// All returns every entry in insertion order.
func (l *Log) All() []models.FeedbackEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.FeedbackEntry{}, l.entries...)
}
