package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/earnwatch/earnwatch/internal/models"
)

// FileStore keeps state in two human-readable JSON files: an object keyed by
// email for accounts and an array for feedback, the same layout the previous
// backend wrote. Writes go to a temp file first and are renamed into place,
// so a crash mid-write never corrupts the previous snapshot.
type FileStore struct {
	usersPath    string
	feedbackPath string
}

func NewFileStore(usersPath, feedbackPath string) *FileStore {
	return &FileStore{
		usersPath:    usersPath,
		feedbackPath: feedbackPath,
	}
}

// LoadUsers decodes users.json token by token instead of into a plain map so
// the file's key order survives as the accounts' insertion order. A missing
// file means a fresh install and yields an empty snapshot.
func (s *FileStore) LoadUsers() (UserSnapshot, error) {
	snap := UserSnapshot{Accounts: make(map[string]*models.Account)}

	f, err := os.Open(s.usersPath)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("opening %s: %w", s.usersPath, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("reading %s: %w", s.usersPath, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return snap, fmt.Errorf("%s: expected a JSON object keyed by email", s.usersPath)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return snap, fmt.Errorf("reading %s: %w", s.usersPath, err)
		}
		email, ok := keyTok.(string)
		if !ok {
			return snap, fmt.Errorf("%s: non-string account key", s.usersPath)
		}

		acct := &models.Account{}
		if err := dec.Decode(acct); err != nil {
			return snap, fmt.Errorf("decoding account %q: %w", email, err)
		}
		if acct.WithdrawRequests == nil {
			acct.WithdrawRequests = []models.WithdrawRequest{}
		}

		snap.Accounts[email] = acct
		snap.Order = append(snap.Order, email)
	}

	return snap, nil
}

func (s *FileStore) SaveUsers(snap UserSnapshot) error {
	data, err := encodeUsers(snap)
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}
	return writeAtomic(s.usersPath, data)
}

func (s *FileStore) LoadFeedback() ([]models.FeedbackEntry, error) {
	entries := []models.FeedbackEntry{}

	data, err := os.ReadFile(s.feedbackPath)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return entries, fmt.Errorf("reading %s: %w", s.feedbackPath, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return entries, fmt.Errorf("decoding %s: %w", s.feedbackPath, err)
	}
	return entries, nil
}

func (s *FileStore) SaveFeedback(entries []models.FeedbackEntry) error {
	if entries == nil {
		entries = []models.FeedbackEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}
	return writeAtomic(s.feedbackPath, append(data, '\n'))
}

func (s *FileStore) Close() error { return nil }

// encodeUsers writes the snapshot as an indented JSON object whose keys
// follow insertion order, matching what JSON.stringify(users, null, 2)
// produced before.
func encodeUsers(snap UserSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	written := 0
	for _, email := range snap.Order {
		acct, ok := snap.Accounts[email]
		if !ok {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")

		key, err := json.Marshal(email)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		val, err := json.MarshalIndent(acct, "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(val)
		written++
	}

	if written > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
