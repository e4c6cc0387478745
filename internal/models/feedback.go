package models

// FeedbackEntry is a single submitted feedback message. Entries are
// write-once; nothing ever mutates or deletes them.
type FeedbackEntry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Date    string `json:"date"`
}
