package models

import "time"

// Account is the persisted record for one registered user. Accounts are
// keyed by email in the registry and in users.json, so the email does not
// appear on the struct itself.
type Account struct {
	Username         string            `json:"username"`
	Password         string            `json:"password"`
	Earnings         float64           `json:"earnings"`
	ScreenTime       float64           `json:"screenTime"`
	LastLogin        *string           `json:"lastLogin"`
	WithdrawRequests []WithdrawRequest `json:"withdrawRequests"`
}

// WithdrawRequest is a claim against accrued earnings awaiting approval.
// Date is the wire-level lookup key used by cancel/approve; ID is the
// collision-free identifier assigned at creation.
type WithdrawRequest struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method"`
	Date     string  `json:"date"`
	Approved bool    `json:"approved"`
}

// Profile is the public view of an account returned by GET /user/:email.
// It never carries the password.
type Profile struct {
	Email            string            `json:"email"`
	Username         string            `json:"username"`
	Earnings         float64           `json:"earnings"`
	ScreenTime       float64           `json:"screenTime"`
	WithdrawRequests []WithdrawRequest `json:"withdrawRequests"`
	LastLogin        *string           `json:"lastLogin"`
}

// AnnotatedWithdrawal is one entry of the flattened admin listing. Status is
// derived from Approved and never stored.
type AnnotatedWithdrawal struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	Approved bool    `json:"approved"`
}

// ISOTimestamp formats t the way the previous backend did (JavaScript
// Date.toISOString): UTC, millisecond precision, trailing Z. Withdrawal
// request dates persisted in that format must keep comparing equal.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
