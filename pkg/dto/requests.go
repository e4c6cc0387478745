// Package dto declares the JSON request payloads. Field names match the
// previous backend exactly; numeric fields arrive loosely typed (number or
// numeric string) and go through Number before validation.
package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ActivityRequest struct {
	Email          string `json:"email"`
	EarningsEarned any    `json:"earningsEarned"`
}

type ScreenTimeRequest struct {
	Email     string `json:"email"`
	TimeSpent any    `json:"timeSpent"`
}

type WithdrawRequest struct {
	Email  string `json:"email"`
	Amount any    `json:"amount"`
	Method string `json:"method"`
}

// CancelRequest and ApproveRequest address a request by its creation date;
// ID takes precedence when a client sends it.
type CancelRequest struct {
	Email string `json:"email"`
	Date  string `json:"date"`
	ID    string `json:"id"`
}

type ApproveRequest struct {
	Email string `json:"email"`
	Date  string `json:"date"`
	ID    string `json:"id"`
}

type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Number coerces a loosely typed JSON value to a float64. JSON numbers and
// numeric strings pass; everything else, including NaN and infinities, is
// rejected.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
