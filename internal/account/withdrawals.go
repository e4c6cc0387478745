package account

import (
	"math"

	"github.com/google/uuid"

	"github.com/earnwatch/earnwatch/internal/models"
)

// Withdrawal lifecycle: a request starts pending with its amount already
// debited from earnings. Cancel removes a pending request and refunds it;
// approve flips the flag in place with no balance effect. An approved
// request can never be cancelled or re-approved.

// RequestWithdrawal debits earnings and appends a pending request. The
// request gets a uuid so it stays addressable even if two requests share a
// creation timestamp.
func (r *Registry) RequestWithdrawal(email string, amount float64, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return ErrUserNotFound
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount > acct.Earnings {
		return ErrInvalidAmount
	}

	acct.Earnings -= amount
	acct.WithdrawRequests = append(acct.WithdrawRequests, models.WithdrawRequest{
		ID:     uuid.NewString(),
		Amount: amount,
		Method: method,
		Date:   models.ISOTimestamp(r.now()),
	})

	if err := r.persistLocked(); err != nil {
		acct.Earnings += amount
		acct.WithdrawRequests = acct.WithdrawRequests[:len(acct.WithdrawRequests)-1]
		return err
	}
	return nil
}

// CancelWithdrawal removes a pending request and refunds its amount. Only
// pending requests match: cancelling an approved request reports not-found,
// exactly as if the request never existed.
func (r *Registry) CancelWithdrawal(email, date, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return ErrUserNotFound
	}

	idx := -1
	for i, req := range acct.WithdrawRequests {
		if req.Approved {
			continue
		}
		if matchesRequest(req, date, id) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRequestNotFound
	}

	prev := acct.WithdrawRequests
	removed := prev[idx]
	// Full slice expression forces a fresh backing array so prev stays
	// intact for rollback.
	acct.WithdrawRequests = append(prev[:idx:idx], prev[idx+1:]...)
	acct.Earnings += removed.Amount

	if err := r.persistLocked(); err != nil {
		acct.WithdrawRequests = prev
		acct.Earnings -= removed.Amount
		return err
	}
	return nil
}

// ApproveWithdrawal marks a request approved. The lookup matches regardless
// of approval state; a second approval of the same request is a distinct
// already-approved failure, not a not-found.
func (r *Registry) ApproveWithdrawal(email, date, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return ErrUserNotFound
	}

	var req *models.WithdrawRequest
	for i := range acct.WithdrawRequests {
		if matchesRequest(acct.WithdrawRequests[i], date, id) {
			req = &acct.WithdrawRequests[i]
			break
		}
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Approved {
		return ErrAlreadyApproved
	}

	req.Approved = true
	if err := r.persistLocked(); err != nil {
		req.Approved = false
		return err
	}
	return nil
}

// Withdrawals returns one account's requests in insertion order.
func (r *Registry) Withdrawals(email string) ([]models.WithdrawRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return append([]models.WithdrawRequest{}, acct.WithdrawRequests...), nil
}

// AllWithdrawals flattens every account's requests for the admin view,
// accounts in signup order, requests in insertion order.
func (r *Registry) AllWithdrawals() []models.AnnotatedWithdrawal {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := []models.AnnotatedWithdrawal{}
	for _, email := range r.order {
		acct := r.accounts[email]
		for _, req := range acct.WithdrawRequests {
			status := "pending"
			if req.Approved {
				status = "approved"
			}
			all = append(all, models.AnnotatedWithdrawal{
				Email:    email,
				Username: acct.Username,
				Amount:   req.Amount,
				Method:   req.Method,
				Date:     req.Date,
				Status:   status,
				Approved: req.Approved,
			})
		}
	}
	return all
}

// matchesRequest prefers the uuid when the caller supplied one; the creation
// date remains the compatible lookup key for old clients.
func matchesRequest(req models.WithdrawRequest, date, id string) bool {
	if id != "" {
		return req.ID == id
	}
	return req.Date == date
}
