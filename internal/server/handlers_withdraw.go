package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/internal/account"
	"github.com/earnwatch/earnwatch/pkg/dto"
)

func (s *Server) requestWithdrawal(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if !identityMatches(c, req.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	amount, ok := dto.Number(req.Amount)
	if !ok {
		amount = math.NaN()
	}

	err := s.registry.RequestWithdrawal(req.Email, amount, req.Method)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal request submitted!"})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	case errors.Is(err, account.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid withdrawal amount."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) cancelWithdrawal(c *gin.Context) {
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if !identityMatches(c, req.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	err := s.registry.CancelWithdrawal(req.Email, req.Date, req.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal request cancelled."})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	case errors.Is(err, account.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Pending request not found."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) approveWithdrawal(c *gin.Context) {
	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	err := s.registry.ApproveWithdrawal(req.Email, req.Date, req.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal approved."})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	case errors.Is(err, account.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found."})
	case errors.Is(err, account.ErrAlreadyApproved):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request already approved."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) userWithdrawals(c *gin.Context) {
	email := c.Param("email")

	requests, err := s.registry.Withdrawals(email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, requests)
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) listAllWithdrawals(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.AllWithdrawals())
}
