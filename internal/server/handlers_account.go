package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/internal/account"
	"github.com/earnwatch/earnwatch/pkg/dto"
	"github.com/earnwatch/earnwatch/pkg/logger"
)

func (s *Server) signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, and password are required."})
		return
	}

	err := s.registry.Signup(req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signup successful!"})
	case errors.Is(err, account.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, and password are required."})
	case errors.Is(err, account.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	username, lastLogin, err := s.registry.Login(req.Email, req.Password)
	switch {
	case err == nil:
		if token, terr := s.auth.Issue(req.Email); terr == nil {
			c.Header("Authorization", "Bearer "+token)
		} else {
			logger.Log.Warn("couldn't issue token", logger.Error(terr))
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Login successful!",
			"username":  username,
			"lastLogin": lastLogin,
		})
	case errors.Is(err, account.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) activity(c *gin.Context) {
	var req dto.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if !identityMatches(c, req.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	amount, ok := dto.Number(req.EarningsEarned)
	if !ok {
		amount = math.NaN() // the registry reports not-found before a bad amount
	}

	total, err := s.registry.AddEarnings(req.Email, amount)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Earnings updated!", "totalEarnings": total})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	case errors.Is(err, account.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid earnings value."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) screenTime(c *gin.Context) {
	var req dto.ScreenTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if !identityMatches(c, req.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	amount, ok := dto.Number(req.TimeSpent)
	if !ok {
		amount = math.NaN()
	}

	total, err := s.registry.AddScreenTime(req.Email, amount)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Screen time updated!", "totalScreenTime": total})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	case errors.Is(err, account.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid time value."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) profile(c *gin.Context) {
	email := c.Param("email")

	prof, err := s.registry.Profile(email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, prof)
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
	default:
		s.serverError(c, err)
	}
}
