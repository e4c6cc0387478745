package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/internal/feedback"
	"github.com/earnwatch/earnwatch/pkg/dto"
)

func (s *Server) submitFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email, and message are required."})
		return
	}

	err := s.feedback.Submit(req.Name, req.Email, req.Message)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted. Thank you!"})
	case errors.Is(err, feedback.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email, and message are required."})
	default:
		s.serverError(c, err)
	}
}

func (s *Server) listFeedback(c *gin.Context) {
	c.JSON(http.StatusOK, s.feedback.All())
}
