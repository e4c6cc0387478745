// Package server wires the HTTP surface. Routes, status codes and response
// bodies are kept byte-compatible with the previous backend; handlers only
// translate between JSON and the domain operations.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/internal/account"
	"github.com/earnwatch/earnwatch/internal/feedback"
	"github.com/earnwatch/earnwatch/pkg/logger"
)

type Server struct {
	registry *account.Registry
	feedback *feedback.Log
	auth     *Auth
}

func New(registry *account.Registry, fb *feedback.Log, auth *Auth) *Server {
	return &Server{
		registry: registry,
		feedback: fb,
		auth:     auth,
	}
}

// Router builds the gin engine. An empty origin list allows every origin,
// matching the old app's bare cors() middleware.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.Use(s.withIdentity())

	router.GET("/health", s.health)

	router.POST("/signup", s.signup)
	router.POST("/login", s.login)
	router.POST("/activity", s.activity)
	router.POST("/screentime", s.screenTime)

	router.POST("/submit-feedback", s.submitFeedback)
	router.GET("/admin/feedbacks", s.listFeedback)

	router.POST("/withdraw", s.requestWithdrawal)
	router.POST("/user/withdraw/cancel", s.cancelWithdrawal)
	router.GET("/admin/withdrawals", s.listAllWithdrawals)
	router.POST("/admin/approve", s.approveWithdrawal)

	router.GET("/user/:email/withdrawals", s.userWithdrawals)
	router.GET("/user/:email", s.profile)

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// serverError covers persistence failures and other faults the API contract
// has no specific answer for.
func (s *Server) serverError(c *gin.Context, err error) {
	logger.Log.Error("request failed",
		logger.String("method", c.Request.Method),
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
}
