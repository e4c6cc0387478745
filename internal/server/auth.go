package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/pkg/logger"
)

const identityKey = "identity"

// Auth issues and verifies the JWTs handed out on login. Tokens are
// optional on the wire: requests without one behave exactly as before, but
// a request that does carry one must match the email it claims to act for.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Issue signs a token whose subject is the account email.
func (a *Auth) Issue(email string) (string, error) {
	claims := jwt.StandardClaims{
		Subject:  email,
		IssuedAt: time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its subject email.
func (a *Auth) Verify(tokenString string) (string, error) {
	var claims jwt.StandardClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// withIdentity records the verified token subject on the context when a
// Bearer token is present. An unreadable token is rejected outright; the
// absence of a token is not.
func (s *Server) withIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		email, err := s.auth.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Log.Warn("rejected bearer token", logger.String("path", c.Request.URL.Path), logger.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
			return
		}

		c.Set(identityKey, email)
		c.Next()
	}
}

// identityMatches reports whether the verified identity, when one exists,
// matches the email this request claims to act for.
func identityMatches(c *gin.Context, email string) bool {
	v, ok := c.Get(identityKey)
	if !ok {
		return true
	}
	return v.(string) == email
}
