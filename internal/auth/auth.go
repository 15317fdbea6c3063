// internal/auth/auth.go
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// SessionClaims carries the stable session identity inside a signed token.
// The token only proves identity continuity across connections; it grants no
// room membership on its own.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionTokenTTL is how long an issued session token stays valid.
const SessionTokenTTL = 30 * 24 * time.Hour

var jwtSecret []byte

// ErrInvalidToken is returned for tokens that fail signature or claims
// validation.
var ErrInvalidToken = errors.New("invalid session token")

// Init sets the signing secret. Without a configured secret a random
// per-process one is generated, which invalidates outstanding tokens on every
// restart.
func Init(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
		return
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logrus.Fatalf("failed generating fallback JWT secret: %v", err)
	}
	jwtSecret = buf
	logrus.Warn("JWT_SECRET not set; using a random per-process secret, session tokens will not survive restarts")
}

// IssueSessionToken signs a token binding the given session identity and
// preferred display name.
func IssueSessionToken(sessionID models.SessionID, name string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID.String(),
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "villain",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// VerifySessionToken parses a token and returns the session identity and
// display name it binds.
func VerifySessionToken(tokenString string) (models.SessionID, string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return models.SessionID{}, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return models.SessionID{}, "", ErrInvalidToken
	}
	sid, err := models.ParseSessionID(claims.SessionID)
	if err != nil {
		return models.SessionID{}, "", ErrInvalidToken
	}
	return sid, claims.Name, nil
}
