package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Signer issues and verifies the session tokens stored in the session cookie.
// A token only identifies a session, it grants nothing.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// TTL is how long an issued token stays valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// NewSession creates a fresh session id and its token.
func (s *Signer) NewSession() (sessionID, token string, err error) {
	sessionID = uuid.NewString()
	token, err = s.GenerateToken(sessionID)
	return sessionID, token, err
}

func (s *Signer) GenerateToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Session is a verified session token.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// NeedsRefresh reports whether less than half of ttl is left before expiry.
func (s Session) NeedsRefresh(now time.Time, ttl time.Duration) bool {
	return s.ExpiresAt.Sub(now) < ttl/2
}

func (s *Signer) ParseToken(tokenStr string) (string, error) {
	session, err := s.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// Parse verifies tokenStr and returns its session id and expiry.
func (s *Signer) Parse(tokenStr string) (Session, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidClaims
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return Session{}, ErrInvalidClaims
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, ErrInvalidClaims
	}

	return Session{ID: sid, ExpiresAt: exp.Time}, nil
}
