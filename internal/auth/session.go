// Package auth models the operator session gate: a token persisted between
// runs, checked on start, cleared on logout.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not logged in, run 'parking-console login' first")
	ErrTokenInvalid       = errors.New("session token invalid or expired")
	ErrNoSecret           = errors.New("session secret is not configured")
)

const DefaultTTL = 24 * time.Hour

// TokenStore persists the session token between runs.
type TokenStore interface {
	LoadToken() string
	SaveToken(token string) error
	ClearToken() error
}

// Operator is the single configured console account.
type Operator struct {
	Email        string
	PasswordHash string // bcrypt
}

type Session struct {
	store    TokenStore
	operator Operator
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	token   string
	subject string
}

func NewSession(store TokenStore, operator Operator, secret string, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{
		store:    store,
		operator: operator,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Init restores a persisted session. An invalid or expired token is cleared.
func (s *Session) Init() error {
	token := s.store.LoadToken()
	if token == "" {
		return nil
	}

	subject, err := s.validate(token)
	if err != nil {
		_ = s.store.ClearToken()
		return err
	}

	s.token, s.subject = token, subject

	return nil
}

// Login checks the operator credentials and persists a fresh token.
func (s *Session) Login(email, password string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.operator.Email) || s.operator.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.operator.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   s.operator.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.store.SaveToken(token); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	s.token, s.subject = token, s.operator.Email

	return token, nil
}

// Logout clears the persisted token.
func (s *Session) Logout() error {
	s.token, s.subject = "", ""
	return s.store.ClearToken()
}

func (s *Session) Authenticated() bool { return s.token != "" }

// Require returns ErrNotAuthenticated unless a valid session is active.
func (s *Session) Require() error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Session) Token() string   { return s.token }
func (s *Session) Subject() string { return s.subject }

func (s *Session) validate(token string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// HashPassword produces the value stored as operator.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
