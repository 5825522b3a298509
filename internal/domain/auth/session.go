package auth

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrSubjectRequired = errors.New("auth: subject is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrTokenInvalid    = errors.New("auth: token invalid")
	ErrSessionExpired  = errors.New("auth: session expired")
)

type Token string

type Role string

// RoleAdmin is the only role: the back office that reads bookings and pricing telemetry.
const RoleAdmin Role = "admin"

// Session is the identity carried by a signed bearer token. Nothing is stored server-side.
type Session struct {
	ID        string
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	ID      string
	Subject string
	Role    Role
	TTL     time.Duration
	Now     time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)
	role := params.Role
	if role == "" {
		role = RoleAdmin
	}
	return &Session{
		ID:        params.ID,
		Subject:   subject,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

func (s *Session) HasRole(role Role) bool {
	return s != nil && s.Role == role
}

// TokenCodec signs sessions into bearer tokens and verifies them back.
type TokenCodec interface {
	Sign(session *Session) (Token, error)
	Verify(token Token, now time.Time) (*Session, error)
}
