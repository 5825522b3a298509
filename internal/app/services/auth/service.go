package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "riide/internal/domain/auth"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrNotConfigured      = errors.New("auth: admin login not configured")
)

// AdminSubject is the subject of every admin session; there is a single shared account.
const AdminSubject = "admin"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service authenticates the back office with a shared password and issues signed,
// expiring bearer tokens.
type Service struct {
	Passwords    PasswordHasher
	PasswordHash string
	Tokens       TokenGenerator
	Codec        domainauth.TokenCodec
	SessionTTL   time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

type AuthResult struct {
	Token   string
	Session *domainauth.Session
}

func (s *Service) Login(ctx context.Context, password string) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.PasswordHash, password); err != nil {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "admin login rejected")
		}
		return nil, ErrInvalidCredentials
	}
	id, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		ID:      id,
		Subject: AdminSubject,
		Role:    domainauth.RoleAdmin,
		TTL:     s.sessionTTL(),
		Now:     s.now(),
	})
	if err != nil {
		return nil, err
	}
	token, err := s.Codec.Sign(session)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "admin authenticated", "session_id", session.ID, "expires_at", session.ExpiresAt)
	}
	return &AuthResult{Token: string(token), Session: session}, nil
}

func (s *Service) ResolveToken(_ context.Context, token string) (*domainauth.Session, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	return s.Codec.Verify(domainauth.Token(token), s.now())
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 12 * time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.PasswordHash == "":
		return ErrNotConfigured
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	case s.Codec == nil:
		return errors.New("auth: token codec required")
	default:
		return nil
	}
}
