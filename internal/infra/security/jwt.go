package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "riide/internal/domain/auth"
)

const DefaultIssuer = "riide"

var ErrSecretTooShort = errors.New("security: token secret must be at least 32 bytes")

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec signs admin sessions as HS256 JSON Web Tokens.
type JWTCodec struct {
	secret []byte
	issuer string
}

func NewJWTCodec(secret, issuer string) (*JWTCodec, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &JWTCodec{secret: []byte(secret), issuer: issuer}, nil
}

func (c *JWTCodec) Sign(session *domainauth.Session) (domainauth.Token, error) {
	claims := sessionClaims{
		Role: string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return domainauth.Token(signed), nil
}

func (c *JWTCodec) Verify(token domainauth.Token, now time.Time) (*domainauth.Session, error) {
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(string(token), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domainauth.ErrTokenInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainauth.ErrSessionExpired
		}
		return nil, errors.Join(domainauth.ErrTokenInvalid, err)
	}
	session := &domainauth.Session{
		ID:      claims.ID,
		Subject: claims.Subject,
		Role:    domainauth.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}

var _ domainauth.TokenCodec = (*JWTCodec)(nil)
