package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-user-accounts/internal/config"
	"github.com/go-user-accounts/internal/domain"
	"github.com/go-user-accounts/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Kind selects the secret, TTL and audience a token is signed with.
type Kind string

const (
	KindAccess     Kind = "access"
	KindRefresh    Kind = "refresh"
	KindActivation Kind = "activation"
)

// SessionClaims is the payload of access and refresh tokens.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationClaims carries a registration that has not been persisted yet.
type ActivationClaims struct {
	User           domain.PendingRegistration `json:"user"`
	ActivationCode string                     `json:"activationCode"`
	jwt.RegisteredClaims
}

type key struct {
	secret []byte
	ttl    time.Duration
}

// Provider signs and verifies HS256 JWTs, one secret and TTL per Kind.
type Provider struct {
	keys map[Kind]key
	now  func() time.Time
}

type Option func(*Provider)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(cfg *config.Config, opts ...Option) (*Provider, error) {
	p := &Provider{
		keys: map[Kind]key{
			KindAccess:     {secret: []byte(cfg.AccessTokenSecret), ttl: cfg.AccessTokenTTL},
			KindRefresh:    {secret: []byte(cfg.RefreshTokenSecret), ttl: cfg.RefreshTokenTTL},
			KindActivation: {secret: []byte(cfg.ActivationTokenSecret), ttl: cfg.ActivationTokenTTL},
		},
		now: time.Now,
	}
	for kind, k := range p.keys {
		if len(k.secret) == 0 {
			return nil, fmt.Errorf("%s token secret is empty", kind)
		}
		if k.ttl <= 0 {
			return nil, fmt.Errorf("%s token ttl must be positive", kind)
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) SignAccess(userID string) (string, error) {
	return p.issue(KindAccess, &SessionClaims{UserID: userID})
}

func (p *Provider) SignRefresh(userID string) (string, error) {
	return p.issue(KindRefresh, &SessionClaims{UserID: userID})
}

func (p *Provider) SignActivation(pending domain.PendingRegistration, code string) (string, error) {
	return p.issue(KindActivation, &ActivationClaims{User: pending, ActivationCode: code})
}

func (p *Provider) VerifyAccess(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := p.verify(KindAccess, tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *Provider) VerifyRefresh(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := p.verify(KindRefresh, tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *Provider) VerifyActivation(tokenStr string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := p.verify(KindActivation, tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// registered is implemented by every claims type above through the embedded RegisteredClaims.
type registered interface {
	jwt.Claims
	registered() *jwt.RegisteredClaims
}

func (c *SessionClaims) registered() *jwt.RegisteredClaims    { return &c.RegisteredClaims }
func (c *ActivationClaims) registered() *jwt.RegisteredClaims { return &c.RegisteredClaims }

func (p *Provider) issue(kind Kind, claims registered) (string, error) {
	k := p.keys[kind]
	now := p.now()
	*claims.registered() = jwt.RegisteredClaims{
		ID:        id.New(),
		Audience:  jwt.ClaimStrings{string(kind)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// verify fails with domain.ErrInvalidToken on a bad signature, malformed input,
// wrong audience or expiry. The jwt cause stays wrapped for logging only.
func (p *Provider) verify(kind Kind, tokenStr string, claims registered) error {
	k := p.keys[kind]
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return k.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(kind)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return fmt.Errorf("%s token: %w: %w", kind, domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return fmt.Errorf("%s token: %w", kind, domain.ErrInvalidToken)
	}
	return nil
}
