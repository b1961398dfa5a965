package session

import (
	"github.com/go-user-accounts/internal/domain"
)

type tokenSigner interface {
	SignAccess(userID string) (string, error)
	SignRefresh(userID string) (string, error)
}

// Issuer mints the access/refresh pair for an authenticated user.
type Issuer struct {
	tokens tokenSigner
}

func NewIssuer(tokens tokenSigner) *Issuer {
	return &Issuer{tokens: tokens}
}

// SendToken returns a session bound to u.UserID. It has no side effects beyond signing.
func (i *Issuer) SendToken(u *domain.User) (*domain.LoginResponse, error) {
	access, err := i.tokens.SignAccess(u.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := i.tokens.SignRefresh(u.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResponse{User: u, AccessToken: &access, RefreshToken: &refresh}, nil
}
