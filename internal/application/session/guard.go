package session

import (
	"context"
	"errors"

	"github.com/go-user-accounts/internal/domain"
	jwtinfra "github.com/go-user-accounts/internal/infrastructure/jwt"
	"go.uber.org/zap"
)

// Messages returned to unauthenticated callers.
const (
	MsgPleaseLogin         = "Please login to access this resource!"
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgUserNotFound        = "User not found"
	MsgErrorUpdatingToken  = "Error updating access token"
)

type tokenVerifier interface {
	VerifyAccess(tokenStr string) (*jwtinfra.SessionClaims, error)
	VerifyRefresh(tokenStr string) (*jwtinfra.SessionClaims, error)
}

type userFinder interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
}

// Guard resolves the identity behind an access/refresh token pair.
type Guard struct {
	tokens tokenVerifier
	users  userFinder
	issuer *Issuer
	log    *zap.Logger
}

type GuardDeps struct {
	Tokens tokenVerifier
	Users  userFinder
	Issuer *Issuer
	Logger *zap.Logger
}

func NewGuard(deps GuardDeps) *Guard {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{tokens: deps.Tokens, users: deps.Users, issuer: deps.Issuer, log: log}
}

// Authorize runs the per-request state machine. A valid access token
// authorizes with the presented pair. Otherwise a valid refresh token
// authorizes and rotates: a new pair is minted on every such request and
// returned with Rotated set.
func (g *Guard) Authorize(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, domain.NewError(domain.ErrUnauthenticated, MsgPleaseLogin)
	}

	if claims, err := g.tokens.VerifyAccess(accessToken); err == nil {
		u, err := g.loadUser(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		return &domain.Identity{User: u, AccessToken: accessToken, RefreshToken: refreshToken}, nil
	}

	claims, err := g.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		g.log.Debug("refresh token rejected", zap.Error(err))
		return nil, domain.WrapError(domain.ErrUnauthenticated, MsgInvalidRefreshToken, err)
	}
	u, err := g.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return g.rotate(u)
}

func (g *Guard) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := g.users.FindByID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewError(domain.ErrUnauthenticated, MsgUserNotFound)
	case err != nil:
		g.log.Error("auth guard: user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrUnauthenticated, MsgErrorUpdatingToken, err)
	}
	return u, nil
}

func (g *Guard) rotate(u *domain.User) (*domain.Identity, error) {
	sess, err := g.issuer.SendToken(u)
	if err != nil {
		g.log.Error("auth guard: token rotation failed", zap.String("user_id", u.UserID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrUnauthenticated, MsgErrorUpdatingToken, err)
	}
	return &domain.Identity{
		User:         u,
		AccessToken:  *sess.AccessToken,
		RefreshToken: *sess.RefreshToken,
		Rotated:      true,
	}, nil
}
