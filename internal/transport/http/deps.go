package http

import (
	"context"

	"github.com/go-user-accounts/internal/domain"
	jwtinfra "github.com/go-user-accounts/internal/infrastructure/jwt"
	"github.com/go-user-accounts/internal/pkg/password"
	"go.uber.org/zap"
)

// UserRepository is the minimal interface the router requires from a user store.
// Both the DynamoDB and the PostgreSQL repos satisfy it.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	// Create fails with domain.ErrConflict when the email or phone number is taken.
	Create(ctx context.Context, u *domain.User) error
	ListAll(ctx context.Context) ([]domain.User, error)
}

// Notifier delivers activation codes.
type Notifier interface {
	SendActivation(ctx context.Context, n domain.ActivationNotice) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	Hasher      *password.Hasher
	JWTProvider *jwtinfra.Provider
	Notifier    Notifier
	Logger      *zap.Logger
}
