package account

import (
	"context"
	"errors"
	"time"

	"github.com/go-user-accounts/internal/domain"
	jwtinfra "github.com/go-user-accounts/internal/infrastructure/jwt"
	"github.com/go-user-accounts/internal/pkg/id"
	pkgtoken "github.com/go-user-accounts/internal/pkg/token"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgEmailExists            = domain.MsgEmailExists
	MsgPhoneExists            = domain.MsgPhoneExists
	MsgPasswordMismatch       = "Passwords do not match"
	MsgInvalidActivationToken = "Invalid activation token"
	MsgInvalidActivationCode  = "Invalid activation code"
	MsgInvalidCredentials     = "Invalid email or password"
	MsgLogoutSuccess          = "Logout successfully"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error)
	ActivateUser(ctx context.Context, req domain.ActivationRequest) (*domain.ActivationResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	GetLoggedInUser(identity *domain.Identity) *domain.LoginResponse
	Logout(identity *domain.Identity) *domain.LogoutResponse
	GetAllUser(ctx context.Context) ([]domain.User, error)
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	ListAll(ctx context.Context) ([]domain.User, error)
}

type passwordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

type activationTokens interface {
	SignActivation(pending domain.PendingRegistration, code string) (string, error)
	VerifyActivation(tokenStr string) (*jwtinfra.ActivationClaims, error)
}

type sessionIssuer interface {
	SendToken(u *domain.User) (*domain.LoginResponse, error)
}

type notifier interface {
	SendActivation(ctx context.Context, n domain.ActivationNotice) error
}

type service struct {
	repo     userStore
	hasher   passwordHasher
	tokens   activationTokens
	issuer   sessionIssuer
	notifier notifier
	log      *zap.Logger
	now      func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Hasher   passwordHasher
	Tokens   activationTokens
	Issuer   sessionIssuer
	Notifier notifier
	Logger   *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:     deps.UserRepo,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		issuer:   deps.Issuer,
		notifier: deps.Notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	if err := s.ensureAbsent(ctx, s.repo.FindByEmail, req.Email, MsgEmailExists); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, domain.NewError(domain.ErrValidation, MsgPasswordMismatch)
	}
	if err := s.ensureAbsent(ctx, s.repo.FindByPhone, req.PhoneNumber, MsgPhoneExists); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}
	pending := domain.PendingRegistration{
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		PhoneNumber:  req.PhoneNumber,
	}
	code, err := pkgtoken.NewActivationCode()
	if err != nil {
		return nil, err
	}
	activationToken, err := s.tokens.SignActivation(pending, code)
	if err != nil {
		return nil, err
	}

	notice := domain.ActivationNotice{
		Email:          pending.Email,
		UserName:       pending.UserName,
		PhoneNumber:    pending.PhoneNumber,
		ActivationCode: code,
		Template:       domain.ActivationTemplate,
	}
	if err := s.notifier.SendActivation(ctx, notice); err != nil {
		s.log.Warn("activation notice not delivered", zap.String("email", pending.Email), zap.Error(err))
	}
	return &domain.RegisterResponse{ActivationToken: activationToken}, nil
}

func (s *service) ActivateUser(ctx context.Context, req domain.ActivationRequest) (*domain.ActivationResponse, error) {
	claims, err := s.tokens.VerifyActivation(req.ActivationToken)
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, MsgInvalidActivationToken, err)
	}
	if claims.ActivationCode != req.ActivationCode {
		return nil, domain.NewError(domain.ErrValidation, MsgInvalidActivationCode)
	}

	pending := claims.User
	if err := s.ensureAbsent(ctx, s.repo.FindByEmail, pending.Email, MsgEmailExists); err != nil {
		return nil, err
	}

	now := s.now()
	u := &domain.User{
		UserID:       id.New(),
		UserName:     pending.UserName,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		PhoneNumber:  pending.PhoneNumber,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// The store reports which unique field collided; anything else is an outage.
		var derr *domain.Error
		if errors.As(err, &derr) && errors.Is(err, domain.ErrConflict) {
			return nil, derr
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.WrapError(domain.ErrConflict, MsgEmailExists, err)
		}
		return nil, err
	}
	s.log.Info("user activated", zap.String("user_id", u.UserID))
	return &domain.ActivationResponse{User: u}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return invalidCredentials(), nil
	case err != nil:
		return nil, err
	}
	ok, err := s.hasher.Verify(ctx, req.Password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return invalidCredentials(), nil
	}
	return s.issuer.SendToken(u)
}

func (s *service) GetLoggedInUser(identity *domain.Identity) *domain.LoginResponse {
	if identity == nil {
		return &domain.LoginResponse{}
	}
	access, refresh := identity.AccessToken, identity.RefreshToken
	return &domain.LoginResponse{User: identity.User, AccessToken: &access, RefreshToken: &refresh}
}

// Logout drops the identity for the rest of the request. Tokens stay valid until they expire.
func (s *service) Logout(identity *domain.Identity) *domain.LogoutResponse {
	if identity != nil {
		*identity = domain.Identity{}
	}
	return &domain.LogoutResponse{Message: MsgLogoutSuccess}
}

func (s *service) GetAllUser(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// ensureAbsent fails with Conflict when find returns a record, and passes store outages through.
func (s *service) ensureAbsent(ctx context.Context, find func(context.Context, string) (*domain.User, error), key, msg string) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return domain.NewError(domain.ErrConflict, msg)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func invalidCredentials() *domain.LoginResponse {
	return &domain.LoginResponse{Error: &domain.ErrorBody{Message: MsgInvalidCredentials}}
}
