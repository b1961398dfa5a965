package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-user-accounts/internal/application/session"
	"github.com/go-user-accounts/internal/config"
	"github.com/go-user-accounts/internal/domain"
	jwtinfra "github.com/go-user-accounts/internal/infrastructure/jwt"
	"github.com/go-user-accounts/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) ListAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendActivation(ctx context.Context, n domain.ActivationNotice) error {
	return m.Called(ctx, n).Error(0)
}

// --- helpers ---

type fixture struct {
	svc      Service
	repo     *mockUserStore
	notifier *mockNotifier
	tokens   *jwtinfra.Provider
	hasher   *password.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := jwtinfra.NewProvider(&config.Config{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		ActivationTokenSecret: "activation-secret",
		AccessTokenTTL:        15 * time.Minute,
		RefreshTokenTTL:       7 * 24 * time.Hour,
		ActivationTokenTTL:    10 * time.Minute,
	})
	require.NoError(t, err)
	f := &fixture{
		repo:     &mockUserStore{},
		notifier: &mockNotifier{},
		tokens:   tokens,
		hasher:   password.NewHasher(bcrypt.MinCost, 2),
	}
	f.svc = NewService(ServiceDeps{
		UserRepo: f.repo,
		Hasher:   f.hasher,
		Tokens:   tokens,
		Issuer:   session.NewIssuer(tokens),
		Notifier: f.notifier,
	})
	return f
}

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		UserName:        "alice",
		Email:           "alice@example.com",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		PhoneNumber:     "0900000001",
	}
}

var errStoreDown = domain.Unavailable("find user", errors.New("connection refused"))

// --- Register ---

func TestRegister_EmailExists(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "u1"}, nil)

	_, err := f.svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, MsgEmailExists)
	f.repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "SendActivation", mock.Anything, mock.Anything)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	req := validRegister()
	req.ConfirmPassword = "something-else"
	_, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, MsgPasswordMismatch)
	f.repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestRegister_PhoneExists(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.repo.On("FindByPhone", mock.Anything, "0900000001").Return(&domain.User{UserID: "u2"}, nil)

	_, err := f.svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, MsgPhoneExists)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errStoreDown)

	_, err := f.svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRegister_IssuesTokenAndNotifiesCode(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.repo.On("FindByPhone", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	var notice domain.ActivationNotice
	f.notifier.On("SendActivation", mock.Anything, mock.AnythingOfType("domain.ActivationNotice")).
		Run(func(args mock.Arguments) { notice = args.Get(1).(domain.ActivationNotice) }).
		Return(nil).Once()

	req := validRegister()
	resp, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.ActivationToken)

	claims, err := f.tokens.VerifyActivation(resp.ActivationToken)
	require.NoError(t, err)
	assert.Equal(t, req.UserName, claims.User.UserName)
	assert.Equal(t, req.Email, claims.User.Email)
	assert.Equal(t, req.PhoneNumber, claims.User.PhoneNumber)
	assert.NotEqual(t, req.Password, claims.User.PasswordHash)
	ok, err := f.hasher.Verify(context.Background(), req.Password, claims.User.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, claims.ActivationCode, notice.ActivationCode)
	assert.Len(t, notice.ActivationCode, 4)
	assert.Equal(t, req.Email, notice.Email)
	assert.Equal(t, domain.ActivationTemplate, notice.Template)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestRegister_NotifierFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.repo.On("FindByPhone", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.notifier.On("SendActivation", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	resp, err := f.svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ActivationToken)
}

func TestRegister_PasswordTooLongForBcrypt(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.repo.On("FindByPhone", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	req := validRegister()
	req.Password = strings.Repeat("p", 80)
	req.ConfirmPassword = req.Password
	_, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, password.MsgTooLong)
	f.notifier.AssertNotCalled(t, "SendActivation", mock.Anything, mock.Anything)
}

// --- ActivateUser ---

func pendingToken(t *testing.T, f *fixture, code string) (string, domain.PendingRegistration) {
	t.Helper()
	pending := domain.PendingRegistration{
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$digest",
		PhoneNumber:  "0900000001",
	}
	tok, err := f.tokens.SignActivation(pending, code)
	require.NoError(t, err)
	return tok, pending
}

func TestActivateUser_CreatesUser(t *testing.T) {
	f := newFixture(t)
	tok, pending := pendingToken(t, f, "4821")
	f.repo.On("FindByEmail", mock.Anything, pending.Email).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Once()

	resp, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
		ActivationCode:  "4821",
		ActivationToken: tok,
	})
	require.NoError(t, err)
	u := resp.User
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, pending.Email, u.Email)
	assert.Equal(t, pending.UserName, u.UserName)
	assert.Equal(t, pending.PasswordHash, u.PasswordHash)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	f.repo.AssertExpectations(t)
}

func TestActivateUser_WrongCodeNeverCreates(t *testing.T) {
	f := newFixture(t)
	tok, _ := pendingToken(t, f, "4821")

	_, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
		ActivationCode:  "1234",
		ActivationToken: tok,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, MsgInvalidActivationCode)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivateUser_InvalidToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
		ActivationCode:  "4821",
		ActivationToken: "not-a-token",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, MsgInvalidActivationToken)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivateUser_EmailTakenSinceRegistration(t *testing.T) {
	f := newFixture(t)
	tok, pending := pendingToken(t, f, "4821")
	f.repo.On("FindByEmail", mock.Anything, pending.Email).Return(&domain.User{UserID: "u1"}, nil)

	_, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
		ActivationCode:  "4821",
		ActivationToken: tok,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, MsgEmailExists)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivateUser_StoreConstraintConflict(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantMsg  string
	}{
		{name: "phone collision", storeErr: domain.NewError(domain.ErrConflict, MsgPhoneExists), wantMsg: MsgPhoneExists},
		{name: "bare conflict", storeErr: domain.ErrConflict, wantMsg: MsgEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tok, _ := pendingToken(t, f, "4821")
			f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
			f.repo.On("Create", mock.Anything, mock.Anything).Return(tt.storeErr)

			_, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
				ActivationCode:  "4821",
				ActivationToken: tok,
			})
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestActivateUser_StoreOutage(t *testing.T) {
	f := newFixture(t)
	tok, _ := pendingToken(t, f, "4821")
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(domain.Unavailable("create user", errors.New("throttled")))

	_, err := f.svc.ActivateUser(context.Background(), domain.ActivationRequest{
		ActivationCode:  "4821",
		ActivationToken: tok,
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

// --- Login ---

func TestLogin(t *testing.T) {
	f := newFixture(t)
	digest, err := f.hasher.Hash(context.Background(), "s3cret-pass")
	require.NoError(t, err)
	user := &domain.User{UserID: "u1", Email: "alice@example.com", PasswordHash: digest}
	f.repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	f.repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	t.Run("right password", func(t *testing.T) {
		resp, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Nil(t, resp.Error)
		assert.Same(t, user, resp.User)
		require.NotNil(t, resp.AccessToken)
		require.NotNil(t, resp.RefreshToken)
		assert.NotEmpty(t, *resp.AccessToken)
		assert.NotEmpty(t, *resp.RefreshToken)

		claims, err := f.tokens.VerifyAccess(*resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
	})

	failures := map[string]domain.LoginRequest{
		"wrong password": {Email: "alice@example.com", Password: "wrong-pass"},
		"unknown email":  {Email: "nobody@example.com", Password: "s3cret-pass"},
	}
	for name, req := range failures {
		t.Run(name, func(t *testing.T) {
			resp, err := f.svc.Login(context.Background(), req)
			require.NoError(t, err)
			assert.Nil(t, resp.User)
			assert.Nil(t, resp.AccessToken)
			assert.Nil(t, resp.RefreshToken)
			require.NotNil(t, resp.Error)
			assert.Equal(t, MsgInvalidCredentials, resp.Error.Message)
		})
	}
}

func TestLogin_CancelledBeforeCompare(t *testing.T) {
	f := newFixture(t)
	digest, err := f.hasher.Hash(context.Background(), "s3cret-pass")
	require.NoError(t, err)
	f.repo.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{UserID: "u1", Email: "alice@example.com", PasswordHash: digest}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := f.svc.Login(ctx, domain.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogin_StoreOutage(t *testing.T) {
	f := newFixture(t)
	f.repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errStoreDown)

	resp, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "x"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

// --- identity projections and listing ---

func TestGetLoggedInUser(t *testing.T) {
	f := newFixture(t)
	u := &domain.User{UserID: "u1"}

	resp := f.svc.GetLoggedInUser(&domain.Identity{User: u, AccessToken: "a", RefreshToken: "r"})
	assert.Same(t, u, resp.User)
	assert.Equal(t, "a", *resp.AccessToken)
	assert.Equal(t, "r", *resp.RefreshToken)
}

func TestLogout_ClearsIdentity(t *testing.T) {
	f := newFixture(t)
	identity := &domain.Identity{User: &domain.User{UserID: "u1"}, AccessToken: "a", RefreshToken: "r"}

	resp := f.svc.Logout(identity)
	assert.Equal(t, MsgLogoutSuccess, resp.Message)
	assert.Nil(t, identity.User)
	assert.Empty(t, identity.AccessToken)
	assert.Empty(t, identity.RefreshToken)

	assert.Equal(t, MsgLogoutSuccess, f.svc.Logout(nil).Message)
}

func TestGetAllUser(t *testing.T) {
	t.Run("returns records", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListAll", mock.Anything).Return([]domain.User{{UserID: "u1"}, {UserID: "u2"}}, nil)

		users, err := f.svc.GetAllUser(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("empty store yields empty slice", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListAll", mock.Anything).Return(nil, nil)

		users, err := f.svc.GetAllUser(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}
