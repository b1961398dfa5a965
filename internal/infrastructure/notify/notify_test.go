package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-user-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendTemplate(ctx context.Context, to, subject, name string, data any) error {
	return m.Called(ctx, to, subject, name, data).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendActivation(ctx context.Context, n domain.ActivationNotice) error {
	return m.Called(ctx, n).Error(0)
}

func notice() domain.ActivationNotice {
	return domain.ActivationNotice{
		Email:          "alice@example.com",
		UserName:       "alice",
		PhoneNumber:    "+84900000001",
		ActivationCode: "4821",
		Template:       domain.ActivationTemplate,
	}
}

func TestActivation_MailOnly(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("SendTemplate", mock.Anything, "alice@example.com", ActivationSubject, domain.ActivationTemplate,
		mailData{UserName: "alice", ActivationCode: "4821"}).Return(nil).Once()

	require.NoError(t, NewActivation(mailer, nil).SendActivation(context.Background(), notice()))
	mailer.AssertExpectations(t)
}

func TestActivation_MailAndSMS(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMS{}
	sms.On("SendSMS", mock.Anything, "+84900000001", "Your activation code is 4821").Return(nil).Once()

	require.NoError(t, NewActivation(mailer, sms).SendActivation(context.Background(), notice()))
	sms.AssertExpectations(t)
}

func TestActivation_JoinsFailures(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	sms := &mockSMS{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sns down"))

	err := NewActivation(mailer, sms).SendActivation(context.Background(), notice())
	assert.ErrorContains(t, err, "activation email: smtp down")
	assert.ErrorContains(t, err, "activation sms: sns down")
}

func TestAsync_DeliversInBackground(t *testing.T) {
	next := &mockSender{}
	next.On("SendActivation", mock.Anything, notice()).Return(nil).Once()
	a := NewAsync(next, time.Second, zap.NewNop())

	require.NoError(t, a.SendActivation(context.Background(), notice()))
	require.NoError(t, a.Wait(context.Background()))
	next.AssertExpectations(t)
}

func TestAsync_OutlivesRequestContext(t *testing.T) {
	next := &mockSender{}
	next.On("SendActivation", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(nil).Once()
	a := NewAsync(next, time.Second, zap.NewNop())

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.SendActivation(reqCtx, notice()))
	require.NoError(t, a.Wait(context.Background()))
	next.AssertExpectations(t)
}

func TestAsync_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	next := &mockSender{}
	next.On("SendActivation", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	a := NewAsync(next, time.Second, zap.New(core))

	require.NoError(t, a.SendActivation(context.Background(), notice()))
	require.NoError(t, a.Wait(context.Background()))

	entries := logs.FilterMessage("activation notice failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice@example.com", entries[0].ContextMap()["email"])
}

func TestAsync_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	next := &mockSender{}
	next.On("SendActivation", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).Return(nil)
	a := NewAsync(next, time.Second, zap.NewNop())
	require.NoError(t, a.SendActivation(context.Background(), notice()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, a.Wait(context.Background()))
}
