package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-user-accounts/internal/domain"
	"github.com/go-user-accounts/internal/infrastructure/smtp"
	"github.com/go-user-accounts/internal/infrastructure/sns"
)

// ActivationSubject is the subject line of the activation email.
const ActivationSubject = "Kích hoạt tài khoản"

// Activation delivers the activation code by email and, when an SMS sender
// is configured, by text message too.
type Activation struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
}

// NewActivation builds the notifier. sms may be nil.
func NewActivation(mailer smtp.Mailer, sms sns.SMSSender) *Activation {
	return &Activation{mailer: mailer, sms: sms}
}

type mailData struct {
	UserName       string
	ActivationCode string
}

func (a *Activation) SendActivation(ctx context.Context, n domain.ActivationNotice) error {
	var errs []error
	data := mailData{UserName: n.UserName, ActivationCode: n.ActivationCode}
	if err := a.mailer.SendTemplate(ctx, n.Email, ActivationSubject, n.Template, data); err != nil {
		errs = append(errs, fmt.Errorf("activation email: %w", err))
	}
	if a.sms != nil && n.PhoneNumber != "" {
		msg := fmt.Sprintf("Your activation code is %s", n.ActivationCode)
		if err := a.sms.SendSMS(ctx, n.PhoneNumber, msg); err != nil {
			errs = append(errs, fmt.Errorf("activation sms: %w", err))
		}
	}
	return errors.Join(errs...)
}
