package domain

// PendingRegistration is an account that has not been activated yet. It is
// never persisted: it travels inside the signed activation token.
type PendingRegistration struct {
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	PhoneNumber  string `json:"phoneNumber"`
}

// ActivationTemplate names the email template used for activation notices.
const ActivationTemplate = "activation-mail"

// ActivationNotice is handed to the notifier. The code travels only through
// this channel; the caller receives the token.
type ActivationNotice struct {
	Email          string
	UserName       string
	PhoneNumber    string
	ActivationCode string
	Template       string
}
