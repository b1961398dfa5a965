package domain

// Identity is what the auth guard resolves for a request. Rotated reports
// whether AccessToken and RefreshToken were freshly minted on the refresh path.
type Identity struct {
	User         *User
	AccessToken  string
	RefreshToken string
	Rotated      bool
}

// ErrorBody is the structured failure carried by result payloads.
type ErrorBody struct {
	Message string `json:"message"`
}

// LoginResponse is returned by login and the logged-in user projection.
// On failed login every field is null except Error.
type LoginResponse struct {
	User         *User      `json:"user"`
	AccessToken  *string    `json:"accessToken"`
	RefreshToken *string    `json:"refreshToken"`
	Error        *ErrorBody `json:"error,omitempty"`
}

type RegisterResponse struct {
	ActivationToken string `json:"activationToken"`
}

type ActivationResponse struct {
	User *User `json:"user"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
