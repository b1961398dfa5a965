package domain

import "time"

// User is the persisted account record. It is created only at activation time.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id" db:"id"`
	UserName     string    `json:"userName" dynamodbav:"user_name" db:"user_name"`
	Email        string    `json:"email" dynamodbav:"email" db:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash" db:"password_hash"`
	PhoneNumber  string    `json:"phoneNumber" dynamodbav:"phone_number" db:"phone_number"`
	Role         string    `json:"role" dynamodbav:"role" db:"role"`
	Address      *string   `json:"address" dynamodbav:"address,omitempty" db:"address"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at" db:"updated_at"`
}

type RegisterRequest struct {
	UserName        string `json:"userName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=8"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
}

type ActivationRequest struct {
	ActivationCode  string `json:"activationCode" validate:"required"`
	ActivationToken string `json:"activationToken" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
