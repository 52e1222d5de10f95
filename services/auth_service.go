package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Password string `json:"password"`
}

// AuthService checks the operator password. Tokens are issued by the handler.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) error
}

type authService struct {
	passwordHash []byte
}

func NewAuthService(passwordHash string) AuthService {
	return &authService{passwordHash: []byte(passwordHash)}
}

func (s *authService) Login(_ context.Context, input LoginInput) error {
	if len(s.passwordHash) == 0 {
		return ErrOperatorDisabled
	}
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrAuthInvalidCredentials
		}
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
	return nil
}
