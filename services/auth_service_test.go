package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthServiceLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(string(hash))

	assert.NoError(t, svc.Login(context.Background(), LoginInput{Password: "s3cret"}))
	assert.ErrorIs(t, svc.Login(context.Background(), LoginInput{Password: "wrong"}), ErrAuthInvalidCredentials)
}

func TestAuthServiceDisabled(t *testing.T) {
	svc := NewAuthService("")
	assert.ErrorIs(t, svc.Login(context.Background(), LoginInput{Password: "anything"}), ErrOperatorDisabled)
}
