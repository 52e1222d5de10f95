package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/middleware"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct{ password string }

func (f fakeAuthService) Login(_ context.Context, in services.LoginInput) error {
	if in.Password != f.password {
		return services.ErrAuthInvalidCredentials
	}
	return nil
}

func TestLoginIssuesOperatorToken(t *testing.T) {
	h := NewAuthHandler(fakeAuthService{password: "pw"}, "secret")
	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)

	rec, body := do(t, r, http.MethodPost, "/auth/login", `{"password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	tokenString, ok := body["token"].(string)
	require.True(t, ok)
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleOperator, claims["role"])

	rec, _ = do(t, r, http.MethodPost, "/auth/login", `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
