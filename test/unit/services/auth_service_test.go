package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	config "github.com/casaflow/casaflow/configs"
	impl "github.com/casaflow/casaflow/internal/application/services"
	"github.com/casaflow/casaflow/internal/core/domain/auth"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	tmocks "github.com/casaflow/casaflow/test/mocks"
)

func jwtConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: 15 * time.Minute}
}

func userWithPassword(t *testing.T, email, password string, verified bool) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &user.User{ID: uuid.New(), Email: email, PasswordHash: string(hash), EmailVerified: verified}
}

func TestLogin_WrongPassword(t *testing.T) {
	u := userWithPassword(t, "a@x.com", "RightPass1", true)
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return u, nil }}
	svc := impl.NewAuthService(ur, jwtConfig(), nil)

	_, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "a@x.com", Password: "WrongPass1"})
	require.Error(t, err)
}

func TestLogin_UnverifiedUserStillLogsIn(t *testing.T) {
	u := userWithPassword(t, "a@x.com", "RightPass1", false)
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return u, nil }}
	svc := impl.NewAuthService(ur, jwtConfig(), nil)

	tokens, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "a@x.com", Password: "RightPass1"})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.False(t, tokens.EmailVerified)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	u := userWithPassword(t, "a@x.com", "RightPass1", true)
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return u, nil }}
	svc := impl.NewAuthService(ur, jwtConfig(), nil)

	tokens, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "A@X.com", Password: "RightPass1"})
	require.NoError(t, err)
	require.True(t, tokens.EmailVerified)

	claims, err := svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := impl.NewAuthService(&tmocks.UserRepositoryMock{}, jwtConfig(), nil)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	require.Error(t, err)
}
