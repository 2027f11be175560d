package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/casaflow/casaflow/internal/core/domain/auth"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
	casaflowhttp "github.com/casaflow/casaflow/internal/infrastructure/httpserver"
	"github.com/casaflow/casaflow/test/mocks"
)

func newTestServer(deps casaflowhttp.ServerDeps) *casaflowhttp.Server {
	if deps.RateLimiterService == nil {
		deps.RateLimiterService = &mocks.RateLimiterServiceMock{}
	}
	cfg := &casaflowhttp.ServerConfig{
		Host: "127.0.0.1", Port: "0",
		ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second,
		Environment: "test",
	}
	return casaflowhttp.NewServer(cfg, logrus.New(), deps)
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestRegisterEndpoint(t *testing.T) {
	userMock := &mocks.UserServiceMock{}
	userMock.RegisterFn = func(ctx context.Context, req *user.RegisterRequest) (*ports.RegistrationResult, error) {
		return &ports.RegistrationResult{
			User:  &user.User{ID: uuid.New(), Email: req.Email, Name: req.Name},
			Issue: &verification.IssueResult{ExpiresIn: 600, Sent: true},
		}, nil
	}

	srv := newTestServer(casaflowhttp.ServerDeps{
		UserService:         userMock,
		AuthService:         &mocks.AuthServiceMock{},
		VerificationService: &mocks.VerificationServiceMock{},
		PropertyService:     &mocks.PropertyServiceMock{},
	})
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "new@x.com", "password": "TestPass123", "confirm_password": "TestPass123", "name": "New User",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, true, body["requires_email_verification"])
	require.Equal(t, true, body["otp_sent"])
	require.Equal(t, float64(600), body["expires_in"])

	// Mismatched password confirmation is caught by validation.
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "new@x.com", "password": "TestPass123", "confirm_password": "Other12345", "name": "New User",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendOTPEndpoint_ErrorMapping(t *testing.T) {
	verMock := &mocks.VerificationServiceMock{}
	srv := newTestServer(casaflowhttp.ServerDeps{
		UserService:         &mocks.UserServiceMock{},
		AuthService:         &mocks.AuthServiceMock{},
		VerificationService: verMock,
		PropertyService:     &mocks.PropertyServiceMock{},
	})
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	send := func() (*http.Response, map[string]any) {
		return doJSON(t, ts, http.MethodPost, "/api/v1/auth/send-otp", map[string]any{"email": "a@x.com"}, "")
	}

	verMock.IssueCodeFn = func(ctx context.Context, email string) (*verification.IssueResult, error) {
		return &verification.IssueResult{ExpiresIn: 600, Sent: true}, nil
	}
	resp, body := send()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(600), body["expires_in"])

	verMock.IssueCodeFn = func(ctx context.Context, email string) (*verification.IssueResult, error) {
		return nil, verification.ErrNotFound
	}
	resp, _ = send()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	verMock.IssueCodeFn = func(ctx context.Context, email string) (*verification.IssueResult, error) {
		return nil, verification.ErrAlreadyVerified
	}
	resp, _ = send()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	verMock.IssueCodeFn = func(ctx context.Context, email string) (*verification.IssueResult, error) {
		return nil, &verification.CooldownError{RetryAfter: 42 * time.Second}
	}
	resp, body = send()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, float64(42), body["retry_after"])

	verMock.IssueCodeFn = func(ctx context.Context, email string) (*verification.IssueResult, error) {
		return nil, &verification.RateLimitError{RetryAfter: 30 * time.Minute}
	}
	resp, body = send()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, float64(1800), body["retry_after"])
}

func TestVerifyOTPEndpoint_ErrorMapping(t *testing.T) {
	verMock := &mocks.VerificationServiceMock{}
	srv := newTestServer(casaflowhttp.ServerDeps{
		UserService:         &mocks.UserServiceMock{},
		AuthService:         &mocks.AuthServiceMock{},
		VerificationService: verMock,
		PropertyService:     &mocks.PropertyServiceMock{},
	})
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	verify := func(otp string) (*http.Response, map[string]any) {
		return doJSON(t, ts, http.MethodPost, "/api/v1/auth/verify-otp", map[string]any{"email": "a@x.com", "otp": otp}, "")
	}

	// Malformed codes never reach the service.
	serviceCalled := false
	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error {
		serviceCalled = true
		return nil
	}
	resp, _ := verify("12345")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = verify("abcdef")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	// Six characters that parse as a number but are not six digits.
	resp, _ = verify("-12345")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = verify("+12345")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = verify("1.2345")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, serviceCalled)

	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error { return nil }
	resp, body := verify("123456")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["verified"])

	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error {
		return &verification.MismatchError{AttemptsLeft: 2}
	}
	resp, body = verify("000000")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, float64(2), body["attempts_left"])

	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error {
		return verification.ErrExpired
	}
	resp, body = verify("123456")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, true, body["requires_new_otp"])

	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error {
		return verification.ErrAttemptsExhausted
	}
	resp, body = verify("123456")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, true, body["requires_new_otp"])

	verMock.VerifyCodeFn = func(ctx context.Context, email, code string) error {
		return verification.ErrNotFound
	}
	resp, _ = verify("123456")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginEndpoint_ReportsVerificationStatus(t *testing.T) {
	authMock := &mocks.AuthServiceMock{}
	authMock.LoginFn = func(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
		return &auth.AuthTokens{AccessToken: "access-x", ExpiresIn: 900, EmailVerified: false}, nil
	}

	srv := newTestServer(casaflowhttp.ServerDeps{
		UserService:         &mocks.UserServiceMock{},
		AuthService:         authMock,
		VerificationService: &mocks.VerificationServiceMock{},
		PropertyService:     &mocks.PropertyServiceMock{},
	})
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "a@x.com", "password": "TestPass123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "access-x", body["access_token"])
	require.Equal(t, false, body["email_verified"])
}

func TestProtectedProfileEndpoint(t *testing.T) {
	userID := uuid.New()
	authMock := &mocks.AuthServiceMock{}
	authMock.ValidateTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
		require.Equal(t, "good-token", tokenString)
		return &auth.Claims{UserID: userID, Email: "a@x.com"}, nil
	}
	userMock := &mocks.UserServiceMock{}
	userMock.GetUserFn = func(ctx context.Context, id uuid.UUID) (*user.User, error) {
		require.Equal(t, userID, id)
		return &user.User{ID: id, Email: "a@x.com", EmailVerified: true}, nil
	}

	srv := newTestServer(casaflowhttp.ServerDeps{
		UserService:         userMock,
		AuthService:         authMock,
		VerificationService: &mocks.VerificationServiceMock{},
		PropertyService:     &mocks.PropertyServiceMock{},
	})
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	resp, _ := doJSON(t, ts, http.MethodGet, "/api/v1/users/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/v1/users/me", nil, "good-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "a@x.com", body["email"])
}
