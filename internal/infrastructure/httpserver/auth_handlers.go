package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaflow/casaflow/internal/application/services"
	"github.com/casaflow/casaflow/internal/core/domain/auth"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
)

// Auth handlers
func (s *Server) register(c echo.Context) error {
	var req user.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.userService.Register(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "email is already registered")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := map[string]interface{}{
		"user":                        result.User,
		"requires_email_verification": true,
		"otp_sent":                    result.Issue.Sent,
	}
	if result.Issue.Sent {
		otpCodesIssued.Inc()
		resp["expires_in"] = result.Issue.ExpiresIn
	}
	if result.Issue.DevCode != "" {
		resp["dev_otp"] = result.Issue.DevCode
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(http.StatusOK, tokens)
}

func (s *Server) sendOTP(c echo.Context) error {
	var req user.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.verificationSvc.IssueCode(c.Request().Context(), req.Email)
	if err != nil {
		return s.mapIssueError(c, err)
	}

	if result.Sent {
		otpCodesIssued.Inc()
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) verifyOTP(c echo.Context) error {
	var req user.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.verificationSvc.VerifyCode(c.Request().Context(), req.Email, req.OTP); err != nil {
		return s.mapVerifyError(c, err)
	}

	otpVerifications.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"verified": true,
	})
}

func (s *Server) mapIssueError(c echo.Context, err error) error {
	var cooldownErr *verification.CooldownError
	var rateErr *verification.RateLimitError

	switch {
	case errors.Is(err, verification.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "no account for this email")
	case errors.Is(err, verification.ErrAlreadyVerified):
		return echo.NewHTTPError(http.StatusConflict, "email is already verified")
	case errors.As(err, &cooldownErr):
		return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"message":     cooldownErr.Error(),
			"retry_after": int(cooldownErr.RetryAfter.Seconds()),
		})
	case errors.As(err, &rateErr):
		return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"message":     rateErr.Error(),
			"retry_after": int(rateErr.RetryAfter.Seconds()),
		})
	default:
		s.logger.WithError(err).Error("failed to issue verification code")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue verification code")
	}
}

func (s *Server) mapVerifyError(c echo.Context, err error) error {
	var mismatchErr *verification.MismatchError

	switch {
	case errors.Is(err, verification.ErrNotFound):
		otpVerifications.WithLabelValues("not_found").Inc()
		return echo.NewHTTPError(http.StatusNotFound, "no pending verification for this email")
	case errors.As(err, &mismatchErr):
		otpVerifications.WithLabelValues("mismatch").Inc()
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message":       mismatchErr.Error(),
			"attempts_left": mismatchErr.AttemptsLeft,
		})
	case errors.Is(err, verification.ErrExpired):
		otpVerifications.WithLabelValues("expired").Inc()
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message":          verification.ErrExpired.Error(),
			"requires_new_otp": true,
		})
	case errors.Is(err, verification.ErrAttemptsExhausted):
		otpVerifications.WithLabelValues("exhausted").Inc()
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message":          verification.ErrAttemptsExhausted.Error(),
			"requires_new_otp": true,
		})
	default:
		s.logger.WithError(err).Error("failed to verify code")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to verify code")
	}
}
