package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	config "github.com/casaflow/casaflow/configs"
	impl "github.com/casaflow/casaflow/internal/application/services"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
	tmocks "github.com/casaflow/casaflow/test/mocks"
)

func otpConfig() *config.OTPConfig {
	return &config.OTPConfig{
		CodeTTL:           10 * time.Minute,
		ResendCooldown:    60 * time.Second,
		SendWindow:        time.Hour,
		MaxSendsPerWindow: 3,
		MaxAttempts:       5,
	}
}

func unverifiedUser(email string) *user.User {
	return &user.User{ID: uuid.New(), Email: email, Name: "Test", EmailVerified: false}
}

func newVerificationService(ur ports.UserRepository, vr ports.VerificationRepository, notifier ports.Notifier, cfg *config.OTPConfig) ports.VerificationService {
	return impl.NewVerificationService(ur, vr,
		&tmocks.CodeGeneratorMock{}, &tmocks.CodeHasherMock{},
		impl.NewOTPRateLimiter(cfg), notifier, cfg, nil)
}

func TestIssueCode_UnknownEmail(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{} // GetByEmail defaults to not found
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, verification.ErrNotFound)
}

func TestIssueCode_UserLookupFailureIsNotTreatedAsMissingUser(t *testing.T) {
	dbDown := errors.New("connection refused")
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return nil, dbDown
	}}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, verification.ErrNotFound)
	require.ErrorIs(t, err, dbDown)
}

func TestIssueCode_AlreadyVerified(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return &user.User{ID: uuid.New(), Email: email, EmailVerified: true}, nil
	}}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "done@x.com")
	require.ErrorIs(t, err, verification.ErrAlreadyVerified)
}

func TestIssueCode_FirstIssuanceSendsCode(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	var sentTo, sentCode string
	notifier := &tmocks.NotifierMock{SendVerificationCodeFn: func(ctx context.Context, to, name, code string) error {
		sentTo, sentCode = to, code
		return nil
	}}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, notifier, otpConfig())

	res, err := svc.IssueCode(context.Background(), "New@X.com")
	require.NoError(t, err)
	require.True(t, res.Sent)
	require.Equal(t, 600, res.ExpiresIn)
	require.Equal(t, "new@x.com", sentTo)
	require.Equal(t, "123456", sentCode)
	require.Empty(t, res.DevCode)
}

func TestIssueCode_CooldownRejected(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:           email,
			CodeHash:        "hash:123456",
			ExpiresAt:       now.Add(9 * time.Minute),
			SendCount:       1,
			WindowStartedAt: now.Add(-30 * time.Second),
			LastSentAt:      now.Add(-30 * time.Second),
			CreatedAt:       now.Add(-30 * time.Second),
		}, nil
	}}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	var cdErr *verification.CooldownError
	require.ErrorAs(t, err, &cdErr)
	require.Greater(t, cdErr.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, cdErr.RetryAfter, 60*time.Second)
}

func TestIssueCode_WindowCapRejected(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:           email,
			CodeHash:        "hash:123456",
			ExpiresAt:       now.Add(5 * time.Minute),
			SendCount:       3,
			WindowStartedAt: now.Add(-10 * time.Minute),
			LastSentAt:      now.Add(-2 * time.Minute),
			CreatedAt:       now.Add(-10 * time.Minute),
		}, nil
	}}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	var rlErr *verification.RateLimitError
	require.ErrorAs(t, err, &rlErr)
}

func TestIssueCode_WindowElapsedAllowsAgain(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:           email,
			CodeHash:        "hash:123456",
			ExpiresAt:       now.Add(-50 * time.Minute),
			SendCount:       3,
			WindowStartedAt: now.Add(-2 * time.Hour),
			LastSentAt:      now.Add(-61 * time.Minute),
			CreatedAt:       now.Add(-2 * time.Hour),
		}, nil
	}}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	res, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, res.Sent)
}

func TestIssueCode_DeliveryFailureDoesNotFailIssuance(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	notifier := &tmocks.NotifierMock{SendVerificationCodeFn: func(ctx context.Context, to, name, code string) error {
		return errors.New("smtp down")
	}}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, notifier, otpConfig())

	res, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.False(t, res.Sent)
}

func TestIssueCode_DevModeExposesCode(t *testing.T) {
	cfg := otpConfig()
	cfg.ExposeCodeInResponse = true
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, &tmocks.NotifierMock{}, cfg)

	res, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "123456", res.DevCode)
}

func TestIssueCode_ConflictMapsToLimiterError(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return unverifiedUser(email), nil
	}}
	now := time.Now()
	calls := 0
	vr := &tmocks.VerificationRepositoryMock{
		GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
			calls++
			if calls == 1 {
				// Pre-issuance read: nothing yet.
				return nil, verification.ErrNotFound
			}
			// Post-conflict re-read: the concurrent winner's record.
			return &verification.Record{
				Email:           email,
				CodeHash:        "hash:999999",
				ExpiresAt:       now.Add(10 * time.Minute),
				SendCount:       1,
				WindowStartedAt: now,
				LastSentAt:      now,
				CreatedAt:       now,
			}, nil
		},
		IssueCodeFn: func(ctx context.Context, p ports.IssueParams) (*verification.Record, error) {
			return nil, verification.ErrIssueConflict
		},
	}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	var cdErr *verification.CooldownError
	require.ErrorAs(t, err, &cdErr)
}

func TestVerifyCode_NoPendingRecord(t *testing.T) {
	ur := &tmocks.UserRepositoryMock{}
	svc := newVerificationService(ur, &tmocks.VerificationRepositoryMock{}, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.ErrorIs(t, err, verification.ErrNotFound)
}

func TestVerifyCode_Success(t *testing.T) {
	u := unverifiedUser("a@x.com")
	marked := false
	deleted := false
	ur := &tmocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return u, nil },
		MarkEmailVerifiedFn: func(ctx context.Context, id uuid.UUID) error {
			require.Equal(t, u.ID, id)
			marked = true
			return nil
		},
	}
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{
		GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
			return &verification.Record{
				Email:           email,
				CodeHash:        "hash:123456",
				ExpiresAt:       now.Add(5 * time.Minute),
				SendCount:       1,
				WindowStartedAt: now.Add(-time.Minute),
				LastSentAt:      now.Add(-time.Minute),
				CreatedAt:       now.Add(-time.Minute),
			}, nil
		},
		DeleteFn: func(ctx context.Context, email string) error {
			deleted = true
			return nil
		},
	}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)
	require.True(t, marked)
	require.True(t, deleted)
}

func TestVerifyCode_UserLookupFailureIsNotTreatedAsMissingUser(t *testing.T) {
	dbDown := errors.New("connection refused")
	ur := &tmocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return nil, dbDown
	}}
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:           email,
			CodeHash:        "hash:123456",
			ExpiresAt:       now.Add(5 * time.Minute),
			SendCount:       1,
			WindowStartedAt: now.Add(-time.Minute),
			LastSentAt:      now.Add(-time.Minute),
			CreatedAt:       now.Add(-time.Minute),
		}, nil
	}}
	svc := newVerificationService(ur, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.Error(t, err)
	require.NotErrorIs(t, err, verification.ErrNotFound)
	require.ErrorIs(t, err, dbDown)
}

func TestVerifyCode_Expired(t *testing.T) {
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:     email,
			CodeHash:  "hash:123456",
			ExpiresAt: now.Add(-time.Second),
		}, nil
	}}
	svc := newVerificationService(&tmocks.UserRepositoryMock{}, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.ErrorIs(t, err, verification.ErrExpired)
}

func TestVerifyCode_MismatchCountsAttempt(t *testing.T) {
	now := time.Now()
	incremented := false
	vr := &tmocks.VerificationRepositoryMock{
		GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
			return &verification.Record{
				Email:     email,
				CodeHash:  "hash:123456",
				ExpiresAt: now.Add(5 * time.Minute),
				Attempts:  1,
			}, nil
		},
		IncrementAttemptsFn: func(ctx context.Context, email, codeHash string, maxAttempts int) (int, error) {
			require.Equal(t, "hash:123456", codeHash)
			incremented = true
			return 2, nil
		},
	}
	svc := newVerificationService(&tmocks.UserRepositoryMock{}, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "000000")
	var mmErr *verification.MismatchError
	require.ErrorAs(t, err, &mmErr)
	require.Equal(t, 3, mmErr.AttemptsLeft)
	require.True(t, incremented)
}

func TestVerifyCode_LastAttemptExhausts(t *testing.T) {
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{
		GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
			return &verification.Record{
				Email:     email,
				CodeHash:  "hash:123456",
				ExpiresAt: now.Add(5 * time.Minute),
				Attempts:  4,
			}, nil
		},
		IncrementAttemptsFn: func(ctx context.Context, email, codeHash string, maxAttempts int) (int, error) {
			return 5, nil
		},
	}
	svc := newVerificationService(&tmocks.UserRepositoryMock{}, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "000000")
	require.ErrorIs(t, err, verification.ErrAttemptsExhausted)
}

func TestVerifyCode_ExhaustedRejectsEvenCorrectCode(t *testing.T) {
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
		return &verification.Record{
			Email:     email,
			CodeHash:  "hash:123456",
			ExpiresAt: now.Add(5 * time.Minute),
			Attempts:  5,
		}, nil
	}}
	svc := newVerificationService(&tmocks.UserRepositoryMock{}, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.ErrorIs(t, err, verification.ErrAttemptsExhausted)
}

func TestVerifyCode_StaleAttemptAfterReissue(t *testing.T) {
	now := time.Now()
	vr := &tmocks.VerificationRepositoryMock{
		GetFn: func(ctx context.Context, email string) (*verification.Record, error) {
			return &verification.Record{
				Email:     email,
				CodeHash:  "hash:123456",
				ExpiresAt: now.Add(5 * time.Minute),
			}, nil
		},
		IncrementAttemptsFn: func(ctx context.Context, email, codeHash string, maxAttempts int) (int, error) {
			// A concurrent re-issue replaced the hash; the CAS misses.
			return 0, verification.ErrNotFound
		},
	}
	svc := newVerificationService(&tmocks.UserRepositoryMock{}, vr, &tmocks.NotifierMock{}, otpConfig())

	err := svc.VerifyCode(context.Background(), "a@x.com", "000000")
	require.ErrorIs(t, err, verification.ErrNotFound)
}
