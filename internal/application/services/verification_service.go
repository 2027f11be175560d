package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/casaflow/casaflow/configs"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// VerificationService orchestrates the email verification lifecycle:
// NoRecord -> Pending -> (Verified | Expired | AttemptsExhausted).
type VerificationService struct {
	userRepo  ports.UserRepository
	records   ports.VerificationRepository
	generator ports.CodeGenerator
	hasher    ports.CodeHasher
	limiter   ports.OTPRateLimiter
	notifier  ports.Notifier
	cfg       *config.OTPConfig
	logger    *logrus.Logger
}

func NewVerificationService(
	userRepo ports.UserRepository,
	records ports.VerificationRepository,
	generator ports.CodeGenerator,
	hasher ports.CodeHasher,
	limiter ports.OTPRateLimiter,
	notifier ports.Notifier,
	cfg *config.OTPConfig,
	logger *logrus.Logger,
) ports.VerificationService {
	return &VerificationService{
		userRepo:  userRepo,
		records:   records,
		generator: generator,
		hasher:    hasher,
		limiter:   limiter,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// IssueCode generates, stores and sends a fresh verification code for the
// email. Re-issuing replaces the prior record: new hash, new expiry,
// attempts reset, send counter advanced.
func (s *VerificationService) IssueCode(ctx context.Context, email string) (*verification.IssueResult, error) {
	email = verification.NormalizeEmail(email)

	usr, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, verification.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if usr.EmailVerified {
		return nil, verification.ErrAlreadyVerified
	}

	now := time.Now()

	rec, err := s.records.Get(ctx, email)
	if err != nil && !errors.Is(err, verification.ErrNotFound) {
		return nil, fmt.Errorf("failed to load verification record: %w", err)
	}
	if err := s.limiter.Allow(rec, now); err != nil {
		return nil, err
	}

	code, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash verification code: %w", err)
	}

	// The upsert re-checks cooldown and send cap inside a single statement,
	// so two concurrent issuances cannot both get past the limiter.
	_, err = s.records.IssueCode(ctx, ports.IssueParams{
		Email:      email,
		CodeHash:   codeHash,
		ExpiresAt:  now.Add(s.cfg.CodeTTL),
		Now:        now,
		Cooldown:   s.cfg.ResendCooldown,
		SendWindow: s.cfg.SendWindow,
		MaxSends:   s.cfg.MaxSendsPerWindow,
	})
	if err != nil {
		if errors.Is(err, verification.ErrIssueConflict) {
			// A concurrent request won the race; the two were within the
			// cooldown of each other by construction.
			return nil, s.conflictError(ctx, email, now)
		}
		return nil, fmt.Errorf("failed to store verification record: %w", err)
	}

	result := &verification.IssueResult{
		ExpiresIn: int(s.cfg.CodeTTL.Seconds()),
		Sent:      true,
	}

	if err := s.notifier.SendVerificationCode(ctx, email, usr.Name, code); err != nil {
		// Delivery failure does not roll back issuance; the stored code
		// remains valid and the caller may retry after the cooldown.
		result.Sent = false
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).
				WithError(&verification.DeliveryError{Err: err}).
				Warn("verification code delivery failed")
		}
	}

	if s.cfg.ExposeCodeInResponse {
		result.DevCode = code
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "sent": result.Sent}).Info("verification code issued")
	}
	return result, nil
}

// conflictError re-reads the record after a lost issuance race and maps
// the state to the limiter error the caller would have seen.
func (s *VerificationService) conflictError(ctx context.Context, email string, now time.Time) error {
	rec, err := s.records.Get(ctx, email)
	if err == nil {
		if limErr := s.limiter.Allow(rec, now); limErr != nil {
			return limErr
		}
	}
	return &verification.CooldownError{RetryAfter: s.cfg.ResendCooldown}
}

// VerifyCode checks a submitted code against the active record. On success
// the account is marked verified and the record is deleted, making the
// code strictly one-time-use.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) error {
	email = verification.NormalizeEmail(email)

	rec, err := s.records.Get(ctx, email)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			return verification.ErrNotFound
		}
		return fmt.Errorf("failed to load verification record: %w", err)
	}

	now := time.Now()
	if rec.IsExpired(now) {
		return verification.ErrExpired
	}
	if rec.AttemptsExhausted(s.cfg.MaxAttempts) {
		return verification.ErrAttemptsExhausted
	}

	if !s.hasher.Verify(code, rec.CodeHash) {
		// Conditional on the stored hash: a concurrent re-issue makes this
		// attempt stale instead of charging it against the new code.
		attempts, incErr := s.records.IncrementAttempts(ctx, email, rec.CodeHash, s.cfg.MaxAttempts)
		if incErr != nil {
			if errors.Is(incErr, verification.ErrNotFound) {
				return verification.ErrNotFound
			}
			return fmt.Errorf("failed to record verification attempt: %w", incErr)
		}
		if attempts >= s.cfg.MaxAttempts {
			return verification.ErrAttemptsExhausted
		}
		return &verification.MismatchError{AttemptsLeft: s.cfg.MaxAttempts - attempts}
	}

	usr, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return verification.ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.userRepo.MarkEmailVerified(ctx, usr.ID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	if err := s.records.Delete(ctx, email); err != nil {
		// The account is already verified; a leftover record is harmless
		// and will be refused by the already-verified guard on re-issue.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).WithError(err).
				Warn("failed to delete consumed verification record")
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "user_id": usr.ID}).Info("email verified")
	}
	return nil
}
