package ports

import (
	"context"
	"time"

	"github.com/casaflow/casaflow/internal/core/domain/verification"
)

// IssueParams carries everything the record store needs to perform a code
// issuance as one atomic statement: the upsert re-checks the cooldown and
// the rolling-window cap so that two concurrent requests for the same
// email cannot both pass the limiter.
type IssueParams struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	Now       time.Time
	// Limits re-evaluated inside the statement.
	Cooldown   time.Duration
	SendWindow time.Duration
	MaxSends   int
}

// VerificationRepository persists the single active verification record
// per email. All mutations are atomic conditional updates; callers never
// observe partial states.
type VerificationRepository interface {
	// Get returns verification.ErrNotFound when no record exists.
	Get(ctx context.Context, email string) (*verification.Record, error)

	// IssueCode upserts the record for email: new hash and expiry, attempts
	// reset, send counter incremented (or reset to 1 when the window has
	// elapsed), last_sent_at set to now. Returns
	// verification.ErrIssueConflict when the guarded update matched no row.
	IssueCode(ctx context.Context, p IssueParams) (*verification.Record, error)

	// IncrementAttempts adds one failed attempt, conditional on the stored
	// hash still being codeHash and attempts < maxAttempts. Returns the new
	// attempt count, or verification.ErrNotFound when the condition missed
	// (record gone, superseded, or already exhausted).
	IncrementAttempts(ctx context.Context, email, codeHash string, maxAttempts int) (int, error)

	// Delete removes the record; absence is not an error.
	Delete(ctx context.Context, email string) error
}

// OTPRateLimiter evaluates issuance limits against the current record.
// It holds no state of its own, so any node can evaluate it from shared
// storage. A nil record (first issuance) is always allowed.
type OTPRateLimiter interface {
	Allow(rec *verification.Record, now time.Time) error
}

// VerificationService orchestrates the email verification lifecycle.
type VerificationService interface {
	IssueCode(ctx context.Context, email string) (*verification.IssueResult, error)
	VerifyCode(ctx context.Context, email, code string) error
}
