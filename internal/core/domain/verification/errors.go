package verification

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means no active verification record exists for the email
	// (never issued, already consumed, or superseded), or the email itself
	// is unknown.
	ErrNotFound = errors.New("no pending verification for this email")

	// ErrAlreadyVerified guards against issuing codes to verified addresses.
	ErrAlreadyVerified = errors.New("email is already verified")

	// ErrExpired means the current code's lifetime has passed; a new code
	// must be requested, retries against the expired one are refused.
	ErrExpired = errors.New("verification code has expired")

	// ErrAttemptsExhausted means too many failed comparisons were made
	// against the current code; it is permanently unusable.
	ErrAttemptsExhausted = errors.New("too many failed verification attempts")

	// ErrIssueConflict is returned by the record store when the guarded
	// issue upsert updated no rows: a concurrent issuance won the race or
	// the limits changed between read and write.
	ErrIssueConflict = errors.New("verification record was modified concurrently")
)

// CooldownError rejects a resend inside the per-email cooldown period.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new code", int(e.RetryAfter.Seconds()))
}

// RateLimitError rejects issuance past the rolling-window send cap.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("verification code limit reached, try again in %d seconds", int(e.RetryAfter.Seconds()))
}

// MismatchError reports a wrong code while attempts remain.
type MismatchError struct {
	AttemptsLeft int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("incorrect verification code, %d attempts left", e.AttemptsLeft)
}

// DeliveryError wraps a notifier failure. It is recovered locally by the
// issuance flow: the code stays valid, only the send is marked failed.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver verification code: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
