package verification

import (
	"strings"
	"time"
)

// Record is the single active email verification record for an address.
// At most one record exists per email; every re-issue overwrites it.
type Record struct {
	Email           string    `json:"email" db:"email"`
	CodeHash        string    `json:"-" db:"code_hash"`
	ExpiresAt       time.Time `json:"expires_at" db:"expires_at"`
	Attempts        int       `json:"attempts" db:"attempts"`
	SendCount       int       `json:"send_count" db:"send_count"`
	WindowStartedAt time.Time `json:"window_started_at" db:"window_started_at"`
	LastSentAt      time.Time `json:"last_sent_at" db:"last_sent_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the current code is unusable due to age.
// The record is unusable at the expiry instant itself, not only after it.
func (r *Record) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// AttemptsExhausted reports whether verification is permanently refused
// against the current code.
func (r *Record) AttemptsExhausted(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}

// WindowElapsed reports whether the rolling send window has passed, at
// which point the send counter resets on the next issuance.
func (r *Record) WindowElapsed(now time.Time, window time.Duration) bool {
	return now.Sub(r.WindowStartedAt) >= window
}

// IssueResult is returned by a successful code issuance.
type IssueResult struct {
	// ExpiresIn is the remaining validity of the issued code in seconds.
	ExpiresIn int `json:"expires_in"`
	// Sent is false when the notifier failed; the stored code is still valid.
	Sent bool `json:"sent"`
	// DevCode carries the plaintext code only when the service was built
	// with ExposeCodeInResponse, for local testing.
	DevCode string `json:"dev_otp,omitempty"`
}

// NormalizeEmail canonicalizes an address for use as the record key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
