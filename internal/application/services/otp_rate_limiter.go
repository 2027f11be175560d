package services

import (
	"time"

	config "github.com/casaflow/casaflow/configs"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
)

// OTPRateLimiter enforces the per-email resend cooldown and the rolling
// hourly send cap. It is evaluated purely from the verification record's
// own timestamps and counters, so it carries no state and any node can
// run it against shared storage.
type OTPRateLimiter struct {
	cooldown time.Duration
	window   time.Duration
	maxSends int
}

func NewOTPRateLimiter(cfg *config.OTPConfig) ports.OTPRateLimiter {
	// Apply defaults
	cd := 60 * time.Second
	w := time.Hour
	ms := 3
	if cfg != nil {
		if cfg.ResendCooldown > 0 {
			cd = cfg.ResendCooldown
		}
		if cfg.SendWindow > 0 {
			w = cfg.SendWindow
		}
		if cfg.MaxSendsPerWindow > 0 {
			ms = cfg.MaxSendsPerWindow
		}
	}
	return &OTPRateLimiter{cooldown: cd, window: w, maxSends: ms}
}

// Allow reports whether a new code may be issued for the record's email.
// A nil record means no prior issuance and is always allowed.
func (l *OTPRateLimiter) Allow(rec *verification.Record, now time.Time) error {
	if rec == nil {
		return nil
	}

	if elapsed := now.Sub(rec.LastSentAt); elapsed < l.cooldown {
		return &verification.CooldownError{RetryAfter: l.cooldown - elapsed}
	}

	if !rec.WindowElapsed(now, l.window) && rec.SendCount >= l.maxSends {
		return &verification.RateLimitError{RetryAfter: l.window - now.Sub(rec.WindowStartedAt)}
	}

	return nil
}
