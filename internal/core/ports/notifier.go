package ports

import "context"

// Notifier delivers a verification code to an address. Delivery is
// fire-and-forget from the orchestrator's perspective: a failure is
// logged and surfaced as sent=false but never blocks issuance.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}
