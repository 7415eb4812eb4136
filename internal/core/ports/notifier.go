package ports

import "context"

// Notifier delivers account emails out-of-band. Implementations must not block
// the request path on actual delivery; failures are logged, never surfaced to
// the caller.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}
