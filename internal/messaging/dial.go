package messaging

import (
	"context"
	"time"
)

// defaultConnectTimeout bounds broker handshakes when the caller's context
// carries no deadline.
const defaultConnectTimeout = 10 * time.Second

// connectBudget returns how long a broker handshake may take under ctx.
func connectBudget(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultConnectTimeout, nil
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, context.DeadlineExceeded
	}
	return remaining, nil
}
