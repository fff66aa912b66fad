package payments

import "context"

// Provider authorizes payment for a transaction before a courier is sent
// out, captures it on delivery, and releases it on cancellation. The
// reference returned by Authorize is provider-specific.
type Provider interface {
	Authorize(ctx context.Context, amount int64, currency, customerID string) (string, error)
	Capture(ctx context.Context, ref string) error
	Release(ctx context.Context, ref string) error
}

// Cash is the dominant payment method on the marketplace: nothing to
// authorize up front, settlement happens at the door.
type Cash struct{}

func (Cash) Authorize(ctx context.Context, amount int64, currency, customerID string) (string, error) {
	return "cash", nil
}

func (Cash) Capture(ctx context.Context, ref string) error { return nil }

func (Cash) Release(ctx context.Context, ref string) error { return nil }
