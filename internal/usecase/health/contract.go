package health

import "context"

// Pinger checks storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an AI provider's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
