package ports

//go:generate mockgen -source=health.go -destination=mocks/mock_health.go -package=mocks

import "context"

// HealthChecker is one backing store reported by GET /health.
type HealthChecker interface {
	// Ping returns nil when the store can serve portal traffic.
	Ping(ctx context.Context) error
	// Name is the key used in the health response.
	Name() string
}
