package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// OkHealthChecker always reports healthy; used when the process has no
// external dependencies worth probing.
type OkHealthChecker struct{}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(_ context.Context) bool {
	return true
}
