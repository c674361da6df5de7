package device

import "context"

// Service exposes the device directory use-cases consumed by the HTTP layer.
type Service interface {
	ListDevices(ctx context.Context) ([]View, error)
	GetState(ctx context.Context, id string) (State, error)
	PerformAction(ctx context.Context, id, action string) (ActionResult, error)
}
