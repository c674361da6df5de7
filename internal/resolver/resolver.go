package resolver

import (
	"context"
	"fmt"
	"log/slog"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
)

// Directory is the cache-owning discovery engine.
type Directory interface {
	Lookup(id string) (model.Device, bool)
	Discover(ctx context.Context, persist bool) ([]model.Device, error)
}

// MissTracker decides whether a cache miss may trigger rediscovery.
type MissTracker interface {
	RecordAttempt(id string) bool
}

// Resolver finds devices by id, rediscovering at most once per permitted miss.
type Resolver struct {
	directory Directory
	misses    MissTracker
	logger    *slog.Logger
}

func New(directory Directory, misses MissTracker, logger *slog.Logger) *Resolver {
	return &Resolver{directory: directory, misses: misses, logger: logger}
}

// Resolve returns the cached device, or runs one persisted discovery cycle
// when the id is missing and the miss tracker still allows it.
func (r *Resolver) Resolve(ctx context.Context, id string) (model.Device, error) {
	if device, ok := r.directory.Lookup(id); ok {
		return device, nil
	}
	if !r.misses.RecordAttempt(id) {
		return model.Device{}, fmt.Errorf("device %q: %w", id, devicedomain.ErrRetryExhausted)
	}

	if r.logger != nil {
		r.logger.Info("cache miss, rediscovering", "id", id)
	}
	if _, err := r.directory.Discover(ctx, true); err != nil {
		return model.Device{}, fmt.Errorf("rediscover for %q: %w", id, err)
	}
	if device, ok := r.directory.Lookup(id); ok {
		return device, nil
	}
	return model.Device{}, fmt.Errorf("device %q: %w", id, devicedomain.ErrDeviceNotFound)
}
