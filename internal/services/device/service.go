package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ofuangka/smart/internal/adapters/homeassistant"
	"github.com/ofuangka/smart/internal/adapters/roku"
	"github.com/ofuangka/smart/internal/dispatch"
	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
)

const defaultTimeout = 10 * time.Second

// Directory runs discovery cycles and exposes the cached result.
type Directory interface {
	Discover(ctx context.Context, persist bool) ([]model.Device, error)
	Devices() []model.Device
}

// Resolver finds one device by id, rediscovering on permitted misses.
type Resolver interface {
	Resolve(ctx context.Context, id string) (model.Device, error)
}

// Dispatcher performs one action on a resolved device.
type Dispatcher interface {
	Dispatch(ctx context.Context, device model.Device, action string) (model.ActionResult, error)
}

// RokuStateReader reads the foreground app of the player.
type RokuStateReader interface {
	ActiveApp(ctx context.Context) (roku.App, error)
}

// HomeAssistantStateReader reads one entity state.
type HomeAssistantStateReader interface {
	GetState(ctx context.Context, entityID string) (homeassistant.EntityState, error)
}

// Options carries per-call limits.
type Options struct {
	Timeout      time.Duration
	MaxArgLength int
}

// Service implements devicedomain.Service on top of the discovery core.
type Service struct {
	directory  Directory
	resolver   Resolver
	dispatcher Dispatcher
	roku       RokuStateReader
	ha         HomeAssistantStateReader
	options    Options
	logger     *slog.Logger
}

var _ devicedomain.Service = (*Service)(nil)

func New(
	directory Directory,
	resolver Resolver,
	dispatcher Dispatcher,
	rokuReader RokuStateReader,
	haReader HomeAssistantStateReader,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxArgLength <= 0 {
		opts.MaxArgLength = dispatch.DefaultMaxArgLength
	}
	return &Service{
		directory:  directory,
		resolver:   resolver,
		dispatcher: dispatcher,
		roku:       rokuReader,
		ha:         haReader,
		options:    opts,
		logger:     logger,
	}
}

// ListDevices runs a persisted discovery cycle and returns the redacted cache.
func (s *Service) ListDevices(ctx context.Context) ([]model.DeviceView, error) {
	if _, err := s.directory.Discover(ctx, true); err != nil {
		return nil, err
	}
	return model.Views(s.directory.Devices()), nil
}

// GetState resolves id and queries its platform for a read-only status.
func (s *Service) GetState(ctx context.Context, id string) (model.State, error) {
	device, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return model.State{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	switch device.Platform {
	case model.PlatformHomeAssistant:
		entity, err := s.ha.GetState(callCtx, dispatch.Sanitize(device.ID, s.options.MaxArgLength))
		if err != nil {
			return model.State{}, err
		}
		return model.State{ID: device.ID, State: entity.State, Details: entity.Attributes}, nil
	case model.PlatformRoku:
		app, err := s.roku.ActiveApp(callCtx)
		if err != nil {
			return model.State{}, err
		}
		state := app.Name
		if state == "" {
			state = "home"
		}
		return model.State{
			ID:      device.ID,
			State:   state,
			Details: map[string]any{"app_id": app.ID, "app_name": app.Name},
		}, nil
	case model.PlatformRokuApp:
		app, err := s.roku.ActiveApp(callCtx)
		if err != nil {
			return model.State{}, err
		}
		state := "off"
		if app.ID == device.ID {
			state = "on"
		}
		return model.State{ID: device.ID, State: state}, nil
	default:
		return model.State{}, fmt.Errorf("%w: state not supported for platform %q", devicedomain.ErrUnsupportedOperation, device.Platform)
	}
}

// PerformAction resolves id and dispatches action to its backend.
func (s *Service) PerformAction(ctx context.Context, id, action string) (model.ActionResult, error) {
	device, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return model.ActionResult{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result, err := s.dispatcher.Dispatch(callCtx, device, action)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("action failed", "id", id, "action", action, "err", err)
		}
		return model.ActionResult{}, err
	}
	return result, nil
}
