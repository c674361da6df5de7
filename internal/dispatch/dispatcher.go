package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
)

// homeAssistantServiceDomain addresses the generic service that works on any entity.
const homeAssistantServiceDomain = "homeassistant"

type IRSender interface {
	SendOnce(ctx context.Context, remote, key string) error
}

type RokuController interface {
	LaunchApp(ctx context.Context, appID string) error
	Keypress(ctx context.Context, key string) error
}

type HomeAssistantController interface {
	CallService(ctx context.Context, domain, service, entityID string) error
}

// Dispatcher turns a stable action name into the platform-specific control call.
type Dispatcher struct {
	ir           IRSender
	roku         RokuController
	ha           HomeAssistantController
	maxArgLength int
	logger       *slog.Logger
}

func New(ir IRSender, roku RokuController, ha HomeAssistantController, maxArgLength int, logger *slog.Logger) *Dispatcher {
	if maxArgLength <= 0 {
		maxArgLength = DefaultMaxArgLength
	}
	return &Dispatcher{ir: ir, roku: roku, ha: ha, maxArgLength: maxArgLength, logger: logger}
}

// Dispatch performs action on device. Unknown actions fail before any I/O.
func (d *Dispatcher) Dispatch(ctx context.Context, device model.Device, action string) (model.ActionResult, error) {
	token, ok := device.Command(action)
	if !ok {
		return model.ActionResult{}, fmt.Errorf("%w: device not capable of action %q", devicedomain.ErrUnsupportedOperation, action)
	}

	id := Sanitize(device.ID, d.maxArgLength)
	token = Sanitize(token, d.maxArgLength)

	var err error
	switch device.Platform {
	case model.PlatformHomeAssistant:
		err = d.ha.CallService(ctx, homeAssistantServiceDomain, token, id)
	case model.PlatformRokuApp:
		err = d.roku.LaunchApp(ctx, id)
	case model.PlatformRoku:
		err = d.roku.Keypress(ctx, token)
	case model.PlatformLIRC:
		err = d.ir.SendOnce(ctx, id, token)
	default:
		return model.ActionResult{}, fmt.Errorf("%w: %q", devicedomain.ErrUnknownPlatform, device.Platform)
	}
	if err != nil {
		return model.ActionResult{}, err
	}

	if d.logger != nil {
		d.logger.Info("action dispatched", "id", device.ID, "platform", device.Platform, "action", action)
	}
	return model.ActionResult{ID: device.ID, Action: action}, nil
}
