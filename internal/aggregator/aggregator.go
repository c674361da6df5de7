package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ofuangka/smart/internal/adapters/homeassistant"
	"github.com/ofuangka/smart/internal/adapters/lirc"
	"github.com/ofuangka/smart/internal/adapters/roku"
	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
	"github.com/ofuangka/smart/internal/pkg/utils"
)

const defaultTimeout = 10 * time.Second

type LIRCConnector interface {
	ListDevices(ctx context.Context) ([]lirc.RawDevice, error)
}

type RokuConnector interface {
	ListApps(ctx context.Context) ([]roku.App, error)
}

type HomeAssistantConnector interface {
	ListStates(ctx context.Context) ([]homeassistant.EntityState, error)
}

// Options tunes a discovery cycle.
type Options struct {
	// Timeout bounds each connector call; a timed-out backend contributes no devices.
	Timeout time.Duration
	// Domains is the Home Assistant entity domain allow-list.
	Domains []string
}

// Aggregator runs discovery cycles across all backends and owns the device cache.
type Aggregator struct {
	lirc          LIRCConnector
	roku          RokuConnector
	homeassistant HomeAssistantConnector
	options       Options
	cache         *Cache
	logger        *slog.Logger
	now           func() time.Time
}

func New(
	lircConn LIRCConnector,
	rokuConn RokuConnector,
	haConn HomeAssistantConnector,
	opts Options,
	logger *slog.Logger,
) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if len(opts.Domains) == 0 {
		opts.Domains = DefaultHomeAssistantDomains
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{
		lirc:          lircConn,
		roku:          rokuConn,
		homeassistant: haConn,
		options:       opts,
		cache:         NewCache(),
		logger:        logger,
		now:           utils.NowUTC,
	}
}

// Discover queries every backend concurrently and returns the normalized
// device list in lirc, roku, homeassistant order. With persist the cache is
// replaced by the result. When every backend fails the cache is left as is.
func (a *Aggregator) Discover(ctx context.Context, persist bool) ([]model.Device, error) {
	var (
		remotes []lirc.RawDevice
		apps    []roku.App
		states  []homeassistant.EntityState
		errs    [3]error
		g       errgroup.Group
	)

	// Branches never return an error so one failing backend cannot cancel the others.
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
		remotes, errs[0] = a.lirc.ListDevices(callCtx)
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
		apps, errs[1] = a.roku.ListApps(callCtx)
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
		states, errs[2] = a.homeassistant.ListStates(callCtx)
		return nil
	})
	_ = g.Wait()

	failed := 0
	for i, backend := range []string{"lirc", "roku", "homeassistant"} {
		if errs[i] == nil {
			continue
		}
		failed++
		a.logger.Warn("backend discovery failed", "backend", backend, "err", errs[i])
	}
	if failed == len(errs) {
		return nil, fmt.Errorf("%w: %w", devicedomain.ErrAllBackendsUnavailable, errors.Join(errs[:]...))
	}

	lircDevices, skippedLIRC := NormalizeLIRC(remotes)
	rokuDevices, skippedRoku := NormalizeRoku(apps)
	haDevices, skippedHA := NormalizeHomeAssistant(states, a.options.Domains)
	for _, err := range append(append(skippedLIRC, skippedRoku...), skippedHA...) {
		a.logger.Warn("skipping invalid device", "err", err)
	}

	devices := make([]model.Device, 0, len(lircDevices)+len(rokuDevices)+len(haDevices))
	devices = append(devices, lircDevices...)
	devices = append(devices, rokuDevices...)
	devices = append(devices, haDevices...)
	devices = a.dedupe(devices)

	if persist {
		a.cache.Replace(devices, a.now())
	}
	a.logger.Debug("discovery finished", "devices", len(devices), "failed_backends", failed, "persisted", persist)
	return devices, nil
}

// Lookup returns a device from the cache without triggering discovery.
func (a *Aggregator) Lookup(id string) (model.Device, bool) {
	return a.cache.Lookup(id)
}

// Devices returns the cached list.
func (a *Aggregator) Devices() []model.Device {
	return a.cache.Devices()
}

// LastRefresh returns the time of the last persisted discovery.
func (a *Aggregator) LastRefresh() time.Time {
	return a.cache.RefreshedAt()
}

func (a *Aggregator) dedupe(devices []model.Device) []model.Device {
	seen := make(map[string]model.Platform, len(devices))
	out := devices[:0]
	for _, device := range devices {
		if first, dup := seen[device.ID]; dup {
			a.logger.Warn("duplicate device id dropped",
				"id", device.ID,
				"kept_platform", first,
				"dropped_platform", device.Platform,
			)
			continue
		}
		seen[device.ID] = device.Platform
		out = append(out, device)
	}
	return out
}
