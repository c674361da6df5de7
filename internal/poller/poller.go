package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/ofuangka/smart/internal/model"
)

// Discoverer runs one discovery cycle.
type Discoverer interface {
	Discover(ctx context.Context, persist bool) ([]model.Device, error)
}

// Poller keeps the device cache warm: once at start, on every manual
// refresh and, when interval is positive, on a timer.
type Poller struct {
	directory Discoverer
	interval  time.Duration
	refreshCh chan struct{}
	logger    *slog.Logger
}

func New(directory Discoverer, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{directory: directory, interval: interval, refreshCh: make(chan struct{}, 1), logger: logger}
}

// TriggerRefresh requests a discovery cycle without blocking. Requests made
// while one is already pending collapse into it.
func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) Run(ctx context.Context) {
	p.discover(ctx)
	for {
		var tick <-chan time.Time
		var timer *time.Timer
		if p.interval > 0 {
			timer = time.NewTimer(p.interval)
			tick = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-p.refreshCh:
			if timer != nil {
				timer.Stop()
			}
		case <-tick:
		}
		p.discover(ctx)
	}
}

func (p *Poller) discover(ctx context.Context) {
	devices, err := p.directory.Discover(ctx, true)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("discovery failed", "err", err)
		return
	}
	p.logger.Info("discovery complete", "devices", len(devices))
}
