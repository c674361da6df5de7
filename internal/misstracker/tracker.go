package misstracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ofuangka/smart/internal/pkg/utils"
)

const (
	defaultThreshold = 3
	defaultCooldown  = time.Minute
)

// Record is the miss history of one device id.
type Record struct {
	Count    int       `json:"count"`
	LastMiss time.Time `json:"last_miss"`
}

// Tracker bounds cache-miss-triggered rediscoveries per device id. Counts
// grow on permitted attempts and decay by one per sweep once the cooldown
// since the last miss has passed.
type Tracker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	records map[string]*Record
}

func New(threshold int, cooldown time.Duration, logger *slog.Logger) *Tracker {
	return NewWithClock(threshold, cooldown, logger, utils.NowUTC)
}

// NewWithClock creates a tracker reading time from now.
func NewWithClock(threshold int, cooldown time.Duration, logger *slog.Logger, now func() time.Time) *Tracker {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if now == nil {
		now = utils.NowUTC
	}
	return &Tracker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       now,
		logger:    logger,
		records:   map[string]*Record{},
	}
}

// RecordAttempt reports whether another rediscovery is allowed for id and,
// if so, charges it against the budget. A refusal leaves the record unchanged.
func (t *Tracker) RecordAttempt(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[id]
	if !ok {
		rec = &Record{}
		t.records[id] = rec
	}
	if rec.Count >= t.threshold {
		return false
	}
	rec.Count++
	rec.LastMiss = t.now()
	return true
}

// Sweep decays every record whose last miss is older than the cooldown.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for id, rec := range t.records {
		if rec.Count == 0 || now.Sub(rec.LastMiss) <= t.cooldown {
			continue
		}
		rec.Count--
		if t.logger != nil {
			t.logger.Debug("miss count decayed", "id", id, "count", rec.Count)
		}
	}
}

// Snapshot returns a copy of all records.
func (t *Tracker) Snapshot() map[string]Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Record, len(t.records))
	for id, rec := range t.records {
		out[id] = *rec
	}
	return out
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = t.cooldown
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}
