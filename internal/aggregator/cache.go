package aggregator

import (
	"sync/atomic"
	"time"

	"github.com/ofuangka/smart/internal/model"
)

type snapshot struct {
	devices     []model.Device
	index       map[string]int
	refreshedAt time.Time
}

// Cache holds the last persisted discovery result. Readers always see one
// complete list; Replace swaps the whole snapshot.
type Cache struct {
	current atomic.Pointer[snapshot]
}

func NewCache() *Cache {
	c := &Cache{}
	c.current.Store(&snapshot{index: map[string]int{}})
	return c
}

// Replace installs devices as the new cache content. Ids must already be unique.
func (c *Cache) Replace(devices []model.Device, at time.Time) {
	next := &snapshot{
		devices:     append([]model.Device(nil), devices...),
		index:       make(map[string]int, len(devices)),
		refreshedAt: at,
	}
	for i, device := range next.devices {
		if _, exists := next.index[device.ID]; !exists {
			next.index[device.ID] = i
		}
	}
	c.current.Store(next)
}

// Lookup returns the cached device with id.
func (c *Cache) Lookup(id string) (model.Device, bool) {
	snap := c.current.Load()
	i, ok := snap.index[id]
	if !ok {
		return model.Device{}, false
	}
	return snap.devices[i], true
}

// Devices returns a copy of the cached list in discovery order.
func (c *Cache) Devices() []model.Device {
	snap := c.current.Load()
	return append([]model.Device(nil), snap.devices...)
}

// RefreshedAt returns when the cache was last replaced; zero before the first cycle.
func (c *Cache) RefreshedAt() time.Time {
	return c.current.Load().refreshedAt
}
