package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Platform tags the backend a device was discovered on.
type Platform string

const (
	PlatformLIRC          Platform = "lirc"
	PlatformRoku          Platform = "roku"
	PlatformRokuApp       Platform = "roku-app"
	PlatformHomeAssistant Platform = "homeassistant"
)

// Stable action names exposed to callers.
const (
	ActionTurnOn      = "TurnOn"
	ActionTurnOff     = "TurnOff"
	ActionVolumeUp    = "VolumeUp"
	ActionVolumeDown  = "VolumeDown"
	ActionMute        = "Mute"
	ActionStartOver   = "StartOver"
	ActionRewind      = "Rewind"
	ActionFastForward = "FastForward"
	ActionPlay        = "Play"
	ActionPrevious    = "Previous"
	ActionNext        = "Next"
)

var defaultManufacturers = map[Platform]string{
	PlatformLIRC:          "LIRC",
	PlatformRoku:          "Roku",
	PlatformRokuApp:       "Roku",
	PlatformHomeAssistant: "Home Assistant",
}

// Valid reports whether p belongs to the closed platform set.
func (p Platform) Valid() bool {
	_, ok := defaultManufacturers[p]
	return ok
}

// DefaultManufacturer returns the display manufacturer used when upstream has none.
func (p Platform) DefaultManufacturer() string {
	return defaultManufacturers[p]
}

// Device is one normalized entry of the directory. The action table maps
// stable action names to platform command tokens and never leaves the process.
type Device struct {
	ID           string
	Platform     Platform
	Name         string
	Manufacturer string

	actions map[string]string
}

// NewDevice validates and builds a Device. An empty manufacturer falls back
// to the platform default; an empty name falls back to the id.
func NewDevice(id string, platform Platform, name, manufacturer string, actions map[string]string) (Device, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Device{}, fmt.Errorf("device id is empty")
	}
	if !platform.Valid() {
		return Device{}, fmt.Errorf("device %q: unknown platform %q", id, platform)
	}
	table := make(map[string]string, len(actions))
	for action, token := range actions {
		if strings.TrimSpace(action) == "" {
			return Device{}, fmt.Errorf("device %q: empty action name", id)
		}
		if strings.TrimSpace(token) == "" {
			return Device{}, fmt.Errorf("device %q: action %q has no command token", id, action)
		}
		table[action] = token
	}
	if strings.TrimSpace(name) == "" {
		name = id
	}
	if strings.TrimSpace(manufacturer) == "" {
		manufacturer = platform.DefaultManufacturer()
	}
	return Device{
		ID:           id,
		Platform:     platform,
		Name:         name,
		Manufacturer: manufacturer,
		actions:      table,
	}, nil
}

// Command returns the platform token mapped to action.
func (d Device) Command(action string) (string, bool) {
	token, ok := d.actions[action]
	return token, ok
}

// ActionNames returns supported action names in sorted order.
func (d Device) ActionNames() []string {
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View returns the redacted representation safe for external callers.
func (d Device) View() DeviceView {
	return DeviceView{
		ID:           d.ID,
		Platform:     d.Platform,
		Name:         d.Name,
		Manufacturer: d.Manufacturer,
		Actions:      d.ActionNames(),
	}
}

// MarshalJSON always emits the redacted view.
func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.View())
}

// DeviceView is the API read model for a single device.
type DeviceView struct {
	ID           string   `json:"id"`
	Platform     Platform `json:"platform"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Actions      []string `json:"actions"`
}

// Views redacts a device list preserving order.
func Views(devices []Device) []DeviceView {
	out := make([]DeviceView, 0, len(devices))
	for _, device := range devices {
		out = append(out, device.View())
	}
	return out
}

// State is a normalized read-only status of one device.
type State struct {
	ID      string         `json:"id"`
	State   string         `json:"state"`
	Details map[string]any `json:"details,omitempty"`
}

// ActionResult acknowledges a dispatched action.
type ActionResult struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}
