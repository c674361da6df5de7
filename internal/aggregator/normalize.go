package aggregator

import (
	"strings"

	"github.com/ofuangka/smart/internal/adapters/homeassistant"
	"github.com/ofuangka/smart/internal/adapters/lirc"
	"github.com/ofuangka/smart/internal/adapters/roku"
	"github.com/ofuangka/smart/internal/model"
)

// RokuTransportID is the id of the synthesized playback-controls device.
const RokuTransportID = "roku"

// DefaultHomeAssistantDomains are the entity domains exposed by default.
var DefaultHomeAssistantDomains = []string{"light", "cover", "switch"}

var rokuTransportActions = map[string]string{
	model.ActionStartOver:   "InstantReplay",
	model.ActionRewind:      "Rev",
	model.ActionFastForward: "Fwd",
	model.ActionPlay:        "Play",
	model.ActionPrevious:    "Left",
	model.ActionNext:        "Right",
	model.ActionMute:        "VolumeMute",
}

// Home Assistant actions are not domain-aware; every entity gets the same table.
var homeAssistantActions = map[string]string{
	model.ActionTurnOn:  "turn_on",
	model.ActionTurnOff: "turn_off",
}

// NormalizeLIRC maps lircd remotes one-to-one.
func NormalizeLIRC(raw []lirc.RawDevice) ([]model.Device, []error) {
	devices := make([]model.Device, 0, len(raw))
	var skipped []error
	for _, item := range raw {
		device, err := model.NewDevice(item.ID, model.PlatformLIRC, item.Name, item.Manufacturer, item.Actions)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		devices = append(devices, device)
	}
	return devices, skipped
}

// NormalizeRoku keeps launchable apps and, when any exist, appends one
// transport-control device for the player itself.
func NormalizeRoku(apps []roku.App) ([]model.Device, []error) {
	devices := make([]model.Device, 0, len(apps)+1)
	var skipped []error
	for _, app := range apps {
		if app.Type != roku.AppTypeLaunchable {
			continue
		}
		device, err := model.NewDevice(app.ID, model.PlatformRokuApp, app.Name, "", map[string]string{
			model.ActionTurnOn: "launch",
		})
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		devices = append(devices, device)
	}
	if len(devices) == 0 {
		return devices, skipped
	}
	transport, err := model.NewDevice(RokuTransportID, model.PlatformRoku, "Roku", "", rokuTransportActions)
	if err != nil {
		return devices, append(skipped, err)
	}
	return append(devices, transport), skipped
}

// NormalizeHomeAssistant keeps visible entities of the allowed domains.
func NormalizeHomeAssistant(states []homeassistant.EntityState, domains []string) ([]model.Device, []error) {
	allowed := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		if domain = strings.ToLower(strings.TrimSpace(domain)); domain != "" {
			allowed[domain] = struct{}{}
		}
	}

	devices := make([]model.Device, 0, len(states))
	var skipped []error
	for _, state := range states {
		if _, ok := allowed[state.Domain()]; !ok || state.Hidden() {
			continue
		}
		device, err := model.NewDevice(
			state.EntityID,
			model.PlatformHomeAssistant,
			state.FriendlyName(),
			state.Manufacturer(),
			homeAssistantActions,
		)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		devices = append(devices, device)
	}
	return devices, skipped
}
