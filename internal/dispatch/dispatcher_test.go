package dispatch

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) SendOnce(_ context.Context, remote, key string) error {
	r.calls = append(r.calls, "irsend "+remote+" "+key)
	return r.err
}

func (r *recorder) LaunchApp(_ context.Context, appID string) error {
	r.calls = append(r.calls, "launch "+appID)
	return r.err
}

func (r *recorder) Keypress(_ context.Context, key string) error {
	r.calls = append(r.calls, "keypress "+key)
	return r.err
}

func (r *recorder) CallService(_ context.Context, domain, service, entityID string) error {
	r.calls = append(r.calls, "service "+domain+"/"+service+" "+entityID)
	return r.err
}

func newDevice(t *testing.T, id string, platform model.Platform, actions map[string]string) model.Device {
	t.Helper()
	device, err := model.NewDevice(id, platform, "", "", actions)
	require.NoError(t, err)
	return device
}

func TestDispatchRoutesByPlatform(t *testing.T) {
	cases := []struct {
		name   string
		device model.Device
		action string
		want   string
	}{
		{
			name:   "homeassistant",
			device: newDevice(t, "light.kitchen", model.PlatformHomeAssistant, map[string]string{model.ActionTurnOn: "turn_on"}),
			action: model.ActionTurnOn,
			want:   "service homeassistant/turn_on light.kitchen",
		},
		{
			name:   "roku app",
			device: newDevice(t, "12", model.PlatformRokuApp, map[string]string{model.ActionTurnOn: "launch"}),
			action: model.ActionTurnOn,
			want:   "launch 12",
		},
		{
			name:   "roku transport",
			device: newDevice(t, "roku", model.PlatformRoku, map[string]string{model.ActionPlay: "Play"}),
			action: model.ActionPlay,
			want:   "keypress Play",
		},
		{
			name:   "lirc",
			device: newDevice(t, "sharp", model.PlatformLIRC, map[string]string{model.ActionMute: "KEY_MUTE"}),
			action: model.ActionMute,
			want:   "irsend sharp KEY_MUTE",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			result, err := New(rec, rec, rec, 32, nil).Dispatch(context.Background(), tc.device, tc.action)
			require.NoError(t, err)
			assert.Equal(t, model.ActionResult{ID: tc.device.ID, Action: tc.action}, result)
			assert.Equal(t, []string{tc.want}, rec.calls)
		})
	}
}

func TestDispatchUnknownActionDoesNoIO(t *testing.T) {
	rec := &recorder{}
	device := newDevice(t, "sharp", model.PlatformLIRC, map[string]string{model.ActionTurnOn: "KEY_POWER"})

	_, err := New(rec, rec, rec, 32, nil).Dispatch(context.Background(), device, "Nonexistent")
	require.ErrorIs(t, err, devicedomain.ErrUnsupportedOperation)
	assert.Empty(t, rec.calls)
}

func TestDispatchSanitizesArguments(t *testing.T) {
	rec := &recorder{}
	device := newDevice(t, "tv; rm -rf /", model.PlatformLIRC, map[string]string{model.ActionTurnOn: "KEY_POWER && reboot"})

	_, err := New(rec, rec, rec, 8, nil).Dispatch(context.Background(), device, model.ActionTurnOn)
	require.NoError(t, err)
	assert.Equal(t, []string{"irsend tv__rm__ KEY_POWE"}, rec.calls)
}

func TestDispatchPropagatesBackendError(t *testing.T) {
	rec := &recorder{err: devicedomain.ErrBackendUnavailable}
	device := newDevice(t, "12", model.PlatformRokuApp, map[string]string{model.ActionTurnOn: "launch"})

	_, err := New(rec, rec, rec, 32, nil).Dispatch(context.Background(), device, model.ActionTurnOn)
	assert.True(t, errors.Is(err, devicedomain.ErrBackendUnavailable))
}

func TestSanitize(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9_.]*$`)

	got := Sanitize("abc/../; rm -rf", 8)
	assert.Equal(t, "abc_..__", got)
	assert.Regexp(t, safe, got)
	assert.LessOrEqual(t, len(got), 8)

	assert.Equal(t, "light.kitchen", Sanitize("light.kitchen", 64))
	assert.Equal(t, "caf_", Sanitize("café", 64))
	assert.Equal(t, "", Sanitize("", 8))
	assert.Len(t, Sanitize("ééééééééééé", 4), 4)
}
