package lirc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/model"
)

const (
	DefaultStatusCommand = "systemctl status lircd"
	DefaultSendCommand   = "sudo irsend SEND_ONCE"
)

// Runner executes a local command and returns its captured streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands through os/exec without a shell.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // arguments are sanitized by the dispatcher
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// RawDevice is the statically known remote exposed by the lircd daemon.
type RawDevice struct {
	ID           string
	Name         string
	Manufacturer string
	Actions      map[string]string
}

// Remote is the single remote configured in lircd.
var Remote = RawDevice{
	ID:           "sharp",
	Name:         "TV",
	Manufacturer: "Sharp",
	Actions: map[string]string{
		model.ActionTurnOn:     "KEY_POWER",
		model.ActionTurnOff:    "KEY_POWER",
		model.ActionVolumeUp:   "KEY_VOLUMEUP",
		model.ActionVolumeDown: "KEY_VOLUMEDOWN",
		model.ActionMute:       "KEY_MUTE",
	},
}

// Client checks the lircd daemon and sends IR codes through irsend.
type Client struct {
	runner    Runner
	statusCmd []string
	sendCmd   []string
}

func NewClient(statusCommand, sendCommand string) *Client {
	return NewClientWithRunner(ExecRunner{}, statusCommand, sendCommand)
}

func NewClientWithRunner(runner Runner, statusCommand, sendCommand string) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	statusCmd := strings.Fields(statusCommand)
	if len(statusCmd) == 0 {
		statusCmd = strings.Fields(DefaultStatusCommand)
	}
	sendCmd := strings.Fields(sendCommand)
	if len(sendCmd) == 0 {
		sendCmd = strings.Fields(DefaultSendCommand)
	}
	return &Client{runner: runner, statusCmd: statusCmd, sendCmd: sendCmd}
}

// ListDevices returns the fixed remote when the daemon status check is clean.
func (c *Client) ListDevices(ctx context.Context) ([]RawDevice, error) {
	if err := c.run(ctx, c.statusCmd); err != nil {
		return nil, err
	}
	remote := Remote
	remote.Actions = make(map[string]string, len(Remote.Actions))
	for action, key := range Remote.Actions {
		remote.Actions[action] = key
	}
	return []RawDevice{remote}, nil
}

// SendOnce transmits one key press for remote.
func (c *Client) SendOnce(ctx context.Context, remote, key string) error {
	args := append(append([]string(nil), c.sendCmd...), remote, key)
	return c.run(ctx, args)
}

func (c *Client) run(ctx context.Context, argv []string) error {
	_, stderr, err := c.runner.Run(ctx, argv[0], argv[1:]...)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return fmt.Errorf("%w: lirc %s: %s", devicedomain.ErrBackendUnavailable, argv[0], msg)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: lirc %s exited with %d", devicedomain.ErrBackendUnavailable, argv[0], exitErr.ExitCode())
		}
		return fmt.Errorf("%w: lirc %s: %v", devicedomain.ErrBackendUnavailable, argv[0], err)
	}
	return nil
}
