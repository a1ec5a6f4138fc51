package game

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Device talks to the emulator through adb.
type Device struct {
	adbPath string
	serial  string
	timeout time.Duration
	runner  Runner
}

type DeviceOption func(*Device)

func WithRunner(r Runner) DeviceOption {
	return func(d *Device) {
		d.runner = r
	}
}

func NewDevice(cfg config.DeviceCfg, opts ...DeviceOption) *Device {
	d := &Device{
		adbPath: cfg.AdbPath,
		serial:  cfg.Serial,
		timeout: time.Duration(cfg.CommandTimeoutSeconds) * time.Second,
		runner:  execRunner{},
	}
	if d.adbPath == "" {
		d.adbPath = "adb"
	}
	if d.timeout <= 0 {
		d.timeout = 10 * time.Second
	}
	for _, o := range opts {
		o(d)
	}

	return d
}

func (d *Device) adb(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.serial != "" {
		args = append([]string{"-s", d.serial}, args...)
	}
	return d.runner.Run(ctx, d.adbPath, args...)
}

// State returns the adb connection state, "device" when usable.
func (d *Device) State(ctx context.Context) (string, error) {
	out, err := d.adb(ctx, "get-state")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (d *Device) Screenshot(ctx context.Context) (image.Image, error) {
	out, err := d.adb(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("error decoding screenshot: %w", err)
	}
	return img, nil
}

func (d *Device) Tap(ctx context.Context, p image.Point) error {
	_, err := d.adb(ctx, "shell", "input", "tap", strconv.Itoa(p.X), strconv.Itoa(p.Y))
	return err
}

func (d *Device) Swipe(ctx context.Context, from, to image.Point, duration time.Duration) error {
	_, err := d.adb(ctx, "shell", "input", "swipe",
		strconv.Itoa(from.X), strconv.Itoa(from.Y),
		strconv.Itoa(to.X), strconv.Itoa(to.Y),
		strconv.FormatInt(duration.Milliseconds(), 10))
	return err
}
