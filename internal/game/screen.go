package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/health"
	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/utils"
	"github.com/hectorgimenez/labbot/internal/vision"
)

const (
	popupInterval = 3 * time.Second
	stablePoll    = 300 * time.Millisecond
	infoBarPoll   = 200 * time.Millisecond
	debugBucket   = "debug"
)

// stableFrames is how many consecutive identical frames count as stable.
const stableFrames = 2

var ErrNoFrame = errors.New("no frame captured")

// Screen keeps the last captured frame and answers questions about it.
type Screen struct {
	device  *Device
	hid     *HID
	logger  *slog.Logger
	monitor *health.LatencyMonitor

	folder        string
	stableTimeout time.Duration
	debugShots    bool

	now    utils.Clock
	sleep  func(ctx context.Context, d time.Duration) error
	img    image.Image
	popups map[string]*utils.Timer
}

type ScreenOption func(*Screen)

func WithClock(now utils.Clock) ScreenOption {
	return func(s *Screen) {
		s.now = now
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ScreenOption {
	return func(s *Screen) {
		s.sleep = sleep
	}
}

// WithLatencyMonitor reports every capture duration to m.
func WithLatencyMonitor(m *health.LatencyMonitor) ScreenOption {
	return func(s *Screen) {
		s.monitor = m
	}
}

func NewScreen(device *Device, logger *slog.Logger, cfg config.LabCfg, opts ...ScreenOption) *Screen {
	s := &Screen{
		device:        device,
		logger:        logger,
		folder:        cfg.Research.ScreenshotFolder,
		stableTimeout: time.Duration(cfg.Research.StableTimeoutSeconds) * time.Second,
		debugShots:    cfg.Debug.Screenshots,
		now:           time.Now,
		sleep:         utils.SleepContext,
		popups:        make(map[string]*utils.Timer),
	}
	for _, o := range opts {
		o(s)
	}
	if s.stableTimeout <= 0 {
		s.stableTimeout = 10 * time.Second
	}
	s.hid = NewHID(device, s.sleep)

	return s
}

func (s *Screen) Capture(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := s.now()
	img, err := s.device.Screenshot(ctx)
	if s.monitor != nil {
		s.monitor.Observe(s.now().Sub(start))
	}
	if err != nil {
		return fmt.Errorf("error capturing screen: %w", err)
	}
	s.img = img

	return nil
}

func (s *Screen) Image() image.Image {
	return s.img
}

func (s *Screen) Appear(btn ui.Button, offset image.Point) bool {
	return vision.Appear(s.img, btn, offset, vision.DefaultThreshold)
}

func (s *Screen) SampleColor(area image.Rectangle) color.RGBA {
	if s.img == nil {
		return color.RGBA{}
	}
	return vision.AverageColor(s.img, area)
}

func (s *Screen) Click(ctx context.Context, btn ui.Button) error {
	s.logger.Debug("Click", slog.String("button", btn.Name))
	return s.hid.Click(ctx, btn)
}

func (s *Screen) Swipe(ctx context.Context, area image.Rectangle, vector image.Point) error {
	s.logger.Debug("Swipe", slog.Any("area", area), slog.Any("vector", vector))
	return s.hid.Swipe(ctx, area, vector)
}

// ConfirmPopup taps the confirm button of a popup if one is on the current
// frame. A popup of the same kind is not confirmed twice within popupInterval,
// the closing animation keeps the button visible for a few frames.
func (s *Screen) ConfirmPopup(ctx context.Context, kind string) (bool, error) {
	t, ok := s.popups[kind]
	if !ok {
		t = utils.NewTimer(popupInterval, s.now)
		s.popups[kind] = t
	}
	if !t.Reached() || !s.Appear(ui.PopupConfirm, image.Point{}) {
		return false, nil
	}

	s.logger.Info("Popup confirm", slog.String("popup", kind))
	if err := s.Click(ctx, ui.PopupConfirm); err != nil {
		return false, err
	}
	t.Reset()

	return true, nil
}

// WaitUntilStable captures until the area of btn stops changing. Running into
// the stable timeout is logged, not returned.
func (s *Screen) WaitUntilStable(ctx context.Context, btn ui.Button) error {
	timeout := utils.NewTimer(s.stableTimeout, s.now)
	timeout.Reset()

	var last uint64
	same := 0
	for {
		if err := s.Capture(ctx); err != nil {
			return err
		}
		fp := vision.Fingerprint(s.img, btn.Area)
		if fp == last {
			same++
		} else {
			last, same = fp, 1
		}
		if same >= stableFrames {
			return nil
		}
		if timeout.Reached() {
			s.logger.Warn("Wait until stable timeout", slog.String("button", btn.Name), slog.Duration("timeout", s.stableTimeout))
			if s.debugShots {
				if err := s.SaveScreenshot(debugBucket); err != nil {
					s.logger.Warn("Failed to save debug screenshot", slog.Any("error", err))
				}
			}
			return nil
		}
		if err := s.sleep(ctx, stablePoll); err != nil {
			return err
		}
	}
}

// EnsureNoInfoBar waits up to timeout for the info bar to go away.
func (s *Screen) EnsureNoInfoBar(ctx context.Context, timeout time.Duration) error {
	t := utils.NewTimer(timeout, s.now)
	t.Reset()
	for s.Appear(ui.InfoBar, image.Point{}) {
		if t.Reached() {
			s.logger.Debug("Info bar still visible", slog.Duration("timeout", timeout))
			return nil
		}
		if err := s.sleep(ctx, infoBarPoll); err != nil {
			return err
		}
		if err := s.Capture(ctx); err != nil {
			return err
		}
	}

	return nil
}

// SaveScreenshot writes the current frame to <folder>/<bucket>/<timestamp>.png.
func (s *Screen) SaveScreenshot(bucket string) error {
	if s.img == nil {
		return ErrNoFrame
	}

	dir := filepath.Join(s.folder, bucket)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating screenshot folder: %w", err)
	}
	path := filepath.Join(dir, s.now().Format("2006-01-02_15-04-05.000")+".png")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating screenshot: %w", err)
	}
	defer f.Close()

	if err = png.Encode(f, s.img); err != nil {
		return fmt.Errorf("error encoding screenshot: %w", err)
	}
	s.logger.Debug("Screenshot saved", slog.String("path", path))

	return nil
}
