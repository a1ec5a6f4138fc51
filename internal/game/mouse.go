package game

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/utils"
)

const (
	keyPressMinTime = 40  // ms
	keyPressMaxTime = 90  // ms
	swipeMinTime    = 300 // ms
	swipeMaxTime    = 500 // ms
)

var screenBounds = image.Rect(0, 0, ui.ScreenWidth, ui.ScreenHeight)

// HID turns button presses into device input. Taps land on a random point of
// the click area and are followed by a short release delay.
type HID struct {
	device *Device
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewHID(device *Device, sleep func(ctx context.Context, d time.Duration) error) *HID {
	if sleep == nil {
		sleep = utils.SleepContext
	}
	return &HID{device: device, sleep: sleep}
}

// Click taps somewhere inside the click area of btn.
func (hid *HID) Click(ctx context.Context, btn ui.Button) error {
	p := utils.RandomPointIn(btn.ClickArea())
	if err := hid.device.Tap(ctx, p); err != nil {
		return fmt.Errorf("error clicking %s: %w", btn.Name, err)
	}

	sleepTime := rand.Intn(keyPressMaxTime-keyPressMinTime) + keyPressMinTime
	return hid.sleep(ctx, time.Duration(sleepTime)*time.Millisecond)
}

// Swipe drags from a random point of area by vector, staying on screen.
func (hid *HID) Swipe(ctx context.Context, area image.Rectangle, vector image.Point) error {
	from := utils.RandomPointIn(area)
	to := utils.Clamp(from.Add(vector), screenBounds)
	duration := time.Duration(rand.Intn(swipeMaxTime-swipeMinTime)+swipeMinTime) * time.Millisecond
	if err := hid.device.Swipe(ctx, from, to, duration); err != nil {
		return fmt.Errorf("error swiping: %w", err)
	}

	return hid.sleep(ctx, utils.Jitter(duration))
}
