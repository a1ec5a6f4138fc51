package research

import (
	"image/color"
	"log/slog"

	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/vision"
)

// minStatusSpread is the channel spread below which a status lamp reading is
// too grey to classify.
const minStatusSpread = 40

type Status int

const (
	StatusRunning Status = iota
	StatusFinished
	// StatusUnknown readings are handled as running.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ClassifyColor reads a status lamp: green is finished, blue is running, grey
// or red is unknown.
func ClassifyColor(c color.RGBA) Status {
	if vision.Spread(c) < minStatusSpread {
		return StatusUnknown
	}
	switch vision.Dominant(c) {
	case 1:
		return StatusFinished
	case 2:
		return StatusRunning
	default:
		return StatusUnknown
	}
}

type SlotReading struct {
	Slot   int
	Color  color.RGBA
	Status Status
}

// ReadStatuses samples the five status lamps of the current frame.
func ReadStatuses(screen Screen) []SlotReading {
	readings := make([]SlotReading, 0, ui.SlotCount)
	for i, btn := range ui.ResearchStatus {
		c := screen.SampleColor(btn.Area)
		readings = append(readings, SlotReading{Slot: i, Color: c, Status: ClassifyColor(c)})
	}
	return readings
}

// ScanFinished returns the lowest slot whose lamp reads finished.
func ScanFinished(screen Screen, logger *slog.Logger) (int, bool) {
	for _, r := range ReadStatuses(screen) {
		switch r.Status {
		case StatusFinished:
			logger.Info("Research finished", slog.Int("slot", r.Slot))
			return r.Slot, true
		case StatusUnknown:
			logger.Warn("Unexpected research status color",
				slog.Int("slot", r.Slot),
				slog.Int("r", int(r.Color.R)),
				slog.Int("g", int(r.Color.G)),
				slog.Int("b", int(r.Color.B)))
		}
	}
	return 0, false
}

// hasFinished scans the frame and records the finished slot on the cycle.
func (c *Controller) hasFinished(cycle *Cycle) bool {
	slot, ok := ScanFinished(c.screen, c.logger)
	if ok {
		cycle.FinishedIndex = slot
	}
	return ok
}
