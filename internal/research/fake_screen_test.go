package research

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
)

var errCaptureBudget = errors.New("capture budget exhausted")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

// fakeScreen is a scripted game. Clicks and popup confirmations run the
// transitions registered for them; every capture advances the clock by step.
type fakeScreen struct {
	clock   *fakeClock
	step    time.Duration
	budget  int
	visible map[string]bool
	colors  [ui.SlotCount]color.RGBA

	onClick   map[string]func(*fakeScreen)
	onConfirm map[string]func(*fakeScreen)
	onCapture map[int]func(*fakeScreen)

	captures    int
	clicks      []string
	confirms    []string
	stableWaits []string
	infoBarWait int
	saved       []string
	swipes      int
}

func newFakeScreen(visible ...string) *fakeScreen {
	s := &fakeScreen{
		clock:     &fakeClock{t: time.Unix(1_700_000_000, 0)},
		step:      time.Second,
		budget:    500,
		visible:   map[string]bool{},
		onClick:   map[string]func(*fakeScreen){},
		onConfirm: map[string]func(*fakeScreen){},
		onCapture: map[int]func(*fakeScreen){},
	}
	for i := range s.colors {
		s.colors[i] = color.RGBA{R: 10, G: 10, B: 200, A: 255}
	}
	s.show(visible...)
	return s
}

func (s *fakeScreen) show(names ...string) {
	for _, n := range names {
		s.visible[n] = true
	}
}

func (s *fakeScreen) hide(names ...string) {
	for _, n := range names {
		delete(s.visible, n)
	}
}

// swap returns a transition hiding one set of markers and showing another.
func swap(hide []string, show ...string) func(*fakeScreen) {
	return func(s *fakeScreen) {
		s.hide(hide...)
		s.show(show...)
	}
}

func popup(kind string) string {
	return "POPUP_" + kind
}

func (s *fakeScreen) Capture(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.captures++
	if s.captures > s.budget {
		return errCaptureBudget
	}
	s.clock.t = s.clock.t.Add(s.step)
	if f, ok := s.onCapture[s.captures]; ok {
		f(s)
	}
	return nil
}

func (s *fakeScreen) Image() image.Image {
	return nil
}

func (s *fakeScreen) Appear(btn ui.Button, _ image.Point) bool {
	return s.visible[btn.Name]
}

func (s *fakeScreen) SampleColor(area image.Rectangle) color.RGBA {
	for i, btn := range ui.ResearchStatus {
		if btn.Area == area {
			return s.colors[i]
		}
	}
	return color.RGBA{A: 255}
}

func (s *fakeScreen) Click(_ context.Context, btn ui.Button) error {
	s.clicks = append(s.clicks, btn.Name)
	if f, ok := s.onClick[btn.Name]; ok {
		f(s)
	}
	return nil
}

func (s *fakeScreen) Swipe(_ context.Context, _ image.Rectangle, _ image.Point) error {
	s.swipes++
	return nil
}

func (s *fakeScreen) ConfirmPopup(_ context.Context, kind string) (bool, error) {
	if !s.visible[popup(kind)] {
		return false, nil
	}
	s.confirms = append(s.confirms, kind)
	s.hide(popup(kind))
	if f, ok := s.onConfirm[kind]; ok {
		f(s)
	}
	return true, nil
}

func (s *fakeScreen) WaitUntilStable(_ context.Context, btn ui.Button) error {
	s.stableWaits = append(s.stableWaits, btn.Name)
	return nil
}

func (s *fakeScreen) EnsureNoInfoBar(_ context.Context, _ time.Duration) error {
	s.infoBarWait++
	return nil
}

func (s *fakeScreen) SaveScreenshot(bucket string) error {
	s.saved = append(s.saved, bucket)
	return nil
}

func (s *fakeScreen) clicksOf(name string) int {
	n := 0
	for _, c := range s.clicks {
		if c == name {
			n++
		}
	}
	return n
}

type fakeSelector struct {
	filter   func(detects int) Priority
	shortest Priority
	cheapest Priority
	detects  int
}

func (f *fakeSelector) Detect(image.Image) {
	f.detects++
}

func (f *fakeSelector) SortFilter() Priority {
	if f.filter == nil {
		return nil
	}
	return f.filter(f.detects)
}

func (f *fakeSelector) SortShortest() Priority {
	return f.shortest
}

func (f *fakeSelector) SortCheapest() Priority {
	return f.cheapest
}

type fakeNavigator struct {
	calls int
}

func (n *fakeNavigator) GotoResearch(context.Context) error {
	n.calls++
	return nil
}

type sleepRecorder struct {
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(s *fakeScreen, sel Selector, opts Options, extra ...Option) *Controller {
	if sel == nil {
		sel = &fakeSelector{}
	}
	options := append([]Option{WithClock(s.clock.now)}, extra...)
	return NewController("test", s, sel, discardLogger(), opts, options...)
}

// Marker names used by the scripts.
var (
	check       = ui.ResearchCheck.Name
	resetBtn    = ui.ResetAvailable.Name
	startBtn    = ui.ResearchStart.Name
	stopBtn     = ui.ResearchStop.Name
	unavailable = ui.ResearchUnavailable.Name
	selectQuit  = ui.ResearchSelectQuit.Name
	saveBtn     = ui.GetItemsResearchSave.Name
)

func entrance(pos int) string {
	return ui.ResearchEntrance[pos].Name
}

// scriptCarousel wires the detail view: tapping an entrance opens it, start
// asks for confirmation, confirming starts the project and quitting returns to
// the carousel. Positions listed in poor open a project that cannot be afforded.
func scriptCarousel(s *fakeScreen, poor ...int) {
	isPoor := map[int]bool{}
	for _, p := range poor {
		isPoor[p] = true
	}
	for pos := 0; pos < ui.SlotCount; pos++ {
		if isPoor[pos] {
			s.onClick[entrance(pos)] = swap([]string{check}, unavailable)
		} else {
			s.onClick[entrance(pos)] = swap([]string{check}, startBtn)
		}
	}
	s.onClick[startBtn] = swap(nil, popup(popupResearchStart))
	s.onConfirm[popupResearchStart] = swap([]string{startBtn}, stopBtn)
	s.onClick[selectQuit] = swap([]string{startBtn, stopBtn, unavailable}, check)
}

// scriptReset wires a reset button whose confirmation refreshes the projects.
func scriptReset(s *fakeScreen) {
	s.onClick[resetBtn] = swap(nil, popup(popupResearchReset))
}
