package research

import (
	"cmp"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hectorgimenez/labbot/internal/config"
	"github.com/hectorgimenez/labbot/internal/ui"
	"github.com/hectorgimenez/labbot/internal/vision"
)

// Project is what is known about the card at one logical slot.
type Project struct {
	Slot        int
	Available   bool
	Known       bool
	Fingerprint uint64
	Name        string
	Duration    time.Duration
	Cost        int
}

// ProjectReader reads the five carousel cards from an unscrolled research page.
type ProjectReader interface {
	ReadProjects(img image.Image) []Project
}

// CardReader treats any position that does not show the empty carousel
// background as a project, and names it through a catalog of card fingerprints.
type CardReader struct {
	catalog map[uint64]config.ProjectCfg
}

func NewCardReader(projects []config.ProjectCfg) (*CardReader, error) {
	catalog := make(map[uint64]config.ProjectCfg, len(projects))
	for _, p := range projects {
		fp, err := strconv.ParseUint(p.Fingerprint, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("project %q has an invalid fingerprint: %w", p.Name, err)
		}
		catalog[fp] = p
	}

	return &CardReader{catalog: catalog}, nil
}

func (r *CardReader) ReadProjects(img image.Image) []Project {
	projects := make([]Project, ui.SlotCount)
	for i, btn := range ui.ResearchEntrance {
		projects[i] = Project{Slot: i}
		if img == nil {
			continue
		}
		if vision.ColorSimilar(vision.AverageColor(img, btn.Area), ui.EmptyCardColor, vision.DefaultThreshold) {
			continue
		}

		p := &projects[i]
		p.Available = true
		p.Fingerprint = vision.Fingerprint(img, btn.Area)
		if known, ok := r.catalog[p.Fingerprint]; ok {
			p.Known = true
			p.Name = known.Name
			p.Duration = time.Duration(known.DurationMinutes) * time.Minute
			p.Cost = known.Cost
		}
	}

	return projects
}

// FormatFingerprint renders a card fingerprint the way the catalog stores it.
func FormatFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// ProjectSelector is the default Selector. The filter can be replaced while
// the bot runs.
type ProjectSelector struct {
	reader ProjectReader
	logger *slog.Logger

	mu       sync.RWMutex
	filter   Priority
	projects []Project
}

func NewProjectSelector(reader ProjectReader, filter Priority, logger *slog.Logger) *ProjectSelector {
	return &ProjectSelector{
		reader:   reader,
		logger:   logger,
		filter:   filter,
		projects: make([]Project, ui.SlotCount),
	}
}

func (s *ProjectSelector) SetFilter(filter Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

// Projects returns the result of the last detection.
func (s *ProjectSelector) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

func (s *ProjectSelector) Detect(img image.Image) {
	projects := s.reader.ReadProjects(img)

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()

	for _, p := range projects {
		s.logger.Debug("Research project detected",
			slog.Int("slot", p.Slot),
			slog.Bool("available", p.Available),
			slog.String("name", p.Name),
			slog.String("fingerprint", FormatFingerprint(p.Fingerprint)))
	}
}

// SortFilter returns the configured filter with slots holding no project removed.
func (s *ProjectSelector) SortFilter() Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Priority, 0, len(s.filter))
	for _, item := range s.filter {
		if item.IsStrategy() || s.available(item.Slot) {
			out = append(out, item)
		}
	}
	return out
}

func (s *ProjectSelector) SortShortest() Priority {
	return s.sorted(func(a, b Project) int { return cmp.Compare(a.Duration, b.Duration) })
}

func (s *ProjectSelector) SortCheapest() Priority {
	return s.sorted(func(a, b Project) int { return cmp.Compare(a.Cost, b.Cost) })
}

// sorted orders available projects by by, catalogued ones first, ties by slot.
func (s *ProjectSelector) sorted(by func(a, b Project) int) Priority {
	s.mu.RLock()
	candidates := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.Available {
			candidates = append(candidates, p)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(candidates, func(a, b Project) int {
		if a.Known != b.Known {
			if a.Known {
				return -1
			}
			return 1
		}
		if c := by(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Slot, b.Slot)
	})

	out := make(Priority, len(candidates))
	for i, p := range candidates {
		out[i] = SlotItem(p.Slot)
	}
	return out
}

func (s *ProjectSelector) available(slot int) bool {
	return slot >= 0 && slot < len(s.projects) && s.projects[slot].Available
}
