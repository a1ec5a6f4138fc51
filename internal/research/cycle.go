package research

import (
	"github.com/google/uuid"
	"github.com/hectorgimenez/labbot/internal/ui"
)

// Cycle holds the state of one reward cycle. It is created by Reward and passed
// to every controller call; nothing in it outlives the cycle.
type Cycle struct {
	ID       uuid.UUID
	Carousel Carousel
	// FinishedIndex is the logical slot last seen finished. It starts at the
	// centre slot because the game usually scrolls a finished project there.
	FinishedIndex int
}

func NewCycle() *Cycle {
	return &Cycle{
		ID:            uuid.New(),
		FinishedIndex: ui.CenterSlot,
	}
}
