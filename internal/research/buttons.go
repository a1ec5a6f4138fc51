package research

import (
	"time"

	"github.com/hectorgimenez/labbot/internal/ui"
)

var getItems = []ui.Button{ui.GetItems1, ui.GetItems2, ui.GetItems3}

// Settle time before saving each reward popup, indexed like getItems.
var getItemsSettle = []time.Duration{2 * time.Second, 3 * time.Second, 4 * time.Second}

const (
	popupResearchReset = "RESEARCH_RESET"
	popupResearchStart = "RESEARCH_START"

	bucketProject = "research_project"
	bucketItems   = "research_items"
)
