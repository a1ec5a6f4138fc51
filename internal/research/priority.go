package research

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hectorgimenez/labbot/internal/ui"
)

type Strategy string

const (
	StrategyReset    Strategy = "reset"
	StrategyShortest Strategy = "shortest"
	StrategyCheapest Strategy = "cheapest"
)

// Item is one entry of a priority list: either a concrete project slot or a
// symbolic strategy.
type Item struct {
	Slot     int
	Strategy Strategy
}

func SlotItem(slot int) Item {
	return Item{Slot: slot}
}

func StrategyItem(s Strategy) Item {
	return Item{Strategy: s}
}

func (i Item) IsStrategy() bool {
	return i.Strategy != ""
}

func (i Item) String() string {
	if i.IsStrategy() {
		return string(i.Strategy)
	}
	return strconv.Itoa(i.Slot)
}

// Priority is evaluated left to right; the first item that succeeds wins.
type Priority []Item

func (p Priority) String() string {
	parts := make([]string, len(p))
	for i, item := range p {
		parts[i] = item.String()
	}
	return strings.Join(parts, " > ")
}

// Slots builds a priority list of concrete slots.
func Slots(slots ...int) Priority {
	p := make(Priority, len(slots))
	for i, s := range slots {
		p[i] = SlotItem(s)
	}
	return p
}

// ParsePriority reads a filter such as "reset > shortest > 2 > 0". Numbers
// must be valid slots; any other token becomes a strategy item, so unknown
// names survive until Select warns about them.
func ParsePriority(filter string) (Priority, error) {
	var p Priority
	for _, token := range strings.Split(filter, ">") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if n, err := strconv.Atoi(token); err == nil {
			if n < 0 || n >= ui.SlotCount {
				return nil, fmt.Errorf("slot %d out of range [0,%d]", n, ui.SlotCount-1)
			}
			p = append(p, SlotItem(n))
			continue
		}
		p = append(p, StrategyItem(Strategy(token)))
	}
	return p, nil
}
