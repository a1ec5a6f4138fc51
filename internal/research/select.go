package research

import (
	"context"
	"log/slog"
)

// Select walks priority until a project starts. It returns false only when a
// reset happened: the project list changed and the caller has to detect
// projects and build a new priority list. True means no retry is needed,
// whether or not anything was started.
func (c *Controller) Select(ctx context.Context, cycle *Cycle, priority Priority) (bool, error) {
	if len(priority) == 0 {
		c.logger.Info("No research project satisfies current filter")
		return true, nil
	}

	for _, item := range priority {
		switch {
		case item.Strategy == StrategyReset:
			reset, err := c.AttemptReset(ctx, cycle)
			if err != nil {
				return false, err
			}
			if reset {
				return false, nil
			}
		case item.IsStrategy():
			return c.expandStrategy(ctx, cycle, item.Strategy)
		default:
			started, err := c.StartProject(ctx, cycle, item.Slot)
			if err != nil {
				return false, err
			}
			if started {
				return true, nil
			}
		}
	}

	c.logger.Info("No research project started")
	return true, nil
}

func (c *Controller) expandStrategy(ctx context.Context, cycle *Cycle, s Strategy) (bool, error) {
	var resolved Priority
	switch s {
	case StrategyShortest:
		resolved = c.selector.SortShortest()
	case StrategyCheapest:
		resolved = c.selector.SortCheapest()
	default:
		c.logger.Warn("Unknown select method", slog.String("method", string(s)))
		return true, nil
	}

	// Only slots and resets may come back from a sort, another strategy could
	// recurse forever.
	slots := make(Priority, 0, len(resolved))
	for _, item := range resolved {
		if item.IsStrategy() && item.Strategy != StrategyReset {
			c.logger.Warn("Ignoring strategy in sorted project list", slog.String("strategy", string(s)), slog.String("item", item.String()))
			continue
		}
		slots = append(slots, item)
	}

	c.logger.Info("Research strategy", slog.String("strategy", string(s)), slog.String("priority", slots.String()))
	result, err := c.Select(ctx, cycle, slots)
	if err != nil {
		return false, err
	}
	if c.opts.StrategyResult == StrategyResultPropagate {
		return result, nil
	}
	return true, nil
}
