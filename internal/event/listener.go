package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const queueSize = 100

var events = make(chan Event, queueSize)

type Handler func(ctx context.Context, e Event) error

type Listener struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

func (l *Listener) Register(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, h)
}

// Listen dispatches queued events to every registered handler until ctx is done.
func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			l.dispatch(ctx, e)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, e Event) {
	l.mu.RLock()
	handlers := make([]Handler, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.RUnlock()

	for _, h := range handlers {
		if err := l.safeHandle(ctx, h, e); err != nil {
			l.logger.Error("error running event handler", slog.String("event", fmt.Sprintf("%T", e)), slog.Any("error", err))
		}
	}
}

func (l *Listener) safeHandle(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, e)
}

// Send queues e for the listener. Events are dropped when the queue is full so
// the bot loop never blocks on slow notifiers.
func Send(e Event) {
	select {
	case events <- e:
	default:
	}
}
