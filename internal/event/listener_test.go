package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func drain() {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func TestListenerDispatchesToAllHandlers(t *testing.T) {
	defer goleak.VerifyNone(t)
	drain()

	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	l.Register(func(_ context.Context, e Event) error {
		return errors.New("first handler fails")
	})
	l.Register(func(_ context.Context, e Event) error {
		panic("second handler panics")
	})
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Message())
		if evt, ok := e.(ResearchStartedEvent); ok {
			assert.Equal(t, 3, evt.Slot)
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Listen(ctx) }()

	Send(ResearchStarted(Text("lab", "started"), uuid.New(), 3))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not dispatched")
	}
	cancel()
	require.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"started"}, got)
}

func TestSendDropsWhenFull(t *testing.T) {
	drain()
	defer drain()

	for i := 0; i < queueSize+10; i++ {
		Send(Text("lab", "spam"))
	}
	assert.Len(t, events, queueSize)
}

func TestWithScreenshot(t *testing.T) {
	e := WithScreenshot("lab", "msg", nil)
	assert.Equal(t, "lab", e.Supervisor())
	assert.Equal(t, "msg", e.Message())
	assert.Nil(t, e.Image())
	assert.False(t, e.OccurredAt().IsZero())
}
