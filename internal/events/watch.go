package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce coalesces bursts of change events into one refresh.
const DefaultDebounce = 200 * time.Millisecond

// Watcher triggers refreshes of one screen: on change events when a
// subscriber is available, otherwise on a fixed interval. If the event
// stream ends, it falls back to polling.
type Watcher struct {
	Sub      Subscriber // nil polls
	Screen   string
	Debounce time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

// Run refreshes once immediately and then on every trigger until ctx is
// done. Each refresh runs in its own goroutine, so a slow refresh can be
// overtaken by the next one; callers are expected to discard stale results.
// Run waits for in-flight refreshes before returning.
func (w *Watcher) Run(ctx context.Context, refresh func(context.Context)) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounceFor := w.Debounce
	if debounceFor <= 0 {
		debounceFor = DefaultDebounce
	}

	var changes <-chan Change
	if w.Sub != nil {
		ch, stop, err := w.Sub.Changes(w.Screen)
		if err != nil {
			return err
		}
		defer stop()
		changes = ch
	}

	var (
		ticker  *time.Ticker
		tickerC <-chan time.Time
	)
	startPolling := func() {
		if ticker == nil && w.Interval > 0 {
			ticker = time.NewTicker(w.Interval)
			tickerC = ticker.C
		}
	}
	if changes == nil {
		startPolling()
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	fire := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refresh(ctx)
		}()
	}
	fire()

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case c, ok := <-changes:
			if !ok {
				logger.Warn("event stream closed, falling back to polling", "screen", w.Screen, "interval", w.Interval)
				changes = nil
				startPolling()
				continue
			}
			logger.Debug("change event", "screen", c.Screen, "action", c.Action, "id", c.ID)
			if debounce == nil {
				debounce = time.NewTimer(debounceFor)
				debounceC = debounce.C
			}
		case <-debounceC:
			debounce, debounceC = nil, nil
			fire()
		case <-tickerC:
			fire()
		}
	}
}
