package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// natsClientName identifies ptadmin connections in NATS monitoring.
const natsClientName = "ptadmin"

// flushTimeout bounds Publish when the caller's context has no deadline.
const flushTimeout = 5 * time.Second

// changeBuffer bounds the changes queued for a slow watcher. Overflow is
// dropped: any queued change already triggers a refresh.
const changeBuffer = 16

// Subscriber delivers the changes made to one screen's records.
type Subscriber interface {
	// Changes streams decoded changes for screen until stop is called.
	Changes(screen string) (ch <-chan Change, stop func(), err error)
	Close() error
}

// NATSBus publishes and receives dashboard changes over one NATS
// connection.
type NATSBus struct {
	conn *nats.Conn
}

// DialNATS connects to url and keeps reconnecting for the life of the bus.
// opts are applied after the defaults, e.g. disconnect and reconnect
// handlers.
func DialNATS(url string, opts ...nats.Option) (*NATSBus, error) {
	all := append([]nats.Option{
		nats.Name(natsClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}, opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSBus{conn: nc}, nil
}

// Publish sends event as JSON and waits for the server to have it, since a
// CLI invocation usually exits right after.
func (b *NATSBus) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := b.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := b.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", topic, err)
	}
	return nil
}

// Changes subscribes to every change on screen. Payloads that are not a
// Change are skipped. stop unsubscribes and closes the channel; calling it
// again is a no-op.
func (b *NATSBus) Changes(screen string) (<-chan Change, func(), error) {
	out := make(chan Change, changeBuffer)
	var (
		mu      sync.Mutex
		stopped bool
	)

	sub, err := b.conn.Subscribe(ScreenSubject(screen), func(msg *nats.Msg) {
		var c Change
		if json.Unmarshal(msg.Data, &c) != nil {
			return
		}
		if c.Screen == "" {
			c.Screen = screen
		}
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		select {
		case out <- c:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to %s changes: %w", screen, err)
	}
	// The subscription must reach the server before changes published on
	// other connections are routed to it.
	if err := b.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, nil, fmt.Errorf("subscribing to %s changes: %w", screen, err)
	}

	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		stopped = true
		_ = sub.Unsubscribe()
		close(out)
	}
	return out, stop, nil
}

func (b *NATSBus) Close() error {
	b.conn.Close()
	return nil
}

// NoopPublisher drops every event. It stands in when no NATS URL is set.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
