package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus carries events over one NATS connection. Topics are used as
// subjects verbatim, so subscribers may use NATS wildcards ("sgc.>").
type NATSBus struct {
	conn   *nats.Conn
	buffer int
}

var (
	_ Publisher  = (*NATSBus)(nil)
	_ Subscriber = (*NATSBus)(nil)
)

// NewNATSBus connects to url and keeps reconnecting forever. Extra options
// (disconnect or reconnect handlers, credentials) are applied after the
// defaults.
func NewNATSBus(url string, opts ...nats.Option) (*NATSBus, error) {
	defaults := []nats.Option{
		nats.Name("sgc"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSBus{conn: nc, buffer: 64}, nil
}

// Publish sends event as JSON on the topic subject.
func (b *NATSBus) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}
	if err := b.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

// Subscribe forwards the messages of topic to the returned channel. A
// message that finds the channel full is dropped. The subscription is
// registered on the server before Subscribe returns.
func (b *NATSBus) Subscribe(topic string) (<-chan Message, func(), error) {
	raw := make(chan *nats.Msg, b.buffer)
	sub, err := b.conn.ChanSubscribe(topic, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	if err := b.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, nil, fmt.Errorf("flushing subscription to %s: %w", topic, err)
	}

	out := make(chan Message, b.buffer)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for {
			select {
			case <-stop:
				return
			case m := <-raw:
				select {
				case out <- Message{Topic: m.Subject, Data: m.Data}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			close(stop)
			wg.Wait()
		})
	}
	return out, cancel, nil
}

// Close drops the connection. Open subscriptions stop receiving.
func (b *NATSBus) Close() error {
	b.conn.Close()
	return nil
}
