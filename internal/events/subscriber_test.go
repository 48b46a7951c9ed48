package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/sgcpro/sgc/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func newTestBus(t *testing.T, url string, opts ...nats.Option) *NATSBus {
	t.Helper()
	b, err := NewNATSBus(url, opts...)
	if err != nil {
		t.Fatalf("connecting bus: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestNATSBus_RoundTrip(t *testing.T) {
	url := startTestNATS(t)
	pub := newTestBus(t, url)
	sub := newTestBus(t, url)

	ch, cancel, err := sub.Subscribe(Prefix + "policy.*")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	if err := pub.Publish(ctx, TopicClientCreated, ClientChanged{Client: &model.Client{ID: "cli-1"}}); err != nil {
		t.Fatal(err)
	}
	ev := PolicyRenewed{Policy: &model.Policy{ID: "apo-1"}, Successor: &model.Policy{ID: "apo-2"}}
	if err := pub.Publish(ctx, TopicPolicyRenewed, ev); err != nil {
		t.Fatal(err)
	}

	// The client event does not match "sgc.policy.*".
	m := receive(t, ch)
	if m.Topic != TopicPolicyRenewed {
		t.Fatalf("topic = %q, want %q", m.Topic, TopicPolicyRenewed)
	}
	var got PolicyRenewed
	if err := json.Unmarshal(m.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Successor.ID != "apo-2" {
		t.Errorf("successor = %+v", got.Successor)
	}
}

func TestNATSBus_SameConnection(t *testing.T) {
	b := newTestBus(t, startTestNATS(t))

	ch, cancel, err := b.Subscribe(Prefix + ">")
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	topics := []string{TopicClientCreated, TopicPaymentCreated, TopicClaimStatusChanged}
	for _, topic := range topics {
		if err := b.Publish(context.Background(), topic, Deleted{ID: topic}); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range topics {
		if m := receive(t, ch); m.Topic != want {
			t.Errorf("topic = %q, want %q", m.Topic, want)
		}
	}
}

func TestNATSBus_CancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)
	pub := newTestBus(t, url)
	sub := newTestBus(t, url)

	ch, cancel, err := sub.Subscribe(Prefix + ">")
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			_ = pub.Publish(context.Background(), TopicAppointmentCreated, Deleted{ID: "agd-1"})
		}
	}()
	cancel()
	cancel()
	<-done

	for range ch {
	}
}

func TestNATSBus_PublishCancelledContext(t *testing.T) {
	b := newTestBus(t, startTestNATS(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, TopicClientCreated, Deleted{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNATSBus_Options(t *testing.T) {
	var name string
	b := newTestBus(t, startTestNATS(t), func(o *nats.Options) error {
		name = o.Name
		return nil
	})
	if !b.conn.IsConnected() {
		t.Fatal("expected bus to be connected")
	}
	// Custom options run after the defaults.
	if name != "sgc" {
		t.Errorf("name seen by option = %q, want sgc", name)
	}
}
