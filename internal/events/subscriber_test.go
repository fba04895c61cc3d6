package events

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
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

func TestNATSSubscriber_ReceivesMessages(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("hatter.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	// Publish after subscribing.
	if err := pub.conn.Publish(TopicClaimSucceeded, []byte(`{"gate_id":"gate-1"}`)); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if string(msg) != `{"gate_id":"gate-1"}` {
			t.Errorf("got %q, want %q", msg, `{"gate_id":"gate-1"}`)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("hatter.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()

	// Channel should be closed.
	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_WildcardTopicMatching(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicHatAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	topics := []string{TopicHatMinted, "hats.hat.transferred", "hats.hat.renounced"}
	for i, topic := range topics {
		data := []byte(`{"n":` + string(rune('0'+i)) + `}`)
		if err := pub.conn.Publish(topic, data); err != nil {
			t.Fatalf("publishing to %s: %v", topic, err)
		}
	}
	pub.conn.Flush()

	for i := range len(topics) {
		select {
		case <-ch:
			// received
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_DoubleCancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	_, cancel, err := sub.Subscribe("hatter.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	cancel() // second cancel must not panic
}
