package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/omahs/claims-hatter/internal/model"
)

func TestNoopPublisher_Publish(t *testing.T) {
	pub := &NoopPublisher{}
	err := pub.Publish(context.Background(), TopicGateCreated, GateCreated{})
	if err != nil {
		t.Fatalf("NoopPublisher.Publish returned unexpected error: %v", err)
	}
}

func TestNoopPublisher_Close(t *testing.T) {
	pub := &NoopPublisher{}
	if err := pub.Close(); err != nil {
		t.Fatalf("NoopPublisher.Close returned unexpected error: %v", err)
	}
}

func TestNoopPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
}

func TestNATSPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	// Subscribe to capture published messages.
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicClaimSucceeded, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := ClaimSucceeded{GateID: "gate-pub1", Hat: "1.2", Wearer: "alice", Caller: "alice"}
	if err := pub.Publish(context.Background(), TopicClaimSucceeded, event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got ClaimSucceeded
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.GateID != "gate-pub1" || got.Wearer != "alice" {
			t.Errorf("got %+v, want gate-pub1/alice", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_PublishMultipleTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe("hatter.>", ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	for _, tc := range []struct {
		topic string
		event any
	}{
		{TopicGateCreated, GateCreated{Gate: &model.Gate{ID: "gate-1", Hat: "1.2"}}},
		{TopicClaimingForChanged, ClaimingForChanged{GateID: "gate-1", Hat: "1.2", NewState: true}},
		{TopicClaimingForChanged, ClaimingForChanged{GateID: "gate-1", Hat: "1.2", NewState: false}},
		{TopicClaimSucceeded, ClaimSucceeded{GateID: "gate-1", Hat: "1.2", Wearer: "bob", Caller: "carol"}},
	} {
		if err := pub.Publish(context.Background(), tc.topic, tc.event); err != nil {
			t.Fatalf("Publish(%s): %v", tc.topic, err)
		}
	}
	pub.conn.Flush()

	for i := 0; i < 4; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// Publishing after close should fail.
	err = pub.Publish(context.Background(), TopicGateCreated, GateCreated{})
	if err == nil {
		t.Error("expected error publishing after close")
	}
}
