package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"upboost_crm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const errFmt = "got %v, want %v"

func TestBroadcastPublishesMessage(t *testing.T) {
	srv := miniredis.RunT(t)

	b, err := New("redis://"+srv.Addr(), "crm:invalidations", logger.New("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	sub := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubsub := sub.Subscribe(ctx, "crm:invalidations")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	b.Broadcast(ctx, ResourceLeads, KindInsert)

	msg, err := pubsub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	var got Message
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Resource != ResourceLeads {
		t.Errorf(errFmt, got.Resource, ResourceLeads)
	}
	if got.Kind != KindInsert {
		t.Errorf(errFmt, got.Kind, KindInsert)
	}
	if got.At.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestNilBroadcasterIsSafe(t *testing.T) {
	var b *Broadcaster
	b.Broadcast(context.Background(), ResourceAppointments, KindUpdate)
	if err := b.Close(); err != nil {
		t.Fatalf(errFmt, err, nil)
	}
}

func TestNewWithoutRedisURLReturnsNil(t *testing.T) {
	b, err := New("", "crm:invalidations", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b != nil {
		t.Error("expected nil broadcaster when redis is not configured")
	}
}

func TestBroadcastSurvivesRedisOutage(t *testing.T) {
	srv := miniredis.RunT(t)

	b, err := New("redis://"+srv.Addr(), "crm:invalidations", logger.New("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	srv.Close()

	// Must not panic or return anything; failure is logged and dropped.
	b.Broadcast(context.Background(), ResourceLeads, KindUpdate)
}
