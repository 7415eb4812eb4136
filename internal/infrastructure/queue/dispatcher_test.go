package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type capturePublisher struct {
	mu   sync.Mutex
	msgs []EmailMessage
	done chan struct{}
	want int
}

func (p *capturePublisher) Publish(_ context.Context, msg EmailMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	if len(p.msgs) == p.want {
		close(p.done)
	}
	return nil
}

func TestMailDispatcher_DeliversMessages(t *testing.T) {
	pub := &capturePublisher{done: make(chan struct{}), want: 2}
	d := NewMailDispatcher(2, pub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if err := d.SendVerificationEmail(ctx, "a@x.com", "tok-1"); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := d.SendPasswordResetEmail(ctx, "b@x.com", "tok-2"); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	kinds := map[EmailKind]string{}
	for _, m := range pub.msgs {
		kinds[m.Kind] = m.Token
	}
	if kinds[EmailVerification] != "tok-1" || kinds[EmailPasswordReset] != "tok-2" {
		t.Fatalf("unexpected messages: %+v", pub.msgs)
	}
}

func TestMailDispatcher_ShardStableForRecipient(t *testing.T) {
	d := NewMailDispatcher(4, nil, zerolog.Nop())

	first := d.shardIndex("same@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("same@x.com") != first {
			t.Fatalf("shard index must be deterministic per recipient")
		}
	}
}
