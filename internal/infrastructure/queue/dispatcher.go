package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/studyflow/accounts-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// EmailKind identifies the template an outbound message uses.
type EmailKind string

const (
	EmailVerification  EmailKind = "verification"
	EmailPasswordReset EmailKind = "password_reset"
)

// EmailMessage is the unit of work handed to the mail workers.
type EmailMessage struct {
	Kind  EmailKind `json:"kind"`
	To    string    `json:"to"`
	Token string    `json:"token"`
}

// Publisher hands a message to the delivery channel (Kafka in production).
type Publisher interface {
	Publish(ctx context.Context, msg EmailMessage) error
}

// MailDispatcher implements ports.Notifier with a fixed set of workers,
// sharded by recipient so messages to the same address stay ordered. Requests
// never block on actual delivery; failures are logged, not surfaced.
type MailDispatcher struct {
	workers   []chan EmailMessage
	publisher Publisher
	log       zerolog.Logger
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, publisher Publisher, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers:   make([]chan EmailMessage, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan EmailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

func (d *MailDispatcher) SendVerificationEmail(_ context.Context, email, token string) error {
	d.enqueue(EmailMessage{Kind: EmailVerification, To: email, Token: token})
	return nil
}

func (d *MailDispatcher) SendPasswordResetEmail(_ context.Context, email, token string) error {
	d.enqueue(EmailMessage{Kind: EmailPasswordReset, To: email, Token: token})
	return nil
}

// enqueue sends a message to the worker responsible for its recipient.
// Non-blocking up to channelBuffer capacity.
func (d *MailDispatcher) enqueue(msg EmailMessage) {
	idx := d.shardIndex(msg.To)
	d.workers[idx] <- msg
	metrics.EmailsEnqueuedTotal.WithLabelValues(string(msg.Kind)).Inc()
	metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan EmailMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.publisher.Publish(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Str("kind", string(msg.Kind)).
					Int("worker_id", id).
					Msg("email publish failed")
			}
		}
	}
}
