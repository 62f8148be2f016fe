package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrQueueFull is returned when a worker channel has no room left.
var ErrQueueFull = errors.New("mail queue full")

// Mailer is the part of the backend API the dispatcher needs.
type Mailer interface {
	SendEmail(ctx context.Context, msg ports.EmailMessage) (*ports.APIResponse, error)
}

// Dispatcher hands transactional mails to the backend from a fixed set of
// workers. Mails for one recipient always go to the same worker, so they are
// sent in the order they were queued.
type Dispatcher struct {
	workers []chan ports.EmailMessage
	mailer  Mailer
	log     zerolog.Logger
	// sent is notified after each delivery attempt when non-nil (tests).
	sent func(msg ports.EmailMessage, err error)
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.EmailMessage, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue queues a mail without blocking. A full worker channel drops the
// mail and returns ErrQueueFull; mails are a side effect and never hold up
// the request that triggered them.
func (d *Dispatcher) Enqueue(msg ports.EmailMessage) error {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.MailsSentTotal.WithLabelValues("failed").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			err := d.deliver(ctx, msg)
			if err != nil {
				metrics.MailsSentTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("template", msg.Template).
					Int("worker_id", id).
					Msg("mail delivery failed")
			} else {
				metrics.MailsSentTotal.WithLabelValues("sent").Inc()
			}
			if d.sent != nil {
				d.sent(msg, err)
			}
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg ports.EmailMessage) error {
	resp, err := d.mailer.SendEmail(ctx, msg)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &deliveryError{status: resp.Status}
	}
	return nil
}

type deliveryError struct{ status int }

func (e *deliveryError) Error() string {
	return "mail endpoint returned status " + strconv.Itoa(e.status)
}

// WelcomeMail builds the mail sent after a successful signup.
func WelcomeMail(name, email string) ports.EmailMessage {
	return ports.EmailMessage{
		To:       email,
		Template: "welcome",
		Data:     map[string]any{"name": name},
	}
}
