package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize   = 128
	sendTimeout = 30 * time.Second
)

// Dispatcher is the outbound notification queue. Enqueue never blocks the
// caller and delivery failures only affect logs; the triggering operation has
// already returned its result by the time a send runs.
type Dispatcher struct {
	email  EmailSender
	sms    SMSSender
	logger *zap.Logger

	queue chan Message
	wg    sync.WaitGroup
	once  sync.Once
}

// NewDispatcher starts the delivery worker. sms may be nil when the SMS
// channel is disabled.
func NewDispatcher(email EmailSender, sms SMSSender, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		email:  email,
		sms:    sms,
		logger: logger,
		queue:  make(chan Message, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands a message to the worker. When the queue is full the message
// is dropped with a warning rather than blocking the HTTP path.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping message",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if msg.To != "" {
		if err := d.email.Send(ctx, msg.To, msg.subject(), msg.htmlBody()); err != nil {
			d.logger.Error("email send failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("to", msg.To),
				zap.Error(err))
		}
	}

	if d.sms != nil && msg.Phone != "" {
		text := msg.smsText()
		if text == "" {
			return
		}
		if err := d.sms.Send(ctx, msg.Phone, text); err != nil {
			d.logger.Error("sms send failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("phone", msg.Phone),
				zap.Error(err))
		}
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
