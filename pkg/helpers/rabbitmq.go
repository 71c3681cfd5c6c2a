package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked is returned when the broker refuses a job.
var ErrPublishNacked = errors.New("rabbitmq: publish not acknowledged")

// RabbitPublisher enqueues email jobs on a durable queue. The channel runs in
// confirm mode, so PublishJSON returns only after the broker has taken the job.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	mu    sync.Mutex
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	p := &RabbitPublisher{conn: conn, Queue: queue}
	if p.ch, err = conn.Channel(); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.ch.Confirm(false); err != nil {
		p.Close()
		return nil, err
	}
	if _, err := DeclareQueue(p.ch, queue); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// DeclareQueue declares the durable email queue. The API and the worker both
// call it so that either may start first.
func DeclareQueue(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	const durable, autoDelete, exclusive, noWait = true, false, false, false
	return ch.QueueDeclare(queue, durable, autoDelete, exclusive, noWait, nil)
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON encodes body as a persistent message and waits for the broker
// confirm or ctx, whichever comes first.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	}

	p.mu.Lock()
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, "", p.Queue, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}
