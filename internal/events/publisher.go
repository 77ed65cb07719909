// internal/events/publisher.go
package events

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// Publisher emits audit events about dispatches. Publishing is
// fire-and-forget: callers log failures and carry on, sends are never
// blocked or retried because of the broker.
type Publisher interface {
	Publish(eventType string, payload any) error
	Close() error
}

// DispatchReportEvent summarizes one dispatch invocation.
type DispatchReportEvent struct {
	CampaignID int       `json:"campaign_id"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	At         time.Time `json:"at"`
}

// AttemptEvent mirrors one attempt row, plus the recipient address
// which the row itself does not carry.
type AttemptEvent struct {
	CampaignID int    `json:"campaign_id"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
	Response   string `json:"response"`
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// AMQPPublisher publishes events to a durable queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(eventType string, payload any) error {
	body, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.ch.Close()
	return p.conn.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(eventType string, payload any) error { return nil }
func (NopPublisher) Close() error                                { return nil }
