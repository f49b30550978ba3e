package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-boleteria/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes one message to the given topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Publisher wraps the producer with the service's integration events.
type Publisher struct {
	Producer         *Producer
	TicketsPurchased string
	EventsChanged    string
}

type purchasedPayload struct {
	EventID     string          `json:"event_id"`
	UserID      string          `json:"user_id"`
	TicketCount int             `json:"ticket_count"`
	Tickets     []models.Ticket `json:"tickets"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// PublishTicketsPurchased streams a purchase to the purchased topic, keyed by
// event so per-event ordering is preserved.
func (p *Publisher) PublishTicketsPurchased(tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	payload := purchasedPayload{
		EventID:     tickets[0].EventID,
		UserID:      tickets[0].UserID,
		TicketCount: len(tickets),
		Tickets:     tickets,
		PurchasedAt: time.Now(),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.TicketsPurchased, payload.EventID, value)
}

// PublishEventChanged streams a classified event mutation to the changed
// topic.
func (p *Publisher) PublishEventChanged(job models.ChangeJob) error {
	value, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.EventsChanged, job.Event.EventID, value)
}
