package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"maibpay/internal/domain/entities"
	"maibpay/internal/usecase/interfaces"
)

// KafkaPublisher emits payment state-change events.
//
// When no brokers are configured the publisher degrades to a logged no-op so
// the service can run without a Kafka deployment.
type KafkaPublisher struct {
	writer *kafka.Writer
}

var _ interfaces.IEventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 {
		log.Printf("[events][kafka] no brokers configured; events disabled")
		return &KafkaPublisher{}
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type stateChangedEvent struct {
	EventType     string    `json:"event_type"`
	PaymentID     string    `json:"payment_id"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	State         string    `json:"state,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (p *KafkaPublisher) PublishStateChanged(ctx context.Context, payment entities.Payment) error {
	if p.writer == nil {
		return nil
	}

	ev := stateChangedEvent{
		EventType:  "payment.state-changed",
		PaymentID:  payment.ID,
		Status:     string(payment.Status),
		OccurredAt: time.Now().UTC(),
	}
	if payment.Detail != nil {
		ev.TransactionID = payment.Detail.TransactionID
		ev.State = string(payment.Detail.State)
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(payment.ID), Value: value}); err != nil {
		log.Printf("[events][kafka] publish failed payment_id=%s err=%v", payment.ID, err)
		return err
	}
	log.Printf("[events][kafka] published payment_id=%s status=%s", payment.ID, payment.Status)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
