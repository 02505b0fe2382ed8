package events

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

// Event types published on the order lifecycle topic.
const (
	OrderCreated   = "order.created"
	OrderConfirmed = "order.confirmed"
	OrderAccepted  = "order.accepted"
	OrderShipped   = "order.shipped"
	OrderDelivered = "order.delivered"
	OrderCancelled = "order.cancelled"
)

// OrderEvent is the message body published for every lifecycle transition.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderEvent(event OrderEvent) error
	Close() error
}

// NewPublisherFromEnv returns a Kafka publisher when KAFKA_BROKERS is set and a
// no-op publisher otherwise, so the API runs standalone in development.
func NewPublisherFromEnv() (Publisher, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Info().Msg("KAFKA_BROKERS not set, order events disabled")
		return NoopPublisher{}, nil
	}

	topic := os.Getenv("ORDER_EVENTS_TOPIC")
	if topic == "" {
		topic = "order-events"
	}

	return NewKafkaPublisher(strings.Split(brokers, ","), topic)
}

// KafkaPublisher publishes order events through a sarama sync producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info().Str("topic", topic).Msg("Kafka producer initialized")
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *KafkaPublisher) PublishOrderEvent(event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Debug().
		Str("type", event.Type).
		Str("order_id", event.OrderID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("order event published")

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. Used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(OrderEvent) error { return nil }
func (NoopPublisher) Close() error                       { return nil }
