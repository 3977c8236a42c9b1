package queue

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes ledger events to a Kafka topic, keyed by user id
// so one user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends ev as a JSON message.
func (p *KafkaPublisher) Publish(ctx context.Context, ev LedgerEvent) error {
	msg, err := kafkaMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending writes and releases the writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }

func kafkaMessage(ev LedgerEvent) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(strconv.FormatUint(ev.UserID, 10)),
		Value:   data,
		Time:    ev.OccurredAt,
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Type)}},
	}, nil
}
