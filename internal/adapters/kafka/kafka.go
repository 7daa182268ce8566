// Package kafka publishes a compact audit record of every broadcast
// event. Consumers downstream (moderation, analytics) replay the topic;
// this process never reads it back.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"arena-chat-service/internal/events"
)

const clientID = "arena-chat-service"

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  5,
		BatchTimeout: 100 * time.Millisecond,
		Compression:  kafka.Snappy,
	}
}

type auditRecord struct {
	RoomID    string      `json:"roomId"`
	EventID   string      `json:"eventId"`
	EventType events.Type `json:"eventType"`
	Timestamp int64       `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// EventPublisher writes audit records keyed by room, so one room's
// events land in one partition in submission order.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(writer *kafka.Writer) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func (p *EventPublisher) Publish(ctx context.Context, roomID string, env events.Envelope) error {
	value, err := json.Marshal(auditRecord{
		RoomID:    roomID,
		EventID:   env.ID,
		EventType: env.Type,
		Timestamp: env.Timestamp,
		Payload:   env.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(roomID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
