package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes audit events as JSON messages keyed by entity id.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

type kafkaPayload struct {
	EventID    string         `json:"event_id"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   *uint          `json:"entity_id,omitempty"`
	StaffID    *uint          `json:"staff_id,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (k *KafkaSink) Write(ctx context.Context, ev Event) error {
	msg, err := k.message(ctx, ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaSink) message(ctx context.Context, ev Event) (kafka.Message, error) {
	eventID := uuid.NewString()

	value, err := json.Marshal(kafkaPayload{
		EventID:    eventID,
		Action:     ev.Action,
		Entity:     ev.Entity,
		EntityID:   ev.EntityID,
		StaffID:    ev.StaffID,
		RequestID:  ev.RequestID,
		Metadata:   ev.Metadata,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	key := ev.Entity
	if ev.EntityID != nil {
		key = strconv.FormatUint(uint64(*ev.EntityID), 10)
	}

	carrier := &headerCarrier{headers: []kafka.Header{
		{Key: "event_id", Value: []byte(eventID)},
		{Key: "event_type", Value: []byte(ev.Action)},
	}}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: carrier.headers,
		Time:    ev.OccurredAt,
	}, nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
