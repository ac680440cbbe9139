package notify

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

// MessageWriter is the subset of *kafka.Writer the sender needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes alerts to a topic for downstream consumers
type KafkaSender struct {
	writer MessageWriter
}

// KafkaPayload is the JSON value of each published message
type KafkaPayload struct {
	Target  string    `json:"target"`
	Subject string    `json:"subject"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

func NewKafkaSender(cfg config.KafkaConfig) *KafkaSender {
	return NewKafkaSenderWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	})
}

func NewKafkaSenderWithWriter(w MessageWriter) *KafkaSender {
	return &KafkaSender{writer: w}
}

func (s *KafkaSender) Channel() string {
	return "kafka"
}

func (s *KafkaSender) Send(ctx context.Context, target, subject, body string) error {
	value, err := jsoniter.Marshal(KafkaPayload{
		Target:  target,
		Subject: subject,
		Content: body,
		SentAt:  time.Now(),
	})
	if err != nil {
		return errors.Wrapf(domain.ErrNotification, "kafka encode: %v", err)
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(target), Value: value}); err != nil {
		return errors.Wrapf(domain.ErrNotification, "kafka write: %v", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
