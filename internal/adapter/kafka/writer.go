package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafkago.Writer used by the adapters.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces zone schedules to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return &Writer{writer: newKafkaWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic), logger: logger}
}

func newKafkaWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
}

// LoadBatch serializes and publishes schedules in a single WriteMessages call.
// Messages are keyed by document id so updates of a zone stay ordered.
func (w *Writer) LoadBatch(ctx context.Context, schedules []domain.ZoneSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(schedules))
	for i := range schedules {
		msg, err := serializeToMessage(schedules[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ZoneSchedule into a Kafka message.
func serializeToMessage(s domain.ZoneSchedule) (kafkago.Message, error) {
	data, err := domain.SerializeZoneSchedule(s)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(s.DocID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mgr_id", Value: []byte(s.ManagerID)},
			{Key: "updated_at", Value: []byte(s.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}
