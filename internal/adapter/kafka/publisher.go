package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces collected zone tariffs to the source topic.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a producer for the configured source topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	return &Publisher{writer: newKafkaWriter(cfg.KafkaBrokers, cfg.KafkaSourceTopic), logger: logger}
}

// Publish writes one message per zone, keyed by zone id, in chunks of
// batchSize.
func (p *Publisher) Publish(ctx context.Context, zones []domain.ZoneTariffs, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(zones)
	}
	for start := 0; start < len(zones); start += batchSize {
		end := min(start+batchSize, len(zones))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, z := range zones[start:end] {
			msg, err := zoneToMessage(z)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish zones %d-%d: %w", start, end, err)
		}
		p.logger.Debug("published zone batch", "from", start, "to", end)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func zoneToMessage(z domain.ZoneTariffs) (kafkago.Message, error) {
	data, err := json.Marshal(z)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize zone tariffs: %w", err)
	}
	headers := []kafkago.Header{{Key: "mgr_id", Value: []byte(z.ManagerID)}}
	if z.RunID != "" {
		headers = append(headers, kafkago.Header{Key: "run_id", Value: []byte(z.RunID)})
	}
	return kafkago.Message{Key: []byte(z.ZoneID), Value: data, Headers: headers}, nil
}
