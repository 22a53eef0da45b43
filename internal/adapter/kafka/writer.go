package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/wxpipe/humidity-etl/internal/config"
	"github.com/wxpipe/humidity-etl/internal/domain"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple observations to the sink
// Kafka topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(observations))
	for i := range observations {
		msg, err := serializeToMessage(observations[i])
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

// serializeToMessage marshals an Observation into a Kafka message. The
// station ID is the message key so per-station ordering survives
// partitioning.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "comfort", Value: []byte(obs.Comfort)},
			{Key: "processed_at", Value: []byte(obs.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
