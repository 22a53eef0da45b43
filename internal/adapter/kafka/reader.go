package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/wxpipe/humidity-etl/internal/config"
	"github.com/wxpipe/humidity-etl/internal/domain"
)

// Reader consumes messages from the source topic as part of a consumer
// group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader creates a consumer-group reader for the configured source topic.
// Offsets are committed explicitly through each reading's Commit callback,
// never automatically.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.KafkaGroupID,
		Topic:       cfg.KafkaSourceTopic,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{reader: r, logger: logger, flushInterval: cfg.BatchFlushInterval}
}

// ExtractBatch fetches up to batchSize messages within one flush-interval
// window. Returning a short (or empty) batch when the window closes is not
// an error; the pipeline polls again.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReading, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	batch := make([]domain.RawReading, 0, batchSize)
	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(fetchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				if ctx.Err() != nil {
					return batch, ctx.Err()
				}
				return batch, nil
			}
			return batch, fmt.Errorf("fetch message: %w", err)
		}

		raw := mapMessageToRawReading(msg)
		raw.Commit = func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		}
		batch = append(batch, raw)
	}
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawReading converts a Kafka message into the transport-neutral
// raw reading. The Commit callback is attached by the Reader.
func mapMessageToRawReading(msg kafkago.Message) domain.RawReading {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawReading{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
