//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxpipe/humidity-etl/internal/adapter/kafka"
	"github.com/wxpipe/humidity-etl/internal/config"
	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/esat"
	"github.com/wxpipe/humidity-etl/internal/observability"
	"github.com/wxpipe/humidity-etl/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// transformedMessage holds a deserialized message read from the sink topic.
type transformedMessage struct {
	Observation domain.Observation
	Key         string
	Headers     map[string]string
}

// readTransformed reads a single message from the sink consumer and deserializes it.
func readTransformed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) transformedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal sink message")

	return transformedMessage{
		Observation: obs,
		Key:         string(msg.Key),
		Headers:     headers,
	}
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (loader) correctly round-trip a message through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish one sample reading to the source topic.
	readings := loadSampleReadings(t)
	reading := readings[0] // wxs-austin-01, 21.5 degC at 62% RH
	payload, err := json.Marshal(reading)
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
		Time:  reading.Timestamp,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawReading
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	// Commit the offset.
	require.NoError(t, raw.Commit(ctx))

	// Transform the raw reading into an observation.
	transformer := pipeline.NewTransformer(esat.Default(), nil, discardLogger(), "kafka")
	obs, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.Observation{obs}))

	// Read from the sink topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	tm := readTransformed(ctx, t, consumer)
	assert.Equal(t, "wxs-austin-01", tm.Key, "messages are keyed by station")
	assert.Equal(t, domain.ComfortComfortable, tm.Headers["comfort"])
	assert.Contains(t, tm.Headers, "processed_at")
	_, err = time.Parse(time.RFC3339, tm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "wxs-austin-01", tm.Observation.StationID)
	assert.Equal(t, 21.5, tm.Observation.TemperatureC)
	assert.Equal(t, 62.0, tm.Observation.RelativeHumidity)
	require.NotNil(t, tm.Observation.DewpointC)
	assert.InDelta(t, 13.920540370349153, *tm.Observation.DewpointC, 1e-9)
	require.NotNil(t, tm.Observation.SpecificHumidity)
	assert.InDelta(t, 0.009872040209726075, *tm.Observation.SpecificHumidity, 1e-12)
	assert.Equal(t, "kafka", tm.Observation.Source)
}

// TestPipelineEndToEnd wires the full pipeline (Reader -> Transformer ->
// Writer) with real Kafka and verifies that all sample readings are
// correctly enriched.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish all sample readings to the source topic.
	readings := loadSampleReadings(t)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(readings))
	for i, reading := range readings {
		payload, err := json.Marshal(reading)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("reading-%d", i)),
			Value: payload,
			Time:  reading.Timestamp,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(esat.Default(), nil, discardLogger(), "kafka")

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	// Run the pipeline in a goroutine.
	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Read all enriched messages from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]transformedMessage, 0, len(readings))
	for len(received) < len(readings) {
		tm := readTransformed(ctx, t, consumer)
		received = append(received, tm)
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	// Validate counts by station.
	require.Len(t, received, len(readings))
	stationCounts := map[string]int{}
	for _, tm := range received {
		stationCounts[tm.Observation.StationID]++

		// Every message must have comfort and processed_at headers.
		assert.NotEmpty(t, tm.Headers["comfort"], "missing comfort header")
		assert.Contains(t, tm.Headers, "processed_at", "missing processed_at header")
		_, err := time.Parse(time.RFC3339, tm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")

		// All observations should carry a time bucket and a saturation value.
		assert.False(t, tm.Observation.TimeBucket.IsZero(), "missing time_bucket")
		assert.Greater(t, tm.Observation.SaturationHPa, 0.0, "missing saturation pressure")
	}

	assert.Equal(t, 5, stationCounts["wxs-austin-01"], "austin count")
	assert.Equal(t, 3, stationCounts["wxs-tromso-02"], "tromso count")
	assert.Equal(t, 4, stationCounts["wxs-lisbon-03"], "lisbon count")

	// Spot-check the known humidity-channel reading: 21.5 degC at 62% RH.
	var foundHumidity bool
	for _, tm := range received {
		if tm.Observation.StationID != "wxs-austin-01" || tm.Observation.TemperatureC != 21.5 {
			continue
		}
		foundHumidity = true
		require.NotNil(t, tm.Observation.DewpointC)
		assert.InDelta(t, 13.920540370349153, *tm.Observation.DewpointC, 1e-9)
		assert.InDelta(t, 25.657338729303255, tm.Observation.SaturationHPa, 1e-9)
		assert.Equal(t, domain.ComfortComfortable, tm.Observation.Comfort)
		assert.Equal(t, time.Date(2025, 6, 14, 17, 0, 0, 0, time.UTC), tm.Observation.TimeBucket)
		break
	}
	assert.True(t, foundHumidity, "expected to find the 21.5 degC austin reading")

	// Spot-check a dewpoint-channel reading: tromso at 2.9 degC, dewpoint 0.8.
	var foundDewpoint bool
	for _, tm := range received {
		if tm.Observation.StationID != "wxs-tromso-02" || tm.Observation.TemperatureC != 2.9 {
			continue
		}
		foundDewpoint = true
		require.NotNil(t, tm.Observation.DewpointC)
		assert.Equal(t, 0.8, *tm.Observation.DewpointC, "measured dewpoint passes through")
		assert.Greater(t, tm.Observation.RelativeHumidity, 0.0)
		assert.Less(t, tm.Observation.RelativeHumidity, 100.0)
		assert.Equal(t, domain.ComfortDry, tm.Observation.Comfort)
		assert.Equal(t, time.Date(2025, 1, 9, 7, 0, 0, 0, time.UTC), tm.Observation.TimeBucket)
		break
	}
	assert.True(t, foundDewpoint, "expected to find the 2.9 degC tromso reading")
}

// TestPipelineTransformError verifies that an invalid message (poison pill)
// is skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish: invalid JSON, then a valid reading.
	readings := loadSampleReadings(t)
	validPayload, err := json.Marshal(readings[0])
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{"), Time: readings[0].Timestamp},
		kafkago.Message{Key: []byte("good"), Value: validPayload, Time: readings[0].Timestamp},
	))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(esat.Default(), nil, discardLogger(), "kafka")

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid message should appear on the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	tm := readTransformed(ctx, t, consumer)
	assert.Equal(t, "wxs-austin-01", tm.Observation.StationID)
	require.NotNil(t, tm.Observation.DewpointC)
	assert.InDelta(t, 13.920540370349153, *tm.Observation.DewpointC, 1e-9)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
