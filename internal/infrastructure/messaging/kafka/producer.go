// Package kafka publishes usage events emitted by the analysis pipeline.
// Events are keyed by aggregate ID so records for the same analysis land on
// the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// ErrProducerClosed is returned when publishing after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeEventError, "kafka producer is closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerMetrics tracks publish counters across goroutines.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of ProducerMetrics.
type MetricsSnapshot struct {
	MessagesSent   int64
	MessagesFailed int64
	BytesSent      int64
}

// Publisher is the event-publishing surface consumed by the application layer.
type Publisher interface {
	PublishAnalysisCompleted(ctx context.Context, event *notice.AnalysisCompletedEvent) error
	PublishGenerationCompleted(ctx context.Context, event *notice.GenerationCompletedEvent) error
	Close() error
}

// Producer publishes domain events to Kafka.
type Producer struct {
	writer  WriterInterface
	cfg     config.KafkaConfig
	logger  *zap.Logger
	closed  atomic.Bool
	metrics ProducerMetrics
}

var _ Publisher = (*Producer)(nil)

// NewProducer builds a producer from configuration.  The underlying writer
// hashes message keys so each aggregate's events stay ordered within a
// partition.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeEventError, "kafka brokers are required")
	}

	writeTimeout := 10 * time.Second
	if cfg.TimeoutMS > 0 {
		writeTimeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.ProducerRetries + 1,
		BatchSize:              batchSize,
		BatchTimeout:           time.Second,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}

	return &Producer{writer: writer, cfg: cfg, logger: logger}, nil
}

// NewProducerWithWriter injects a writer, used by tests.
func NewProducerWithWriter(writer WriterInterface, cfg config.KafkaConfig, logger *zap.Logger) *Producer {
	return &Producer{writer: writer, cfg: cfg, logger: logger}
}

// PublishAnalysisCompleted publishes the event recorded after an analysis is
// stored.
func (p *Producer) PublishAnalysisCompleted(ctx context.Context, event *notice.AnalysisCompletedEvent) error {
	return p.publish(ctx, TopicAnalysisCompleted, event.AggregateID, event)
}

// PublishGenerationCompleted publishes the event recorded after a response
// letter is stored.
func (p *Producer) PublishGenerationCompleted(ctx context.Context, event *notice.GenerationCompletedEvent) error {
	return p.publish(ctx, TopicGenerationCompleted, event.AggregateID, event)
}

func (p *Producer) publish(ctx context.Context, topic, key string, event interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if key == "" {
		return errors.New(errors.ErrCodeEventError, "event key is required")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrapf(err, errors.ErrCodeEventError, "failed to publish to %s", topic)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(value)))

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("key", key))
	return nil
}

// Metrics returns a snapshot of the publish counters.
func (p *Producer) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesSent:   p.metrics.MessagesSent.Load(),
		MessagesFailed: p.metrics.MessagesFailed.Load(),
		BytesSent:      p.metrics.BytesSent.Load(),
	}
}

// Close flushes and closes the underlying writer.  Safe to call twice.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed",
		zap.Int64("sent", p.metrics.MessagesSent.Load()),
		zap.Int64("failed", p.metrics.MessagesFailed.Load()))
	return err
}
