package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
)

type fakeWriter struct {
	messages []segkafka.Message
	writeErr error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "notice-intelligence",
	}
}

func newTestProducer(writer *fakeWriter) *Producer {
	return NewProducerWithWriter(writer, testKafkaConfig(), zap.NewNop())
}

func sampleAnalysisEvent() *notice.AnalysisCompletedEvent {
	rec := &notice.AnalysisRecord{
		ID:           uuid.New(),
		NoticeType:   "CP2000",
		Confidence:   "high",
		UrgencyLevel: "STANDARD",
		RiskLevel:    "LOW",
	}
	return notice.NewAnalysisCompletedEvent(rec, time.Now().UTC())
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(config.KafkaConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brokers")
}

func TestProducer_PublishAnalysisCompleted(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	p := newTestProducer(writer)
	event := sampleAnalysisEvent()

	require.NoError(t, p.PublishAnalysisCompleted(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, TopicAnalysisCompleted, msg.Topic)
	assert.Equal(t, event.AggregateID, string(msg.Key))

	var decoded notice.AnalysisCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "CP2000", decoded.NoticeType)
	assert.Equal(t, notice.EventTypeAnalysisCompleted, decoded.EventType)

	m := p.Metrics()
	assert.Equal(t, int64(1), m.MessagesSent)
	assert.Equal(t, int64(0), m.MessagesFailed)
	assert.Greater(t, m.BytesSent, int64(0))
}

func TestProducer_PublishGenerationCompleted(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	p := newTestProducer(writer)

	rec := &notice.GenerationRecord{
		ID:         uuid.New(),
		AnalysisID: uuid.New(),
		Stance:     "comply",
		RiskLevel:  "LOW",
	}
	event := notice.NewGenerationCompletedEvent(rec, time.Now().UTC())

	require.NoError(t, p.PublishGenerationCompleted(context.Background(), event))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, TopicGenerationCompleted, writer.messages[0].Topic)
	assert.Equal(t, rec.ID.String(), string(writer.messages[0].Key))
}

func TestProducer_WriteFailureCountsAsFailed(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{writeErr: stderrors.New("broker unreachable")}
	p := newTestProducer(writer)

	err := p.PublishAnalysisCompleted(context.Background(), sampleAnalysisEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TopicAnalysisCompleted)

	m := p.Metrics()
	assert.Equal(t, int64(0), m.MessagesSent)
	assert.Equal(t, int64(1), m.MessagesFailed)
}

func TestProducer_PublishAfterClose(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	p := newTestProducer(writer)

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)

	err := p.PublishAnalysisCompleted(context.Background(), sampleAnalysisEvent())
	assert.ErrorIs(t, err, ErrProducerClosed)

	// Second close is a no-op.
	assert.NoError(t, p.Close())
}
