package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
)

type fakeConn struct {
	created    []segkafka.TopicConfig
	createErr  error
	partitions []segkafka.Partition
	closed     bool
}

func (f *fakeConn) CreateTopics(topics ...segkafka.TopicConfig) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, topics...)
	return nil
}

func (f *fakeConn) ReadPartitions(_ ...string) ([]segkafka.Partition, error) {
	return f.partitions, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestAllTopics(t *testing.T) {
	t.Parallel()

	topics := AllTopics()
	assert.Len(t, topics, 2)
	assert.Contains(t, topics, TopicAnalysisCompleted)
	assert.Contains(t, topics, TopicGenerationCompleted)
}

func TestEnsureTopics_CreatesAll(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{
		Brokers:           []string{"localhost:9092"},
		AutoCreateTopics:  true,
		NumPartitions:     6,
		ReplicationFactor: 2,
	}, zap.NewNop())

	require.NoError(t, m.EnsureTopics(context.Background()))
	require.Len(t, conn.created, 2)
	assert.Equal(t, TopicAnalysisCompleted, conn.created[0].Topic)
	assert.Equal(t, 6, conn.created[0].NumPartitions)
	assert.Equal(t, 2, conn.created[0].ReplicationFactor)
}

func TestEnsureTopics_DisabledIsNoOp(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{
		Brokers:          []string{"localhost:9092"},
		AutoCreateTopics: false,
	}, zap.NewNop())

	require.NoError(t, m.EnsureTopics(context.Background()))
	assert.Empty(t, conn.created)
}

func TestEnsureTopics_Defaults(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{
		Brokers:          []string{"localhost:9092"},
		AutoCreateTopics: true,
	}, zap.NewNop())

	require.NoError(t, m.EnsureTopics(context.Background()))
	require.Len(t, conn.created, 2)
	assert.Equal(t, 3, conn.created[0].NumPartitions)
	assert.Equal(t, 1, conn.created[0].ReplicationFactor)
}

func TestEnsureTopics_TopicAlreadyExists(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{createErr: stderrors.New("topic already exists")}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{
		Brokers:          []string{"localhost:9092"},
		AutoCreateTopics: true,
	}, zap.NewNop())

	assert.NoError(t, m.EnsureTopics(context.Background()))
}

func TestEnsureTopics_CreateFailureWithoutExistingTopic(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{createErr: stderrors.New("not authorized")}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{
		Brokers:          []string{"localhost:9092"},
		AutoCreateTopics: true,
	}, zap.NewNop())

	err := m.EnsureTopics(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TopicAnalysisCompleted)
}

func TestTopicManager_Close(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop())
	require.NoError(t, m.Close())
	assert.True(t, conn.closed)
}
