package kafka

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// Topics carrying pipeline usage events.
const (
	TopicAnalysisCompleted   = "notice.analysis.completed"
	TopicGenerationCompleted = "notice.generation.completed"
)

// AllTopics lists every topic the service publishes to.
func AllTopics() []string {
	return []string{TopicAnalysisCompleted, TopicGenerationCompleted}
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the service's topics at startup.
type TopicManager struct {
	conn   ConnInterface
	cfg    config.KafkaConfig
	logger *zap.Logger
}

// NewTopicManager dials the first configured broker for topic administration.
func NewTopicManager(cfg config.KafkaConfig, logger *zap.Logger) (*TopicManager, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeEventError, "kafka brokers are required")
	}
	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventError, "failed to dial kafka broker")
	}
	return &TopicManager{conn: conn, cfg: cfg, logger: logger}, nil
}

// NewTopicManagerWithConn injects a conn, used by tests.
func NewTopicManagerWithConn(conn ConnInterface, cfg config.KafkaConfig, logger *zap.Logger) *TopicManager {
	return &TopicManager{conn: conn, cfg: cfg, logger: logger}
}

// EnsureTopics creates every service topic if auto-creation is enabled.
// Existing topics are left untouched.
func (m *TopicManager) EnsureTopics(ctx context.Context) error {
	if !m.cfg.AutoCreateTopics {
		return nil
	}

	numPartitions := m.cfg.NumPartitions
	if numPartitions <= 0 {
		numPartitions = 3
	}
	replicationFactor := m.cfg.ReplicationFactor
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	for _, topic := range AllTopics() {
		cfg := kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		}
		if err := m.conn.CreateTopics(cfg); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			if exists, _ := m.topicExists(topic); exists {
				continue
			}
			return errors.Wrapf(err, errors.ErrCodeEventError, "failed to create topic %s", topic)
		}
		m.logger.Info("topic created",
			zap.String("topic", topic),
			zap.Int("partitions", numPartitions))
	}
	return nil
}

func (m *TopicManager) topicExists(name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, err
	}
	return len(partitions) > 0, nil
}

// Close releases the admin connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}
