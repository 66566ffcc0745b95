package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/bibbank/scoring-service/pkg/kafka"
)

// Topics the scoring service reads and writes.
const (
	TopicApplicationSubmitted = "lending.application.submitted"
	TopicScoringEvents        = "scoring.events"
)

// KafkaContainer is a single-broker Kafka with the scoring topics created.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a broker and creates the scoring topics plus any
// extra topics given. The container is terminated when the test ends.
func NewKafkaContainer(ctx context.Context, t *testing.T, extraTopics ...string) *KafkaContainer {
	t.Helper()

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("scoring-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	kc := &KafkaContainer{Container: container}
	t.Cleanup(func() { kc.terminate(t) })

	if kc.Brokers, err = container.Brokers(ctx); err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}

	topics := append([]string{TopicApplicationSubmitted, TopicScoringEvents}, extraTopics...)
	if err := createTopics(ctx, kc.Brokers[0], topics); err != nil {
		t.Fatalf("failed to create topics %v: %v", topics, err)
	}
	return kc
}

// Config returns a client configuration for the container in its own
// consumer group.
func (kc *KafkaContainer) Config(group string) pkgkafka.Config {
	return pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: group}
}

func (kc *KafkaContainer) terminate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := kc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate kafka container: %v", err)
	}
}

// createTopics creates single-partition topics through the controller.
func createTopics(ctx context.Context, broker string, topics []string) error {
	conn, err := kafkago.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	cc, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer cc.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	return cc.CreateTopics(configs...)
}
