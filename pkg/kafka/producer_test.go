package kafka

import (
	"context"
	"testing"
)

func TestNewProducer(t *testing.T) {
	cfg := Config{
		Brokers:       []string{"localhost:9092", "localhost:9093"},
		ConsumerGroup: "scoring-service",
		TLS:           false,
	}

	p, err := NewProducer(cfg)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if len(p.brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(p.brokers))
	}
	if p.brokers[0] != "localhost:9092" {
		t.Errorf("expected broker localhost:9092, got %s", p.brokers[0])
	}
	if p.transport != nil {
		t.Error("expected default transport without TLS or SASL")
	}
	if len(p.writers) != 0 {
		t.Errorf("expected empty writers map, got %d entries", len(p.writers))
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(Config{}); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewProducerSecureTransport(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		TLS:           true,
		SASLEnabled:   true,
		SASLMechanism: "SCRAM-SHA-512",
		SASLUsername:  "scoring",
		SASLPassword:  "secret",
	})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if p.transport == nil || p.transport.TLS == nil || p.transport.SASL == nil {
		t.Fatal("expected TLS and SASL on the transport")
	}

	w := p.getOrCreateWriter("scoring.events")
	if w.Transport != p.transport {
		t.Error("writer does not use the secure transport")
	}
}

func TestToKafkaMessages(t *testing.T) {
	out := toKafkaMessages([]Message{{
		Key:   []byte("application-123"),
		Value: []byte(`{"score":42.5}`),
		Headers: map[string]string{
			"event_type": "scoring.score.calculated",
		},
	}})

	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out))
	}
	if string(out[0].Key) != "application-123" {
		t.Errorf("unexpected key %s", out[0].Key)
	}
	if len(out[0].Headers) != 1 || out[0].Headers[0].Key != "event_type" ||
		string(out[0].Headers[0].Value) != "scoring.score.calculated" {
		t.Errorf("unexpected headers %+v", out[0].Headers)
	}
}

func TestPublishNoMessages(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if err := p.Publish(context.Background(), "scoring.events"); err != nil {
		t.Fatalf("Publish without messages: %v", err)
	}
	if len(p.writers) != 0 {
		t.Error("no writer should be created for an empty publish")
	}
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	w1 := p.getOrCreateWriter("topic-a")
	if w1 == nil {
		t.Fatal("expected non-nil writer")
	}

	// Same topic should return the same writer instance.
	w2 := p.getOrCreateWriter("topic-a")
	if w1 != w2 {
		t.Error("expected same writer instance for same topic")
	}

	w3 := p.getOrCreateWriter("topic-b")
	if w1 == w3 {
		t.Error("expected different writer instance for different topic")
	}

	if len(p.writers) != 2 {
		t.Errorf("expected 2 writers, got %d", len(p.writers))
	}
}

func TestProducerClose(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
	if len(p.writers) != 0 {
		t.Errorf("expected 0 writers after close, got %d", len(p.writers))
	}
}
