package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	queue     []kafkago.Message
	committed []int64
	fetchErr  error
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if r.fetchErr != nil {
		return kafkago.Message{}, r.fetchErr
	}
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{queue: []kafkago.Message{
		{Offset: 1, Value: []byte("ok"), Headers: []kafkago.Header{{Key: "event_type", Value: []byte("submitted")}}},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("ok")},
	}}

	var seen []string
	handler := func(_ context.Context, msg Message) error {
		seen = append(seen, string(msg.Value))
		if len(seen) == 3 {
			cancel()
		}
		if string(msg.Value) == "bad" {
			return errors.New("malformed")
		}
		return nil
	}

	c := newConsumer(r, "lending.application.submitted", "scoring-service", handler, discard())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(seen) != 3 {
		t.Fatalf("handled %d messages, want 3", len(seen))
	}
	if len(r.committed) != 2 || r.committed[0] != 1 || r.committed[1] != 3 {
		t.Errorf("committed offsets %v, want [1 3]", r.committed)
	}

	if err := c.Close(); err != nil || !r.closed {
		t.Errorf("Close: err=%v closed=%v", err, r.closed)
	}
}

func TestConsumerFetchError(t *testing.T) {
	r := &fakeReader{fetchErr: errors.New("broker unreachable")}
	c := newConsumer(r, "t", "g", func(context.Context, Message) error { return nil }, discard())

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestFromKafkaMessage(t *testing.T) {
	msg := fromKafkaMessage(kafkago.Message{
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: []kafkago.Header{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}},
	})

	if string(msg.Key) != "k" || string(msg.Value) != "v" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Headers["a"] != "1" || msg.Headers["b"] != "2" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "brokers only", cfg: Config{Brokers: []string{"kafka:9092"}}},
		{name: "no brokers", cfg: Config{}, wantErr: true},
		{name: "plain sasl", cfg: Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true}},
		{
			name:    "unknown sasl",
			cfg:     Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"},
			wantErr: true,
		},
		{
			name: "unknown sasl ignored when disabled",
			cfg:  Config{Brokers: []string{"kafka:9092"}, SASLMechanism: "GSSAPI"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
