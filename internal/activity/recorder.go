package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/plashmag/editorial/internal/logging"
)

const Topic = "activity_events"

// Event mirrors the activity-log row of the original system.
type Event struct {
	UserID     uint      `json:"user_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder publishes activity events best-effort. Publish failures are logged
// and swallowed so they can never fail the operation being recorded. A nil
// Recorder or one without a writer is a no-op.
type Recorder struct {
	writer *kafka.Writer
}

func NewRecorder(brokers []string) *Recorder {
	if len(brokers) == 0 {
		return &Recorder{}
	}
	return &Recorder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil || r.writer == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	l := logging.FromContext(ctx).With("svc", "activity")

	data, err := json.Marshal(ev)
	if err != nil {
		l.Error("activity marshal failed", "action", ev.Action, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(ev.Action),
		Value: data,
	}
	if err := r.writer.WriteMessages(writeCtx, msg); err != nil {
		l.Error("activity publish failed", "action", ev.Action, "error", err)
	}
}

func (r *Recorder) Close() error {
	if r == nil || r.writer == nil {
		return nil
	}
	return r.writer.Close()
}
