package queue

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
)

func TestAuditConsumerHandle(t *testing.T) {
	var buf bytes.Buffer
	c := NewAuditConsumer("amqp://unused", &buf, zerolog.Nop())

	ev := BookingEvent{
		ID:         NewEventID(),
		Type:       EventCreated,
		Resource:   model.ResourceLaundry,
		BookingID:  9,
		UserID:     42,
		MachineID:  2,
		Date:       "2025-03-05",
		Start:      "08:00",
		End:        "10:00",
		Duration:   120,
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(ev)
	if err := c.handle(body); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("audit line is not JSON: %v (%q)", err, buf.String())
	}
	if line["booking_id"] != float64(9) || line["machine_id"] != float64(2) || line["type"] != "created" {
		t.Fatalf("unexpected audit line %v", line)
	}
	if !strings.Contains(line["message"].(string), "created") {
		t.Fatalf("unexpected message %v", line["message"])
	}
}

func TestAuditConsumerRejectsMalformed(t *testing.T) {
	var buf bytes.Buffer
	c := NewAuditConsumer("amqp://unused", &buf, zerolog.Nop())

	if err := c.handle([]byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := c.handle([]byte(`{"id":"x","type":"exploded","booking_id":1}`)); err == nil {
		t.Fatal("expected malformed event error")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written for rejected messages, got %q", buf.String())
	}
}
