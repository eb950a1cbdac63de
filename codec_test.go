package eventstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

func TestUuidRoundTrip(t *testing.T) {
	id := NewEventId()
	wire := uuidToProto(id)
	if wire.Structured == nil {
		t.Fatalf("expected structured representation")
	}

	got, err := protoToUuid(wire)
	if err != nil {
		t.Fatalf("protoToUuid: %v", err)
	}
	if got.UUID != id.UUID {
		t.Fatalf("round trip mismatch: got %s want %s", got.UUID, id.UUID)
	}
}

func TestUuidFromString(t *testing.T) {
	id := uuid.New()
	s := id.String()
	wire := &shared.Uuid{String_: &s}

	got, err := protoToUuid(wire)
	if err != nil {
		t.Fatalf("protoToUuid: %v", err)
	}
	if got.UUID != id {
		t.Fatalf("got %s want %s", got.UUID, id)
	}
}

func TestConvertEventDataDefaults(t *testing.T) {
	ev := EventData{EventType: "user-created", IsJson: true, Data: []byte(`{"a":1}`)}
	msg := convertEventData(ev)

	if msg.Id == nil || msg.Id.Structured == nil {
		t.Fatalf("expected a generated id")
	}
	if msg.Metadata["content-type"] != "application/json" {
		t.Fatalf("expected json content-type, got %q", msg.Metadata["content-type"])
	}
	if msg.CustomMetadata == nil {
		t.Fatalf("custom metadata should default to empty slice, not nil")
	}
}

func TestConvertProtoRecordedEventDefaultsEventType(t *testing.T) {
	wire := &streams.RecordedEventWire{
		Id:               uuidToProto(NewEventId()),
		StreamIdentifier: streamIdentifier("orders-1"),
		Metadata:         map[string]string{},
		Data:             []byte("x"),
	}
	got := convertProtoRecordedEvent(wire)
	if got.EventType != noEventTypeProvided {
		t.Fatalf("expected default event type, got %q", got.EventType)
	}
	if got.StreamId != "orders-1" {
		t.Fatalf("expected stream id to round trip, got %q", got.StreamId)
	}
}

func TestPsToDeprecatedRevisionValue(t *testing.T) {
	cases := []struct {
		name string
		sp   StreamPosition
		want uint64
	}{
		{"start", StartPosition(), 0},
		{"end", EndPosition(), ^uint64(0)},
		{"exact", ExactPosition(Position{Commit: 42}), 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := psToDeprecatedRevisionValue(tc.sp)
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestPsToDeprecatedRevisionValueAll(t *testing.T) {
	cases := []struct {
		name string
		sp   StreamPosition
		want uint64
	}{
		{"start", StartPosition(), 0},
		{"end", EndPosition(), ^uint64(0)},
		{"exact", ExactPosition(Position{Commit: 42, Prepare: 7}), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := psToDeprecatedRevisionValueAll(tc.sp)
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestFilterIntoProtoWindow(t *testing.T) {
	max := uint32(16)
	f := &SubscriptionFilter{Kind: FilterOnEventType, Regex: "^user-", Window: SubscriptionFilterWindow{Max: &max}}

	got, ok := filterIntoProto(f)
	if !ok {
		t.Fatalf("expected filter to convert")
	}
	if diff := cmp.Diff("^user-", got.EventType.Regex); diff != "" {
		t.Fatalf("regex mismatch (-want +got):\n%s", diff)
	}
	if got.Max == nil || *got.Max != max {
		t.Fatalf("expected max window %d, got %v", max, got.Max)
	}
	if got.CheckpointIntervalMultiplier != 1 {
		t.Fatalf("checkpoint interval multiplier should always be 1, got %d", got.CheckpointIntervalMultiplier)
	}
}

func TestFilterIntoProtoNil(t *testing.T) {
	if _, ok := filterIntoProto(nil); ok {
		t.Fatalf("nil filter should not convert")
	}
}
