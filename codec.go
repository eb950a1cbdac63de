package eventstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/streamforge/eventstore-go/protos/persistent"
	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// This file converts between the domain types in types.go and the wire
// messages in protos/. The conversion rules (defaults, which oneof arm to
// take, how revisions collapse to their deprecated scalar form) all mirror
// the reference client's command layer rather than anything invented here.

func uuidToProto(id EventId) *shared.Uuid {
	bits := id.UUID[:]
	msb := int64(0)
	lsb := int64(0)
	for i := 0; i < 8; i++ {
		msb = msb<<8 | int64(bits[i])
	}
	for i := 8; i < 16; i++ {
		lsb = lsb<<8 | int64(bits[i])
	}
	return &shared.Uuid{Structured: &shared.UuidStructured{
		MostSignificantBits:  msb,
		LeastSignificantBits: lsb,
	}}
}

// protoToUuid decodes either wire representation of a Uuid.
func protoToUuid(u *shared.Uuid) (EventId, error) {
	if u == nil {
		return EventId{}, fmt.Errorf("nil uuid")
	}
	if u.String_ != nil {
		return EventIdFromString(*u.String_)
	}
	if u.Structured != nil {
		var b [16]byte
		msb := u.Structured.MostSignificantBits
		lsb := u.Structured.LeastSignificantBits
		for i := 7; i >= 0; i-- {
			b[i] = byte(msb)
			msb >>= 8
		}
		for i := 15; i >= 8; i-- {
			b[i] = byte(lsb)
			lsb >>= 8
		}
		return EventId{uuid.UUID(b)}, nil
	}
	return EventId{}, fmt.Errorf("uuid has neither representation set")
}

func convertEventData(ev EventData) *streams.AppendReqProposedMessage {
	id := ev.Id
	if id.UUID == uuid.Nil {
		id = NewEventId()
	}
	metadata := map[string]string{"type": ev.EventType}
	if ev.IsJson {
		metadata["content-type"] = "application/json"
	} else {
		metadata["content-type"] = "application/octet-stream"
	}
	customMetadata := ev.CustomMetadata
	if customMetadata == nil {
		customMetadata = []byte{}
	}
	return &streams.AppendReqProposedMessage{
		Id:             uuidToProto(id),
		Metadata:       metadata,
		CustomMetadata: customMetadata,
		Data:           ev.Data,
	}
}

func convertEventDataToBatch(ev EventData) *streams.BatchAppendReqProposedMessage {
	msg := convertEventData(ev)
	return &streams.BatchAppendReqProposedMessage{
		Id:             msg.Id,
		Metadata:       msg.Metadata,
		CustomMetadata: msg.CustomMetadata,
		Data:           msg.Data,
	}
}

func expectedRevisionToAppendOptions(rev ExpectedRevision) *streams.AppendReqOptions {
	opts := &streams.AppendReqOptions{}
	switch rev.Kind {
	case RevisionAny:
		opts.Any = &shared.Empty{}
	case RevisionNoStream:
		opts.NoStream = &shared.Empty{}
	case RevisionStreamExists:
		opts.StreamExists = &shared.Empty{}
	case RevisionExact:
		r := rev.Exact
		opts.Revision = &r
	}
	return opts
}

func convertProtoRecordedEvent(wire *streams.RecordedEventWire) *RecordedEvent {
	if wire == nil {
		return nil
	}
	eventType := wire.Metadata["type"]
	if eventType == "" {
		eventType = noEventTypeProvided
	}
	isJSON := wire.Metadata["content-type"] == "application/json"
	id, err := protoToUuid(wire.Id)
	if err != nil {
		id = EventId{}
	}
	return &RecordedEvent{
		Id:             id,
		StreamId:       string(streamName(wire.StreamIdentifier)),
		EventType:      eventType,
		IsJson:         isJSON,
		Data:           wire.Data,
		CustomMetadata: wire.CustomMetadata,
		Revision:       wire.StreamRevision,
		Position:       Position{Commit: wire.CommitPosition, Prepare: wire.PreparePosition},
	}
}

func streamName(s *shared.StreamIdentifier) []byte {
	if s == nil {
		return nil
	}
	return s.StreamName
}

func convertReadEvent(resp *streams.ReadRespReadEvent) ResolvedEvent {
	re := ResolvedEvent{
		Event: convertProtoRecordedEvent(resp.Event),
		Link:  convertProtoRecordedEvent(resp.Link),
	}
	if resp.CommitPosition != nil {
		re.CommitPosition = resp.CommitPosition
	}
	return re
}

func convertPersistentReadEvent(resp *persistent.ReadRespReadEvent) PersistentResolvedEvent {
	re := PersistentResolvedEvent{
		ResolvedEvent: ResolvedEvent{
			Event: convertProtoRecordedEvent(resp.Event),
			Link:  convertProtoRecordedEvent(resp.Link),
		},
	}
	if resp.CommitPosition != nil {
		re.CommitPosition = resp.CommitPosition
	}
	if resp.RetryCount != nil {
		re.RetryCount = *resp.RetryCount
	}
	return re
}

func streamIdentifier(stream string) *shared.StreamIdentifier {
	return &shared.StreamIdentifier{StreamName: []byte(stream)}
}

// psToDeprecatedRevisionValue collapses a StreamPosition into the legacy
// scalar revision field pre-22 servers understand: Start is 0, End is
// ^uint64(0), and an exact position loses its prepare half (the deprecated
// field only ever carried one number).
func psToDeprecatedRevisionValue(sp StreamPosition) uint64 {
	switch sp.Kind {
	case StreamPositionStart:
		return 0
	case StreamPositionEnd:
		return ^uint64(0)
	case StreamPositionExact:
		return sp.Pos.Commit
	default:
		return 0
	}
}

// psToDeprecatedRevisionValueAll is psToDeprecatedRevisionValue's $all
// counterpart: an exact $all position is a commit/prepare pair, not a
// stream revision, so it has no representation in the deprecated scalar
// field and always collapses to 0.
func psToDeprecatedRevisionValueAll(sp StreamPosition) uint64 {
	switch sp.Kind {
	case StreamPositionStart:
		return 0
	case StreamPositionEnd:
		return ^uint64(0)
	default:
		return 0
	}
}

func filterIntoProto(f *SubscriptionFilter) (*persistent.FilterOptions, bool) {
	if f == nil {
		return nil, false
	}
	expr := &persistent.Expression{Regex: f.Regex, Prefix: f.Prefixes}
	fo := &persistent.FilterOptions{CheckpointIntervalMultiplier: 1}
	switch f.Kind {
	case FilterOnStreamId:
		fo.StreamIdentifier = expr
	case FilterOnEventType:
		fo.EventType = expr
	}
	if f.Window.Max != nil {
		fo.Max = f.Window.Max
	} else {
		fo.Count = &shared.Empty{}
	}
	return fo, true
}

func settingsToWire(s PersistentSubscriptionSettings) *persistent.Settings {
	return &persistent.Settings{
		ResolveLinks:          s.ResolveLinks,
		ExtraStatistics:       s.ExtraStatistics,
		MessageTimeoutMs:      int32(s.MessageTimeout.Milliseconds()),
		MaxRetryCount:         s.MaxRetryCount,
		CheckpointAfterMs:     int32(s.CheckpointAfter.Milliseconds()),
		MinCheckpointCount:    s.MinCheckpointCount,
		MaxCheckpointCount:    s.MaxCheckpointCount,
		MaxSubscriberCount:    s.MaxSubscriberCount,
		LiveBufferSize:        s.LiveBufferSize,
		ReadBatchSize:         s.ReadBatchSize,
		HistoryBufferSize:     s.HistoryBufferSize,
		NamedConsumerStrategy: int32(s.NamedConsumerStrategy),
	}
}

func nakActionToProto(a NakAction) int32 { return int32(a) }
