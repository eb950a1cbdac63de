package eventstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventId identifies an event by its v4 UUID. It round-trips through the
// wire in two shapes: a pair of big-endian int64 halves (the structured
// form) or the canonical hyphenated string form.
type EventId struct {
	uuid.UUID
}

// NewEventId generates a fresh random event id, mirroring the default the
// reference client applies when EventData.Id is left unset.
func NewEventId() EventId {
	return EventId{uuid.New()}
}

// EventIdFromString parses the canonical hyphenated textual representation.
func EventIdFromString(s string) (EventId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EventId{}, fmt.Errorf("parse event id: %w", err)
	}
	return EventId{id}, nil
}

// EventData describes an event to append: a type, a payload and optional
// user metadata. Id defaults to a fresh random value if left zero.
type EventData struct {
	Id             EventId
	EventType      string
	IsJson         bool
	Data           []byte
	CustomMetadata []byte
}

// NewEventData builds an EventData with a fresh random id.
func NewEventData(eventType string, isJSON bool, data []byte) EventData {
	return EventData{
		Id:        NewEventId(),
		EventType: eventType,
		IsJson:    isJSON,
		Data:      data,
	}
}

// noEventTypeProvided is substituted when the server omits the event-type
// metadata entry, matching the reference client's default.
const noEventTypeProvided = "<no-event-type-provided>"

// RecordedEvent is an event as stored and returned by the server.
type RecordedEvent struct {
	Id             EventId
	StreamId       string
	EventType      string
	IsJson         bool
	Data           []byte
	CustomMetadata []byte
	Revision       uint64
	Position       Position
}

// ResolvedEvent pairs a recorded event with the link event that resolved to
// it, when link resolution was requested and the event came from a
// projected stream (e.g. $all or a category stream).
type ResolvedEvent struct {
	Event          *RecordedEvent
	Link           *RecordedEvent
	CommitPosition *uint64
}

// OriginalEvent returns the event itself if present, else the link event,
// matching how a resolved link should be read by callers that only care
// about "the event that actually happened" rather than its resolution.
func (r ResolvedEvent) OriginalEvent() *RecordedEvent {
	if r.Event != nil {
		return r.Event
	}
	return r.Link
}

// Position is a global commit/prepare position in $all.
type Position struct {
	Commit  uint64
	Prepare uint64
}

// StreamPositionKind selects among the three ways a read or subscription
// may specify where in $all to start.
type StreamPositionKind int

const (
	StreamPositionStart StreamPositionKind = iota
	StreamPositionEnd
	StreamPositionExact
)

// StreamPosition is a tagged union over Start, End or an exact Position.
type StreamPosition struct {
	Kind StreamPositionKind
	Pos  Position
}

func StartPosition() StreamPosition { return StreamPosition{Kind: StreamPositionStart} }
func EndPosition() StreamPosition   { return StreamPosition{Kind: StreamPositionEnd} }
func ExactPosition(p Position) StreamPosition {
	return StreamPosition{Kind: StreamPositionExact, Pos: p}
}

// RevisionKind selects among the four ways an append, delete or tombstone
// may specify the expected revision of the target stream.
type RevisionKind int

const (
	RevisionAny RevisionKind = iota
	RevisionNoStream
	RevisionStreamExists
	RevisionExact
)

// ExpectedRevision is the optimistic-concurrency precondition an append
// asserts against the current state of the target stream.
type ExpectedRevision struct {
	Kind  RevisionKind
	Exact uint64
}

func AnyRevision() ExpectedRevision          { return ExpectedRevision{Kind: RevisionAny} }
func NoStreamRevision() ExpectedRevision     { return ExpectedRevision{Kind: RevisionNoStream} }
func StreamExistsRevision() ExpectedRevision { return ExpectedRevision{Kind: RevisionStreamExists} }
func ExactRevision(rev uint64) ExpectedRevision {
	return ExpectedRevision{Kind: RevisionExact, Exact: rev}
}

// CurrentRevisionKind distinguishes a stream that has never been written
// to from one that is at a known revision.
type CurrentRevisionKind int

const (
	CurrentRevisionNoStream CurrentRevisionKind = iota
	CurrentRevisionExact
)

// CurrentRevision reports the actual state of a stream, returned either as
// part of a successful append or as the conflicting state of a failed one.
type CurrentRevision struct {
	Kind  CurrentRevisionKind
	Exact uint64
}

// WriteResult is the successful outcome of an append.
type WriteResult struct {
	NextExpectedVersion CurrentRevision
	Position            Position
}

// WrongExpectedVersion reports an optimistic-concurrency conflict. It is a
// typed value returned alongside WriteResult, never wrapped in Error: a
// failed precondition is an ordinary outcome of an append, not a transport
// or server fault.
type WrongExpectedVersion struct {
	CurrentRevision  CurrentRevision
	ExpectedRevision ExpectedRevision
}

func (w *WrongExpectedVersion) Error() string {
	return fmt.Sprintf("wrong expected version: expected %+v, got %+v", w.ExpectedRevision, w.CurrentRevision)
}

// Credentials carries basic-auth login/password, attached to a call as an
// Authorization header when present.
type Credentials struct {
	Login    string
	Password string
}

// ReadDirection controls the order events are returned in.
type ReadDirection int

const (
	Forwards ReadDirection = iota
	Backwards
)

// SubscriptionFilterKind selects whether a server-side filter matches on
// stream identifier or event type.
type SubscriptionFilterKind int

const (
	FilterOnStreamId SubscriptionFilterKind = iota
	FilterOnEventType
)

// SubscriptionFilterWindow bounds how many filtered-out events the server
// may skip before issuing a checkpoint, either by count or unbounded.
type SubscriptionFilterWindow struct {
	Max *uint32 // nil means unbounded (Count window)
}

// SubscriptionFilter narrows an $all subscription or read server-side by
// regex or literal prefixes over the stream id or event type.
type SubscriptionFilter struct {
	Kind     SubscriptionFilterKind
	Regex    string
	Prefixes []string
	Window   SubscriptionFilterWindow
}

// RetryOptions governs the catch-up subscription engine's reconnect
// behaviour. Limit is the maximum number of consecutive failed (re)connect
// attempts before the subscription surfaces an error; a limit of 1 means
// no retry at all, which is the default.
type RetryOptions struct {
	Limit int
	Delay time.Duration
}

// DefaultRetryOptions disables retrying: the subscription surfaces the
// first connection error it hits.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{Limit: 1, Delay: 0}
}

// NakAction tells the server what to do with a negatively acknowledged
// persistent-subscription event.
type NakAction int32

const (
	NakUnknown NakAction = 0
	NakPark    NakAction = 1
	NakRetry   NakAction = 2
	NakSkip    NakAction = 3
	NakStop    NakAction = 4
)

// NamedConsumerStrategy selects how a persistent subscription's competing
// consumers are dispatched events.
type NamedConsumerStrategy int32

const (
	ConsumerStrategyDispatchToSingle NamedConsumerStrategy = iota
	ConsumerStrategyRoundRobin
	ConsumerStrategyPinned
)

// PersistentSubscriptionSettings configures a persistent subscription
// group at create/update time. It is shared between the single-stream and
// $all variants; the starting position is not part of it but is passed as
// the from argument of each Create/Update call.
type PersistentSubscriptionSettings struct {
	ResolveLinks    bool
	ExtraStatistics bool

	MessageTimeout time.Duration
	MaxRetryCount  int32

	CheckpointAfter    time.Duration
	MinCheckpointCount int32
	MaxCheckpointCount int32

	MaxSubscriberCount int32
	LiveBufferSize     int32
	ReadBatchSize      int32
	HistoryBufferSize  int32

	NamedConsumerStrategy NamedConsumerStrategy
}

// DefaultPersistentSubscriptionSettings mirrors the reference client's
// server-side defaults.
func DefaultPersistentSubscriptionSettings() PersistentSubscriptionSettings {
	return PersistentSubscriptionSettings{
		ResolveLinks:          false,
		ExtraStatistics:       false,
		MessageTimeout:        30 * time.Second,
		MaxRetryCount:         10,
		CheckpointAfter:       2 * time.Second,
		MinCheckpointCount:    10,
		MaxCheckpointCount:    1000,
		MaxSubscriberCount:    0,
		LiveBufferSize:        500,
		ReadBatchSize:         20,
		HistoryBufferSize:     500,
		NamedConsumerStrategy: ConsumerStrategyRoundRobin,
	}
}

// SubEvent is delivered to a catch-up subscription's callback for each
// frame the server sends.
type SubEvent struct {
	EventAppeared *ResolvedEvent
	Confirmed     string // subscription id, set when the server confirms the subscription
}

// PersistentSubEvent is delivered to a persistent-subscription session's
// callback.
type PersistentSubEvent struct {
	EventAppeared *PersistentResolvedEvent
	Confirmed     string
}

// PersistentResolvedEvent extends ResolvedEvent with the retry count the
// server has attached to a redelivered event.
type PersistentResolvedEvent struct {
	ResolvedEvent
	RetryCount uint32
}
