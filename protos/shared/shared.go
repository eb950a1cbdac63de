// Package shared holds the wire messages common to every service group:
// Uuid, StreamIdentifier and Empty. It plays the role of a generated
// protoc-gen-go package for the event-store wire schema; the schema itself
// is an external collaborator (see spec §1/§6) and is hand-maintained here
// only so the in-scope command surface has something concrete to encode
// against.
package shared

import "github.com/golang/protobuf/proto"

// Empty carries no information; several oneof wire fields use it as a unit
// variant (e.g. "no position", "any expected revision").
type Empty struct{}

func (*Empty) Reset()         {}
func (*Empty) String() string { return "Empty{}" }
func (*Empty) ProtoMessage()  {}

// Uuid carries an EventId either as two big-endian 64-bit halves or as its
// canonical hyphenated textual form. Exactly one of Structured or String is
// set.
type Uuid struct {
	Structured *UuidStructured
	String_    *string
}

func (*Uuid) Reset()         {}
func (*Uuid) String() string { return "Uuid{}" }
func (*Uuid) ProtoMessage()  {}

// UuidStructured is the two-int64 representation of a v4 UUID.
type UuidStructured struct {
	MostSignificantBits  int64
	LeastSignificantBits int64
}

// StreamIdentifier wraps a stream name as opaque bytes; no validation is
// performed on the content, matching the spec's "cast to bytes without
// validation" rule for stream names.
type StreamIdentifier struct {
	StreamName []byte
}

func (*StreamIdentifier) Reset()         {}
func (*StreamIdentifier) String() string { return "StreamIdentifier{}" }
func (*StreamIdentifier) ProtoMessage()  {}

var (
	_ proto.Message = (*Empty)(nil)
	_ proto.Message = (*Uuid)(nil)
	_ proto.Message = (*StreamIdentifier)(nil)
)
