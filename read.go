package eventstore

import (
	"context"
	"encoding/json"
	"io"

	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// ReadStream is a pull handle over a one-shot read: each Recv returns the
// next resolved event, io.EOF at natural end of the read, and an *Error
// with CodeResourceNotFound (see IsResourceNotFound) if the target stream
// never existed. Catch-up subscriptions do not use this handle; they
// deliver events through a callback.
type ReadStream struct {
	client streams.Streams_ReadClient
}

// Recv returns the next event, or io.EOF once the requested count/range is
// exhausted.
func (r *ReadStream) Recv() (*ResolvedEvent, error) {
	for {
		resp, err := r.client.Recv()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, classifyGrpcErr(err)
		}
		switch {
		case resp.Event != nil:
			ev := convertReadEvent(resp.Event)
			return &ev, nil
		case resp.StreamNotFound != nil:
			return nil, errResourceNotFound("stream not found")
		default:
			continue
		}
	}
}

// ReadStreamOptions configures ReadStreamEvents / ReadAllEvents.
type ReadStreamOptions struct {
	Direction    ReadDirection
	Count        *uint64 // nil reads to the end
	ResolveLinks bool
	Filter       *SubscriptionFilter
}

func readDirectionToProto(d ReadDirection) int32 {
	if d == Backwards {
		return 1
	}
	return 0
}

// ReadStreamEvents opens a one-shot read of a single stream starting at
// from, exposed as a ReadStream pull handle.
func (c *Client) ReadStreamEvents(ctx context.Context, stream string, from StreamPosition, opts ReadStreamOptions, creds *Credentials) (*ReadStream, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx = withAuth(ctx, c.credentials(creds))

	reqOpts := &streams.ReadReqOptions{
		Stream:       &streams.ReadReqStreamOptions{StreamIdentifier: streamIdentifier(stream)},
		ResolveLinks: opts.ResolveLinks,
		ReadDirection: readDirectionToProto(opts.Direction),
		NoFilter:     &shared.Empty{},
	}
	applyStreamStart(reqOpts.Stream, from)
	applyCount(reqOpts, opts.Count)

	client, err := sc.Read(ctx, &streams.ReadReq{Options: reqOpts})
	if err != nil {
		return nil, classifyGrpcErr(err)
	}
	return &ReadStream{client: client}, nil
}

// ReadAllEvents opens a one-shot read of $all starting at from.
func (c *Client) ReadAllEvents(ctx context.Context, from StreamPosition, opts ReadStreamOptions, creds *Credentials) (*ReadStream, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx = withAuth(ctx, c.credentials(creds))

	reqOpts := &streams.ReadReqOptions{
		All:           &streams.ReadReqAllOptions{},
		ResolveLinks:  opts.ResolveLinks,
		ReadDirection: readDirectionToProto(opts.Direction),
	}
	applyAllStart(reqOpts.All, from)
	applyCount(reqOpts, opts.Count)
	if fo, ok := filterIntoAllReqProto(opts.Filter); ok {
		reqOpts.Filter = fo
	} else {
		reqOpts.NoFilter = &shared.Empty{}
	}

	client, err := sc.Read(ctx, &streams.ReadReq{Options: reqOpts})
	if err != nil {
		return nil, classifyGrpcErr(err)
	}
	return &ReadStream{client: client}, nil
}

func applyStreamStart(opts *streams.ReadReqStreamOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		r := from.Pos.Commit
		opts.Revision = &r
	}
}

func applyAllStart(opts *streams.ReadReqAllOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		opts.Position = &streams.Position{CommitPosition: from.Pos.Commit, PreparePosition: from.Pos.Prepare}
	}
}

func applyCount(opts *streams.ReadReqOptions, count *uint64) {
	if count != nil {
		opts.Count = count
	} else {
		opts.Count = uint64Ptr(^uint64(0))
	}
}

func filterIntoAllReqProto(f *SubscriptionFilter) (*streams.ReadReqFilterOptions, bool) {
	if f == nil {
		return nil, false
	}
	expr := &streams.ReadReqExpression{Regex: f.Regex, Prefix: f.Prefixes}
	fo := &streams.ReadReqFilterOptions{CheckpointIntervalMultiplier: 1}
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

// DeleteStream soft-deletes a stream: its events are scavenged away but a
// new stream with the same name can be created later.
func (c *Client) DeleteStream(ctx context.Context, stream string, expectedRevision ExpectedRevision, creds *Credentials) (*Position, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx = withAuth(ctx, c.credentials(creds))

	opts := &streams.DeleteReqOptions{StreamIdentifier: streamIdentifier(stream)}
	applyDeleteRevision(opts, expectedRevision)

	resp, err := sc.Delete(ctx, &streams.DeleteReq{Options: opts})
	if err != nil {
		return nil, classifyGrpcErr(err)
	}
	if resp.Position == nil {
		return nil, nil
	}
	return &Position{Commit: resp.Position.CommitPosition, Prepare: resp.Position.PreparePosition}, nil
}

// TombstoneStream hard-deletes a stream: no stream of the same name can
// ever be created again.
func (c *Client) TombstoneStream(ctx context.Context, stream string, expectedRevision ExpectedRevision, creds *Credentials) (*Position, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx = withAuth(ctx, c.credentials(creds))

	opts := &streams.TombstoneReqOptions{StreamIdentifier: streamIdentifier(stream)}
	applyTombstoneRevision(opts, expectedRevision)

	resp, err := sc.Tombstone(ctx, &streams.TombstoneReq{Options: opts})
	if err != nil {
		return nil, classifyGrpcErr(err)
	}
	if resp.Position == nil {
		return nil, nil
	}
	return &Position{Commit: resp.Position.CommitPosition, Prepare: resp.Position.PreparePosition}, nil
}

func applyDeleteRevision(opts *streams.DeleteReqOptions, rev ExpectedRevision) {
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
}

func applyTombstoneRevision(opts *streams.TombstoneReqOptions, rev ExpectedRevision) {
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
}

// metadataStreamName returns the projected metadata stream name for
// stream, the same "$$<stream>" convention the server uses internally.
func metadataStreamName(stream string) string {
	return "$$" + stream
}

const metadataEventType = "$metadata"

// SetStreamMetadata writes metadata as the JSON body of a $metadata event
// on stream's projected metadata stream.
func (c *Client) SetStreamMetadata(ctx context.Context, stream string, expectedRevision ExpectedRevision, metadata any, creds *Credentials) (*WriteResult, *WrongExpectedVersion, error) {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, errInternal("marshal stream metadata: " + err.Error())
	}
	event := NewEventData(metadataEventType, true, payload)
	return c.AppendToStream(ctx, metadataStreamName(stream), expectedRevision, []EventData{event}, creds)
}

// GetStreamMetadata reads the latest $metadata event off stream's
// projected metadata stream and unmarshals its payload into out.
func (c *Client) GetStreamMetadata(ctx context.Context, stream string, out any, creds *Credentials) error {
	rs, err := c.ReadStreamEvents(ctx, metadataStreamName(stream), EndPosition(), ReadStreamOptions{Direction: Backwards, Count: uint64Ptr(1)}, creds)
	if err != nil {
		return err
	}
	ev, err := rs.Recv()
	if err != nil {
		return err
	}
	return json.Unmarshal(ev.OriginalEvent().Data, out)
}

func uint64Ptr(v uint64) *uint64 { return &v }
