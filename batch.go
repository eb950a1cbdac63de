package eventstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// BatchAppendOutcome is what a single Submit resolves to: either a
// WriteResult, a WrongExpectedVersion conflict, or a server-reported error,
// mutually exclusive the way AppendToStream's return values are.
type BatchAppendOutcome struct {
	WriteResult *WriteResult
	Conflict    *WrongExpectedVersion
	Err         error
}

// BatchAppendSession multiplexes many concurrent append submissions over a
// single bidirectional stream, demultiplexing responses purely by
// correlation id. Unlike the catch-up subscription engine, a session does
// not reconnect on its own: a terminal stream error is broadcast once to
// every submission still pending and the session is done.
type BatchAppendSession struct {
	stream   streams.Streams_BatchAppendClient
	executor NodeExecutor

	mu       sync.Mutex
	pending  map[uuid.UUID]chan BatchAppendOutcome
	closed   bool
	closeErr error
}

// NewBatchAppendSession opens the bidi stream and starts the response
// demultiplexer.
func (c *Client) NewBatchAppendSession(ctx context.Context, creds *Credentials) (*BatchAppendSession, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx = withAuth(ctx, c.credentials(creds))
	stream, err := sc.BatchAppend(ctx)
	if err != nil {
		return nil, classifyGrpcErr(err)
	}
	s := &BatchAppendSession{
		stream:   stream,
		executor: c.executor,
		pending:  make(map[uuid.UUID]chan BatchAppendOutcome),
	}
	go s.demux()
	return s, nil
}

// Submit appends events to stream under expectedRevision and blocks until
// the server responds for this correlation id or the session terminates.
func (s *BatchAppendSession) Submit(stream string, expectedRevision ExpectedRevision, events []EventData) (BatchAppendOutcome, error) {
	correlation := uuid.New()
	ch := make(chan BatchAppendOutcome, 1)

	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		return BatchAppendOutcome{}, err
	}
	s.pending[correlation] = ch
	s.mu.Unlock()

	messages := make([]*streams.BatchAppendReqProposedMessage, len(events))
	for i, ev := range events {
		messages[i] = convertEventDataToBatch(ev)
	}

	req := &streams.BatchAppendReq{
		CorrelationId:    uuidToProto(EventId{correlation}),
		Options:          batchAppendOptions(stream, expectedRevision),
		ProposedMessages: messages,
		IsFinal:          true,
	}

	timer := newTimer(batchAppendDuration)
	s.mu.Lock()
	sendErr := s.stream.Send(req)
	s.mu.Unlock()
	if sendErr != nil {
		s.mu.Lock()
		delete(s.pending, correlation)
		s.mu.Unlock()
		timer.ObserveOutcome("send_error")
		return BatchAppendOutcome{}, classifyGrpcErr(sendErr)
	}

	outcome := <-ch
	switch {
	case outcome.Err != nil:
		timer.ObserveOutcome("error")
	case outcome.Conflict != nil:
		timer.ObserveOutcome("wrong_expected_version")
	default:
		timer.ObserveOutcome("success")
	}
	return outcome, nil
}

func batchAppendOptions(stream string, rev ExpectedRevision) *streams.BatchAppendReqOptions {
	opts := &streams.BatchAppendReqOptions{StreamIdentifier: streamIdentifier(stream)}
	switch rev.Kind {
	case RevisionAny:
		opts.Any = &shared.Empty{}
	case RevisionNoStream:
		opts.NoStream = &shared.Empty{}
	case RevisionStreamExists:
		opts.StreamExists = &shared.Empty{}
	case RevisionExact:
		r := rev.Exact
		opts.StreamPosition = &r
	}
	return opts
}

// demux reads responses off the shared stream and routes each to its
// correlation id's waiting Submit call. On a terminal stream error, every
// still-pending submission is woken with that same error: batch append
// sessions do not reconnect.
func (s *BatchAppendSession) demux() {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			classified := classifyGrpcErr(err)
			componentLogger("batch-append").Warn().Err(classified).Msg("batch append session terminated")
			s.executor.ReportError(s.executor.CurrentSelectedNode(), classified)
			s.terminate(classified)
			return
		}

		correlation, convErr := protoToUuid(resp.CorrelationId)
		if convErr != nil {
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[correlation.UUID]
		if ok {
			delete(s.pending, correlation.UUID)
		}
		s.mu.Unlock()
		if !ok {
			continue
		}

		ch <- batchAppendOutcomeFromWire(resp)
	}
}

func batchAppendOutcomeFromWire(resp *streams.BatchAppendResp) BatchAppendOutcome {
	if resp.Success != nil {
		wr := &WriteResult{NextExpectedVersion: CurrentRevision{Kind: CurrentRevisionNoStream}}
		if resp.Success.CurrentRevision != nil {
			wr.NextExpectedVersion = CurrentRevision{Kind: CurrentRevisionExact, Exact: *resp.Success.CurrentRevision}
		}
		if resp.Success.Position != nil {
			wr.Position = Position{Commit: resp.Success.Position.CommitPosition, Prepare: resp.Success.Position.PreparePosition}
		}
		return BatchAppendOutcome{WriteResult: wr}
	}
	if resp.Error != nil {
		return BatchAppendOutcome{Err: &Error{Code: CodeGrpc, Message: resp.Error.Message}}
	}
	cur := CurrentRevision{Kind: CurrentRevisionNoStream}
	if resp.Conflict != nil && resp.Conflict.CurrentRevision != nil {
		cur = CurrentRevision{Kind: CurrentRevisionExact, Exact: *resp.Conflict.CurrentRevision}
	}
	return BatchAppendOutcome{Conflict: &WrongExpectedVersion{CurrentRevision: cur}}
}

func (s *BatchAppendSession) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	for id, ch := range s.pending {
		ch <- BatchAppendOutcome{Err: err}
		delete(s.pending, id)
	}
}

var errSessionClosed = errInternal("batch append session closed")

// Close ends the session from the client side.
func (s *BatchAppendSession) Close() error {
	s.terminate(errSessionClosed)
	return s.stream.CloseSend()
}
