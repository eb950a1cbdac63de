package eventstore

import (
	"context"

	"github.com/streamforge/eventstore-go/protos/streams"
)

// AppendToStream appends events to stream subject to expectedRevision. On
// a version conflict it returns a non-nil *WrongExpectedVersion and a nil
// error: a failed precondition is an ordinary outcome of this call, not a
// fault, so it is never wrapped in error.
func (c *Client) AppendToStream(
	ctx context.Context,
	stream string,
	expectedRevision ExpectedRevision,
	events []EventData,
	creds *Credentials,
) (*WriteResult, *WrongExpectedVersion, error) {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	ctx = withAuth(ctx, c.credentials(creds))
	appendClient, err := sc.Append(ctx)
	if err != nil {
		return nil, nil, c.reportTransportErr(err)
	}

	optsMsg := expectedRevisionToAppendOptions(expectedRevision)
	optsMsg.StreamIdentifier = streamIdentifier(stream)
	if err := appendClient.Send(&streams.AppendReq{Options: optsMsg}); err != nil {
		return nil, nil, c.reportTransportErr(err)
	}

	for _, ev := range events {
		msg := convertEventData(ev)
		if err := appendClient.Send(&streams.AppendReq{ProposedMessage: msg}); err != nil {
			return nil, nil, c.reportTransportErr(err)
		}
	}

	timer := newTimer(appendDuration)
	resp, err := appendClient.CloseAndRecv()
	if err != nil {
		timer.ObserveOutcome("error")
		appendsTotal.WithLabelValues("error").Inc()
		return nil, nil, c.reportTransportErr(err)
	}

	switch {
	case resp.Success != nil:
		timer.ObserveOutcome("success")
		appendsTotal.WithLabelValues("success").Inc()
		return appendSuccessToWriteResult(resp.Success), nil, nil
	case resp.WrongExpectedVersion != nil:
		timer.ObserveOutcome("wrong_expected_version")
		appendsTotal.WithLabelValues("wrong_expected_version").Inc()
		return nil, wrongExpectedVersionFromWire(resp.WrongExpectedVersion, expectedRevision), nil
	default:
		timer.ObserveOutcome("error")
		return nil, nil, errInternal("append response carried neither success nor conflict")
	}
}

func appendSuccessToWriteResult(s *streams.AppendRespSuccess) *WriteResult {
	wr := &WriteResult{}
	if s.CurrentRevision != nil {
		wr.NextExpectedVersion = CurrentRevision{Kind: CurrentRevisionExact, Exact: *s.CurrentRevision}
	} else {
		wr.NextExpectedVersion = CurrentRevision{Kind: CurrentRevisionNoStream}
	}
	if s.Position != nil {
		wr.Position = Position{Commit: s.Position.CommitPosition, Prepare: s.Position.PreparePosition}
	}
	return wr
}

func wrongExpectedVersionFromWire(w *streams.AppendRespWrongExpectedVersion, requested ExpectedRevision) *WrongExpectedVersion {
	cur := CurrentRevision{Kind: CurrentRevisionNoStream}
	if w.CurrentRevision != nil {
		cur = CurrentRevision{Kind: CurrentRevisionExact, Exact: *w.CurrentRevision}
	}
	return &WrongExpectedVersion{
		CurrentRevision:  cur,
		ExpectedRevision: requested,
	}
}
