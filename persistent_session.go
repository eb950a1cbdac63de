package eventstore

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/streamforge/eventstore-go/protos/persistent"
	"github.com/streamforge/eventstore-go/protos/shared"
)

// ackRequestBufferSize bounds the channel a session's write pump drains:
// a caller that acks/nacks faster than the server can be told backs off
// once this many requests are queued, rather than growing without bound.
const ackRequestBufferSize = 500

// PersistentEventCallback receives each frame a persistent subscription
// session delivers.
type PersistentEventCallback func(PersistentSubEvent)

type ackOrNack struct {
	ids    []EventId
	isNack bool
	action NakAction
	reason string
}

// PersistentSubscriptionSession is a running persistent-subscription
// bidirectional session: one goroutine pumps queued ack/nack requests onto
// the stream, another reads event/confirmation frames off it. Either pump
// failing tears the whole session down.
type PersistentSubscriptionSession struct {
	stream   persistent.PersistentSubscriptions_ReadClient
	acks     chan ackOrNack
	executor NodeExecutor

	cancel context.CancelFunc
	g      *errgroup.Group
	done   chan struct{}
	err    error
}

func (c *Client) newPersistentSession(
	ctx context.Context,
	initial *persistent.ReadReqOptions,
	onEvent PersistentEventCallback,
	creds *Credentials,
) (*PersistentSubscriptionSession, error) {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(withAuth(ctx, c.credentials(creds)))

	stream, err := pc.Read(ctx)
	if err != nil {
		cancel()
		return nil, classifyGrpcErr(err)
	}
	if err := stream.Send(&persistent.ReadReq{Options: initial}); err != nil {
		cancel()
		return nil, classifyGrpcErr(err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	s := &PersistentSubscriptionSession{
		stream:   stream,
		acks:     make(chan ackOrNack, ackRequestBufferSize),
		executor: c.executor,
		cancel:   cancel,
		g:        g,
		done:     make(chan struct{}),
	}

	g.Go(func() error { return s.writePump(gCtx) })
	g.Go(func() error { return s.readPump(gCtx, onEvent) })

	go func() {
		s.err = g.Wait()
		cancel()
		close(s.done)
	}()

	return s, nil
}

// SubscribeToPersistentSubscription opens a session against a single
// stream's persistent subscription group.
func (c *Client) SubscribeToPersistentSubscription(
	ctx context.Context,
	stream, groupName string,
	bufferSize int32,
	onEvent PersistentEventCallback,
	creds *Credentials,
) (*PersistentSubscriptionSession, error) {
	opts := &persistent.ReadReqOptions{
		StreamIdentifier: streamIdentifier(stream),
		GroupName:        groupName,
		BufferSize:       bufferSize,
		UuidOption:       &persistent.UuidOption{String: true},
	}
	return c.newPersistentSession(ctx, opts, onEvent, creds)
}

// SubscribeToPersistentSubscriptionToAll opens a session against a $all
// persistent subscription group.
func (c *Client) SubscribeToPersistentSubscriptionToAll(
	ctx context.Context,
	groupName string,
	bufferSize int32,
	onEvent PersistentEventCallback,
	creds *Credentials,
) (*PersistentSubscriptionSession, error) {
	opts := &persistent.ReadReqOptions{
		All:        &shared.Empty{},
		GroupName:  groupName,
		BufferSize: bufferSize,
		UuidOption: &persistent.UuidOption{String: true},
	}
	return c.newPersistentSession(ctx, opts, onEvent, creds)
}

// Ack acknowledges successful processing of the given events.
func (s *PersistentSubscriptionSession) Ack(ids ...EventId) error {
	return s.enqueue(ackOrNack{ids: ids})
}

// Nack reports failed processing of the given events, with action telling
// the server what to do with them (park, retry, skip, stop the group).
func (s *PersistentSubscriptionSession) Nack(action NakAction, reason string, ids ...EventId) error {
	return s.enqueue(ackOrNack{ids: ids, isNack: true, action: action, reason: reason})
}

func (s *PersistentSubscriptionSession) enqueue(req ackOrNack) error {
	select {
	case s.acks <- req:
		return nil
	case <-s.done:
		return s.err
	}
}

// Close ends the session from the client side and waits for both pumps to
// exit.
func (s *PersistentSubscriptionSession) Close() error {
	s.cancel()
	<-s.done
	if s.err == nil {
		return nil
	}
	return s.err
}

// Done is closed once both pumps have exited, whether from Close or a
// server-initiated drop.
func (s *PersistentSubscriptionSession) Done() <-chan struct{} {
	return s.done
}

func (s *PersistentSubscriptionSession) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.acks:
			msg := ackOrNackToWire(req)
			if err := s.stream.Send(msg); err != nil {
				classified := classifyGrpcErr(err)
				s.executor.ReportError(s.executor.CurrentSelectedNode(), classified)
				return classified
			}
			action := "ack"
			if req.isNack {
				action = "nack"
			}
			persistentAcksTotal.WithLabelValues(action).Inc()
		}
	}
}

func ackOrNackToWire(req ackOrNack) *persistent.ReadReq {
	ids := make([]*shared.Uuid, len(req.ids))
	for i, id := range req.ids {
		ids[i] = uuidToProto(id)
	}
	if req.isNack {
		return &persistent.ReadReq{Nack: &persistent.Nack{
			Ids:    ids,
			Action: nakActionToProto(req.action),
			Reason: req.reason,
		}}
	}
	return &persistent.ReadReq{Ack: &persistent.Ack{Ids: ids}}
}

// droppedSubscriptionMarker is the exception identifier the server reports
// via trailing metadata when it deliberately tears down a persistent
// subscription (e.g. the group was deleted out from under this session).
// It arrives as trailer metadata rather than a distinguished status code,
// so detecting it means inspecting the stream's trailer after Recv fails.
const droppedSubscriptionMarker = "persistent-subscription-dropped"

func (s *PersistentSubscriptionSession) readPump(ctx context.Context, onEvent PersistentEventCallback) error {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if isDroppedSubscription(s.stream.Trailer()) {
				componentLogger("persistent-subscription").Info().Msg("subscription dropped by server")
				s.cancel()
				return nil
			}
			classified := classifyGrpcErr(err)
			s.executor.ReportError(s.executor.CurrentSelectedNode(), classified)
			return classified
		}

		switch {
		case resp.Event != nil:
			ev := convertPersistentReadEvent(resp.Event)
			if onEvent != nil {
				onEvent(PersistentSubEvent{EventAppeared: &ev})
			}
		case resp.SubscriptionConfirmation != nil:
			if onEvent != nil {
				onEvent(PersistentSubEvent{Confirmed: resp.SubscriptionConfirmation.SubscriptionId})
			}
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func isDroppedSubscription(trailer interface {
	Get(key string) []string
}) bool {
	for _, v := range trailer.Get("exception") {
		if strings.EqualFold(v, droppedSubscriptionMarker) {
			return true
		}
	}
	return false
}
