package eventstore

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// SubscriptionCallback receives each frame a catch-up subscription
// delivers: either a resolved event or a bare subscription confirmation.
type SubscriptionCallback func(SubEvent)

// SubscriptionErrorCallback is invoked once, at most, when a catch-up
// subscription gives up after exhausting its retry budget.
type SubscriptionErrorCallback func(error)

// CatchUpSubscriptionOptions configures a catch-up subscription.
type CatchUpSubscriptionOptions struct {
	ResolveLinks bool
	Filter       *SubscriptionFilter
	Retry        RetryOptions
}

// CatchUpSubscription is a running catch-up subscription: an outer
// reconnect loop owns the resume cursor and attempt count, an inner loop
// consumes frames off the current stream and forwards them to the
// callback. Reconnecting always resumes strictly after the last event
// delivered, so a subscriber never sees a gap and never sees a frame it
// already processed again.
type CatchUpSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription. It does not wait for the inner loop to
// observe cancellation; use Done to wait for that.
func (s *CatchUpSubscription) Close() {
	s.cancel()
}

// Done is closed once the subscription's reconnect loop has exited.
func (s *CatchUpSubscription) Done() <-chan struct{} {
	return s.done
}

// SubscribeToStream subscribes to a single stream starting at from.
func (c *Client) SubscribeToStream(
	ctx context.Context,
	stream string,
	from StreamPosition,
	opts CatchUpSubscriptionOptions,
	onEvent SubscriptionCallback,
	onError SubscriptionErrorCallback,
	creds *Credentials,
) *CatchUpSubscription {
	cursor := from
	build := func() *streams.ReadReq {
		reqOpts := &streams.ReadReqOptions{
			Stream:       &streams.ReadReqStreamOptions{StreamIdentifier: streamIdentifier(stream)},
			ResolveLinks: opts.ResolveLinks,
			Subscription: &shared.Empty{},
			NoFilter:     &shared.Empty{},
		}
		applyStreamStart(reqOpts.Stream, cursor)
		return &streams.ReadReq{Options: reqOpts}
	}
	advance := func(ev ResolvedEvent) {
		cursor = ExactPosition(Position{Commit: ev.OriginalEvent().Revision})
	}
	return c.retryableSubscription(ctx, build, advance, opts.Retry, onEvent, onError, creds, "stream:"+stream)
}

// SubscribeToAll subscribes to $all starting at from.
func (c *Client) SubscribeToAll(
	ctx context.Context,
	from StreamPosition,
	opts CatchUpSubscriptionOptions,
	onEvent SubscriptionCallback,
	onError SubscriptionErrorCallback,
	creds *Credentials,
) *CatchUpSubscription {
	cursor := from
	build := func() *streams.ReadReq {
		reqOpts := &streams.ReadReqOptions{
			All:          &streams.ReadReqAllOptions{},
			ResolveLinks: opts.ResolveLinks,
			Subscription: &shared.Empty{},
		}
		applyAllStart(reqOpts.All, cursor)
		if fo, ok := filterIntoAllReqProto(opts.Filter); ok {
			reqOpts.Filter = fo
		} else {
			reqOpts.NoFilter = &shared.Empty{}
		}
		return &streams.ReadReq{Options: reqOpts}
	}
	advance := func(ev ResolvedEvent) {
		if ev.CommitPosition != nil {
			cursor = ExactPosition(Position{Commit: *ev.CommitPosition})
		}
	}
	return c.retryableSubscription(ctx, build, advance, opts.Retry, onEvent, onError, creds, "all")
}

// retryableSubscription is the shared reconnect engine both subscribe
// entry points drive. build constructs the ReadReq for the current cursor
// (it closes over the cursor variable each entry point keeps, so advance
// mutating that variable is picked up on the next reconnect); advance
// moves the cursor strictly past ev so a reconnect never redelivers a gap
// and a subscriber resumes exactly where it left off.
func (c *Client) retryableSubscription(
	ctx context.Context,
	build func() *streams.ReadReq,
	advance func(ResolvedEvent),
	retry RetryOptions,
	onEvent SubscriptionCallback,
	onError SubscriptionErrorCallback,
	creds *Credentials,
	label string,
) *CatchUpSubscription {
	if retry.Limit <= 0 {
		retry = DefaultRetryOptions()
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &CatchUpSubscription{cancel: cancel, done: make(chan struct{})}
	log := componentLogger("subscription")

	go func() {
		defer close(sub.done)

		var attempts int
		var madeProgress atomic.Bool

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			madeProgress.Store(false)
			attempts++

			err := c.runSubscriptionAttempt(ctx, build, advance, onEvent, creds, &madeProgress)
			if err == nil {
				return
			}
			if ctx.Err() != nil {
				return
			}

			if madeProgress.Load() {
				attempts = 1
			}

			subscriptionReconnectsTotal.WithLabelValues(label).Inc()
			log.Warn().Str("subscription", label).Int("attempt", attempts).Err(err).Msg("subscription disconnected")

			if attempts >= retry.Limit {
				if onError != nil {
					onError(err)
				}
				return
			}

			select {
			case <-time.After(retry.Delay):
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}

// runSubscriptionAttempt opens one stream and consumes it until it ends,
// errors, or ctx is cancelled. A nil return means the caller should stop
// retrying (clean end or cancellation); a non-nil return means the outer
// loop should consider reconnecting.
func (c *Client) runSubscriptionAttempt(
	ctx context.Context,
	build func() *streams.ReadReq,
	advance func(ResolvedEvent),
	onEvent SubscriptionCallback,
	creds *Credentials,
	madeProgress *atomic.Bool,
) error {
	sc, err := c.streamsClient(ctx)
	if err != nil {
		return err
	}
	callCtx := withAuth(ctx, c.credentials(creds))

	stream, err := sc.Read(callCtx, build())
	if err != nil {
		return c.reportTransportErr(err)
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return c.reportTransportErr(err)
		}

		switch {
		case resp.Event != nil:
			ev := convertReadEvent(resp.Event)
			advance(ev)
			madeProgress.Store(true)
			if onEvent != nil {
				onEvent(SubEvent{EventAppeared: &ev})
			}
		case resp.Confirmation != nil:
			if onEvent != nil {
				onEvent(SubEvent{Confirmed: resp.Confirmation.SubscriptionId})
			}
		case resp.StreamNotFound != nil:
			return errResourceNotFound("stream not found")
		default:
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
