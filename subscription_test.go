package eventstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/streamforge/eventstore-go/protos/streams"
)

// readAttempt scripts one Streams.Read call: a list of events to deliver
// followed by either a clean end or a disconnect error.
type readAttempt struct {
	revisions []uint64
	failAfter bool // if true, end with a non-EOF error instead of closing cleanly
}

// scriptedReadHandler builds a stream handler for Streams.Read where each
// call into conn.stream consumes the next script entry.
func scriptedReadHandler(t *testing.T, attempts []readAttempt) (func(ctx context.Context) *fakeStream, *int) {
	var mu sync.Mutex
	call := 0
	callsSeen := new(int)

	h := func(ctx context.Context) *fakeStream {
		s := newFakeStream(ctx)
		mu.Lock()
		idx := call
		call++
		mu.Unlock()
		*callsSeen = call

		go func() {
			// drain the initial ReadReq the client sends.
			<-s.in

			if idx >= len(attempts) {
				close(s.out)
				return
			}
			a := attempts[idx]
			for _, rev := range a.revisions {
				s.out <- &streams.ReadResp{Event: &streams.ReadRespReadEvent{
					Event: &streams.RecordedEventWire{
						Id:               uuidToProto(NewEventId()),
						StreamIdentifier: streamIdentifier("orders-1"),
						StreamRevision:   rev,
						Metadata:         map[string]string{"type": "order-placed"},
						Data:             []byte("{}"),
					},
				}}
			}
			if a.failAfter {
				s.errCh <- errDisconnected
			} else {
				close(s.out)
			}
		}()
		return s
	}
	return h, callsSeen
}

var errDisconnected = &Error{Code: CodeTransport, Message: "simulated disconnect"}

func TestSubscribeToStreamReconnectsWithoutGaps(t *testing.T) {
	conn := newFakeConn()
	handler, calls := scriptedReadHandler(t, []readAttempt{
		{revisions: []uint64{0, 1}, failAfter: true},
		{revisions: []uint64{2, 3}, failAfter: false},
	})
	conn.stream["/event_store.client.streams.Streams/Read"] = handler

	c := newClientForFakeConn(conn)

	var mu sync.Mutex
	var seen []uint64
	sub := c.SubscribeToStream(context.Background(), "orders-1", StartPosition(), CatchUpSubscriptionOptions{
		Retry: RetryOptions{Limit: 3, Delay: 10 * time.Millisecond},
	}, func(e SubEvent) {
		if e.EventAppeared == nil {
			return
		}
		mu.Lock()
		seen = append(seen, e.EventAppeared.OriginalEvent().Revision)
		mu.Unlock()
	}, nil, nil)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription did not finish in time")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []uint64{0, 1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("got %v want %v", seen, want)
	}
	for i, rev := range want {
		if seen[i] != rev {
			t.Fatalf("got %v want %v", seen, want)
		}
	}
	if *calls != 2 {
		t.Fatalf("expected exactly one reconnect (2 calls), got %d", *calls)
	}
}

func TestSubscribeToStreamSurfacesErrorAfterRetryBudget(t *testing.T) {
	conn := newFakeConn()
	handler, calls := scriptedReadHandler(t, []readAttempt{
		{revisions: nil, failAfter: true},
		{revisions: nil, failAfter: true},
	})
	conn.stream["/event_store.client.streams.Streams/Read"] = handler

	c := newClientForFakeConn(conn)

	errCh := make(chan error, 1)
	sub := c.SubscribeToStream(context.Background(), "orders-1", StartPosition(), CatchUpSubscriptionOptions{
		Retry: RetryOptions{Limit: 2, Delay: 5 * time.Millisecond},
	}, func(e SubEvent) {}, func(err error) {
		errCh <- err
	}, nil)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription did not finish in time")
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected a surfaced error")
		}
	default:
		t.Fatalf("expected onError to be called")
	}
	if *calls != 2 {
		t.Fatalf("expected exactly retry.Limit calls (2), got %d", *calls)
	}
}
