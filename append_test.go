package eventstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/streamforge/eventstore-go/protos/streams"
)

// directExecutor hands out a single fixed connection, enough to drive the
// command layer against a fakeConn without dialing anything.
type directExecutor struct {
	conn *fakeConn
}

func (e *directExecutor) Channel(ctx context.Context) (grpc.ClientConnInterface, error) {
	return e.conn, nil
}
func (e *directExecutor) CurrentSelectedNode() string      { return "fake" }
func (e *directExecutor) DefaultCredentials() *Credentials { return nil }
func (e *directExecutor) ReportError(channelID string, err error) {}

func newClientForFakeConn(conn *fakeConn) *Client {
	return &Client{
		executor: &directExecutor{conn: conn},
		config:   ClientConfig{},
	}
}

func appendHandler(t *testing.T, onReq func(*streams.AppendReq) (*streams.AppendResp, bool)) func(ctx context.Context) *fakeStream {
	return func(ctx context.Context) *fakeStream {
		s := newFakeStream(ctx)
		go func() {
			var resp *streams.AppendResp
			for {
				raw, ok := <-s.in
				if !ok {
					break
				}
				req, ok := raw.(*streams.AppendReq)
				if !ok {
					t.Errorf("unexpected message type %T", raw)
					continue
				}
				r, done := onReq(req)
				if done {
					resp = r
				}
			}
			if resp == nil {
				resp = &streams.AppendResp{}
			}
			s.out <- resp
			close(s.out)
		}()
		return s
	}
}

func TestAppendToStreamSuccess(t *testing.T) {
	conn := newFakeConn()
	var seenRevisionOpt *streams.AppendReqOptions
	conn.stream["/event_store.client.streams.Streams/Append"] = appendHandler(t, func(req *streams.AppendReq) (*streams.AppendResp, bool) {
		if req.Options != nil {
			seenRevisionOpt = req.Options
			return nil, false
		}
		rev := uint64(0)
		return &streams.AppendResp{Success: &streams.AppendRespSuccess{
			CurrentRevision: &rev,
			Position:        &streams.Position{CommitPosition: 100, PreparePosition: 100},
		}}, true
	})

	c := newClientForFakeConn(conn)
	result, conflict, err := c.AppendToStream(context.Background(), "orders-1", NoStreamRevision(), []EventData{
		NewEventData("order-placed", true, []byte(`{}`)),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Equal(t, CurrentRevisionExact, result.NextExpectedVersion.Kind)
	require.EqualValues(t, 0, result.NextExpectedVersion.Exact)
	require.EqualValues(t, 100, result.Position.Commit)
	require.NotNil(t, seenRevisionOpt)
	require.NotNil(t, seenRevisionOpt.NoStream, "expected NoStream expected-revision to be sent")
}

func TestAppendToStreamWrongExpectedVersion(t *testing.T) {
	conn := newFakeConn()
	conn.stream["/event_store.client.streams.Streams/Append"] = appendHandler(t, func(req *streams.AppendReq) (*streams.AppendResp, bool) {
		if req.Options != nil {
			return nil, false
		}
		cur := uint64(5)
		return &streams.AppendResp{WrongExpectedVersion: &streams.AppendRespWrongExpectedVersion{
			CurrentRevision: &cur,
		}}, true
	})

	c := newClientForFakeConn(conn)
	result, conflict, err := c.AppendToStream(context.Background(), "orders-1", ExactRevision(0), []EventData{
		NewEventData("order-placed", true, []byte(`{}`)),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, result)
	require.NotNil(t, conflict)
	require.Equal(t, CurrentRevisionExact, conflict.CurrentRevision.Kind)
	require.EqualValues(t, 5, conflict.CurrentRevision.Exact)
}
