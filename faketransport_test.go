package eventstore

import (
	"context"
	"errors"
	"io"
	"reflect"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// fakeConn is a minimal grpc.ClientConnInterface double: no network, no
// bufconn listener, just enough of the shape our hand-maintained protos/
// stubs call (Invoke for unary RPCs, NewStream for streaming ones) to drive
// the command layer under test against a scripted server.
type fakeConn struct {
	unary  map[string]func(ctx context.Context, req, reply any) error
	stream map[string]func(ctx context.Context) *fakeStream
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		unary:  make(map[string]func(ctx context.Context, req, reply any) error),
		stream: make(map[string]func(ctx context.Context) *fakeStream),
	}
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error {
	h, ok := f.unary[method]
	if !ok {
		return errors.New("fake conn: no unary handler for " + method)
	}
	return h(ctx, args, reply)
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	h, ok := f.stream[method]
	if !ok {
		return nil, errors.New("fake conn: no stream handler for " + method)
	}
	return h(ctx), nil
}

// fakeStream is a grpc.ClientStream double driven by a server-side
// goroutine: sent messages go onto in, the server goroutine (started by
// whatever installed this handler) reads them and writes responses onto
// out.
type fakeStream struct {
	ctx    context.Context
	in     chan any
	out    chan any
	errCh  chan error
	closed bool
	trail  metadata.MD
}

func newFakeStream(ctx context.Context) *fakeStream {
	return &fakeStream{
		ctx:   ctx,
		in:    make(chan any, 16),
		out:   make(chan any, 16),
		errCh: make(chan error, 1),
	}
}

func (s *fakeStream) Header() (metadata.MD, error) { return nil, nil }
func (s *fakeStream) Trailer() metadata.MD          { return s.trail }
func (s *fakeStream) CloseSend() error {
	if !s.closed {
		s.closed = true
		close(s.in)
	}
	return nil
}
func (s *fakeStream) Context() context.Context { return s.ctx }
func (s *fakeStream) SendMsg(m any) error {
	if s.closed {
		return errors.New("fake stream: send on closed stream")
	}
	select {
	case s.in <- m:
		return nil
	case err := <-s.errCh:
		return err
	}
}
func (s *fakeStream) RecvMsg(m any) error {
	// Responses already queued on out are delivered before a queued error,
	// in the order the server goroutine wrote them.
	select {
	case msg, ok := <-s.out:
		if !ok {
			return io.EOF
		}
		reflectAssign(m, msg)
		return nil
	default:
	}
	select {
	case msg, ok := <-s.out:
		if !ok {
			return io.EOF
		}
		reflectAssign(m, msg)
		return nil
	case err := <-s.errCh:
		if err != nil {
			return err
		}
		return io.EOF
	}
}

// reflectAssign copies src's pointee into dst's pointee. Every message type
// in protos/ is a plain struct behind a pointer of identical concrete type
// at each call site, so a plain reflect.Set does the job without a type
// switch per message.
func reflectAssign(dst, src any) {
	dv := reflect.ValueOf(dst)
	sv := reflect.ValueOf(src)
	if dv.Kind() == reflect.Ptr && sv.Kind() == reflect.Ptr && dv.Type() == sv.Type() {
		dv.Elem().Set(sv.Elem())
	}
}
