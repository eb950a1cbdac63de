package eventstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/keepalive"
)

// NodeExecutor is the external collaborator this package leans on for node
// selection and channel lifecycle: a clustered deployment picks a leader or
// a preferred replica and hands back a channel to it, reports channel
// failures so it can reselect, and supplies default credentials. This
// package only defines the contract; selecting and maintaining a cluster
// topology is out of scope here.
type NodeExecutor interface {
	// Channel returns the gRPC channel to issue the next call against.
	// It is typed as the grpc.ClientConnInterface subset (rather than the
	// concrete *grpc.ClientConn) so a test executor can hand back an
	// in-memory double without dialing anything.
	Channel(ctx context.Context) (grpc.ClientConnInterface, error)
	// CurrentSelectedNode names the node Channel currently resolves to,
	// for logging.
	CurrentSelectedNode() string
	// DefaultCredentials supplies the credentials a call attaches when
	// the caller did not pass its own.
	DefaultCredentials() *Credentials
	// ReportError notifies the executor that the channel identified by
	// channelID failed, so a clustered implementation can invalidate it
	// and reselect on the next Channel call.
	ReportError(channelID string, err error)
}

// ChannelOptions configures the gRPC channel a SingleNodeExecutor dials,
// mirroring the dial knobs the teacher's connect() exposes.
type ChannelOptions struct {
	ConnectTimeout    time.Duration // Not read by dial; MinConnectTimeout bounds each connect attempt
	MinConnectTimeout time.Duration // Default: 10s

	MaxRecvMsgSize int // Default: 1GB
	MaxSendMsgSize int // Default: 32MB

	KeepaliveTime       time.Duration // Default: 30s
	KeepaliveTimeout    time.Duration // Default: 5s
	PermitWithoutStream bool          // Default: true

	InitialWindowSize     int32 // Default: 4MB
	InitialConnWindowSize int32 // Default: 8MB

	WriteBufferSize int // Default: 64KB
	ReadBufferSize  int // Default: gRPC's own read buffer size

	UseCompression bool
	Insecure       bool // skip TLS, for tests and local servers
}

func (o *ChannelOptions) withDefaults() ChannelOptions {
	out := ChannelOptions{}
	if o != nil {
		out = *o
	}
	if out.KeepaliveTime == 0 {
		out.KeepaliveTime = 30 * time.Second
	}
	if out.KeepaliveTimeout == 0 {
		out.KeepaliveTimeout = 5 * time.Second
	}
	if o == nil || !o.PermitWithoutStream {
		out.PermitWithoutStream = true
	}
	if out.MaxRecvMsgSize == 0 {
		out.MaxRecvMsgSize = 1024 * 1024 * 1024
	}
	if out.MaxSendMsgSize == 0 {
		out.MaxSendMsgSize = 32 * 1024 * 1024
	}
	if out.MinConnectTimeout == 0 {
		out.MinConnectTimeout = 10 * time.Second
	}
	if out.InitialWindowSize == 0 {
		out.InitialWindowSize = 4 * 1024 * 1024
	}
	if out.InitialConnWindowSize == 0 {
		out.InitialConnWindowSize = 8 * 1024 * 1024
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = 64 * 1024
	}
	return out
}

// SingleNodeExecutor is the default NodeExecutor: one long-lived channel to
// a single endpoint, no cluster awareness. Most standalone deployments use
// this.
type SingleNodeExecutor struct {
	endpoint    string
	creds       *Credentials
	conn        *grpc.ClientConn
}

// NewSingleNodeExecutor dials endpoint once and returns an executor backed
// by that connection.
func NewSingleNodeExecutor(ctx context.Context, endpoint string, creds *Credentials, opts *ChannelOptions) (*SingleNodeExecutor, error) {
	conn, err := dial(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &SingleNodeExecutor{endpoint: endpoint, creds: creds, conn: conn}, nil
}

func (e *SingleNodeExecutor) Channel(ctx context.Context) (grpc.ClientConnInterface, error) {
	return e.conn, nil
}

func (e *SingleNodeExecutor) CurrentSelectedNode() string { return e.endpoint }

func (e *SingleNodeExecutor) DefaultCredentials() *Credentials { return e.creds }

func (e *SingleNodeExecutor) ReportError(channelID string, err error) {
	componentLogger("executor").Debug().Str("channel", channelID).Err(err).Msg("channel reported error")
}

func (e *SingleNodeExecutor) Close() error {
	return e.conn.Close()
}

// dial establishes a gRPC connection, following the teacher's connect():
// endpoint-format normalization, TLS by default, keepalive, message-size
// and window/buffer tuning, and the default connect backoff.
func dial(ctx context.Context, endpoint string, opts *ChannelOptions) (*grpc.ClientConn, error) {
	o := opts.withDefaults()

	target, err := normalizeTarget(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	var dialOpts []grpc.DialOption
	if o.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	dialOpts = append(dialOpts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
		Time:                o.KeepaliveTime,
		Timeout:             o.KeepaliveTimeout,
		PermitWithoutStream: o.PermitWithoutStream,
	}))

	callOpts := []grpc.CallOption{
		grpc.MaxCallRecvMsgSize(o.MaxRecvMsgSize),
		grpc.MaxCallSendMsgSize(o.MaxSendMsgSize),
	}
	if o.UseCompression {
		callOpts = append(callOpts, grpc.UseCompressor(gzip.Name))
	}
	dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(callOpts...))

	dialOpts = append(dialOpts, grpc.WithConnectParams(grpc.ConnectParams{
		Backoff:           backoff.DefaultConfig,
		MinConnectTimeout: o.MinConnectTimeout,
	}))

	dialOpts = append(dialOpts, grpc.WithInitialWindowSize(o.InitialWindowSize))
	dialOpts = append(dialOpts, grpc.WithInitialConnWindowSize(o.InitialConnWindowSize))
	dialOpts = append(dialOpts, grpc.WithWriteBufferSize(o.WriteBufferSize))
	if o.ReadBufferSize > 0 {
		dialOpts = append(dialOpts, grpc.WithReadBufferSize(o.ReadBufferSize))
	}

	conn, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

func normalizeTarget(endpoint string) (string, error) {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return "", err
		}
		if u.Port() != "" {
			return u.Host, nil
		}
		return u.Hostname() + ":443", nil
	}
	if strings.Contains(endpoint, ":") {
		return endpoint, nil
	}
	return endpoint + ":2113", nil
}
