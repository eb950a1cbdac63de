// Package persistent is the generated-style client stub for the
// PersistentSubscriptions service group (create, update, delete, read). See
// protos/streams for the rationale: the wire schema is an external
// collaborator, hand-maintained here to give the in-scope command surface
// something concrete to encode against.
package persistent

import (
	"context"

	"github.com/golang/protobuf/proto"
	"google.golang.org/grpc"

	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// --- Create ---

type CreateReq struct {
	Options *CreateReqOptions
}

func (*CreateReq) Reset()         {}
func (*CreateReq) String() string { return "CreateReq{}" }
func (*CreateReq) ProtoMessage()  {}

type CreateReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier // legacy mirror, deprecated

	Stream *CreateReqStreamOptions
	All    *CreateReqAllOptions

	GroupName string
	Settings  *Settings
}

type CreateReqStreamOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	Revision *uint64
	Start    *shared.Empty
	End      *shared.Empty
}

type CreateReqAllOptions struct {
	Position *streams.Position
	Start    *shared.Empty
	End      *shared.Empty

	Filter   *FilterOptions
	NoFilter *shared.Empty
}

type FilterOptions struct {
	StreamIdentifier *Expression
	EventType        *Expression

	Max                          *uint32
	Count                        *shared.Empty
	CheckpointIntervalMultiplier uint32
}

type Expression struct {
	Regex  string
	Prefix []string
}

// Settings mirrors PersistentSubscriptionSettings on the wire. Revision is
// the deprecated dual-write mirror of the position carried by Stream/All
// above; pre-22 servers only understand Revision.
type Settings struct {
	ResolveLinks   bool
	Revision       uint64
	ExtraStatistics bool

	MessageTimeoutMs int32

	MaxRetryCount int32

	CheckpointAfterMs int32

	MinCheckpointCount int32
	MaxCheckpointCount int32
	MaxSubscriberCount int32
	LiveBufferSize     int32
	ReadBatchSize      int32
	HistoryBufferSize  int32

	NamedConsumerStrategy int32
}

type CreateResp struct{}

func (*CreateResp) Reset()         {}
func (*CreateResp) String() string { return "CreateResp{}" }
func (*CreateResp) ProtoMessage()  {}

// --- Update ---

type UpdateReq struct {
	Options *UpdateReqOptions
}

func (*UpdateReq) Reset()         {}
func (*UpdateReq) String() string { return "UpdateReq{}" }
func (*UpdateReq) ProtoMessage()  {}

type UpdateReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier // legacy mirror, deprecated

	Stream *UpdateReqStreamOptions
	All    *UpdateReqAllOptions

	GroupName string
	Settings  *Settings
}

type UpdateReqStreamOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	Revision *uint64
	Start    *shared.Empty
	End      *shared.Empty
}

type UpdateReqAllOptions struct {
	Position *streams.Position
	Start    *shared.Empty
	End      *shared.Empty
}

type UpdateResp struct{}

func (*UpdateResp) Reset()         {}
func (*UpdateResp) String() string { return "UpdateResp{}" }
func (*UpdateResp) ProtoMessage()  {}

// --- Delete ---

type DeleteReq struct {
	Options *DeleteReqOptions
}

func (*DeleteReq) Reset()         {}
func (*DeleteReq) String() string { return "DeleteReq{}" }
func (*DeleteReq) ProtoMessage()  {}

type DeleteReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier
	All              *shared.Empty

	GroupName string
}

type DeleteResp struct{}

func (*DeleteResp) Reset()         {}
func (*DeleteResp) String() string { return "DeleteResp{}" }
func (*DeleteResp) ProtoMessage()  {}

// --- Read (session) ---

// ReadReq is the client-to-server session message: the first frame is
// always Options, subsequent frames are Ack or Nack.
type ReadReq struct {
	Options *ReadReqOptions
	Ack     *Ack
	Nack    *Nack
}

func (*ReadReq) Reset()         {}
func (*ReadReq) String() string { return "ReadReq{}" }
func (*ReadReq) ProtoMessage()  {}

type ReadReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier
	All              *shared.Empty

	GroupName  string
	BufferSize int32
	UuidOption *UuidOption
}

type UuidOption struct {
	String     bool
	Structured bool
}

type Ack struct {
	Id  [][]byte // legacy byte-id field, always empty on send
	Ids []*shared.Uuid
}

type Nack struct {
	Id     [][]byte // legacy byte-id field, always empty on send
	Ids    []*shared.Uuid
	Action int32
	Reason string
}

type ReadResp struct {
	Event                    *ReadRespReadEvent
	SubscriptionConfirmation *ReadRespSubscriptionConfirmation
}

func (*ReadResp) Reset()         {}
func (*ReadResp) String() string { return "ReadResp{}" }
func (*ReadResp) ProtoMessage()  {}

type ReadRespReadEvent struct {
	Event *streams.RecordedEventWire
	Link  *streams.RecordedEventWire

	CommitPosition *uint64
	NoPosition     *shared.Empty

	RetryCount   *uint32
	NoRetryCount *shared.Empty
}

type ReadRespSubscriptionConfirmation struct {
	SubscriptionId string
}

// --- service client ---

const serviceName = "event_store.client.persistent_subscriptions.PersistentSubscriptions"

type PersistentSubscriptionsClient interface {
	Create(ctx context.Context, in *CreateReq, opts ...grpc.CallOption) (*CreateResp, error)
	Update(ctx context.Context, in *UpdateReq, opts ...grpc.CallOption) (*UpdateResp, error)
	Delete(ctx context.Context, in *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error)
	Read(ctx context.Context, opts ...grpc.CallOption) (PersistentSubscriptions_ReadClient, error)
}

type persistentSubscriptionsClient struct {
	cc grpc.ClientConnInterface
}

func NewPersistentSubscriptionsClient(cc grpc.ClientConnInterface) PersistentSubscriptionsClient {
	return &persistentSubscriptionsClient{cc: cc}
}

func (c *persistentSubscriptionsClient) Create(ctx context.Context, in *CreateReq, opts ...grpc.CallOption) (*CreateResp, error) {
	out := new(CreateResp)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Create", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *persistentSubscriptionsClient) Update(ctx context.Context, in *UpdateReq, opts ...grpc.CallOption) (*UpdateResp, error) {
	out := new(UpdateResp)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Update", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *persistentSubscriptionsClient) Delete(ctx context.Context, in *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error) {
	out := new(DeleteResp)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type PersistentSubscriptions_ReadClient interface {
	Send(*ReadReq) error
	Recv() (*ReadResp, error)
	grpc.ClientStream
}

type persistentSubscriptionsReadClient struct {
	grpc.ClientStream
}

func (c *persistentSubscriptionsClient) Read(ctx context.Context, opts ...grpc.CallOption) (PersistentSubscriptions_ReadClient, error) {
	stream, err := c.cc.NewStream(ctx, &_PersistentSubscriptions_serviceDesc.Streams[0], "/"+serviceName+"/Read", opts...)
	if err != nil {
		return nil, err
	}
	return &persistentSubscriptionsReadClient{stream}, nil
}

func (c *persistentSubscriptionsReadClient) Send(m *ReadReq) error {
	return c.ClientStream.SendMsg(m)
}

func (c *persistentSubscriptionsReadClient) Recv() (*ReadResp, error) {
	m := new(ReadResp)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

var _PersistentSubscriptions_serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	Streams: []grpc.StreamDesc{
		{StreamName: "Read", ClientStreams: true, ServerStreams: true},
	},
}

var (
	_ proto.Message = (*CreateReq)(nil)
	_ proto.Message = (*CreateResp)(nil)
	_ proto.Message = (*UpdateReq)(nil)
	_ proto.Message = (*UpdateResp)(nil)
	_ proto.Message = (*DeleteReq)(nil)
	_ proto.Message = (*DeleteResp)(nil)
	_ proto.Message = (*ReadReq)(nil)
	_ proto.Message = (*ReadResp)(nil)
)
