// Package streams is the generated-style client stub for the Streams
// service group (append, batch_append, read, delete, tombstone). As with
// protos/shared, the wire schema is an external collaborator per spec §1/§6;
// this package stands in for the output of protoc-gen-go / protoc-gen-go-grpc
// against that schema, shaped after the reference EventStoreDB Go client's
// protos/streams package.
package streams

import (
	"context"

	"github.com/golang/protobuf/proto"
	"google.golang.org/grpc"

	"github.com/streamforge/eventstore-go/protos/shared"
)

// --- Append ---

type AppendReq struct {
	Options         *AppendReqOptions
	ProposedMessage *AppendReqProposedMessage
}

func (*AppendReq) Reset()         {}
func (*AppendReq) String() string { return "AppendReq{}" }
func (*AppendReq) ProtoMessage()  {}

type AppendReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	// Exactly one of the following is set.
	Revision            *uint64
	NoStream            *shared.Empty
	Any                 *shared.Empty
	StreamExists        *shared.Empty
}

type AppendReqProposedMessage struct {
	Id             *shared.Uuid
	Metadata       map[string]string
	CustomMetadata []byte
	Data           []byte
}

type AppendResp struct {
	Success              *AppendRespSuccess
	WrongExpectedVersion *AppendRespWrongExpectedVersion
}

func (*AppendResp) Reset()         {}
func (*AppendResp) String() string { return "AppendResp{}" }
func (*AppendResp) ProtoMessage()  {}

type AppendRespSuccess struct {
	// current revision option
	CurrentRevision *uint64
	NoStream        *shared.Empty

	// position option
	Position   *Position
	NoPosition *shared.Empty
}

type AppendRespWrongExpectedVersion struct {
	// current revision option
	CurrentRevision *uint64
	CurrentNoStream *shared.Empty

	// expected revision option
	ExpectedRevision     *uint64
	ExpectedAny          *shared.Empty
	ExpectedNoStream     *shared.Empty
	ExpectedStreamExists *shared.Empty
}

// Position is the wire representation of a global log coordinate.
type Position struct {
	CommitPosition  uint64
	PreparePosition uint64
}

// --- Batch append ---

type BatchAppendReq struct {
	CorrelationId    *shared.Uuid
	Options          *BatchAppendReqOptions
	ProposedMessages []*BatchAppendReqProposedMessage
	IsFinal          bool
}

func (*BatchAppendReq) Reset()         {}
func (*BatchAppendReq) String() string { return "BatchAppendReq{}" }
func (*BatchAppendReq) ProtoMessage()  {}

type BatchAppendReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	StreamPosition *uint64
	NoStream       *shared.Empty
	Any            *shared.Empty
	StreamExists   *shared.Empty
}

type BatchAppendReqProposedMessage struct {
	Id             *shared.Uuid
	Metadata       map[string]string
	CustomMetadata []byte
	Data           []byte
}

type BatchAppendResp struct {
	StreamIdentifier *shared.StreamIdentifier
	CorrelationId    *shared.Uuid

	Success  *BatchAppendRespSuccess
	Conflict *BatchAppendRespWrongExpectedVersion
	Error    *BatchAppendRespError
}

func (*BatchAppendResp) Reset()         {}
func (*BatchAppendResp) String() string { return "BatchAppendResp{}" }
func (*BatchAppendResp) ProtoMessage()  {}

type BatchAppendRespSuccess struct {
	CurrentRevision *uint64
	NoStream        *shared.Empty

	Position   *Position
	NoPosition *shared.Empty
}

type BatchAppendRespError struct {
	Code    uint32
	Message string
}

type BatchAppendRespWrongExpectedVersion struct {
	CurrentRevision *uint64
	CurrentNoStream *shared.Empty
}

// --- Read ---

type ReadReq struct {
	Options *ReadReqOptions
}

func (*ReadReq) Reset()         {}
func (*ReadReq) String() string { return "ReadReq{}" }
func (*ReadReq) ProtoMessage()  {}

type ReadReqOptions struct {
	// stream option
	Stream *ReadReqStreamOptions
	All    *ReadReqAllOptions

	ResolveLinks bool

	// filter option
	Filter   *ReadReqFilterOptions
	NoFilter *shared.Empty

	// count option
	Count        *uint64
	Subscription *shared.Empty

	UuidOption *ReadReqUuidOption

	ReadDirection int32 // 0 = Forward, 1 = Backward
}

type ReadReqStreamOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	Revision *uint64
	Start    *shared.Empty
	End      *shared.Empty
}

type ReadReqAllOptions struct {
	Position *Position
	Start    *shared.Empty
	End      *shared.Empty
}

type ReadReqFilterOptions struct {
	StreamIdentifier *ReadReqExpression
	EventType        *ReadReqExpression

	Max                          *uint32
	Count                        *shared.Empty
	CheckpointIntervalMultiplier uint32
}

type ReadReqExpression struct {
	Regex  string
	Prefix []string
}

type ReadReqUuidOption struct {
	String    bool
	Structured bool
}

type ReadResp struct {
	Event          *ReadRespReadEvent
	Confirmation   *ReadRespSubscriptionConfirmation
	StreamNotFound *ReadRespStreamNotFound
}

func (*ReadResp) Reset()         {}
func (*ReadResp) String() string { return "ReadResp{}" }
func (*ReadResp) ProtoMessage()  {}

type ReadRespReadEvent struct {
	Event *RecordedEventWire
	Link  *RecordedEventWire

	CommitPosition *uint64
	NoPosition     *shared.Empty
}

// RecordedEventWire is the wire shape of a single recorded event, shared by
// Streams.Read and PersistentSubscriptions.Read responses.
type RecordedEventWire struct {
	Id               *shared.Uuid
	StreamIdentifier *shared.StreamIdentifier
	StreamRevision   uint64
	PreparePosition  uint64
	CommitPosition   uint64
	Metadata         map[string]string
	CustomMetadata   []byte
	Data             []byte
}

type ReadRespSubscriptionConfirmation struct {
	SubscriptionId string
}

type ReadRespStreamNotFound struct {
	StreamIdentifier *shared.StreamIdentifier
}

// --- Delete / Tombstone ---

type DeleteReq struct {
	Options *DeleteReqOptions
}

func (*DeleteReq) Reset()         {}
func (*DeleteReq) String() string { return "DeleteReq{}" }
func (*DeleteReq) ProtoMessage()  {}

type DeleteReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	Revision     *uint64
	NoStream     *shared.Empty
	Any          *shared.Empty
	StreamExists *shared.Empty
}

type DeleteResp struct {
	Position   *Position
	NoPosition *shared.Empty
}

func (*DeleteResp) Reset()         {}
func (*DeleteResp) String() string { return "DeleteResp{}" }
func (*DeleteResp) ProtoMessage()  {}

type TombstoneReq struct {
	Options *TombstoneReqOptions
}

func (*TombstoneReq) Reset()         {}
func (*TombstoneReq) String() string { return "TombstoneReq{}" }
func (*TombstoneReq) ProtoMessage()  {}

type TombstoneReqOptions struct {
	StreamIdentifier *shared.StreamIdentifier

	Revision     *uint64
	NoStream     *shared.Empty
	Any          *shared.Empty
	StreamExists *shared.Empty
}

type TombstoneResp struct {
	Position   *Position
	NoPosition *shared.Empty
}

func (*TombstoneResp) Reset()         {}
func (*TombstoneResp) String() string { return "TombstoneResp{}" }
func (*TombstoneResp) ProtoMessage()  {}

// --- service client ---

const (
	serviceName = "event_store.client.streams.Streams"
)

// StreamsClient is the client-side stub generated for the Streams service.
type StreamsClient interface {
	Append(ctx context.Context, opts ...grpc.CallOption) (Streams_AppendClient, error)
	BatchAppend(ctx context.Context, opts ...grpc.CallOption) (Streams_BatchAppendClient, error)
	Read(ctx context.Context, in *ReadReq, opts ...grpc.CallOption) (Streams_ReadClient, error)
	Delete(ctx context.Context, in *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error)
	Tombstone(ctx context.Context, in *TombstoneReq, opts ...grpc.CallOption) (*TombstoneResp, error)
}

type streamsClient struct {
	cc grpc.ClientConnInterface
}

// NewStreamsClient creates a new StreamsClient bound to a live channel.
func NewStreamsClient(cc grpc.ClientConnInterface) StreamsClient {
	return &streamsClient{cc: cc}
}

type Streams_AppendClient interface {
	Send(*AppendReq) error
	CloseAndRecv() (*AppendResp, error)
	grpc.ClientStream
}

type streamsAppendClient struct {
	grpc.ClientStream
}

func (c *streamsClient) Append(ctx context.Context, opts ...grpc.CallOption) (Streams_AppendClient, error) {
	stream, err := c.cc.NewStream(ctx, &_Streams_serviceDesc.Streams[0], "/"+serviceName+"/Append", opts...)
	if err != nil {
		return nil, err
	}
	return &streamsAppendClient{stream}, nil
}

func (c *streamsAppendClient) Send(m *AppendReq) error {
	return c.ClientStream.SendMsg(m)
}

func (c *streamsAppendClient) CloseAndRecv() (*AppendResp, error) {
	if err := c.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(AppendResp)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type Streams_BatchAppendClient interface {
	Send(*BatchAppendReq) error
	Recv() (*BatchAppendResp, error)
	grpc.ClientStream
}

type streamsBatchAppendClient struct {
	grpc.ClientStream
}

func (c *streamsClient) BatchAppend(ctx context.Context, opts ...grpc.CallOption) (Streams_BatchAppendClient, error) {
	stream, err := c.cc.NewStream(ctx, &_Streams_serviceDesc.Streams[1], "/"+serviceName+"/BatchAppend", opts...)
	if err != nil {
		return nil, err
	}
	return &streamsBatchAppendClient{stream}, nil
}

func (c *streamsBatchAppendClient) Send(m *BatchAppendReq) error {
	return c.ClientStream.SendMsg(m)
}

func (c *streamsBatchAppendClient) Recv() (*BatchAppendResp, error) {
	m := new(BatchAppendResp)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type Streams_ReadClient interface {
	Recv() (*ReadResp, error)
	grpc.ClientStream
}

type streamsReadClient struct {
	grpc.ClientStream
}

func (c *streamsClient) Read(ctx context.Context, in *ReadReq, opts ...grpc.CallOption) (Streams_ReadClient, error) {
	stream, err := c.cc.NewStream(ctx, &_Streams_serviceDesc.Streams[2], "/"+serviceName+"/Read", opts...)
	if err != nil {
		return nil, err
	}
	x := &streamsReadClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *streamsReadClient) Recv() (*ReadResp, error) {
	m := new(ReadResp)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *streamsClient) Delete(ctx context.Context, in *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error) {
	out := new(DeleteResp)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Delete", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamsClient) Tombstone(ctx context.Context, in *TombstoneReq, opts ...grpc.CallOption) (*TombstoneResp, error) {
	out := new(TombstoneResp)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Tombstone", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _Streams_serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	Streams: []grpc.StreamDesc{
		{StreamName: "Append", ClientStreams: true},
		{StreamName: "BatchAppend", ClientStreams: true, ServerStreams: true},
		{StreamName: "Read", ServerStreams: true},
	},
}

// Every message sent or received over a gRPC stream must satisfy
// proto.Message so it can pass through the channel's wire codec.
var (
	_ proto.Message = (*AppendReq)(nil)
	_ proto.Message = (*AppendResp)(nil)
	_ proto.Message = (*BatchAppendReq)(nil)
	_ proto.Message = (*BatchAppendResp)(nil)
	_ proto.Message = (*ReadReq)(nil)
	_ proto.Message = (*ReadResp)(nil)
	_ proto.Message = (*DeleteReq)(nil)
	_ proto.Message = (*DeleteResp)(nil)
	_ proto.Message = (*TombstoneReq)(nil)
	_ proto.Message = (*TombstoneResp)(nil)
)
