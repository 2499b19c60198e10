package disperser

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "disperser.Disperser"

	methodDisperseBlob  = "/" + serviceName + "/DisperseBlob"
	methodGetBlobStatus = "/" + serviceName + "/GetBlobStatus"
	methodRetrieveBlob  = "/" + serviceName + "/RetrieveBlob"
)

// DisperserClient is the client API for the Disperser service.
type DisperserClient interface {
	DisperseBlob(ctx context.Context, in *DisperseBlobRequest, opts ...grpc.CallOption) (*DisperseBlobReply, error)
	GetBlobStatus(ctx context.Context, in *BlobStatusRequest, opts ...grpc.CallOption) (*BlobStatusReply, error)
	RetrieveBlob(ctx context.Context, in *RetrieveBlobRequest, opts ...grpc.CallOption) (*RetrieveBlobReply, error)
}

type disperserClient struct{ cc grpc.ClientConnInterface }

// NewDisperserClient returns a client that encodes every call with Codec.
func NewDisperserClient(cc grpc.ClientConnInterface) DisperserClient {
	return &disperserClient{cc: cc}
}

func (c *disperserClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *disperserClient) DisperseBlob(ctx context.Context, in *DisperseBlobRequest, opts ...grpc.CallOption) (*DisperseBlobReply, error) {
	out := new(DisperseBlobReply)
	if err := c.invoke(ctx, methodDisperseBlob, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *disperserClient) GetBlobStatus(ctx context.Context, in *BlobStatusRequest, opts ...grpc.CallOption) (*BlobStatusReply, error) {
	out := new(BlobStatusReply)
	if err := c.invoke(ctx, methodGetBlobStatus, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *disperserClient) RetrieveBlob(ctx context.Context, in *RetrieveBlobRequest, opts ...grpc.CallOption) (*RetrieveBlobReply, error) {
	out := new(RetrieveBlobReply)
	if err := c.invoke(ctx, methodRetrieveBlob, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// DisperserServer is the server API for the Disperser service.
type DisperserServer interface {
	DisperseBlob(context.Context, *DisperseBlobRequest) (*DisperseBlobReply, error)
	GetBlobStatus(context.Context, *BlobStatusRequest) (*BlobStatusReply, error)
	RetrieveBlob(context.Context, *RetrieveBlobRequest) (*RetrieveBlobReply, error)
}

// UnimplementedDisperserServer can be embedded to have forward compatible implementations.
type UnimplementedDisperserServer struct{}

func (UnimplementedDisperserServer) DisperseBlob(context.Context, *DisperseBlobRequest) (*DisperseBlobReply, error) {
	return nil, status.Error(codes.Unimplemented, "method DisperseBlob not implemented")
}
func (UnimplementedDisperserServer) GetBlobStatus(context.Context, *BlobStatusRequest) (*BlobStatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBlobStatus not implemented")
}
func (UnimplementedDisperserServer) RetrieveBlob(context.Context, *RetrieveBlobRequest) (*RetrieveBlobReply, error) {
	return nil, status.Error(codes.Unimplemented, "method RetrieveBlob not implemented")
}

// NewServer returns a gRPC server able to decode disperser messages.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(Codec())}, opts...)
	return grpc.NewServer(opts...)
}

// RegisterDisperserServer registers the Disperser service on a gRPC server.
// The server must be created with NewServer (or grpc.ForceServerCodec(Codec())).
func RegisterDisperserServer(s grpc.ServiceRegistrar, srv DisperserServer) {
	s.RegisterService(&Disperser_ServiceDesc, srv)
}

func _Disperser_DisperseBlob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DisperseBlobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DisperserServer).DisperseBlob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDisperseBlob}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DisperserServer).DisperseBlob(ctx, req.(*DisperseBlobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Disperser_GetBlobStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BlobStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DisperserServer).GetBlobStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetBlobStatus}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DisperserServer).GetBlobStatus(ctx, req.(*BlobStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Disperser_RetrieveBlob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RetrieveBlobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DisperserServer).RetrieveBlob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRetrieveBlob}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DisperserServer).RetrieveBlob(ctx, req.(*RetrieveBlobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Disperser_ServiceDesc is the grpc.ServiceDesc for the Disperser service.
var Disperser_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DisperserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DisperseBlob", Handler: _Disperser_DisperseBlob_Handler},
		{MethodName: "GetBlobStatus", Handler: _Disperser_GetBlobStatus_Handler},
		{MethodName: "RetrieveBlob", Handler: _Disperser_RetrieveBlob_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "disperser/disperser.proto",
}
