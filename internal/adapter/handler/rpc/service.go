package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/order-reconciler/internal/core/diagnostics"
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/merge"
)

const ServiceName = "reconciler.Reconciler"

const (
	ListOrdersMethod = "/" + ServiceName + "/ListOrders"
	GetOrderMethod   = "/" + ServiceName + "/GetOrder"
	AuditMethod      = "/" + ServiceName + "/Audit"
)

type ListOrdersRequest struct {
	// Refresh bypasses the snapshot cache.
	Refresh bool `json:"refresh,omitempty"`
}

// ListOrdersResponse is also the body of GET /api/orders and the value held
// in the snapshot cache.
type ListOrdersResponse struct {
	Orders       []domain.Record   `json:"orders"`
	Count        int               `json:"count"`
	Rejected     []merge.Rejection `json:"rejected,omitempty"`
	FailedStores []string          `json:"failed_stores,omitempty"`
}

type GetOrderRequest struct {
	ID string `json:"id"`
}

type GetOrderResponse struct {
	Order domain.Record `json:"order"`
}

type AuditRequest struct{}

type AuditResponse struct {
	Report *diagnostics.Report `json:"report"`
}

type ReconcilerServer interface {
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	Audit(context.Context, *AuditRequest) (*AuditResponse, error)
}

func RegisterReconcilerServer(s grpc.ServiceRegistrar, srv ReconcilerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func listOrdersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReconcilerServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListOrdersMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReconcilerServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReconcilerServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReconcilerServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func auditHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AuditRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReconcilerServer).Audit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AuditMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReconcilerServer).Audit(ctx, req.(*AuditRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReconcilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListOrders", Handler: listOrdersHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "Audit", Handler: auditHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reconciler",
}

// ReconcilerClient calls the service with the JSON codec.
type ReconcilerClient struct {
	cc grpc.ClientConnInterface
}

func NewReconcilerClient(cc grpc.ClientConnInterface) *ReconcilerClient {
	return &ReconcilerClient{cc: cc}
}

func (c *ReconcilerClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *ReconcilerClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, ListOrdersMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReconcilerClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	if err := c.invoke(ctx, GetOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReconcilerClient) Audit(ctx context.Context, in *AuditRequest, opts ...grpc.CallOption) (*AuditResponse, error) {
	out := new(AuditResponse)
	if err := c.invoke(ctx, AuditMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
