package handler

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/order-reconciler/internal/adapter/handler/rpc"
	"github.com/rl1809/order-reconciler/internal/core/service"
	"github.com/rl1809/order-reconciler/internal/port"
)

type GRPCHandler struct {
	orders *orderList
	svc    Reconciler
}

var _ rpc.ReconcilerServer = (*GRPCHandler)(nil)

func NewGRPCHandler(svc Reconciler, cache port.SnapshotCache, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{
		orders: &orderList{svc: svc, cache: cache, logger: logger},
		svc:    svc,
	}
}

func (h *GRPCHandler) ListOrders(ctx context.Context, req *rpc.ListOrdersRequest) (*rpc.ListOrdersResponse, error) {
	payload, err := h.orders.load(ctx, req.Refresh)
	if err != nil {
		return nil, toStatus(err)
	}

	var resp rpc.ListOrdersResponse
	if err := rpc.Decode(payload, &resp); err != nil {
		return nil, status.Errorf(codes.Internal, "decode order list: %v", err)
	}
	return &resp, nil
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *rpc.GetOrderRequest) (*rpc.GetOrderResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing order id")
	}

	order, err := h.svc.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GetOrderResponse{Order: order.Record()}, nil
}

func (h *GRPCHandler) Audit(ctx context.Context, req *rpc.AuditRequest) (*rpc.AuditResponse, error) {
	report, err := h.svc.Audit(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.AuditResponse{Report: report}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return status.Error(codes.NotFound, "order not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
