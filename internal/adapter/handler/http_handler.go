package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rl1809/order-reconciler/internal/core/service"
	"github.com/rl1809/order-reconciler/internal/port"
)

const requestIDHeader = "X-Request-ID"

type HTTPHandler struct {
	orders  *orderList
	svc     Reconciler
	logger  *slog.Logger
	timeout time.Duration
}

type OrderHTTPResponse struct {
	Order json.RawMessage `json:"order"`
}

type ErrorHTTPResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewHTTPHandler serves the reconciler over HTTP. cache may be nil.
func NewHTTPHandler(svc Reconciler, cache port.SnapshotCache, timeout time.Duration, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		orders:  &orderList{svc: svc, cache: cache, logger: logger},
		svc:     svc,
		logger:  logger,
		timeout: timeout,
	}
}

// Routes returns the full HTTP surface, metrics included.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/diagnostics", h.Diagnostics)
	mux.Handle("GET /metrics", promhttp.Handler())
	return h.withRequestID(mux)
}

func (h *HTTPHandler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := r.Context()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", id,
			"duration", time.Since(start),
		)
	})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	payload, err := h.orders.load(r.Context(), refresh)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, payload)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "missing order id"})
		return
	}

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	raw, err := json.Marshal(order)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderHTTPResponse{Order: raw})
}

func (h *HTTPHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Audit(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		status = http.StatusNotFound
		message = "order not found"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		message = "reconciliation timed out"
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		message = "request cancelled"
	}

	requestID := w.Header().Get(requestIDHeader)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID, "error", err)
	}
	writeJSON(w, status, ErrorHTTPResponse{Error: message, RequestID: requestID})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
