package handler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rl1809/order-reconciler/internal/core/diagnostics"
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/service"
)

// Mock Reconciler
type mockReconciler struct {
	orders     []domain.Order
	failed     []string
	report     diagnostics.Report
	err        error
	mu         sync.Mutex
	reconciles int
}

func (m *mockReconciler) Reconcile(ctx context.Context) (*service.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciles++

	if m.err != nil {
		return nil, m.err
	}
	return &service.Result{Orders: m.orders, FailedStores: m.failed}, nil
}

func (m *mockReconciler) Get(ctx context.Context, id string) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, service.ErrOrderNotFound
}

func (m *mockReconciler) Audit(ctx context.Context) (*diagnostics.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	report := m.report
	return &report, nil
}

func (m *mockReconciler) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconciles
}

// Mock SnapshotCache
type mockCache struct {
	payload json.RawMessage
	getErr  error
	sets    int
	mu      sync.Mutex
}

func (m *mockCache) GetReconciled(ctx context.Context) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.payload, m.payload != nil, nil
}

func (m *mockCache) SetReconciled(ctx context.Context, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	m.sets++
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	return nil
}

var errBoom = errors.New("boom")

func sampleOrders() []domain.Order {
	return []domain.Order{
		{ID: "o1", Status: domain.OrderStatusCompleted, ArtistName: "Maya", StatusText: "Completed", StatusClass: "status-completed"},
		{ID: "o2", Status: domain.OrderStatusProcessing, ArtistName: "unknown artist"},
	}
}
