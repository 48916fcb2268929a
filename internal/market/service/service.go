// Package service implements the marketplace engine: the role registry,
// the catalog surface, and the order/escrow state machine. Every public
// operation receives an already-authenticated caller id and performs
// authorization only.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amanah-market/amanah/internal/market/service"

// Transferrer is the external atomic fund-movement primitive. A transfer
// moves funds out of an order's escrow to a participant; on failure the
// enclosing engine operation fails and rolls back as if it never ran.
type Transferrer interface {
	Transfer(ctx context.Context, orderID uint64, toParticipantID string, amount int64) error
}

// TransferFunc adapts a function to the Transferrer interface.
type TransferFunc func(ctx context.Context, orderID uint64, toParticipantID string, amount int64) error

// Transfer implements Transferrer.
func (f TransferFunc) Transfer(ctx context.Context, orderID uint64, toParticipantID string, amount int64) error {
	return f(ctx, orderID, toParticipantID, amount)
}

// Stores bundles the persistence contracts the engine depends on.
type Stores struct {
	Roles    storage.RoleStore
	Listings storage.ListingStore
	Orders   storage.OrderStore
	Settings storage.SettingsStore
	Events   storage.EventStore
}

// Service is the marketplace engine.
type Service struct {
	stores   Stores
	transfer Transferrer
	clock    func() time.Time
	tracer   trace.Tracer

	// orderLocks serializes operations on the same order. Calls on
	// different orders proceed independently.
	orderLocks sync.Map // map[uint64]*sync.Mutex
}

// NewService creates a marketplace engine with default dependencies.
func NewService(stores Stores, transfer Transferrer) *Service {
	return &Service{
		stores:   stores,
		transfer: transfer,
		clock:    time.Now,
		tracer:   otel.Tracer(tracerName),
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// lockOrder acquires the per-order mutex and returns its release func.
func (s *Service) lockOrder(orderID uint64) func() {
	value, _ := s.orderLocks.LoadOrStore(orderID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// startSpan opens a trace span for one engine operation.
func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(attrs...)
	return ctx, span
}

// endSpan records the operation outcome on the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
	}
	span.End()
}

// requireRole fails with Unauthorized unless the caller holds the role.
func (s *Service) requireRole(ctx context.Context, callerID string, role domain.Role) error {
	held, err := s.stores.Roles.HasRole(ctx, callerID, role)
	if err != nil {
		return err
	}
	if !held {
		return apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"caller does not hold the required role",
			map[string]string{"Caller": callerID, "Role": string(role)},
		)
	}
	return nil
}

// settings loads the durable configuration, failing before bootstrap.
func (s *Service) settings(ctx context.Context) (storage.Settings, error) {
	settings, err := s.stores.Settings.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Settings{}, apperrors.New(apperrors.CodeNotFound, "marketplace is not bootstrapped")
		}
		return storage.Settings{}, err
	}
	return settings, nil
}
