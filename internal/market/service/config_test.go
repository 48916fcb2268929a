package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/event"
)

func TestSetCommissionRateUpdatesDefault(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	ctx := context.Background()
	mustBootstrap(t, h, "op-1", 10)

	if err := h.svc.SetCommissionRate(ctx, "op-1", 15); err != nil {
		t.Fatalf("set commission rate: %v", err)
	}

	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.DefaultCommissionPercent != 15 {
		t.Fatalf("default percent = %d, want 15", settings.DefaultCommissionPercent)
	}

	types := h.store.eventTypes()
	if types[len(types)-1] != event.TypeConfigChanged {
		t.Fatalf("last event = %s, want %s", types[len(types)-1], event.TypeConfigChanged)
	}
}

func TestSetCommissionRateGuards(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	ctx := context.Background()
	mustBootstrap(t, h, "op-1", 10)

	if err := h.svc.SetCommissionRate(ctx, "vendor-1", 15); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("non-operator err = %v, want Unauthorized", err)
	}
	if err := h.svc.SetCommissionRate(ctx, "op-1", 101); !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
		t.Fatalf("rate 101 err = %v, want InvalidRate", err)
	}
	if err := h.svc.SetCommissionRate(ctx, "op-1", -1); !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
		t.Fatalf("rate -1 err = %v, want InvalidRate", err)
	}

	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.DefaultCommissionPercent != 10 {
		t.Fatalf("default percent = %d, want untouched 10", settings.DefaultCommissionPercent)
	}
}

func TestSetCategoryRateBounds(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	ctx := context.Background()
	mustBootstrap(t, h, "op-1", 10)

	if err := h.svc.SetCategoryRate(ctx, "op-1", "crafts", 102); !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
		t.Fatalf("rate 102 err = %v, want InvalidRate", err)
	}
	if err := h.svc.SetCategoryRate(ctx, "op-1", "crafts", 0); err != nil {
		t.Fatalf("rate 0 should be a legal override: %v", err)
	}

	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got := settings.CategoryCommissionPercents["crafts"]; got != 0 {
		t.Fatalf("crafts override = %d, want 0", got)
	}
}

func TestSetDeliveryWindowAppliesToNewOrdersOnly(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	ctx := context.Background()
	setupMarket(t, h, 10)

	before := placeTestOrder(t, h, 100, 0)

	if err := h.svc.SetDeliveryWindow(ctx, "op-1", 48*time.Hour); err != nil {
		t.Fatalf("set delivery window: %v", err)
	}

	unchanged, err := h.svc.GetOrder(ctx, before)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	wantOld := h.clock.Now().Add(DefaultDeliveryWindow)
	if !unchanged.Deadline.Equal(wantOld) {
		t.Fatalf("existing deadline = %v, want %v", unchanged.Deadline, wantOld)
	}

	orderID := placeTestOrder(t, h, 50, 0)
	order, err := h.svc.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	wantNew := h.clock.Now().Add(48 * time.Hour)
	if !order.Deadline.Equal(wantNew) {
		t.Fatalf("new deadline = %v, want %v", order.Deadline, wantNew)
	}
}

func TestSetDeliveryWindowRejectsNonPositive(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	ctx := context.Background()
	mustBootstrap(t, h, "op-1", 10)

	if err := h.svc.SetDeliveryWindow(ctx, "op-1", 0); !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
		t.Fatalf("zero window err = %v, want InvalidRate", err)
	}
	if err := h.svc.SetDeliveryWindow(ctx, "buyer-1", time.Hour); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("non-operator err = %v, want Unauthorized", err)
	}
}
