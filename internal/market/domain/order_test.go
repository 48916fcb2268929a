package domain

import (
	"errors"
	"testing"
	"time"
)

func placedOrder(t *testing.T, amount int64) Order {
	t.Helper()
	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	listing := Listing{ID: 1, OwnerID: "vendor-1", Price: amount, Available: true}
	order, err := PlaceOrder(PlaceOrderInput{
		BuyerID:        "buyer-1",
		Listing:        listing,
		PaidAmount:     amount,
		DeliveryWindow: 7 * 24 * time.Hour,
	}, fixedClock(createdAt))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	order.ID = 1
	return order
}

func TestPlaceOrderRejectsUnavailableListing(t *testing.T) {
	t.Parallel()

	listing := Listing{ID: 1, OwnerID: "vendor-1", Price: 100, Available: false}
	_, err := PlaceOrder(PlaceOrderInput{BuyerID: "buyer-1", Listing: listing, PaidAmount: 100}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestPlaceOrderRejectsPaymentOffByOneUnit(t *testing.T) {
	t.Parallel()

	listing := Listing{ID: 1, OwnerID: "vendor-1", Price: 100, DiscountPercent: 20, Available: true}
	for _, paid := range []int64{79, 81, 0, 100} {
		_, err := PlaceOrder(PlaceOrderInput{BuyerID: "buyer-1", Listing: listing, PaidAmount: paid}, nil)
		if !errors.Is(err, ErrIncorrectPayment) {
			t.Fatalf("paid %d err = %v, want ErrIncorrectPayment", paid, err)
		}
	}
	if _, err := PlaceOrder(PlaceOrderInput{BuyerID: "buyer-1", Listing: listing, PaidAmount: 80}, nil); err != nil {
		t.Fatalf("exact payment rejected: %v", err)
	}
}

func TestPlaceOrderSetsDeadlineFromWindow(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	want := order.CreatedAt.Add(7 * 24 * time.Hour)
	if !order.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", order.Deadline, want)
	}
	if order.Status != OrderStatusPlaced {
		t.Fatalf("status = %v, want placed", order.Status)
	}
	if order.VendorID != "vendor-1" {
		t.Fatalf("vendor = %q, want copied from listing", order.VendorID)
	}
}

func TestFulfillBeforeDeadlineZeroesEscrow(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	fulfilled, err := order.Fulfill(order.Deadline)
	if err != nil {
		t.Fatalf("fulfill at deadline: %v", err)
	}
	if fulfilled.Status != OrderStatusFulfilled {
		t.Fatalf("status = %v, want fulfilled", fulfilled.Status)
	}
	if fulfilled.EscrowedAmount != 0 {
		t.Fatalf("escrowed = %d, want 0", fulfilled.EscrowedAmount)
	}
}

func TestFulfillAfterDeadlineFails(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	_, err := order.Fulfill(order.Deadline.Add(time.Second))
	if !errors.Is(err, ErrDeadlineExpired) {
		t.Fatalf("err = %v, want ErrDeadlineExpired", err)
	}
	if order.Status != OrderStatusPlaced {
		t.Fatalf("order mutated on failed fulfill: %v", order.Status)
	}
}

func TestTerminalStatusesRejectAllTransitions(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	at := order.CreatedAt.Add(time.Hour)
	for _, status := range []OrderStatus{OrderStatusFulfilled, OrderStatusResolvedRefund, OrderStatusResolvedSettle} {
		terminal := order
		terminal.Status = status
		terminal.EscrowedAmount = 0

		if _, err := terminal.Fulfill(at); !errors.Is(err, ErrAlreadyFinal) {
			t.Fatalf("fulfill on %v err = %v, want ErrAlreadyFinal", status, err)
		}
		if _, err := terminal.Dispute(at); !errors.Is(err, ErrAlreadyFinal) {
			t.Fatalf("dispute on %v err = %v, want ErrAlreadyFinal", status, err)
		}
		if _, err := terminal.ApplyMilestone(1, at); !errors.Is(err, ErrAlreadyFinal) {
			t.Fatalf("milestone on %v err = %v, want ErrAlreadyFinal", status, err)
		}
		if _, err := terminal.Resolve(true, at); !errors.Is(err, ErrNotDisputed) {
			t.Fatalf("resolve on %v err = %v, want ErrNotDisputed", status, err)
		}
	}
}

func TestDisputeAndResolveRefund(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	at := order.CreatedAt.Add(time.Hour)

	disputed, err := order.Dispute(at)
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if disputed.EscrowedAmount != 100 {
		t.Fatalf("dispute moved funds: %d", disputed.EscrowedAmount)
	}
	if _, err := disputed.Dispute(at); !errors.Is(err, ErrAlreadyDisputed) {
		t.Fatalf("second dispute err = %v, want ErrAlreadyDisputed", err)
	}

	refunded, err := disputed.Resolve(true, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("resolve refund: %v", err)
	}
	if refunded.Status != OrderStatusResolvedRefund {
		t.Fatalf("status = %v, want resolved_refund", refunded.Status)
	}
	if refunded.EscrowedAmount != 0 {
		t.Fatalf("escrowed = %d, want 0", refunded.EscrowedAmount)
	}
	if _, err := refunded.Resolve(true, at); !errors.Is(err, ErrNotDisputed) {
		t.Fatalf("second resolve err = %v, want ErrNotDisputed", err)
	}
}

func TestResolveSettle(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	at := order.CreatedAt.Add(time.Hour)
	disputed, err := order.Dispute(at)
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	settled, err := disputed.Resolve(false, at)
	if err != nil {
		t.Fatalf("resolve settle: %v", err)
	}
	if settled.Status != OrderStatusResolvedSettle {
		t.Fatalf("status = %v, want resolved_settle", settled.Status)
	}
}

func TestApplyMilestoneBounds(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	at := order.CreatedAt.Add(time.Hour)

	if _, err := order.ApplyMilestone(0, at); !errors.Is(err, ErrMilestoneExceedsBalance) {
		t.Fatalf("zero milestone err = %v, want ErrMilestoneExceedsBalance", err)
	}
	if _, err := order.ApplyMilestone(101, at); !errors.Is(err, ErrMilestoneExceedsBalance) {
		t.Fatalf("oversized milestone err = %v, want ErrMilestoneExceedsBalance", err)
	}

	after, err := order.ApplyMilestone(40, at)
	if err != nil {
		t.Fatalf("milestone 40: %v", err)
	}
	if after.EscrowedAmount != 60 {
		t.Fatalf("escrowed = %d, want 60", after.EscrowedAmount)
	}
	if after.Status != OrderStatusPlaced {
		t.Fatalf("status = %v, want placed after milestone", after.Status)
	}
}

func TestMilestoneExhaustionThenFulfill(t *testing.T) {
	t.Parallel()

	order := placedOrder(t, 100)
	at := order.CreatedAt.Add(time.Hour)

	after, err := order.ApplyMilestone(100, at)
	if err != nil {
		t.Fatalf("exhausting milestone: %v", err)
	}
	if after.EscrowedAmount != 0 || after.Status != OrderStatusPlaced {
		t.Fatalf("after exhaustion = %d/%v, want 0/placed", after.EscrowedAmount, after.Status)
	}

	// Zero-balance fulfillment stays legal: the split of zero is zero.
	fulfilled, err := after.Fulfill(at.Add(time.Hour))
	if err != nil {
		t.Fatalf("fulfill zero-balance order: %v", err)
	}
	if fulfilled.Status != OrderStatusFulfilled {
		t.Fatalf("status = %v, want fulfilled", fulfilled.Status)
	}
}
