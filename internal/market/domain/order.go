package domain

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
)

// OrderStatus describes the escrow lifecycle of an order.
type OrderStatus int

const (
	// OrderStatusUnspecified represents an invalid order status value.
	OrderStatusUnspecified OrderStatus = iota
	// OrderStatusPlaced holds escrowed funds awaiting delivery or dispute.
	OrderStatusPlaced
	// OrderStatusFulfilled is terminal: funds settled to vendor and platform.
	OrderStatusFulfilled
	// OrderStatusDisputed awaits operator resolution. No funds move.
	OrderStatusDisputed
	// OrderStatusResolvedRefund is terminal: remaining escrow returned to the buyer.
	OrderStatusResolvedRefund
	// OrderStatusResolvedSettle is terminal: remaining escrow settled as a sale.
	OrderStatusResolvedSettle
)

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFulfilled, OrderStatusResolvedRefund, OrderStatusResolvedSettle:
		return true
	default:
		return false
	}
}

// String returns the storage/journal label for the status.
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPlaced:
		return "placed"
	case OrderStatusFulfilled:
		return "fulfilled"
	case OrderStatusDisputed:
		return "disputed"
	case OrderStatusResolvedRefund:
		return "resolved_refund"
	case OrderStatusResolvedSettle:
		return "resolved_settle"
	default:
		return "unspecified"
	}
}

// ParseOrderStatus maps a storage/journal label back to its status value.
func ParseOrderStatus(label string) OrderStatus {
	switch label {
	case "placed":
		return OrderStatusPlaced
	case "fulfilled":
		return OrderStatusFulfilled
	case "disputed":
		return OrderStatusDisputed
	case "resolved_refund":
		return OrderStatusResolvedRefund
	case "resolved_settle":
		return OrderStatusResolvedSettle
	default:
		return OrderStatusUnspecified
	}
}

var (
	// ErrIncorrectPayment indicates the paid amount differs from the effective price.
	ErrIncorrectPayment = apperrors.New(apperrors.CodeIncorrectPayment, "paid amount must equal the effective price")
	// ErrAlreadyFinal indicates a transition attempted on a terminal or wrong-status order.
	ErrAlreadyFinal = apperrors.New(apperrors.CodeAlreadyFinal, "order does not allow this transition")
	// ErrDeadlineExpired indicates the delivery window has passed.
	ErrDeadlineExpired = apperrors.New(apperrors.CodeDeadlineExpired, "order delivery deadline has expired")
	// ErrMilestoneExceedsBalance indicates a milestone outside (0, escrowed balance].
	ErrMilestoneExceedsBalance = apperrors.New(apperrors.CodeMilestoneExceedsBalance, "milestone amount must be positive and within the escrowed balance")
	// ErrNotDisputed indicates a resolution attempted on a non-disputed order.
	ErrNotDisputed = apperrors.New(apperrors.CodeNotDisputed, "order is not disputed")
	// ErrAlreadyDisputed indicates a dispute raised twice.
	ErrAlreadyDisputed = apperrors.New(apperrors.CodeAlreadyDisputed, "order is already disputed")
)

// Order holds one buyer's escrowed payment against a listing.
// The escrowed amount only ever decreases and reaches exactly zero when the
// order becomes terminal through settlement or refund.
type Order struct {
	ID      uint64
	BuyerID string
	// VendorID is copied from the listing at creation and never changes.
	VendorID  string
	ListingID uint64
	// EscrowedAmount is the balance still held, in the smallest currency unit.
	EscrowedAmount int64
	CreatedAt      time.Time
	// Deadline is CreatedAt plus the configured delivery window. Checked
	// lazily against the caller-supplied clock, never by a scheduler.
	Deadline  time.Time
	Status    OrderStatus
	UpdatedAt time.Time
}

// PlaceOrderInput describes a buyer's order against a listing snapshot.
type PlaceOrderInput struct {
	BuyerID        string
	Listing        Listing
	PaidAmount     int64
	DeliveryWindow time.Duration
}

// PlaceOrder validates availability and exact payment, then builds the order
// record. The ID is zero until storage assigns the next sequential id.
func PlaceOrder(input PlaceOrderInput, now func() time.Time) (Order, error) {
	if now == nil {
		now = time.Now
	}
	if !input.Listing.Available {
		return Order{}, apperrors.WithMetadata(
			apperrors.CodeUnavailable,
			"listing is not available",
			map[string]string{"ListingID": strconv.FormatUint(input.Listing.ID, 10)},
		)
	}
	if price := input.Listing.EffectivePrice(); input.PaidAmount != price {
		return Order{}, apperrors.WithMetadata(
			apperrors.CodeIncorrectPayment,
			"paid amount must equal the effective price",
			map[string]string{
				"Paid":     strconv.FormatInt(input.PaidAmount, 10),
				"Expected": strconv.FormatInt(price, 10),
			},
		)
	}

	createdAt := now().UTC()
	return Order{
		BuyerID:        strings.TrimSpace(input.BuyerID),
		VendorID:       input.Listing.OwnerID,
		ListingID:      input.Listing.ID,
		EscrowedAmount: input.PaidAmount,
		CreatedAt:      createdAt,
		Deadline:       createdAt.Add(input.DeliveryWindow),
		Status:         OrderStatusPlaced,
		UpdatedAt:      createdAt,
	}, nil
}

// Fulfill transitions a placed order to Fulfilled and zeroes the escrowed
// balance. The caller computes the settlement split from the balance before
// calling, and persists the returned order before any funds move.
func (o Order) Fulfill(at time.Time) (Order, error) {
	if o.Status != OrderStatusPlaced {
		return Order{}, statusError(o)
	}
	if at.After(o.Deadline) {
		return Order{}, apperrors.WithMetadata(
			apperrors.CodeDeadlineExpired,
			"order delivery deadline has expired",
			map[string]string{"OrderID": strconv.FormatUint(o.ID, 10)},
		)
	}
	o.Status = OrderStatusFulfilled
	o.EscrowedAmount = 0
	o.UpdatedAt = at.UTC()
	return o, nil
}

// Dispute transitions a placed order to Disputed. No funds move.
func (o Order) Dispute(at time.Time) (Order, error) {
	if o.Status == OrderStatusDisputed {
		return Order{}, ErrAlreadyDisputed
	}
	if o.Status != OrderStatusPlaced {
		return Order{}, statusError(o)
	}
	o.Status = OrderStatusDisputed
	o.UpdatedAt = at.UTC()
	return o, nil
}

// Resolve transitions a disputed order to its terminal resolution and zeroes
// the escrowed balance. With refundToBuyer the balance goes back to the
// buyer; otherwise it settles under the normal commission split.
func (o Order) Resolve(refundToBuyer bool, at time.Time) (Order, error) {
	if o.Status != OrderStatusDisputed {
		return Order{}, apperrors.WithMetadata(
			apperrors.CodeNotDisputed,
			"order is not disputed",
			map[string]string{"OrderID": strconv.FormatUint(o.ID, 10), "Status": o.Status.String()},
		)
	}
	if refundToBuyer {
		o.Status = OrderStatusResolvedRefund
	} else {
		o.Status = OrderStatusResolvedSettle
	}
	o.EscrowedAmount = 0
	o.UpdatedAt = at.UTC()
	return o, nil
}

// ApplyMilestone decrements the escrowed balance by a partial release while
// the order stays Placed. Repeated milestones may drive the balance to zero
// without a terminal transition.
func (o Order) ApplyMilestone(amount int64, at time.Time) (Order, error) {
	if o.Status != OrderStatusPlaced {
		return Order{}, statusError(o)
	}
	if amount <= 0 || amount > o.EscrowedAmount {
		return Order{}, apperrors.WithMetadata(
			apperrors.CodeMilestoneExceedsBalance,
			"milestone amount must be positive and within the escrowed balance",
			map[string]string{
				"Amount":  strconv.FormatInt(amount, 10),
				"Balance": strconv.FormatInt(o.EscrowedAmount, 10),
			},
		)
	}
	o.EscrowedAmount -= amount
	o.UpdatedAt = at.UTC()
	return o, nil
}

// statusError builds the guard failure for transitions on a wrong-status order.
func statusError(o Order) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeAlreadyFinal,
		"order does not allow this transition",
		map[string]string{"OrderID": strconv.FormatUint(o.ID, 10), "Status": o.Status.String()},
	)
}
