package service

import (
	"context"
	"errors"
	"strconv"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
	"github.com/amanah-market/amanah/internal/platform/grpc/pagination"
	"go.opentelemetry.io/otel/attribute"
)

// payout is one pending escrow release to a participant.
type payout struct {
	to     string
	amount int64
}

// executeTransfers builds the transfer callback for ApplyOrderChange. Zero
// amounts are skipped; the first failure aborts with TransferFailed and the
// store rolls back the whole operation.
func (s *Service) executeTransfers(orderID uint64, payouts ...payout) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, p := range payouts {
			if p.amount == 0 {
				continue
			}
			if err := s.transfer.Transfer(ctx, orderID, p.to, p.amount); err != nil {
				return apperrors.Wrap(apperrors.CodeTransferFailed, "escrow transfer failed", err)
			}
		}
		return nil
	}
}

// PlaceOrder escrows the buyer's exact payment against an available listing
// and returns the assigned sequential order id. The delivery deadline is the
// current time plus the configured delivery window.
func (s *Service) PlaceOrder(ctx context.Context, callerID string, listingID uint64, paidAmount int64) (uint64, error) {
	ctx, span := s.startSpan(ctx, "market.PlaceOrder", attribute.Int64("market.listing_id", int64(listingID)))
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleBuyer); err != nil {
		return 0, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return 0, err
	}
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return 0, err
	}

	order, err := domain.PlaceOrder(domain.PlaceOrderInput{
		BuyerID:        callerID,
		Listing:        listing,
		PaidAmount:     paidAmount,
		DeliveryWindow: settings.DeliveryWindow,
	}, s.clock)
	if err != nil {
		return 0, err
	}

	orderID, err := s.stores.Orders.CreateOrder(ctx, order, func(id uint64) event.Event {
		payload, _ := event.MarshalPayload(event.OrderPlacedPayload{
			OrderID:   id,
			ListingID: order.ListingID,
			VendorID:  order.VendorID,
			Amount:    order.EscrowedAmount,
			Deadline:  order.Deadline.UnixMilli(),
		})
		return event.Event{
			Type:        event.TypeOrderPlaced,
			ActorID:     callerID,
			Timestamp:   order.CreatedAt,
			PayloadJSON: payload,
		}
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("market.order_id", int64(orderID)))
	return orderID, nil
}

// ConfirmDelivery settles a placed order: the remaining escrow splits
// between the platform operator and the vendor under the commission rate for
// the listing's category, the order becomes Fulfilled, and the listing is
// taken off the market. Only the order's buyer may confirm, and only before
// the delivery deadline.
func (s *Service) ConfirmDelivery(ctx context.Context, callerID string, orderID uint64) error {
	ctx, span := s.startSpan(ctx, "market.ConfirmDelivery", attribute.Int64("market.order_id", int64(orderID)))
	var err error
	defer func() { endSpan(span, err) }()
	defer s.lockOrder(orderID)()

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err = requireOrderBuyer(order, callerID); err != nil {
		return err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	listing, err := s.getListing(ctx, order.ListingID)
	if err != nil {
		return err
	}

	gross := order.EscrowedAmount
	now := s.clock().UTC()
	updated, err := order.Fulfill(now)
	if err != nil {
		return err
	}

	rate := settings.Policy().RateFor(listing.Category)
	platformShare, vendorShare := domain.Split(gross, rate)

	listing.Available = false
	listing.UpdatedAt = now

	payload, err := event.MarshalPayload(event.OrderSettledPayload{
		OrderID:       order.ID,
		GrossAmount:   gross,
		PlatformShare: platformShare,
		VendorShare:   vendorShare,
		RatePercent:   rate,
	})
	if err != nil {
		return err
	}
	err = s.stores.Orders.ApplyOrderChange(ctx, updated, &listing, event.Event{
		Type:        event.TypeOrderFulfilled,
		ActorID:     callerID,
		Timestamp:   now,
		PayloadJSON: payload,
	}, s.executeTransfers(order.ID,
		payout{to: settings.OperatorID, amount: platformShare},
		payout{to: order.VendorID, amount: vendorShare},
	))
	return err
}

// RaiseDispute freezes a placed order pending operator resolution. Only the
// order's buyer may dispute; no funds move.
func (s *Service) RaiseDispute(ctx context.Context, callerID string, orderID uint64) error {
	ctx, span := s.startSpan(ctx, "market.RaiseDispute", attribute.Int64("market.order_id", int64(orderID)))
	var err error
	defer func() { endSpan(span, err) }()
	defer s.lockOrder(orderID)()

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err = requireOrderBuyer(order, callerID); err != nil {
		return err
	}

	now := s.clock().UTC()
	updated, err := order.Dispute(now)
	if err != nil {
		return err
	}

	payload, err := event.MarshalPayload(event.OrderDisputedPayload{OrderID: order.ID})
	if err != nil {
		return err
	}
	err = s.stores.Orders.ApplyOrderChange(ctx, updated, nil, event.Event{
		Type:        event.TypeOrderDisputed,
		ActorID:     callerID,
		Timestamp:   now,
		PayloadJSON: payload,
	}, nil)
	return err
}

// ResolveDispute closes a disputed order. With refundToBuyer the remaining
// escrow returns to the buyer and the listing stays on the market; otherwise
// the remaining escrow settles under the normal commission split and the
// listing is taken off the market. Operator-only.
func (s *Service) ResolveDispute(ctx context.Context, callerID string, orderID uint64, refundToBuyer bool) error {
	ctx, span := s.startSpan(ctx, "market.ResolveDispute",
		attribute.Int64("market.order_id", int64(orderID)),
		attribute.Bool("market.refund", refundToBuyer),
	)
	var err error
	defer func() { endSpan(span, err) }()
	defer s.lockOrder(orderID)()

	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	remaining := order.EscrowedAmount
	now := s.clock().UTC()
	updated, err := order.Resolve(refundToBuyer, now)
	if err != nil {
		return err
	}

	if refundToBuyer {
		var payload string
		payload, err = event.MarshalPayload(event.OrderRefundedPayload{
			OrderID: order.ID,
			Amount:  remaining,
		})
		if err != nil {
			return err
		}
		err = s.stores.Orders.ApplyOrderChange(ctx, updated, nil, event.Event{
			Type:        event.TypeOrderResolvedRefund,
			ActorID:     callerID,
			Timestamp:   now,
			PayloadJSON: payload,
		}, s.executeTransfers(order.ID, payout{to: order.BuyerID, amount: remaining}))
		return err
	}

	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	listing, err := s.getListing(ctx, order.ListingID)
	if err != nil {
		return err
	}
	rate := settings.Policy().RateFor(listing.Category)
	platformShare, vendorShare := domain.Split(remaining, rate)

	listing.Available = false
	listing.UpdatedAt = now

	payload, err := event.MarshalPayload(event.OrderSettledPayload{
		OrderID:       order.ID,
		GrossAmount:   remaining,
		PlatformShare: platformShare,
		VendorShare:   vendorShare,
		RatePercent:   rate,
	})
	if err != nil {
		return err
	}
	err = s.stores.Orders.ApplyOrderChange(ctx, updated, &listing, event.Event{
		Type:        event.TypeOrderResolvedSettle,
		ActorID:     callerID,
		Timestamp:   now,
		PayloadJSON: payload,
	}, s.executeTransfers(order.ID,
		payout{to: settings.OperatorID, amount: platformShare},
		payout{to: order.VendorID, amount: vendorShare},
	))
	return err
}

// PayMilestone releases part of a placed order's escrow ahead of delivery.
// The released amount splits under the commission rate in force now; the
// order stays Placed with the remaining balance. Only the order's buyer may
// release a milestone.
func (s *Service) PayMilestone(ctx context.Context, callerID string, orderID uint64, amount int64) error {
	ctx, span := s.startSpan(ctx, "market.PayMilestone",
		attribute.Int64("market.order_id", int64(orderID)),
		attribute.Int64("market.amount", amount),
	)
	var err error
	defer func() { endSpan(span, err) }()
	defer s.lockOrder(orderID)()

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err = requireOrderBuyer(order, callerID); err != nil {
		return err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	listing, err := s.getListing(ctx, order.ListingID)
	if err != nil {
		return err
	}

	now := s.clock().UTC()
	updated, err := order.ApplyMilestone(amount, now)
	if err != nil {
		return err
	}

	rate := settings.Policy().RateFor(listing.Category)
	platformShare, vendorShare := domain.Split(amount, rate)

	payload, err := event.MarshalPayload(event.OrderMilestonePaidPayload{
		OrderID:          order.ID,
		Amount:           amount,
		PlatformShare:    platformShare,
		VendorShare:      vendorShare,
		RatePercent:      rate,
		RemainingBalance: updated.EscrowedAmount,
	})
	if err != nil {
		return err
	}
	err = s.stores.Orders.ApplyOrderChange(ctx, updated, nil, event.Event{
		Type:        event.TypeOrderMilestonePaid,
		ActorID:     callerID,
		Timestamp:   now,
		PayloadJSON: payload,
	}, s.executeTransfers(order.ID,
		payout{to: settings.OperatorID, amount: platformShare},
		payout{to: order.VendorID, amount: vendorShare},
	))
	return err
}

// GetOrder returns one order by id.
func (s *Service) GetOrder(ctx context.Context, orderID uint64) (domain.Order, error) {
	ctx, span := s.startSpan(ctx, "market.GetOrder", attribute.Int64("market.order_id", int64(orderID)))
	var err error
	defer func() { endSpan(span, err) }()

	order, err := s.getOrder(ctx, orderID)
	return order, err
}

// ListOrdersByBuyer pages through a buyer's orders in id order.
func (s *Service) ListOrdersByBuyer(ctx context.Context, buyerID string, pageSize int, pageToken string) (storage.OrderPage, error) {
	ctx, span := s.startSpan(ctx, "market.ListOrdersByBuyer")
	var err error
	defer func() { endSpan(span, err) }()

	pageSize = pagination.ClampPageSize(pageSize, listPageConfig)
	page, err := s.stores.Orders.ListOrdersByBuyer(ctx, buyerID, pageSize, pageToken)
	return page, err
}

// ListEvents reads the journal forward from a sequence number, up to limit
// events. Observers poll with the last sequence they saw.
func (s *Service) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	ctx, span := s.startSpan(ctx, "market.ListEvents")
	var err error
	defer func() { endSpan(span, err) }()

	limit = pagination.ClampPageSize(limit, listPageConfig)
	events, err := s.stores.Events.ListEvents(ctx, afterSeq, limit)
	return events, err
}

// getOrder loads an order, mapping the missing-record case.
func (s *Service) getOrder(ctx context.Context, orderID uint64) (domain.Order, error) {
	order, err := s.stores.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Order{}, apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"order not found",
				map[string]string{"OrderID": strconv.FormatUint(orderID, 10)},
			)
		}
		return domain.Order{}, err
	}
	return order, nil
}

// requireOrderBuyer fails with Unauthorized unless the caller placed the order.
func requireOrderBuyer(order domain.Order, callerID string) error {
	if order.BuyerID != callerID {
		return apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"only the order's buyer may perform this operation",
			map[string]string{"Caller": callerID, "OrderID": strconv.FormatUint(order.ID, 10)},
		)
	}
	return nil
}
