package service

import (
	"context"
	"strconv"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
)

// SetCommissionRate updates the global default commission percentage.
// Operator-only; rate bounded 0-100.
func (s *Service) SetCommissionRate(ctx context.Context, callerID string, percent int64) error {
	ctx, span := s.startSpan(ctx, "market.SetCommissionRate")
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	if err = domain.ValidateRate(percent); err != nil {
		return err
	}
	err = s.updateSettings(ctx, callerID, func(settings *storage.Settings) event.ConfigChangedPayload {
		settings.DefaultCommissionPercent = percent
		return event.ConfigChangedPayload{
			Field: "default_commission_percent",
			Value: strconv.FormatInt(percent, 10),
		}
	})
	return err
}

// SetCategoryRate sets or replaces a per-category commission override.
// Operator-only; rate bounded 0-100.
func (s *Service) SetCategoryRate(ctx context.Context, callerID string, category string, percent int64) error {
	ctx, span := s.startSpan(ctx, "market.SetCategoryRate")
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	if err = domain.ValidateRate(percent); err != nil {
		return err
	}
	err = s.updateSettings(ctx, callerID, func(settings *storage.Settings) event.ConfigChangedPayload {
		if settings.CategoryCommissionPercents == nil {
			settings.CategoryCommissionPercents = make(map[string]int64)
		}
		settings.CategoryCommissionPercents[category] = percent
		return event.ConfigChangedPayload{
			Field:    "category_commission_percent",
			Category: category,
			Value:    strconv.FormatInt(percent, 10),
		}
	})
	return err
}

// SetDeliveryWindow updates the delivery deadline window applied to new
// orders. Operator-only; existing order deadlines are unaffected.
func (s *Service) SetDeliveryWindow(ctx context.Context, callerID string, window time.Duration) error {
	ctx, span := s.startSpan(ctx, "market.SetDeliveryWindow")
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	if window <= 0 {
		err = apperrors.New(apperrors.CodeInvalidRate, "delivery window must be positive")
		return err
	}
	err = s.updateSettings(ctx, callerID, func(settings *storage.Settings) event.ConfigChangedPayload {
		settings.DeliveryWindow = window
		return event.ConfigChangedPayload{
			Field: "delivery_window",
			Value: window.String(),
		}
	})
	return err
}

func (s *Service) updateSettings(ctx context.Context, callerID string, mutate func(*storage.Settings) event.ConfigChangedPayload) error {
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	changed := mutate(&settings)
	payload, err := event.MarshalPayload(changed)
	if err != nil {
		return err
	}
	return s.stores.Settings.UpdateSettings(ctx, settings, event.Event{
		Type:        event.TypeConfigChanged,
		ActorID:     callerID,
		Timestamp:   s.clock().UTC(),
		PayloadJSON: payload,
	})
}
