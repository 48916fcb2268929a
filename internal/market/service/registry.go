package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
	"go.opentelemetry.io/otel/attribute"
)

// BootstrapInput seeds the marketplace at genesis.
type BootstrapInput struct {
	OperatorID               string
	DefaultCommissionPercent int64
	DeliveryWindow           time.Duration
}

// DefaultDeliveryWindow is the delivery deadline applied when bootstrap
// does not configure one.
const DefaultDeliveryWindow = 7 * 24 * time.Hour

// Bootstrap performs one-time genesis: it grants the Operator role and
// persists the configuration scalars. A second bootstrap fails.
func (s *Service) Bootstrap(ctx context.Context, input BootstrapInput) error {
	ctx, span := s.startSpan(ctx, "market.Bootstrap")
	var err error
	defer func() { endSpan(span, err) }()

	operatorID := strings.TrimSpace(input.OperatorID)
	if operatorID == "" {
		err = apperrors.New(apperrors.CodeUnauthorized, "operator id is required")
		return err
	}
	if err = domain.ValidateRate(input.DefaultCommissionPercent); err != nil {
		return err
	}
	window := input.DeliveryWindow
	if window <= 0 {
		window = DefaultDeliveryWindow
	}

	now := s.clock().UTC()
	payload, err := event.MarshalPayload(event.RoleGrantedPayload{
		TargetID: operatorID,
		Role:     string(domain.RoleOperator),
	})
	if err != nil {
		return err
	}
	err = s.stores.Settings.Bootstrap(ctx, storage.Settings{
		OperatorID:               operatorID,
		DefaultCommissionPercent: input.DefaultCommissionPercent,
		DeliveryWindow:           window,
	}, event.Event{
		Type:        event.TypeRoleGranted,
		ActorID:     operatorID,
		Timestamp:   now,
		PayloadJSON: payload,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		err = apperrors.New(apperrors.CodeAlreadyGranted, "marketplace is already bootstrapped")
		return err
	}
	if err != nil {
		return err
	}
	log.Printf("marketplace bootstrapped operator=%s default_rate=%d", operatorID, input.DefaultCommissionPercent)
	return nil
}

// GrantRole adds a role to a target participant. Only the Operator grants
// roles; granting a role the target already holds fails.
func (s *Service) GrantRole(ctx context.Context, callerID string, role domain.Role, targetID string) error {
	ctx, span := s.startSpan(ctx, "market.GrantRole", attribute.String("market.role", string(role)))
	var err error
	defer func() { endSpan(span, err) }()

	if !role.Valid() {
		err = apperrors.New(apperrors.CodeNotFound, "unknown role")
		return err
	}
	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		err = apperrors.New(apperrors.CodeNotFound, "target participant id is required")
		return err
	}

	err = s.grant(ctx, callerID, role, targetID, false)
	return err
}

// RegisterSelf lets any caller enter the marketplace as a Vendor or Buyer.
// Curated roles (Operator, Certifier) cannot be self-granted.
func (s *Service) RegisterSelf(ctx context.Context, callerID string, role domain.Role) error {
	ctx, span := s.startSpan(ctx, "market.RegisterSelf", attribute.String("market.role", string(role)))
	var err error
	defer func() { endSpan(span, err) }()

	if !role.SelfRegisterable() {
		err = apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"role cannot be self-registered",
			map[string]string{"Role": string(role)},
		)
		return err
	}
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		err = apperrors.New(apperrors.CodeUnauthorized, "caller id is required")
		return err
	}

	err = s.grant(ctx, callerID, role, callerID, true)
	return err
}

func (s *Service) grant(ctx context.Context, actorID string, role domain.Role, targetID string, selfRegistered bool) error {
	payload, err := event.MarshalPayload(event.RoleGrantedPayload{
		TargetID:       targetID,
		Role:           string(role),
		SelfRegistered: selfRegistered,
	})
	if err != nil {
		return err
	}
	err = s.stores.Roles.GrantRole(ctx, targetID, role, event.Event{
		Type:        event.TypeRoleGranted,
		ActorID:     actorID,
		Timestamp:   s.clock().UTC(),
		PayloadJSON: payload,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return apperrors.WithMetadata(
			apperrors.CodeAlreadyGranted,
			"participant already holds the role",
			map[string]string{"Target": targetID, "Role": string(role)},
		)
	}
	return err
}

// RevokeRole removes a role from a target participant. Operator-only.
// The Operator role is never left empty: revoking the last operator fails.
func (s *Service) RevokeRole(ctx context.Context, callerID string, role domain.Role, targetID string) error {
	ctx, span := s.startSpan(ctx, "market.RevokeRole", attribute.String("market.role", string(role)))
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleOperator); err != nil {
		return err
	}
	if role == domain.RoleOperator {
		count, countErr := s.stores.Roles.CountRole(ctx, domain.RoleOperator)
		if countErr != nil {
			err = countErr
			return err
		}
		if count <= 1 {
			err = apperrors.New(apperrors.CodeOperatorEmpty, "cannot revoke the last operator")
			return err
		}
	}

	payload, err := event.MarshalPayload(event.RoleRevokedPayload{
		TargetID: targetID,
		Role:     string(role),
	})
	if err != nil {
		return err
	}
	err = s.stores.Roles.RevokeRole(ctx, targetID, role, event.Event{
		Type:        event.TypeRoleRevoked,
		ActorID:     callerID,
		Timestamp:   s.clock().UTC(),
		PayloadJSON: payload,
	})
	if errors.Is(err, storage.ErrNotFound) {
		err = apperrors.WithMetadata(
			apperrors.CodeNotGranted,
			"participant does not hold the role",
			map[string]string{"Target": targetID, "Role": string(role)},
		)
		return err
	}
	return err
}

// HasRole reports role membership. Pure query, no failure for absence.
func (s *Service) HasRole(ctx context.Context, participantID string, role domain.Role) (bool, error) {
	return s.stores.Roles.HasRole(ctx, participantID, role)
}
