// Package event defines the append-only marketplace journal. Every
// state-changing operation records exactly one event in the same
// transaction as its state mutation, so an event exists if and only if
// the operation committed. The journal is never read back by the engine;
// it exists for external observers.
package event

import "time"

// Type identifies the type of a journal event.
type Type string

// Role registry events.
const (
	// TypeRoleGranted records a role grant.
	TypeRoleGranted Type = "role.granted"
	// TypeRoleRevoked records a role revocation.
	TypeRoleRevoked Type = "role.revoked"
)

// Catalog events.
const (
	// TypeListingCreated records the creation of a listing.
	TypeListingCreated Type = "listing.created"
	// TypeListingCertified records a certification flag change.
	TypeListingCertified Type = "listing.certified"
)

// Order lifecycle events. Events record facts that have occurred, not
// commands.
const (
	// TypeOrderPlaced records a buyer escrowing payment against a listing.
	TypeOrderPlaced Type = "order.placed"
	// TypeOrderFulfilled records a full settlement to vendor and platform.
	TypeOrderFulfilled Type = "order.fulfilled"
	// TypeOrderDisputed records a buyer raising a dispute.
	TypeOrderDisputed Type = "order.disputed"
	// TypeOrderResolvedRefund records an operator refunding the buyer.
	TypeOrderResolvedRefund Type = "order.resolved_refund"
	// TypeOrderResolvedSettle records an operator settling a disputed sale.
	TypeOrderResolvedSettle Type = "order.resolved_settle"
	// TypeOrderMilestonePaid records a partial escrow release.
	TypeOrderMilestonePaid Type = "order.milestone_paid"
)

// Configuration events.
const (
	// TypeConfigChanged records an operator configuration change.
	TypeConfigChanged Type = "config.changed"
)

// Event is one immutable record in the marketplace journal.
type Event struct {
	// Seq is the global journal sequence number (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Type identifies what happened.
	Type Type
	// ActorID is the authenticated caller that triggered the event.
	ActorID string
	// Timestamp is when the event occurred, from the injected clock.
	Timestamp time.Time
	// PayloadJSON carries type-specific ids and amounts as a JSON object.
	PayloadJSON string
}
