// Package storage defines persistence contracts for marketplace state.
//
// Mutating methods accept the journal event alongside the state change and
// must persist both in one transaction: an event is observable if and only
// if the mutation committed.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Settings holds the durable marketplace configuration scalars.
type Settings struct {
	OperatorID               string
	DefaultCommissionPercent int64
	// CategoryCommissionPercents overrides the default per listing category.
	CategoryCommissionPercents map[string]int64
	DeliveryWindow             time.Duration
}

// Policy builds the commission policy view of the settings.
func (s Settings) Policy() domain.CommissionPolicy {
	return domain.CommissionPolicy{
		DefaultPercent:   s.DefaultCommissionPercent,
		CategoryPercents: s.CategoryCommissionPercents,
	}
}

// ListingPage stores one page of listing records.
type ListingPage struct {
	Listings      []domain.Listing
	NextPageToken string
}

// OrderPage stores one page of order records.
type OrderPage struct {
	Orders        []domain.Order
	NextPageToken string
}

// RoleStore persists role membership.
type RoleStore interface {
	// GrantRole adds (participant, role) and appends evt atomically.
	// Returns ErrAlreadyExists when the participant already holds the role.
	GrantRole(ctx context.Context, participantID string, role domain.Role, evt event.Event) error
	// RevokeRole removes (participant, role) and appends evt atomically.
	// Returns ErrNotFound when the participant does not hold the role.
	RevokeRole(ctx context.Context, participantID string, role domain.Role, evt event.Event) error
	// HasRole reports role membership. Pure query, no failure for absence.
	HasRole(ctx context.Context, participantID string, role domain.Role) (bool, error)
	// CountRole returns the number of participants holding a role.
	CountRole(ctx context.Context, role domain.Role) (int, error)
}

// ListingStore persists catalog listings with sequential ids.
type ListingStore interface {
	// CreateListing assigns the next sequential listing id, persists the
	// record, and appends the built event atomically. The event builder
	// receives the assigned id. Returns the assigned id.
	CreateListing(ctx context.Context, listing domain.Listing, buildEvent func(id uint64) event.Event) (uint64, error)
	GetListing(ctx context.Context, id uint64) (domain.Listing, error)
	// UpdateListing replaces a listing record and appends evt atomically.
	UpdateListing(ctx context.Context, listing domain.Listing, evt event.Event) error
	ListListings(ctx context.Context, pageSize int, pageToken string) (ListingPage, error)
}

// OrderStore persists order/escrow state.
type OrderStore interface {
	// CreateOrder assigns the next sequential order id, persists the
	// record, and appends the built event atomically. The event builder
	// receives the assigned id. Returns the assigned id.
	CreateOrder(ctx context.Context, order domain.Order, buildEvent func(id uint64) event.Event) (uint64, error)
	GetOrder(ctx context.Context, id uint64) (domain.Order, error)
	// ApplyOrderChange persists a mutated order, an optional listing update
	// (availability flips on terminal settlement), and the journal event in
	// one transaction. The transfer callback runs after the state writes
	// inside the same transaction scope; if it fails, every write rolls
	// back and the error is returned unchanged.
	ApplyOrderChange(ctx context.Context, order domain.Order, listing *domain.Listing, evt event.Event, transfer func(ctx context.Context) error) error
	ListOrdersByBuyer(ctx context.Context, buyerID string, pageSize int, pageToken string) (OrderPage, error)
}

// SettingsStore persists the marketplace configuration scalars.
type SettingsStore interface {
	// Bootstrap seeds the settings row, the operator role grant, and the
	// genesis event in one transaction. Returns ErrAlreadyExists when the
	// marketplace was already bootstrapped.
	Bootstrap(ctx context.Context, settings Settings, evt event.Event) error
	GetSettings(ctx context.Context) (Settings, error)
	// UpdateSettings replaces the settings row and appends evt atomically.
	UpdateSettings(ctx context.Context, settings Settings, evt event.Event) error
}

// EventStore reads the append-only journal.
type EventStore interface {
	// ListEvents returns up to limit events with Seq > afterSeq in order.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error)
}
