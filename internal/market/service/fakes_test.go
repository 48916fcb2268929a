package service

import (
	"context"
	"sync"
	"time"

	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
)

// fakeStore is an in-memory implementation of every storage contract. It
// mirrors the transactional shape of the sqlite store: a mutation and its
// journal event commit together, and ApplyOrderChange commits nothing when
// the transfer callback fails.
type fakeStore struct {
	mu       sync.Mutex
	roles    map[string]map[domain.Role]bool
	listings map[uint64]domain.Listing
	orders   map[uint64]domain.Order
	settings *storage.Settings
	events   []event.Event

	nextListingID uint64
	nextOrderID   uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:    make(map[string]map[domain.Role]bool),
		listings: make(map[uint64]domain.Listing),
		orders:   make(map[uint64]domain.Order),
	}
}

func (f *fakeStore) appendEventLocked(evt event.Event) {
	evt.Seq = uint64(len(f.events) + 1)
	f.events = append(f.events, evt)
}

func (f *fakeStore) GrantRole(_ context.Context, participantID string, role domain.Role, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles[participantID][role] {
		return storage.ErrAlreadyExists
	}
	if f.roles[participantID] == nil {
		f.roles[participantID] = make(map[domain.Role]bool)
	}
	f.roles[participantID][role] = true
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) RevokeRole(_ context.Context, participantID string, role domain.Role, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.roles[participantID][role] {
		return storage.ErrNotFound
	}
	delete(f.roles[participantID], role)
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) HasRole(_ context.Context, participantID string, role domain.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[participantID][role], nil
}

func (f *fakeStore) CountRole(_ context.Context, role domain.Role) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, held := range f.roles {
		if held[role] {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateListing(_ context.Context, listing domain.Listing, buildEvent func(id uint64) event.Event) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextListingID++
	listing.ID = f.nextListingID
	f.listings[listing.ID] = listing
	f.appendEventLocked(buildEvent(listing.ID))
	return listing.ID, nil
}

func (f *fakeStore) GetListing(_ context.Context, id uint64) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[id]
	if !ok {
		return domain.Listing{}, storage.ErrNotFound
	}
	return listing, nil
}

func (f *fakeStore) UpdateListing(_ context.Context, listing domain.Listing, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[listing.ID]; !ok {
		return storage.ErrNotFound
	}
	f.listings[listing.ID] = listing
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) ListListings(_ context.Context, pageSize int, _ string) (storage.ListingPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := storage.ListingPage{}
	for id := uint64(1); id <= f.nextListingID && len(page.Listings) < pageSize; id++ {
		if listing, ok := f.listings[id]; ok {
			page.Listings = append(page.Listings, listing)
		}
	}
	return page, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order domain.Order, buildEvent func(id uint64) event.Event) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextOrderID++
	order.ID = f.nextOrderID
	f.orders[order.ID] = order
	f.appendEventLocked(buildEvent(order.ID))
	return order.ID, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id uint64) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return domain.Order{}, storage.ErrNotFound
	}
	return order, nil
}

func (f *fakeStore) ApplyOrderChange(ctx context.Context, order domain.Order, listing *domain.Listing, evt event.Event, transfer func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if transfer != nil {
		if err := transfer(ctx); err != nil {
			return err
		}
	}
	f.orders[order.ID] = order
	if listing != nil {
		f.listings[listing.ID] = *listing
	}
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) ListOrdersByBuyer(_ context.Context, buyerID string, pageSize int, _ string) (storage.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := storage.OrderPage{}
	for id := uint64(1); id <= f.nextOrderID && len(page.Orders) < pageSize; id++ {
		if order, ok := f.orders[id]; ok && order.BuyerID == buyerID {
			page.Orders = append(page.Orders, order)
		}
	}
	return page, nil
}

func (f *fakeStore) Bootstrap(_ context.Context, settings storage.Settings, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings != nil {
		return storage.ErrAlreadyExists
	}
	f.settings = &settings
	if f.roles[settings.OperatorID] == nil {
		f.roles[settings.OperatorID] = make(map[domain.Role]bool)
	}
	f.roles[settings.OperatorID][domain.RoleOperator] = true
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) GetSettings(_ context.Context) (storage.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return storage.Settings{}, storage.ErrNotFound
	}
	return *f.settings, nil
}

func (f *fakeStore) UpdateSettings(_ context.Context, settings storage.Settings, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return storage.ErrNotFound
	}
	f.settings = &settings
	f.appendEventLocked(evt)
	return nil
}

func (f *fakeStore) ListEvents(_ context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.Event
	for _, evt := range f.events {
		if evt.Seq > afterSeq {
			out = append(out, evt)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) eventTypes() []event.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]event.Type, len(f.events))
	for i, evt := range f.events {
		types[i] = evt.Type
	}
	return types
}

var (
	_ storage.RoleStore     = (*fakeStore)(nil)
	_ storage.ListingStore  = (*fakeStore)(nil)
	_ storage.OrderStore    = (*fakeStore)(nil)
	_ storage.SettingsStore = (*fakeStore)(nil)
	_ storage.EventStore    = (*fakeStore)(nil)
)

// transferCall is one recorded escrow transfer.
type transferCall struct {
	orderID uint64
	to      string
	amount  int64
}

// transferRecorder records transfers and can be made to fail.
type transferRecorder struct {
	mu    sync.Mutex
	calls []transferCall
	fail  error
}

func (r *transferRecorder) Transfer(_ context.Context, orderID uint64, to string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.calls = append(r.calls, transferCall{orderID: orderID, to: to, amount: amount})
	return nil
}

func (r *transferRecorder) recorded() []transferCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transferCall(nil), r.calls...)
}

// fakeClock is a movable fixed time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testHarness bundles a service wired to fakes.
type testHarness struct {
	svc      *Service
	store    *fakeStore
	transfer *transferRecorder
	clock    *fakeClock
}

func newTestHarness() *testHarness {
	store := newFakeStore()
	transfer := &transferRecorder{}
	clock := newFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(Stores{
		Roles:    store,
		Listings: store,
		Orders:   store,
		Settings: store,
		Events:   store,
	}, transfer).WithClock(clock.Now)
	return &testHarness{svc: svc, store: store, transfer: transfer, clock: clock}
}
