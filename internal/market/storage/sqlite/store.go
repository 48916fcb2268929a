// Package sqlite provides a SQLite-backed marketplace storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
	"github.com/amanah-market/amanah/internal/market/storage/sqlite/migrations"
	sqlitemigrate "github.com/amanah-market/amanah/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists marketplace state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite marketplace store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// withTx runs fn inside one transaction and commits or rolls back together.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// appendEvent inserts one journal row inside an open transaction.
func appendEvent(ctx context.Context, tx *sql.Tx, evt event.Event) error {
	payload := evt.PayloadJSON
	if strings.TrimSpace(payload) == "" {
		payload = "{}"
	}
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO journal (type, actor_id, timestamp, payload_json) VALUES (?, ?, ?, ?)`,
		string(evt.Type),
		evt.ActorID,
		toMillis(evt.Timestamp),
		payload,
	)
	if err != nil {
		return fmt.Errorf("append journal event: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// GrantRole adds one (participant, role) pair and the journal event atomically.
func (s *Store) GrantRole(ctx context.Context, participantID string, role domain.Role, evt event.Event) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return fmt.Errorf("participant id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO roles (participant_id, role, granted_at) VALUES (?, ?, ?)`,
			participantID,
			string(role),
			toMillis(evt.Timestamp),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("grant role: %w", err)
		}
		return appendEvent(ctx, tx, evt)
	})
}

// RevokeRole removes one (participant, role) pair and the journal event atomically.
func (s *Store) RevokeRole(ctx context.Context, participantID string, role domain.Role, evt event.Event) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return fmt.Errorf("participant id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`DELETE FROM roles WHERE participant_id = ? AND role = ?`,
			participantID,
			string(role),
		)
		if err != nil {
			return fmt.Errorf("revoke role: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("revoke role rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		return appendEvent(ctx, tx, evt)
	})
}

// HasRole reports whether the participant holds the role.
func (s *Store) HasRole(ctx context.Context, participantID string, role domain.Role) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM roles WHERE participant_id = ? AND role = ?`,
		strings.TrimSpace(participantID),
		string(role),
	)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("has role: %w", err)
	}
	return true, nil
}

// CountRole returns the number of participants holding the role.
func (s *Store) CountRole(ctx context.Context, role domain.Role) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE role = ?`, string(role))
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count role: %w", err)
	}
	return count, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// CreateListing assigns the next sequential listing id and persists the
// record together with the journal event.
func (s *Store) CreateListing(ctx context.Context, listing domain.Listing, buildEvent func(id uint64) event.Event) (uint64, error) {
	if strings.TrimSpace(listing.OwnerID) == "" {
		return 0, fmt.Errorf("listing owner id is required")
	}
	if strings.TrimSpace(listing.Name) == "" {
		return 0, fmt.Errorf("listing name is required")
	}
	var assignedID uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO listings (
			   owner_id, name, description, price, discount_percent,
			   category, is_certifiable, certified, available,
			   created_at, updated_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			listing.OwnerID,
			listing.Name,
			listing.Description,
			listing.Price,
			listing.DiscountPercent,
			listing.Category,
			boolToInt(listing.IsCertifiable),
			boolToInt(listing.Certified),
			boolToInt(listing.Available),
			toMillis(listing.CreatedAt),
			toMillis(listing.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("create listing id: %w", err)
		}
		assignedID = uint64(lastID)
		return appendEvent(ctx, tx, buildEvent(assignedID))
	})
	if err != nil {
		return 0, err
	}
	return assignedID, nil
}

func scanListing(scan func(dest ...any) error) (domain.Listing, error) {
	var listing domain.Listing
	var isCertifiable, certified, available int
	var createdAt, updatedAt int64
	err := scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Name,
		&listing.Description,
		&listing.Price,
		&listing.DiscountPercent,
		&listing.Category,
		&isCertifiable,
		&certified,
		&available,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	listing.IsCertifiable = isCertifiable != 0
	listing.Certified = certified != 0
	listing.Available = available != 0
	listing.CreatedAt = fromMillis(createdAt)
	listing.UpdatedAt = fromMillis(updatedAt)
	return listing, nil
}

const listingColumns = `id, owner_id, name, description, price, discount_percent,
		        category, is_certifiable, certified, available, created_at, updated_at`

// GetListing returns one listing by id.
func (s *Store) GetListing(ctx context.Context, id uint64) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Listing{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`,
		id,
	)
	listing, err := scanListing(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Listing{}, storage.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// UpdateListing replaces a listing record together with the journal event.
func (s *Store) UpdateListing(ctx context.Context, listing domain.Listing, evt event.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateListingTx(ctx, tx, listing); err != nil {
			return err
		}
		return appendEvent(ctx, tx, evt)
	})
}

func updateListingTx(ctx context.Context, tx *sql.Tx, listing domain.Listing) error {
	result, err := tx.ExecContext(
		ctx,
		`UPDATE listings SET
		   name = ?, description = ?, price = ?, discount_percent = ?,
		   category = ?, is_certifiable = ?, certified = ?, available = ?,
		   updated_at = ?
		 WHERE id = ?`,
		listing.Name,
		listing.Description,
		listing.Price,
		listing.DiscountPercent,
		listing.Category,
		boolToInt(listing.IsCertifiable),
		boolToInt(listing.Certified),
		boolToInt(listing.Available),
		toMillis(listing.UpdatedAt),
		listing.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update listing rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListListings returns one page of listings ordered by id.
func (s *Store) ListListings(ctx context.Context, pageSize int, pageToken string) (storage.ListingPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListingPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListingPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.ListingPage{}, fmt.Errorf("page size must be greater than zero")
	}
	afterID, err := parsePageToken(pageToken)
	if err != nil {
		return storage.ListingPage{}, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id > ? ORDER BY id ASC LIMIT ?`,
		afterID,
		pageSize+1,
	)
	if err != nil {
		return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	page := storage.ListingPage{Listings: make([]domain.Listing, 0, pageSize)}
	for rows.Next() {
		listing, err := scanListing(rows.Scan)
		if err != nil {
			return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
		}
		page.Listings = append(page.Listings, listing)
	}
	if err := rows.Err(); err != nil {
		return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
	}
	if len(page.Listings) > pageSize {
		page.NextPageToken = strconv.FormatUint(page.Listings[pageSize-1].ID, 10)
		page.Listings = page.Listings[:pageSize]
	}
	return page, nil
}

func parsePageToken(pageToken string) (uint64, error) {
	pageToken = strings.TrimSpace(pageToken)
	if pageToken == "" {
		return 0, nil
	}
	afterID, err := strconv.ParseUint(pageToken, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid page token %q", pageToken)
	}
	return afterID, nil
}

// CreateOrder assigns the next sequential order id and persists the record
// together with the journal event.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order, buildEvent func(id uint64) event.Event) (uint64, error) {
	if strings.TrimSpace(order.BuyerID) == "" {
		return 0, fmt.Errorf("order buyer id is required")
	}
	var assignedID uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO orders (
			   buyer_id, vendor_id, listing_id, escrowed_amount,
			   created_at, deadline, status, updated_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			order.BuyerID,
			order.VendorID,
			order.ListingID,
			order.EscrowedAmount,
			toMillis(order.CreatedAt),
			toMillis(order.Deadline),
			order.Status.String(),
			toMillis(order.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("create order id: %w", err)
		}
		assignedID = uint64(lastID)
		return appendEvent(ctx, tx, buildEvent(assignedID))
	})
	if err != nil {
		return 0, err
	}
	return assignedID, nil
}

const orderColumns = `id, buyer_id, vendor_id, listing_id, escrowed_amount,
		        created_at, deadline, status, updated_at`

func scanOrder(scan func(dest ...any) error) (domain.Order, error) {
	var order domain.Order
	var createdAt, deadline, updatedAt int64
	var status string
	err := scan(
		&order.ID,
		&order.BuyerID,
		&order.VendorID,
		&order.ListingID,
		&order.EscrowedAmount,
		&createdAt,
		&deadline,
		&status,
		&updatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.CreatedAt = fromMillis(createdAt)
	order.Deadline = fromMillis(deadline)
	order.Status = domain.ParseOrderStatus(status)
	order.UpdatedAt = fromMillis(updatedAt)
	return order, nil
}

// GetOrder returns one order by id.
func (s *Store) GetOrder(ctx context.Context, id uint64) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Order{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`,
		id,
	)
	order, err := scanOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, storage.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ApplyOrderChange persists a mutated order, an optional listing update, and
// the journal event in one transaction. The transfer callback runs after the
// state writes; a transfer failure rolls every write back.
func (s *Store) ApplyOrderChange(ctx context.Context, order domain.Order, listing *domain.Listing, evt event.Event, transfer func(ctx context.Context) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE orders SET escrowed_amount = ?, status = ?, updated_at = ? WHERE id = ?`,
			order.EscrowedAmount,
			order.Status.String(),
			toMillis(order.UpdatedAt),
			order.ID,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update order rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		if listing != nil {
			if err := updateListingTx(ctx, tx, *listing); err != nil {
				return err
			}
		}
		if err := appendEvent(ctx, tx, evt); err != nil {
			return err
		}
		if transfer != nil {
			// State is written first; a failing transfer aborts the
			// transaction so the mutation and the event never commit.
			if err := transfer(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListOrdersByBuyer returns one page of a buyer's orders ordered by id.
func (s *Store) ListOrdersByBuyer(ctx context.Context, buyerID string, pageSize int, pageToken string) (storage.OrderPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.OrderPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.OrderPage{}, fmt.Errorf("storage is not configured")
	}
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return storage.OrderPage{}, fmt.Errorf("buyer id is required")
	}
	if pageSize <= 0 {
		return storage.OrderPage{}, fmt.Errorf("page size must be greater than zero")
	}
	afterID, err := parsePageToken(pageToken)
	if err != nil {
		return storage.OrderPage{}, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id = ? AND id > ? ORDER BY id ASC LIMIT ?`,
		buyerID,
		afterID,
		pageSize+1,
	)
	if err != nil {
		return storage.OrderPage{}, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	page := storage.OrderPage{Orders: make([]domain.Order, 0, pageSize)}
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return storage.OrderPage{}, fmt.Errorf("list orders: %w", err)
		}
		page.Orders = append(page.Orders, order)
	}
	if err := rows.Err(); err != nil {
		return storage.OrderPage{}, fmt.Errorf("list orders: %w", err)
	}
	if len(page.Orders) > pageSize {
		page.NextPageToken = strconv.FormatUint(page.Orders[pageSize-1].ID, 10)
		page.Orders = page.Orders[:pageSize]
	}
	return page, nil
}

// Bootstrap seeds the settings row, the operator role, and the genesis event
// in one transaction.
func (s *Store) Bootstrap(ctx context.Context, settings storage.Settings, evt event.Event) error {
	operatorID := strings.TrimSpace(settings.OperatorID)
	if operatorID == "" {
		return fmt.Errorf("operator id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO settings (id, operator_id, default_commission_percent, delivery_window_ms)
			 VALUES (1, ?, ?, ?)`,
			operatorID,
			settings.DefaultCommissionPercent,
			settings.DeliveryWindow.Milliseconds(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("bootstrap settings: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO roles (participant_id, role, granted_at) VALUES (?, ?, ?)`,
			operatorID,
			string(domain.RoleOperator),
			toMillis(evt.Timestamp),
		); err != nil {
			return fmt.Errorf("bootstrap operator role: %w", err)
		}
		if err := replaceOverridesTx(ctx, tx, settings.CategoryCommissionPercents); err != nil {
			return err
		}
		return appendEvent(ctx, tx, evt)
	})
}

func replaceOverridesTx(ctx context.Context, tx *sql.Tx, overrides map[string]int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM commission_overrides`); err != nil {
		return fmt.Errorf("clear commission overrides: %w", err)
	}
	for category, percent := range overrides {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO commission_overrides (category, percent) VALUES (?, ?)`,
			category,
			percent,
		); err != nil {
			return fmt.Errorf("write commission override: %w", err)
		}
	}
	return nil
}

// GetSettings returns the marketplace configuration scalars.
func (s *Store) GetSettings(ctx context.Context) (storage.Settings, error) {
	if err := ctx.Err(); err != nil {
		return storage.Settings{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Settings{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT operator_id, default_commission_percent, delivery_window_ms FROM settings WHERE id = 1`,
	)
	var settings storage.Settings
	var windowMillis int64
	if err := row.Scan(&settings.OperatorID, &settings.DefaultCommissionPercent, &windowMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Settings{}, storage.ErrNotFound
		}
		return storage.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	settings.DeliveryWindow = time.Duration(windowMillis) * time.Millisecond

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT category, percent FROM commission_overrides`)
	if err != nil {
		return storage.Settings{}, fmt.Errorf("get commission overrides: %w", err)
	}
	defer rows.Close()
	settings.CategoryCommissionPercents = make(map[string]int64)
	for rows.Next() {
		var category string
		var percent int64
		if err := rows.Scan(&category, &percent); err != nil {
			return storage.Settings{}, fmt.Errorf("get commission overrides: %w", err)
		}
		settings.CategoryCommissionPercents[category] = percent
	}
	if err := rows.Err(); err != nil {
		return storage.Settings{}, fmt.Errorf("get commission overrides: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the settings row together with the journal event.
func (s *Store) UpdateSettings(ctx context.Context, settings storage.Settings, evt event.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE settings SET operator_id = ?, default_commission_percent = ?, delivery_window_ms = ? WHERE id = 1`,
			strings.TrimSpace(settings.OperatorID),
			settings.DefaultCommissionPercent,
			settings.DeliveryWindow.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update settings rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		if err := replaceOverridesTx(ctx, tx, settings.CategoryCommissionPercents); err != nil {
			return err
		}
		return appendEvent(ctx, tx, evt)
	})
}

// ListEvents returns up to limit journal events with seq > afterSeq in order.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, type, actor_id, timestamp, payload_json
		   FROM journal
		  WHERE seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		afterSeq,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var evt event.Event
		var evtType string
		var timestamp int64
		if err := rows.Scan(&evt.Seq, &evtType, &evt.ActorID, &timestamp, &evt.PayloadJSON); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		evt.Type = event.Type(evtType)
		evt.Timestamp = fromMillis(timestamp)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

var (
	_ storage.RoleStore     = (*Store)(nil)
	_ storage.ListingStore  = (*Store)(nil)
	_ storage.OrderStore    = (*Store)(nil)
	_ storage.SettingsStore = (*Store)(nil)
	_ storage.EventStore    = (*Store)(nil)
)
