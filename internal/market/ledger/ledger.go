// Package ledger records escrow releases in a SQLite file of its own.
// It is the default fund-movement backend for the market daemon: each
// transfer appends one immutable row. The ledger deliberately lives in a
// separate database file from marketplace state, because transfers run
// while a marketplace transaction is still open and SQLite allows only
// one writer per database.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/amanah-market/amanah/internal/market/ledger/migrations"
	"github.com/amanah-market/amanah/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Entry is one recorded escrow release.
type Entry struct {
	ID              uint64
	OrderID         uint64
	ToParticipantID string
	Amount          int64
	CreatedAt       time.Time
}

// Ledger is an append-only transfer journal backed by SQLite.
type Ledger struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens a ledger database and applies embedded migrations.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping ledger db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run ledger migrations: %w", err)
	}
	return &Ledger{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (l *Ledger) Close() error {
	if l == nil || l.sqlDB == nil {
		return nil
	}
	return l.sqlDB.Close()
}

// WithClock overrides the time source. Intended for tests.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// Transfer appends one release row. It satisfies the engine's fund-movement
// contract: a nil return means the funds are durably recorded as moved.
func (l *Ledger) Transfer(ctx context.Context, orderID uint64, toParticipantID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if strings.TrimSpace(toParticipantID) == "" {
		return fmt.Errorf("transfer recipient is required")
	}
	_, err := l.sqlDB.ExecContext(ctx, `
INSERT INTO transfers (order_id, to_participant_id, amount, created_at_ms)
VALUES (?, ?, ?, ?)`,
		orderID, toParticipantID, amount, l.clock().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

// TransfersByOrder returns every release recorded for an order, oldest first.
func (l *Ledger) TransfersByOrder(ctx context.Context, orderID uint64) ([]Entry, error) {
	rows, err := l.sqlDB.QueryContext(ctx, `
SELECT id, order_id, to_participant_id, amount, created_at_ms
FROM transfers WHERE order_id = ? ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.ToParticipantID, &entry.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return entries, nil
}
