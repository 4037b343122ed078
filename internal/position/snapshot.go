package position

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SnapshotStore persists the open-position book across restarts so a crash
// never orphans protective levels.
type SnapshotStore struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("portfolio path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS open_positions (
			symbol       TEXT PRIMARY KEY,
			quantity     INTEGER NOT NULL,
			avg_price    REAL NOT NULL,
			stop_loss    REAL NOT NULL,
			take_profit  REAL NOT NULL,
			trail_active INTEGER NOT NULL DEFAULT 0,
			high_water   REAL NOT NULL DEFAULT 0,
			trail_stop   REAL NOT NULL DEFAULT 0,
			opened_at    TIMESTAMP NOT NULL
		)`)
	return err
}

// Save replaces the stored snapshot with the current book contents.
func (s *SnapshotStore) Save(ctx context.Context, positions []Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("snapshot store closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM open_positions`); err != nil {
		return err
	}
	for _, p := range positions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO open_positions(symbol, quantity, avg_price, stop_loss, take_profit,
				trail_active, high_water, trail_stop, opened_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Symbol, p.Quantity, p.AvgPrice, p.StopLoss, p.TakeProfit,
			boolToInt(p.Trailing.Active), p.Trailing.HighWater, p.Trailing.Stop, p.OpenedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the persisted snapshot.
func (s *SnapshotStore) Load(ctx context.Context) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("snapshot store closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, quantity, avg_price, stop_loss, take_profit,
			trail_active, high_water, trail_stop, opened_at
		FROM open_positions ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		var active int
		var openedAt time.Time
		if err := rows.Scan(&p.Symbol, &p.Quantity, &p.AvgPrice, &p.StopLoss, &p.TakeProfit,
			&active, &p.Trailing.HighWater, &p.Trailing.Stop, &openedAt); err != nil {
			return nil, err
		}
		p.Trailing.Active = active != 0
		p.OpenedAt = openedAt
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
