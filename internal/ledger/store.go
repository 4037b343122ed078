package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrStopScan is returned by a scan callback to stop the backward walk early
// without reporting an error.
var ErrStopScan = errors.New("ledger: stop scan")

// Store is the append-only trade ledger. Records are inserted once and never
// rewritten; AttachSettlement is the single sanctioned mutation and only
// touches the settlement columns.
type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ledger path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

// Append inserts a new record. It is insert-only: a duplicate trade ID is an
// error, never an update.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}
	if rec.TradeID == "" {
		return errors.New("record needs a trade id")
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// AttachSettlement fills in commission/P&L on an existing record. Only the
// settlement columns are touched.
func (s *Store) AttachSettlement(ctx context.Context, tradeID string, st Settlement) error {
	updates := map[string]interface{}{"commission": st.Commission}
	if st.GrossPnL != nil {
		updates["gross_pnl"] = *st.GrossPnL
	}
	if st.NetPnL != nil {
		updates["net_pnl"] = *st.NetPnL
	}
	res := s.db.WithContext(ctx).Model(&Record{}).Where("trade_id = ?", tradeID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no ledger record for trade %s", tradeID)
	}
	return nil
}

// ScanBackward walks a symbol's records newest-first, calling fn for each.
// fn returns ErrStopScan to end the walk early.
func (s *Store) ScanBackward(ctx context.Context, symbol string, fn func(*Record) error) error {
	var recs []Record
	if err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC, id DESC").
		Find(&recs).Error; err != nil {
		return err
	}
	for i := range recs {
		if err := fn(&recs[i]); err != nil {
			if errors.Is(err, ErrStopScan) {
				return nil
			}
			return err
		}
	}
	return nil
}

// FilledBuys returns FILLED BUY records for a symbol, oldest first, for
// weighted-average cost basis computation.
func (s *Store) FilledBuys(ctx context.Context, symbol string) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND side = ? AND status = ?", symbol, SideBuy, StatusFilled).
		Order("timestamp ASC, id ASC").
		Find(&recs).Error
	return recs, err
}

// RecentOutcomes returns the latest settled SELL records across all symbols,
// newest first, for the adaptive feedback loop.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("side = ? AND status = ? AND net_pnl IS NOT NULL", SideSell, StatusFilled).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// DayRecords returns all records stamped inside [dayStart, dayEnd), for the
// daily report.
func (s *Store) DayRecords(ctx context.Context, dayStart, dayEnd time.Time) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", dayStart, dayEnd).
		Order("timestamp ASC, id ASC").
		Find(&recs).Error
	return recs, err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
