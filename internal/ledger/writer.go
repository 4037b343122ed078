package ledger

import (
	"context"

	"tradebot/internal/logger"
)

// Writer fronts the primary store with the backup sink. A failed primary
// append is retried once against the backup; if both fail the loss is logged
// as critical and the cycle continues.
type Writer struct {
	store  *Store
	backup *Backup
}

func NewWriter(store *Store, backup *Backup) *Writer {
	return &Writer{store: store, backup: backup}
}

// Append never returns an error to the caller: ledger persistence must not
// abort a trading cycle. Failures are surfaced through logs only.
func (w *Writer) Append(ctx context.Context, rec *Record) {
	if err := w.store.Append(ctx, rec); err == nil {
		return
	} else {
		logger.Warnf("ledger append failed for %s, falling back to backup: %v", rec.TradeID, err)
	}
	if w.backup == nil {
		logger.Errorf("CRITICAL: trade record %s lost, no backup sink configured", rec.TradeID)
		return
	}
	if err := w.backup.Append(rec); err != nil {
		logger.Errorf("CRITICAL: trade record %s lost, backup sink failed: %v", rec.TradeID, err)
	}
}

// AttachSettlement updates settlement columns on the primary store.
func (w *Writer) AttachSettlement(ctx context.Context, tradeID string, st Settlement) {
	if err := w.store.AttachSettlement(ctx, tradeID, st); err != nil {
		logger.Warnf("settlement update failed for %s: %v", tradeID, err)
	}
}
