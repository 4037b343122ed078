package market

import "context"

// HistorySource supplies daily candle history for signal providers. How the
// candles are ingested and stored is outside this module; the bot only needs
// enough recent history to compute indicator series.
type HistorySource interface {
	History(ctx context.Context, symbol string, days int) ([]Candle, error)
}
