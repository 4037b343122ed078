package gateway

import (
	"context"
	"time"
)

// OrderRequest is a broker order submission.
type OrderRequest struct {
	Symbol   string
	Side     string // "BUY" | "SELL"
	Quantity int
	Price    float64
}

// OrderResult is the broker's answer. A fill is only trusted when OrderID is
// non-empty; anything else is treated as a rejection with Reason preserved.
type OrderResult struct {
	OrderID string
	Reason  string
}

// Operation is one historical broker operation, used for live-mode cost
// basis reconstruction and portfolio resync.
type Operation struct {
	OrderID   string
	Symbol    string
	Side      string
	Quantity  int
	Price     float64
	Timestamp time.Time
}

// Holding is one position reported by the broker account.
type Holding struct {
	Symbol   string
	Quantity int
	AvgPrice float64
}

// Gateway is the boundary to the brokerage. Implementations must honor the
// context deadline on every call; the bot never waits on a broker longer than
// the configured timeout.
type Gateway interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	AvailableBalance(ctx context.Context) (float64, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	OperationHistory(ctx context.Context, symbol string) ([]Operation, error)
	Holdings(ctx context.Context) ([]Holding, error)
	Tradeable(ctx context.Context, symbol string) (bool, error)
}
