package ledger

import "time"

// Side is the trade direction of a record.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Status is the lifecycle state of a trade record. REQUESTED and PENDING are
// transient; everything else is terminal.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusFailed    Status = "FAILED"
	StatusBlocked   Status = "BLOCKED"
	StatusPaused    Status = "PAUSED"
)

// Mode marks whether a record came from paper simulation or a live broker.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeLive  Mode = "LIVE"
)

// Record is one append-only ledger entry. Rows are never rewritten after
// insert; the only later mutation is attaching settlement fields (commission
// and P&L) discovered after a fill.
type Record struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	TradeID    string    `gorm:"column:trade_id;uniqueIndex;size:64"`
	Symbol     string    `gorm:"index;size:32"`
	Side       Side      `gorm:"size:8"`
	Quantity   int       `gorm:""`
	Price      float64   `gorm:""`
	StopLoss   float64   `gorm:"column:stop_loss"`
	TakeProfit float64   `gorm:"column:take_profit"`
	Status     Status    `gorm:"index;size:16"`
	Mode       Mode      `gorm:"size:8"`
	Commission *float64  `gorm:""`
	GrossPnL   *float64  `gorm:"column:gross_pnl"`
	NetPnL     *float64  `gorm:"column:net_pnl"`
	OrderID    string    `gorm:"column:order_id;size:64"`
	Error      string    `gorm:"size:512"`
	Timestamp  time.Time `gorm:"index"`
}

func (Record) TableName() string { return "trade_records" }

// Terminal reports whether the record reached a final status.
func (r *Record) Terminal() bool {
	switch r.Status {
	case StatusRequested, StatusPending:
		return false
	default:
		return true
	}
}

// Settlement carries the fields attached to a filled record after the fact.
type Settlement struct {
	Commission float64
	GrossPnL   *float64
	NetPnL     *float64
}
