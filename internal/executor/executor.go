package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradebot/internal/gateway"
	"tradebot/internal/ledger"
	"tradebot/internal/logger"
	"tradebot/internal/notifier"
	"tradebot/internal/position"
	"tradebot/internal/risk"
)

// Request is one sized order handed to the executor.
type Request struct {
	Symbol     string
	Side       ledger.Side
	Quantity   int
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// Executor drives an order through its states. Pre-checks run in a fixed
// order and short-circuit: pause flag, tradability, risk caps, then balance.
// Every terminal outcome lands in the ledger, including blocked ones.
type Executor struct {
	paper      bool
	gw         gateway.Gateway
	writer     *ledger.Writer
	store      *ledger.Store
	riskMgr    *risk.Manager
	commission risk.Model
	book       *position.Book
	notify     notifier.Notifier

	paused  func() bool
	capital func() float64
	newID   func() string
	now     func() time.Time
}

func New(paper bool, gw gateway.Gateway, writer *ledger.Writer, store *ledger.Store,
	riskMgr *risk.Manager, commission risk.Model, book *position.Book, notify notifier.Notifier,
	paused func() bool, capital func() float64) *Executor {
	return &Executor{
		paper:      paper,
		gw:         gw,
		writer:     writer,
		store:      store,
		riskMgr:    riskMgr,
		commission: commission,
		book:       book,
		notify:     notify,
		paused:     paused,
		capital:    capital,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Execute runs a request to a terminal status and returns the ledger record
// that was appended.
func (e *Executor) Execute(ctx context.Context, req Request) (*ledger.Record, error) {
	rec := e.newRecord(req)

	if status, reason := e.precheck(ctx, req); status != "" {
		rec.Status = status
		rec.Error = reason
		e.writer.Append(ctx, rec)
		logger.Infof("order %s %s %d %s: %s (%s)", req.Side, req.Symbol, req.Quantity, rec.TradeID, status, reason)
		e.notifyRejected(rec, req)
		return rec, nil
	}

	e.fill(ctx, rec, req)

	e.writer.Append(ctx, rec)

	if rec.Status == ledger.StatusFilled {
		e.afterFill(ctx, rec, req)
	} else {
		e.notifyRejected(rec, req)
	}
	return rec, nil
}

// notifyRejected tells the operator about an attempted order that ended in a
// non-filled terminal state.
func (e *Executor) notifyRejected(rec *ledger.Record, req Request) {
	text := fmt.Sprintf("*%s %s %s*\nqty %d @ %.2f\n%s", req.Side, req.Symbol, rec.Status, req.Quantity, req.Price, rec.Error)
	if err := e.notify.Push(text); err != nil {
		logger.Warnf("rejection notification failed: %v", err)
	}
}

// Exit implements position.Exiter: protective exits are ordinary SELLs.
func (e *Executor) Exit(ctx context.Context, pos position.Position, price float64, reason string) error {
	_, err := e.Execute(ctx, Request{
		Symbol:   pos.Symbol,
		Side:     ledger.SideSell,
		Quantity: pos.Quantity,
		Price:    price,
		Reason:   reason,
	})
	return err
}

func (e *Executor) newRecord(req Request) *ledger.Record {
	mode := ledger.ModeLive
	if e.paper {
		mode = ledger.ModePaper
	}
	return &ledger.Record{
		TradeID:    e.newID(),
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Status:     ledger.StatusRequested,
		Mode:       mode,
		Timestamp:  e.now(),
	}
}

// precheck returns a terminal status and reason, or empty to proceed.
func (e *Executor) precheck(ctx context.Context, req Request) (ledger.Status, string) {
	if e.paused != nil && e.paused() {
		return ledger.StatusPaused, "trading paused"
	}
	ok, err := e.gw.Tradeable(ctx, req.Symbol)
	if err != nil {
		return ledger.StatusBlocked, fmt.Sprintf("tradability check failed: %v", err)
	}
	if !ok {
		return ledger.StatusBlocked, "instrument not tradeable"
	}
	if allowed, reason := e.riskMgr.Allow(e.capital()); !allowed {
		return ledger.StatusBlocked, reason
	}
	if req.Side == ledger.SideBuy {
		balance, err := e.gw.AvailableBalance(ctx)
		if err != nil {
			return ledger.StatusBlocked, fmt.Sprintf("balance check failed: %v", err)
		}
		if needed := req.Price * float64(req.Quantity); balance < needed {
			return ledger.StatusBlocked, fmt.Sprintf("insufficient balance: need %.2f, have %.2f", needed, balance)
		}
	}
	return "", ""
}

// fill places the order through the gateway. In paper mode the gateway is the
// simulator, so cash is debited and credited there exactly as a broker would;
// fills stay deterministic at the requested price.
func (e *Executor) fill(ctx context.Context, rec *ledger.Record, req Request) {
	rec.Status = ledger.StatusPending
	res, err := e.gw.PlaceOrder(ctx, gateway.OrderRequest{
		Symbol:   req.Symbol,
		Side:     string(req.Side),
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		rec.Status = ledger.StatusFailed
		rec.Error = err.Error()
		return
	}
	// No order id means no fill, whatever the response says.
	if res == nil || res.OrderID == "" {
		rec.Status = ledger.StatusFailed
		if res != nil && res.Reason != "" {
			rec.Error = res.Reason
		} else {
			rec.Error = "broker returned no order id"
		}
		return
	}
	rec.Status = ledger.StatusFilled
	rec.OrderID = res.OrderID
	e.settle(ctx, rec, req)
}

// settle attaches commission and, for SELLs, P&L against the weighted-average
// cost basis of the buys backing the open position.
func (e *Executor) settle(ctx context.Context, rec *ledger.Record, req Request) {
	ownCommission, _ := e.commission.Commission(req.Symbol, req.Price, req.Quantity, string(req.Side)).Float64()
	commission := ownCommission
	rec.Commission = &commission

	if req.Side == ledger.SideSell {
		avgCost, found := e.costBasis(ctx, rec, req)
		if found {
			gross := (req.Price - avgCost) * float64(req.Quantity)
			buyCommission, _ := e.commission.Commission(req.Symbol, avgCost, req.Quantity, "BUY").Float64()
			commission = ownCommission + buyCommission
			net := gross - commission
			rec.Commission = &commission
			rec.GrossPnL = &gross
			rec.NetPnL = &net
		} else {
			logger.Warnf("no cost basis for %s, recording sell without P&L", req.Symbol)
		}
	}
}

// costBasis returns the weighted-average price of the buys backing the
// position being sold. Buys already consumed by earlier sells are excluded,
// so a closed round trip never bleeds into the next position's P&L. The book
// tracks exactly that basis (it resets when the position goes flat) and is
// the first choice; the ledger or broker history serves as fallback for a
// sell against a position this process never opened.
func (e *Executor) costBasis(ctx context.Context, rec *ledger.Record, req Request) (float64, bool) {
	if pos, ok := e.book.Get(req.Symbol); ok && pos.AvgPrice > 0 {
		return pos.AvgPrice, true
	}
	if e.paper {
		return e.ledgerBasis(ctx, req.Symbol, req.Quantity)
	}
	return e.historyBasis(ctx, rec, req)
}

// ledgerBasis walks filled records newest-first, nets sells against the buys
// behind them and averages the unmatched remainder.
func (e *Executor) ledgerBasis(ctx context.Context, symbol string, quantity int) (float64, bool) {
	var totalQty int
	var totalCost float64
	sold := 0

	err := e.store.ScanBackward(ctx, symbol, func(r *ledger.Record) error {
		if r.Status != ledger.StatusFilled {
			return nil
		}
		switch r.Side {
		case ledger.SideSell:
			sold += r.Quantity
		case ledger.SideBuy:
			qty := r.Quantity
			if sold > 0 {
				matched := qty
				if sold < matched {
					matched = sold
				}
				sold -= matched
				qty -= matched
			}
			totalQty += qty
			totalCost += r.Price * float64(qty)
			if sold == 0 && totalQty >= quantity {
				return ledger.ErrStopScan
			}
		}
		return nil
	})
	if err != nil {
		logger.Warnf("ledger scan for %s cost basis failed: %v", symbol, err)
		return 0, false
	}
	if totalQty == 0 {
		return 0, false
	}
	return totalCost / float64(totalQty), true
}

// historyBasis applies the same netting to the broker's operation history,
// skipping the sell being settled right now.
func (e *Executor) historyBasis(ctx context.Context, rec *ledger.Record, req Request) (float64, bool) {
	ops, err := e.gw.OperationHistory(ctx, req.Symbol)
	if err != nil {
		logger.Warnf("operation history for %s failed: %v", req.Symbol, err)
		return 0, false
	}

	var totalQty int
	var totalCost float64
	sold := 0
scan:
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.OrderID != "" && op.OrderID == rec.OrderID {
			continue
		}
		switch op.Side {
		case "SELL":
			sold += op.Quantity
		case "BUY":
			qty := op.Quantity
			if sold > 0 {
				matched := qty
				if sold < matched {
					matched = sold
				}
				sold -= matched
				qty -= matched
			}
			totalQty += qty
			totalCost += op.Price * float64(qty)
			if sold == 0 && totalQty >= req.Quantity {
				break scan
			}
		}
	}
	if totalQty == 0 {
		return 0, false
	}
	return totalCost / float64(totalQty), true
}

func (e *Executor) afterFill(ctx context.Context, rec *ledger.Record, req Request) {
	e.riskMgr.RecordTrade()

	switch req.Side {
	case ledger.SideBuy:
		e.book.Add(req.Symbol, req.Quantity, req.Price, req.StopLoss, req.TakeProfit)
		text := fmt.Sprintf("*BUY %s*\nqty %d @ %.2f\nstop %.2f / take %.2f",
			req.Symbol, req.Quantity, req.Price, req.StopLoss, req.TakeProfit)
		if err := e.notify.Push(text); err != nil {
			logger.Warnf("buy notification failed: %v", err)
		}
	case ledger.SideSell:
		e.book.Reduce(req.Symbol, req.Quantity)
		if rec.NetPnL != nil {
			e.riskMgr.RecordOutcome(*rec.NetPnL)
		}
		reason := req.Reason
		if reason == "" {
			reason = "signal"
		}
		text := fmt.Sprintf("*SELL %s* (%s)\nqty %d @ %.2f", req.Symbol, reason, req.Quantity, req.Price)
		if rec.NetPnL != nil {
			text += fmt.Sprintf("\nnet P&L %.2f", *rec.NetPnL)
		}
		if err := e.notify.Push(text); err != nil {
			logger.Warnf("sell notification failed: %v", err)
		}
	}
}
