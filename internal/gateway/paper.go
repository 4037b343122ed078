package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Paper is the in-memory gateway used in paper mode and in tests. Orders fill
// deterministically at the requested price; quotes are whatever the caller
// last set.
type Paper struct {
	mu      sync.Mutex
	quotes  map[string]float64
	balance float64
	history map[string][]Operation
	halted  map[string]bool
}

func NewPaper(initialBalance float64) *Paper {
	return &Paper{
		quotes:  make(map[string]float64),
		balance: initialBalance,
		history: make(map[string][]Operation),
		halted:  make(map[string]bool),
	}
}

// SetQuote fixes the next quote for a symbol.
func (p *Paper) SetQuote(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[symbol] = price
}

// Halt marks a symbol untradeable.
func (p *Paper) Halt(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halted[symbol] = true
}

func (p *Paper) Quote(_ context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.quotes[symbol]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}
	return price, nil
}

func (p *Paper) AvailableBalance(context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}

func (p *Paper) PlaceOrder(_ context.Context, req OrderRequest) (*OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	notional := req.Price * float64(req.Quantity)
	if req.Side == "BUY" {
		if notional > p.balance {
			return &OrderResult{Reason: "insufficient balance"}, nil
		}
		p.balance -= notional
	} else {
		p.balance += notional
	}

	op := Operation{
		OrderID:   uuid.NewString(),
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Timestamp: time.Now(),
	}
	p.history[req.Symbol] = append(p.history[req.Symbol], op)
	return &OrderResult{OrderID: op.OrderID}, nil
}

func (p *Paper) OperationHistory(_ context.Context, symbol string) ([]Operation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := p.history[symbol]
	out := make([]Operation, len(ops))
	copy(out, ops)
	return out, nil
}

func (p *Paper) Holdings(context.Context) ([]Holding, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	net := make(map[string]int)
	cost := make(map[string]float64)
	var symbols []string
	for sym, ops := range p.history {
		for _, op := range ops {
			if op.Side == "BUY" {
				net[sym] += op.Quantity
				cost[sym] += op.Price * float64(op.Quantity)
			} else {
				net[sym] -= op.Quantity
			}
		}
		symbols = append(symbols, sym)
	}

	var out []Holding
	for _, sym := range symbols {
		qty := net[sym]
		if qty <= 0 {
			continue
		}
		h := Holding{Symbol: sym, Quantity: qty}
		if bought := cost[sym]; bought > 0 {
			// Average over all buys; sells do not change the basis here.
			var totalBought int
			for _, op := range p.history[sym] {
				if op.Side == "BUY" {
					totalBought += op.Quantity
				}
			}
			if totalBought > 0 {
				h.AvgPrice = bought / float64(totalBought)
			}
		}
		out = append(out, h)
	}
	return out, nil
}

func (p *Paper) Tradeable(_ context.Context, symbol string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.halted[symbol], nil
}
