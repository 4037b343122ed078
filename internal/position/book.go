package position

import (
	"sort"
	"sync"
	"time"
)

// TrailingState tracks the ratcheting stop for one position.
type TrailingState struct {
	Active    bool
	HighWater float64
	Stop      float64
}

// Position is one open holding with its protective levels.
type Position struct {
	Symbol     string
	Quantity   int
	AvgPrice   float64
	StopLoss   float64
	TakeProfit float64
	Trailing   TrailingState
	OpenedAt   time.Time
}

// Book is the in-memory set of open positions. All methods are safe for
// concurrent use; the monitor and the executor both touch it.
type Book struct {
	mu        sync.RWMutex
	positions map[string]*Position
}

func NewBook() *Book {
	return &Book{positions: make(map[string]*Position)}
}

// Add opens or extends a position. Extending merges the average price by
// quantity weight and adopts the new protective levels.
func (b *Book) Add(symbol string, quantity int, price, stopLoss, takeProfit float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[symbol]
	if !ok {
		b.positions[symbol] = &Position{
			Symbol:     symbol,
			Quantity:   quantity,
			AvgPrice:   price,
			StopLoss:   stopLoss,
			TakeProfit: takeProfit,
			OpenedAt:   time.Now(),
		}
		return
	}
	total := pos.Quantity + quantity
	pos.AvgPrice = (pos.AvgPrice*float64(pos.Quantity) + price*float64(quantity)) / float64(total)
	pos.Quantity = total
	pos.StopLoss = stopLoss
	pos.TakeProfit = takeProfit
}

// Reduce shrinks a position; the position is removed once flat.
func (b *Book) Reduce(symbol string, quantity int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[symbol]
	if !ok {
		return
	}
	pos.Quantity -= quantity
	if pos.Quantity <= 0 {
		delete(b.positions, symbol)
	}
}

// Remove drops a position regardless of quantity.
func (b *Book) Remove(symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.positions, symbol)
}

// Get returns a copy of one position.
func (b *Book) Get(symbol string) (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pos, ok := b.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Update applies fn to a position under the lock.
func (b *Book) Update(symbol string, fn func(*Position)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos, ok := b.positions[symbol]; ok {
		fn(pos)
	}
}

// List returns copies of all open positions, ordered by symbol.
func (b *Book) List() []Position {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Replace swaps the whole book contents, used by portfolio resync.
func (b *Book) Replace(positions []Position) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.positions = make(map[string]*Position, len(positions))
	for i := range positions {
		p := positions[i]
		b.positions[p.Symbol] = &p
	}
}

// Len returns the number of open positions.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.positions)
}
