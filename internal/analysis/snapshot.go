package analysis

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"tradebot/internal/market"
)

const (
	rsiPeriod  = 14
	atrPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	smaShort   = 20
	smaLong    = 50
	volPeriod  = 20
)

// Snapshot is the technical view of one symbol at one instant. Providers,
// entry filters and the risk sizer all read from the same snapshot so a cycle
// makes one consistent judgement. Has* flags mark which series had enough
// history to compute.
type Snapshot struct {
	Symbol string
	Price  float64

	RSI    float64
	HasRSI bool

	MACD       float64
	MACDSignal float64
	HasMACD    bool

	SMA20    float64
	HasSMA20 bool
	SMA50    float64
	HasSMA50 bool

	ATR    float64
	HasATR bool

	VolumeRatio    float64
	HasVolumeRatio bool
}

// ATRPct returns ATR as a percentage of price, 0 when unavailable.
func (s *Snapshot) ATRPct() float64 {
	if s == nil || !s.HasATR || s.Price <= 0 {
		return 0
	}
	return s.ATR / s.Price * 100
}

// Compute builds a Snapshot from chronological daily candles. Indicators
// whose lookback exceeds the history are simply left unset; only an empty
// series is an error.
func Compute(symbol string, candles []market.Candle) (*Snapshot, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles for %s", symbol)
	}
	closes := market.Closes(candles)
	snap := &Snapshot{Symbol: symbol, Price: closes[len(closes)-1]}

	if len(closes) > rsiPeriod {
		if v, ok := lastValid(talib.Rsi(closes, rsiPeriod)); ok {
			snap.RSI, snap.HasRSI = v, true
		}
	}
	if len(closes) > macdSlow+macdSignal {
		macd, sig, _ := talib.Macd(closes, macdFast, macdSlow, macdSignal)
		if m, ok := lastValid(macd); ok {
			if s, ok := lastValid(sig); ok {
				snap.MACD, snap.MACDSignal, snap.HasMACD = m, s, true
			}
		}
	}
	if len(closes) >= smaShort {
		if v, ok := lastValid(talib.Sma(closes, smaShort)); ok {
			snap.SMA20, snap.HasSMA20 = v, true
		}
	}
	if len(closes) >= smaLong {
		if v, ok := lastValid(talib.Sma(closes, smaLong)); ok {
			snap.SMA50, snap.HasSMA50 = v, true
		}
	}
	if len(candles) > atrPeriod {
		atr := talib.Atr(market.Highs(candles), market.Lows(candles), closes, atrPeriod)
		if v, ok := lastValid(atr); ok && v > 0 {
			snap.ATR, snap.HasATR = v, true
		}
	}
	if volumes := market.Volumes(candles); len(volumes) >= volPeriod {
		if avg, ok := lastValid(talib.Sma(volumes, volPeriod)); ok && avg > 0 {
			snap.VolumeRatio = volumes[len(volumes)-1] / avg
			snap.HasVolumeRatio = true
		}
	}
	return snap, nil
}

func lastValid(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}
