package providers

import (
	"context"

	"tradebot/internal/signal"
)

// Sentiment summarizes external news/social scoring for a symbol.
type Sentiment struct {
	Overall    string // "POSITIVE" | "NEGATIVE" | "NEUTRAL"
	Score      float64
	SampleSize int
}

type SentimentSource interface {
	MarketSentiment(ctx context.Context, symbol string) (*Sentiment, error)
}

// Mood converts sentiment into a vote graded by intensity: ±10, ±15 or ±20.
// Neutral or empty samples abstain.
type Mood struct {
	Source SentimentSource
}

func (Mood) Name() string { return "sentiment" }

func (m Mood) Evaluate(ctx context.Context, sc signal.Context) (*signal.Contribution, error) {
	if m.Source == nil {
		return nil, nil
	}
	sent, err := m.Source.MarketSentiment(ctx, sc.Symbol)
	if err != nil {
		return nil, err
	}
	if sent == nil || sent.SampleSize == 0 {
		return nil, nil
	}
	switch sent.Overall {
	case "POSITIVE":
		points := 10
		if sent.Score > 0.3 {
			points = 20
		} else if sent.Score > 0.15 {
			points = 15
		}
		return &signal.Contribution{Source: "sentiment", Score: points, Rationale: "Sentiment Positive", Confidence: sent.Score}, nil
	case "NEGATIVE":
		points := 10
		if sent.Score < -0.3 {
			points = 20
		} else if sent.Score < -0.15 {
			points = 15
		}
		return &signal.Contribution{Source: "sentiment", Score: -points, Rationale: "Sentiment Negative", Confidence: sent.Score}, nil
	default:
		return nil, nil
	}
}
