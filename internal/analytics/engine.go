package analytics

import (
	"math"

	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
)

// Metrics summarizes the performance of the trade history at a point
// in time.
type Metrics struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	TotalPnl       float64 `json:"total_pnl"`
}

// Engine computes metrics from ledger contents. It holds no state of
// its own; every Compute call reads a fresh snapshot.
type Engine struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewEngine creates an analytics engine reading from the given ledger.
func NewEngine(l *ledger.Ledger, logger *zap.Logger) *Engine {
	return &Engine{ledger: l, logger: logger}
}

// Compute derives metrics from the current ledger contents. A positive
// window restricts counts, win rate, total pnl and Sharpe to the most
// recent N trades by timestamp. Max drawdown is a path property of the
// whole history and always uses the full ledger. An empty ledger yields
// all-zero metrics without error.
func (e *Engine) Compute(window int) (Metrics, error) {
	trades, err := e.ledger.Range(ledger.Filter{})
	if err != nil {
		return Metrics{}, err
	}

	windowed := trades
	if window > 0 && window < len(trades) {
		windowed = trades[len(trades)-window:]
	}

	m := Metrics{TotalTrades: len(windowed)}

	pnls := make([]float64, 0, len(windowed))
	for _, t := range windowed {
		pnls = append(pnls, t.Pnl)
		m.TotalPnl += t.Pnl
		switch {
		case t.Pnl > 0:
			m.WinningTrades++
		case t.Pnl < 0:
			m.LosingTrades++
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	m.SharpeRatio = sharpe(pnls)
	m.MaxDrawdownPct = maxDrawdownPct(trades)

	e.logger.Debug("Metrics computed",
		zap.Int("window", window),
		zap.Int("total_trades", m.TotalTrades),
		zap.Float64("win_rate", m.WinRate),
		zap.Float64("total_pnl", m.TotalPnl),
	)
	return m, nil
}

// sharpe is mean pnl over its population standard deviation. Zero
// variance or fewer than two samples yields 0, never NaN or Inf.
func sharpe(pnls []float64) float64 {
	if len(pnls) <= 1 {
		return 0
	}

	var sum float64
	for _, p := range pnls {
		sum += p
	}
	mean := sum / float64(len(pnls))

	var variance float64
	for _, p := range pnls {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(pnls))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// maxDrawdownPct walks the full history in timestamp order, tracking
// cumulative pnl against its running peak. Drawdown at a step is only
// defined once the peak is positive; the result is the worst observed
// decline as a percentage of peak equity, in [0, 100]. A cumulative
// that falls below zero has lost the whole peak, so the decline is
// capped at 100.
func maxDrawdownPct(trades []models.Trade) float64 {
	var cumulative, peak, maxDrawdown float64
	for _, t := range trades {
		cumulative += t.Pnl
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			drawdown := (peak - cumulative) / peak
			if drawdown > 1 {
				drawdown = 1
			}
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown * 100
}
