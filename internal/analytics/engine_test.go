package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := ledger.New(store, zap.NewNop())
	return NewEngine(l, zap.NewNop()), l
}

// appendPnls records one closed trade per pnl value, spaced a minute
// apart in the order given.
func appendPnls(t *testing.T, l *ledger.Ledger, pnls []float64) {
	t.Helper()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, pnl := range pnls {
		_, err := l.Append(models.Trade{
			BotID:     "bot_1",
			Symbol:    "BTCUSDT",
			Side:      models.SideBuy,
			Amount:    1,
			Price:     100,
			Pnl:       pnl,
			Status:    models.StatusClosed,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func TestComputeEmptyLedger(t *testing.T) {
	e, _ := newTestEngine(t)

	m, err := e.Compute(0)
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, m)
}

func TestComputeWinRateAndTotals(t *testing.T) {
	e, l := newTestEngine(t)
	appendPnls(t, l, []float64{125.50, 298.75, 50.00, -25.30})

	m, err := e.Compute(0)
	require.NoError(t, err)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 3, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 75.0, m.WinRate, 1e-9)
	assert.InDelta(t, 448.95, m.TotalPnl, 1e-9)
}

func TestComputeZeroPnlCountsNeither(t *testing.T) {
	e, l := newTestEngine(t)
	appendPnls(t, l, []float64{10, 0, -10, 0})

	m, err := e.Compute(0)
	require.NoError(t, err)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 25.0, m.WinRate, 1e-9)
}

func TestComputeSharpe(t *testing.T) {
	t.Run("known value", func(t *testing.T) {
		e, l := newTestEngine(t)
		// mean 2, population stddev 1 -> sharpe 2
		appendPnls(t, l, []float64{1, 3})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, m.SharpeRatio, 1e-9)
	})

	t.Run("zero variance", func(t *testing.T) {
		e, l := newTestEngine(t)
		appendPnls(t, l, []float64{10, 10, 10})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.Zero(t, m.SharpeRatio)
	})

	t.Run("single trade", func(t *testing.T) {
		e, l := newTestEngine(t)
		appendPnls(t, l, []float64{42})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.Zero(t, m.SharpeRatio)
	})
}

func TestComputeMaxDrawdown(t *testing.T) {
	t.Run("peak to trough", func(t *testing.T) {
		e, l := newTestEngine(t)
		// cumulative path: 100, 150, 80, 120 -> (150-80)/150
		appendPnls(t, l, []float64{100, 50, -70, 40})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.InDelta(t, 46.6667, m.MaxDrawdownPct, 1e-3)
	})

	t.Run("never positive peak", func(t *testing.T) {
		e, l := newTestEngine(t)
		appendPnls(t, l, []float64{-50, 10, 10})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.Zero(t, m.MaxDrawdownPct)
	})

	t.Run("capped at full peak loss", func(t *testing.T) {
		e, l := newTestEngine(t)
		// cumulative path: 100, -150; the decline exceeds the peak,
		// so the drawdown caps at 100 percent.
		appendPnls(t, l, []float64{100, -250})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, m.MaxDrawdownPct, 1e-9)
	})

	t.Run("monotonic gains", func(t *testing.T) {
		e, l := newTestEngine(t)
		appendPnls(t, l, []float64{10, 20, 30})

		m, err := e.Compute(0)
		require.NoError(t, err)
		assert.Zero(t, m.MaxDrawdownPct)
	})
}

func TestComputeWindow(t *testing.T) {
	e, l := newTestEngine(t)
	appendPnls(t, l, []float64{100, -50, 10})

	m, err := e.Compute(2)
	require.NoError(t, err)

	// Counts, pnl and win rate see only the last two trades.
	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 50.0, m.WinRate, 1e-9)
	assert.InDelta(t, -40.0, m.TotalPnl, 1e-9)

	// Drawdown still covers the full history: peak 100, trough 50.
	assert.InDelta(t, 50.0, m.MaxDrawdownPct, 1e-9)
}

func TestComputeWindowLargerThanLedger(t *testing.T) {
	e, l := newTestEngine(t)
	appendPnls(t, l, []float64{5, -5})

	m, err := e.Compute(10)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalTrades)
}
