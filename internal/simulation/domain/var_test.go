package domain

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeParametricVaRRejectsInvalidPercentile(t *testing.T) {
	engine, err := NewMonteCarloEngine(testMarket(), testSim())
	require.NoError(t, err)

	for _, percentile := range []float64{0, 1, -0.5, 1.5} {
		res, err := engine.ComputeParametricVaR(VaRConfig{Percentile: percentile, Notional: 1})
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	}
}

func TestComputeParametricVaRScenario(t *testing.T) {
	market := MarketParams{Spot: 100, RiskFreeRate: 0.02, Volatility: 0.2}
	sim := SimulationConfig{
		Maturity:      1.0,
		TimeSteps:     16,
		Paths:         200000,
		Seed:          42,
		UseAntithetic: true,
		BlockSize:     4096,
		Workers:       4,
	}
	engine, err := NewMonteCarloEngine(market, sim)
	require.NoError(t, err)

	res, err := engine.ComputeParametricVaR(VaRConfig{Percentile: 0.99, Notional: 1_000_000})
	require.NoError(t, err)

	assert.Equal(t, 400000, res.Scenarios)
	assert.Equal(t, 0.99, res.Percentile)
	assert.Greater(t, res.ValueAtRisk, 0.0)
	assert.GreaterOrEqual(t, res.ExpectedShortfall, res.ValueAtRisk)
	assert.Greater(t, res.LossStdDev, 0.0)
}

func TestExpectedShortfallNeverBelowVaR(t *testing.T) {
	engine, err := NewMonteCarloEngine(testMarket(), testSim())
	require.NoError(t, err)

	for _, percentile := range []float64{0.5, 0.9, 0.95, 0.99, 0.999} {
		res, err := engine.ComputeParametricVaR(VaRConfig{Percentile: percentile, Notional: 1000})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.ExpectedShortfall, res.ValueAtRisk-1e-9, "percentile %v", percentile)
	}
}

func TestVaRNegativeNotionalFlipsLossSign(t *testing.T) {
	sim := testSim()
	engine, err := NewMonteCarloEngine(testMarket(), sim)
	require.NoError(t, err)

	long, err := engine.ComputeParametricVaR(VaRConfig{Percentile: 0.99, Notional: 1000})
	require.NoError(t, err)
	short, err := engine.ComputeParametricVaR(VaRConfig{Percentile: 0.99, Notional: -1000})
	require.NoError(t, err)

	// 空头的平均损失与多头互为相反数（同一组场景）
	assert.InDelta(t, -long.MeanLoss, short.MeanLoss, 1e-9)
	assert.GreaterOrEqual(t, short.ExpectedShortfall, short.ValueAtRisk-1e-9)
}

func TestQuickSelectAgreesWithSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, size := range []int{1, 2, 3, 17, 100, 1001} {
		values := make([]float64, size)
		for i := range values {
			values[i] = rng.NormFloat64()
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		for _, k := range []int{0, size / 2, size - 1} {
			scratch := append([]float64(nil), values...)
			assert.Equal(t, sorted[k], quickSelect(scratch, k), "size=%d k=%d", size, k)
		}
	}
}

func TestQuickSelectNearlySortedInput(t *testing.T) {
	values := make([]float64, 5000)
	for i := range values {
		values[i] = float64(i)
	}
	values[0], values[len(values)-1] = values[len(values)-1], values[0]

	assert.Equal(t, 4950.0, quickSelect(values, 4950))
}

func TestVaRQuantileIndexing(t *testing.T) {
	// 场景数固定时，VaR 必须等于 clamp(ceil(p·N),1,N) 位置的顺序统计量
	market := testMarket()
	sim := testSim()
	sim.UseAntithetic = false
	sim.Paths = 1000
	engine, err := NewMonteCarloEngine(market, sim)
	require.NoError(t, err)

	terminal := engine.SimulateTerminalPrices(sim.Paths, 0)
	losses := make([]float64, len(terminal))
	for i, s := range terminal {
		losses[i] = -1000 * (s/market.Spot - 1)
	}
	sort.Float64s(losses)

	for _, percentile := range []float64{0.01, 0.5, 0.99} {
		res, err := engine.ComputeParametricVaR(VaRConfig{Percentile: percentile, Notional: 1000})
		require.NoError(t, err)

		index := int(math.Ceil(percentile * float64(len(losses))))
		if index < 1 {
			index = 1
		}
		if index > len(losses) {
			index = len(losses)
		}
		assert.InDelta(t, losses[index-1], res.ValueAtRisk, 1e-12, "percentile %v", percentile)
	}
}
