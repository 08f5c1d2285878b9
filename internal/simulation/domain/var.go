package domain

import (
	"fmt"
	"math"
)

// lossMoments worker 本地的损失一阶、二阶矩
type lossMoments struct {
	Sum   float64
	SumSq float64
}

// ComputeParametricVaR 模拟到期价格并估计头寸的 VaR 与 Expected Shortfall。
// 每条路径的损失 loss = -notional·(S_T/S₀ - 1)。VaR 取损失分布的顺序统计量：
// index = clamp(ceil(percentile·N), 1, N)，用快速选择（期望线性）而非全排序定位。
// ES 为所有 loss ≥ VaR-ε 的损失均值（ε 吸收分位点边界上的并列值）；
// 退化情形下尾部为空时回退为 VaR 本身。控制变量对该估计量不适用。
func (e *MonteCarloEngine) ComputeParametricVaR(cfg VaRConfig) (*VaRResult, error) {
	if cfg.Percentile <= 0 || cfg.Percentile >= 1 {
		return nil, fmt.Errorf("%w: percentile must be in (0, 1)", ErrInvalidConfiguration)
	}

	basePaths := e.sim.Paths
	total := e.EffectivePaths()
	losses := make([]float64, total)
	invSpot := 1.0 / e.market.Spot

	moments := make([]lossMoments, e.sim.Workers)
	e.simulatePaths(basePaths, 0, func(worker, path int, terminal float64) {
		loss := -cfg.Notional * (terminal*invSpot - 1.0)
		losses[path] = loss
		moments[worker].Sum += loss
		moments[worker].SumSq += loss * loss
	})

	var sumLoss, sumSqLoss float64
	for i := range moments {
		sumLoss += moments[i].Sum
		sumSqLoss += moments[i].SumSq
	}

	meanLoss := sumLoss / float64(total)
	variance := math.Max(0, sumSqLoss/float64(total)-meanLoss*meanLoss)
	stdDev := math.Sqrt(variance)

	index := int(math.Ceil(cfg.Percentile * float64(total)))
	if index < 1 {
		index = 1
	}
	if index > total {
		index = total
	}
	valueAtRisk := quickSelect(losses, index-1)

	tailSum := 0.0
	tailCount := 0
	for _, loss := range losses {
		if loss >= valueAtRisk-epsilon {
			tailSum += loss
			tailCount++
		}
	}
	expectedShortfall := valueAtRisk
	if tailCount > 0 {
		expectedShortfall = tailSum / float64(tailCount)
	}

	return &VaRResult{
		Percentile:        cfg.Percentile,
		ValueAtRisk:       valueAtRisk,
		ExpectedShortfall: expectedShortfall,
		MeanLoss:          meanLoss,
		LossStdDev:        stdDev,
		Scenarios:         total,
	}, nil
}

// quickSelect 原地部分选择：返回 values 中第 k 小（0 起）的元素。
// 期望线性时间，切片会被重排但元素集合不变。
func quickSelect(values []float64, k int) float64 {
	lo, hi := 0, len(values)-1
	for lo < hi {
		p := partition(values, lo, hi)
		switch {
		case p == k:
			return values[p]
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
	return values[k]
}

// partition Lomuto 分区，三数取中选枢轴，避免近有序输入退化
func partition(v []float64, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if v[mid] < v[lo] {
		v[mid], v[lo] = v[lo], v[mid]
	}
	if v[hi] < v[lo] {
		v[hi], v[lo] = v[lo], v[hi]
	}
	if v[hi] < v[mid] {
		v[hi], v[mid] = v[mid], v[hi]
	}
	v[mid], v[hi] = v[hi], v[mid]

	pivot := v[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if v[j] < pivot {
			v[i], v[j] = v[j], v[i]
			i++
		}
	}
	v[i], v[hi] = v[hi], v[i]
	return i
}
