package domain

import (
	"errors"
	"math"
)

// 年化交易日数
const tradingDaysPerYear = 252

// ErrInsufficientData 样本不足以估计波动率
var ErrInsufficientData = errors.New("insufficient data for volatility estimate")

// RealizedVolatility 由复权收盘价的对数收益估计年化波动率。
// 至少需要三条记录才能得到非退化的样本方差。
func RealizedVolatility(prices []HistoricalPrice) (float64, error) {
	if len(prices) < 3 {
		return 0, ErrInsufficientData
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := adjusted(prices[i-1])
		cur := adjusted(prices[i])
		if prev <= 0 || cur <= 0 {
			return 0, ErrInsufficientData
		}
		returns = append(returns, math.Log(cur/prev))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance * tradingDaysPerYear), nil
}

// adjusted 优先使用复权收盘价，缺失时退回收盘价
func adjusted(p HistoricalPrice) float64 {
	if p.AdjClose > 0 {
		return p.AdjClose
	}
	return p.Close
}
