package domain

import "math"

// BlackScholesPrice 带连续股息率的 Black-Scholes 闭式解，
// 仅作为蒙特卡洛估计的解析参照，从不参与估计量本身。
func (e *MonteCarloEngine) BlackScholesPrice(cfg OptionConfig) float64 {
	return BlackScholes(e.market, e.sim.Maturity, cfg)
}

// BlackScholes 计算欧式期权的解析价格
func BlackScholes(market MarketParams, maturity float64, cfg OptionConfig) float64 {
	s := market.Spot
	k := cfg.Strike
	r := market.RiskFreeRate
	q := market.DividendYield
	sigma := market.Volatility

	sqrtT := math.Sqrt(math.Max(epsilon, maturity))
	sigmaSqrtT := sigma * sqrtT

	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*maturity) / sigmaSqrtT
	d2 := d1 - sigmaSqrtT

	discDiv := math.Exp(-q * maturity)
	discRate := math.Exp(-r * maturity)

	if cfg.IsCall {
		return s*discDiv*normCdf(d1) - k*discRate*normCdf(d2)
	}
	return k*discRate*normCdf(-d2) - s*discDiv*normCdf(-d1)
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
