package domain

import (
	"fmt"
	"math"
)

// payoffStats worker 本地的贴现收益/控制值统计量，join 后一次性归并
type payoffStats struct {
	SumPayoff    float64
	SumSqPayoff  float64
	SumControl   float64
	SumSqControl float64
	SumCross     float64
	Count        int
}

func (s *payoffStats) observe(payoff, control float64) {
	s.SumPayoff += payoff
	s.SumSqPayoff += payoff * payoff
	s.SumControl += control
	s.SumSqControl += control * control
	s.SumCross += payoff * control
	s.Count++
}

func (s *payoffStats) merge(o payoffStats) {
	s.SumPayoff += o.SumPayoff
	s.SumSqPayoff += o.SumSqPayoff
	s.SumControl += o.SumControl
	s.SumSqControl += o.SumSqControl
	s.SumCross += o.SumCross
	s.Count += o.Count
}

// PriceEuropeanOption 用蒙特卡洛估计欧式期权的贴现公允价。
// 每条路径计算贴现内在价值 payoff = e^(-rT)·max(±(S_T-K), 0) 与
// 贴现控制值 control = e^(-rT)·S_T，累积一阶、二阶矩及交叉乘积。
// 启用控制变量且控制值样本方差超过 epsilon 时，做最小二乘回归
// β = Cov(payoff,control)/Var(control)，用控制值的已知期望
// E*[control] = S₀·e^(-qT) 修正均值并压缩方差（下限 0 吸收浮点舍入）；
// 否则 β 记为 0，使用原始统计量。解析参照价仅用于误差汇报，
// 从不反哺估计量本身。
func (e *MonteCarloEngine) PriceEuropeanOption(cfg OptionConfig) (*OptionResult, error) {
	if cfg.Strike <= 0 {
		return nil, fmt.Errorf("%w: strike must be positive", ErrInvalidConfiguration)
	}

	discount := math.Exp(-e.market.RiskFreeRate * e.sim.Maturity)
	expectedControl := e.market.Spot * math.Exp(-e.market.DividendYield*e.sim.Maturity)

	locals := make([]payoffStats, e.sim.Workers)
	e.simulatePaths(e.sim.Paths, optionSeedSalt, func(worker, _ int, terminal float64) {
		var intrinsic float64
		if cfg.IsCall {
			intrinsic = math.Max(terminal-cfg.Strike, 0)
		} else {
			intrinsic = math.Max(cfg.Strike-terminal, 0)
		}
		locals[worker].observe(discount*intrinsic, discount*terminal)
	})

	var total payoffStats
	for i := range locals {
		total.merge(locals[i])
	}

	invCount := 1.0 / float64(total.Count)
	meanPayoff := total.SumPayoff * invCount
	meanControl := total.SumControl * invCount
	varPayoff := math.Max(0, total.SumSqPayoff*invCount-meanPayoff*meanPayoff)
	varControl := math.Max(0, total.SumSqControl*invCount-meanControl*meanControl)
	covariance := total.SumCross*invCount - meanPayoff*meanControl

	beta := 0.0
	adjustedMean := meanPayoff
	adjustedVariance := varPayoff
	if e.sim.UseControlVariate && varControl > epsilon {
		beta = covariance / varControl
		adjustedMean = meanPayoff + beta*(expectedControl-meanControl)
		adjustedVariance = math.Max(0, varPayoff+beta*beta*varControl-2*beta*covariance)
	}

	stdError := math.Sqrt(adjustedVariance / float64(total.Count))
	analytic := e.BlackScholesPrice(cfg)
	relativeError := 0.0
	if analytic != 0 {
		relativeError = (adjustedMean - analytic) / analytic
	}

	return &OptionResult{
		Price:                adjustedMean,
		StandardError:        stdError,
		AnalyticPrice:        analytic,
		RelativeError:        relativeError,
		ControlVariateWeight: beta,
		Scenarios:            total.Count,
	}, nil
}
