package domain

import "math"

// ConvergenceStudy 以递增的路径数重复期权定价，产出误差-样本量曲线。
// 每个样本量都构造一个全新引擎（仅替换 paths，市场与其余模拟配置不变），
// 结果严格按调用方给出的顺序返回，不做重排；迭代之间除只读基础配置外
// 不共享任何可变状态。
func (e *MonteCarloEngine) ConvergenceStudy(cfg OptionConfig, sampleSizes []int) ([]ConvergencePoint, error) {
	points := make([]ConvergencePoint, 0, len(sampleSizes))

	for _, sample := range sampleSizes {
		sim := e.sim
		sim.Paths = sample
		engine, err := NewMonteCarloEngine(e.market, sim)
		if err != nil {
			return nil, err
		}
		res, err := engine.PriceEuropeanOption(cfg)
		if err != nil {
			return nil, err
		}
		points = append(points, ConvergencePoint{
			Scenarios:     res.Scenarios,
			Price:         res.Price,
			AbsoluteError: math.Abs(res.Price - res.AnalyticPrice),
			RelativeError: math.Abs(res.RelativeError),
			StandardError: res.StandardError,
		})
	}

	return points, nil
}
