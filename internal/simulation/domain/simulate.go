package domain

import (
	"math"
	"math/rand"
)

// simulatePaths 在 GBM 下生成 basePaths 条路径的到期价格并逐条回调 visit。
// 价格按 S ← S·exp(drift + diffusion·Z) 乘性演化，对数价格的逐步模拟是精确的，
// 不引入离散化偏差。开启对偶变量时，每个随机冲击 Z 取反后推进一条镜像路径，
// 同一批随机数产出 2N 个场景。
//
// visit 的 path 参数是场景的全局下标：主路径为 [0, basePaths)，
// 镜像路径为 [basePaths, 2*basePaths)，同一区块内下标互不重叠，
// 因此各 worker 可以无锁地写入各自的结果区间。
func (e *MonteCarloEngine) simulatePaths(basePaths int, salt int64, visit func(worker, path int, terminal float64)) {
	drift := e.pathDrift()
	diffusion := e.pathDiffusion()
	spot := e.market.Spot
	steps := e.sim.TimeSteps
	antithetic := e.sim.UseAntithetic

	e.runWorkers(basePaths, salt, func(worker int, rng *rand.Rand, blk block) {
		state := make([]float64, blk.Count)
		for i := range state {
			state[i] = spot
		}
		var antiState []float64
		if antithetic {
			antiState = make([]float64, blk.Count)
			for i := range antiState {
				antiState[i] = spot
			}
		}

		for step := 0; step < steps; step++ {
			for i := 0; i < blk.Count; i++ {
				z := rng.NormFloat64()
				state[i] *= math.Exp(drift + diffusion*z)
				if antithetic {
					antiState[i] *= math.Exp(drift - diffusion*z)
				}
			}
		}

		for i := 0; i < blk.Count; i++ {
			visit(worker, blk.Start+i, state[i])
		}
		if antithetic {
			for i := 0; i < blk.Count; i++ {
				visit(worker, basePaths+blk.Start+i, antiState[i])
			}
		}
	})
}

// SimulateTerminalPrices 生成 basePaths 条路径的到期价格切片。
// 对偶变量开启时长度为 2*basePaths，镜像路径排在后半段。
func (e *MonteCarloEngine) SimulateTerminalPrices(basePaths int, salt int64) []float64 {
	size := basePaths
	if e.sim.UseAntithetic {
		size = basePaths * 2
	}
	terminal := make([]float64, size)
	e.simulatePaths(basePaths, salt, func(_, path int, value float64) {
		terminal[path] = value
	})
	return terminal
}
