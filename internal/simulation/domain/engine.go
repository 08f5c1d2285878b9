// Package domain 包含蒙特卡洛风险模拟引擎的领域模型：
// GBM 路径模拟、期权定价估计、VaR/ES 估计与 Black-Scholes 解析参照。
package domain

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// epsilon 数值保护阈值：控制变量方差低于该值时视为退化
const epsilon = 1e-12

const (
	// defaultBlockSize BlockSize 为 0 时的缺省值
	defaultBlockSize = 1024
	// workerSeedStride 各 worker 随机数流的种子间隔
	workerSeedStride = 7919
	// optionSeedSalt 期权定价批次的种子盐值，使其与 VaR 批次使用独立的随机数流
	optionSeedSalt = 1337
)

// MonteCarloEngine 蒙特卡洛模拟引擎。
// 构造后自身不可变，同一实例可被多个调用方并发使用；
// 每次调用都是 (引擎状态, 调用参数) 的纯函数，返回新的结果快照。
type MonteCarloEngine struct {
	market MarketParams
	sim    SimulationConfig
}

// NewMonteCarloEngine 构造引擎并做前置校验。
// timeSteps、maturity、spot、volatility、paths 任一非法即返回 ErrInvalidConfiguration；
// blockSize 为 0 不是错误，静默替换为 1024。
func NewMonteCarloEngine(market MarketParams, sim SimulationConfig) (*MonteCarloEngine, error) {
	if sim.TimeSteps <= 0 {
		return nil, fmt.Errorf("%w: time_steps must be positive", ErrInvalidConfiguration)
	}
	if sim.Maturity <= 0 {
		return nil, fmt.Errorf("%w: maturity must be positive", ErrInvalidConfiguration)
	}
	if market.Spot <= 0 {
		return nil, fmt.Errorf("%w: spot must be positive", ErrInvalidConfiguration)
	}
	if market.Volatility <= 0 {
		return nil, fmt.Errorf("%w: volatility must be positive", ErrInvalidConfiguration)
	}
	if sim.Paths <= 0 {
		return nil, fmt.Errorf("%w: paths must be positive", ErrInvalidConfiguration)
	}
	if sim.BlockSize <= 0 {
		sim.BlockSize = defaultBlockSize
	}
	if sim.Workers <= 0 {
		sim.Workers = 1
	}
	return &MonteCarloEngine{market: market, sim: sim}, nil
}

// Market 返回引擎持有的市场参数副本
func (e *MonteCarloEngine) Market() MarketParams { return e.market }

// Simulation 返回归一化后的模拟配置副本
func (e *MonteCarloEngine) Simulation() SimulationConfig { return e.sim }

// EffectivePaths 单次调用产生的场景总数：对偶变量开启时为 2N，否则为 N
func (e *MonteCarloEngine) EffectivePaths() int {
	if e.sim.UseAntithetic {
		return e.sim.Paths * 2
	}
	return e.sim.Paths
}

// pathDrift 每步对数漂移 (r - q - σ²/2)·dt，步长恒定故全程为常数
func (e *MonteCarloEngine) pathDrift() float64 {
	dt := e.sim.Maturity / float64(e.sim.TimeSteps)
	return (e.market.RiskFreeRate - e.market.DividendYield -
		0.5*e.market.Volatility*e.market.Volatility) * dt
}

// pathDiffusion 每步扩散系数 σ·√dt
func (e *MonteCarloEngine) pathDiffusion() float64 {
	dt := e.sim.Maturity / float64(e.sim.TimeSteps)
	return e.market.Volatility * math.Sqrt(dt)
}

// workerRNG 按 worker 身份派生独立随机数流。
// 固定 worker 数时结果可复现；worker 数变化会改变路径到流的映射，
// 输出不保证逐位一致，只保证统计等价。
func (e *MonteCarloEngine) workerRNG(worker int, salt int64) *rand.Rand {
	return rand.New(rand.NewSource(e.sim.Seed + workerSeedStride*int64(worker) + salt))
}

// block 一段连续的基础路径区间 [Start, Start+Count)
type block struct {
	Start int
	Count int
}

// runWorkers fork-join 执行：把 [0, basePaths) 按 BlockSize 切成独立区块，
// 区块 i 固定由 worker i mod W 处理，各 worker 持有独立随机数流，
// 区块之间无任何通信，调用方在 join 之后完成一次性归并。
func (e *MonteCarloEngine) runWorkers(basePaths int, salt int64, fn func(worker int, rng *rand.Rand, blk block)) {
	blockSize := e.sim.BlockSize
	numBlocks := (basePaths + blockSize - 1) / blockSize
	workers := e.sim.Workers
	if workers > numBlocks {
		workers = numBlocks
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := e.workerRNG(worker, salt)
			for b := worker; b < numBlocks; b += workers {
				start := b * blockSize
				count := blockSize
				if start+count > basePaths {
					count = basePaths - start
				}
				fn(worker, rng, block{Start: start, Count: count})
			}
		}(w)
	}
	wg.Wait()
}
