// Package application 编排模拟引擎的调用：计时、台账持久化、事件发布与指标上报
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/pkg/logger"
	"github.com/wyfcoding/risksim/pkg/metrics"
)

// SimulationService 模拟应用服务。
// repo、publisher、metrics 均可为 nil：副作用按配置裁剪，计算路径不受影响。
type SimulationService struct {
	repo      domain.RunRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewSimulationService 创建模拟应用服务
func NewSimulationService(repo domain.RunRepository, publisher domain.EventPublisher, m *metrics.Metrics) *SimulationService {
	return &SimulationService{repo: repo, publisher: publisher, metrics: m}
}

// PriceOption 执行一次期权定价
func (s *SimulationService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*OptionResultDTO, error) {
	engine, err := domain.NewMonteCarloEngine(cmd.Market, cmd.Simulation)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := engine.PriceEuropeanOption(cmd.Option)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Seconds()

	sim := engine.Simulation()
	logger.Info(ctx, "option priced",
		"price", res.Price,
		"analytic", res.AnalyticPrice,
		"std_error", res.StandardError,
		"scenarios", res.Scenarios,
		"duration_seconds", elapsed,
	)

	s.recordRun(ctx, &domain.SimulationRun{
		Command:          domain.RunCommandOption,
		DurationSeconds:  elapsed,
		Workers:          sim.Workers,
		SamplesProcessed: res.Scenarios,
		ThroughputPerSec: throughput(res.Scenarios, elapsed),
		Market:           cmd.Market,
		Simulation:       sim,
		Option:           res,
	})

	if s.publisher != nil {
		event := domain.OptionPricedEvent{
			Market:     cmd.Market,
			Simulation: sim,
			Option:     cmd.Option,
			Result:     *res,
			DurationMs: elapsed * 1000,
			OccurredOn: time.Now(),
		}
		if err := s.publisher.PublishOptionPriced(ctx, event); err != nil {
			s.sideEffectFailed(ctx, "publish", err)
		}
	}

	return toOptionDTO(res, elapsed, sim.Workers), nil
}

// ComputeVaR 执行一次 VaR 估计
func (s *SimulationService) ComputeVaR(ctx context.Context, cmd ComputeVaRCommand) (*VaRResultDTO, error) {
	engine, err := domain.NewMonteCarloEngine(cmd.Market, cmd.Simulation)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := engine.ComputeParametricVaR(cmd.VaR)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Seconds()

	sim := engine.Simulation()
	logger.Info(ctx, "VaR computed",
		"percentile", res.Percentile,
		"value_at_risk", res.ValueAtRisk,
		"expected_shortfall", res.ExpectedShortfall,
		"scenarios", res.Scenarios,
		"duration_seconds", elapsed,
	)

	s.recordRun(ctx, &domain.SimulationRun{
		Command:          domain.RunCommandVaR,
		DurationSeconds:  elapsed,
		Workers:          sim.Workers,
		SamplesProcessed: res.Scenarios,
		ThroughputPerSec: throughput(res.Scenarios, elapsed),
		Market:           cmd.Market,
		Simulation:       sim,
		VaR:              res,
	})

	if s.publisher != nil {
		event := domain.VaRComputedEvent{
			Market:     cmd.Market,
			Simulation: sim,
			VaR:        cmd.VaR,
			Result:     *res,
			DurationMs: elapsed * 1000,
			OccurredOn: time.Now(),
		}
		if err := s.publisher.PublishVaRComputed(ctx, event); err != nil {
			s.sideEffectFailed(ctx, "publish", err)
		}
	}

	return toVaRDTO(res, elapsed, sim.Workers), nil
}

// RunConvergenceStudy 执行一次收敛性研究
func (s *SimulationService) RunConvergenceStudy(ctx context.Context, cmd ConvergenceCommand) ([]ConvergencePointDTO, error) {
	engine, err := domain.NewMonteCarloEngine(cmd.Market, cmd.Simulation)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points, err := engine.ConvergenceStudy(cmd.Option, cmd.SampleSizes)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Seconds()

	total := 0
	for _, p := range points {
		total += p.Scenarios
	}

	sim := engine.Simulation()
	logger.Info(ctx, "convergence study completed",
		"samples", len(points),
		"scenarios", total,
		"duration_seconds", elapsed,
	)

	s.recordRun(ctx, &domain.SimulationRun{
		Command:          domain.RunCommandConvergence,
		DurationSeconds:  elapsed,
		Workers:          sim.Workers,
		SamplesProcessed: total,
		ThroughputPerSec: throughput(total, elapsed),
		Market:           cmd.Market,
		Simulation:       sim,
	})

	if s.publisher != nil {
		event := domain.ConvergenceCompletedEvent{
			Market:     cmd.Market,
			Simulation: sim,
			Option:     cmd.Option,
			Points:     points,
			DurationMs: elapsed * 1000,
			OccurredOn: time.Now(),
		}
		if err := s.publisher.PublishConvergenceCompleted(ctx, event); err != nil {
			s.sideEffectFailed(ctx, "publish", err)
		}
	}

	return toConvergenceDTOs(points), nil
}

// ListRuns 返回最近的运行台账
func (s *SimulationService) ListRuns(ctx context.Context, limit int) ([]*RunDTO, error) {
	if s.repo == nil {
		return []*RunDTO{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	runs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	return dtos, nil
}

// recordRun 持久化台账并上报指标；失败只记录日志，不影响计算结果
func (s *SimulationService) recordRun(ctx context.Context, run *domain.SimulationRun) {
	if s.metrics != nil {
		s.metrics.RecordSimulation(run.Command, run.DurationSeconds, run.SamplesProcessed)
	}
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, run); err != nil {
		s.sideEffectFailed(ctx, "persist", err)
	}
}

func (s *SimulationService) sideEffectFailed(ctx context.Context, kind string, err error) {
	logger.Warn(ctx, "simulation side effect failed", "kind", kind, "error", err)
	if s.metrics != nil {
		s.metrics.RecordSideEffectFailure(kind)
	}
}
