package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
)

// PriceOptionCommand 期权定价命令
type PriceOptionCommand struct {
	Market     domain.MarketParams
	Simulation domain.SimulationConfig
	Option     domain.OptionConfig
}

// ComputeVaRCommand VaR 估计命令
type ComputeVaRCommand struct {
	Market     domain.MarketParams
	Simulation domain.SimulationConfig
	VaR        domain.VaRConfig
}

// ConvergenceCommand 收敛性研究命令
type ConvergenceCommand struct {
	Market      domain.MarketParams
	Simulation  domain.SimulationConfig
	Option      domain.OptionConfig
	SampleSizes []int
}

// OptionResultDTO 期权定价结果
type OptionResultDTO struct {
	Price                decimal.Decimal `json:"price"`
	StandardError        float64         `json:"standard_error"`
	AnalyticPrice        decimal.Decimal `json:"analytic_price"`
	RelativeError        float64         `json:"relative_error"`
	ControlVariateWeight float64         `json:"control_variate_weight"`
	Scenarios            int             `json:"scenarios"`
	DurationSeconds      float64         `json:"duration_seconds"`
	ThroughputPerSec     float64         `json:"throughput_per_sec"`
	Workers              int             `json:"workers"`
}

// VaRResultDTO VaR 估计结果
type VaRResultDTO struct {
	Percentile        float64         `json:"percentile"`
	ValueAtRisk       decimal.Decimal `json:"value_at_risk"`
	ExpectedShortfall decimal.Decimal `json:"expected_shortfall"`
	MeanLoss          decimal.Decimal `json:"mean_loss"`
	LossStdDev        float64         `json:"loss_std_dev"`
	Scenarios         int             `json:"scenarios"`
	DurationSeconds   float64         `json:"duration_seconds"`
	ThroughputPerSec  float64         `json:"throughput_per_sec"`
	Workers           int             `json:"workers"`
}

// ConvergencePointDTO 收敛曲线上的一个点
type ConvergencePointDTO struct {
	Scenarios     int     `json:"scenarios"`
	Price         float64 `json:"price"`
	AbsoluteError float64 `json:"absolute_error"`
	RelativeError float64 `json:"relative_error"`
	StandardError float64 `json:"standard_error"`
}

// RunDTO 运行台账条目
type RunDTO struct {
	ID               uint                 `json:"id"`
	CreatedAt        int64                `json:"created_at"`
	Command          string               `json:"command"`
	DurationSeconds  float64              `json:"duration_seconds"`
	Workers          int                  `json:"workers"`
	SamplesProcessed int                  `json:"samples_processed"`
	ThroughputPerSec float64              `json:"throughput_per_sec"`
	Option           *domain.OptionResult `json:"option,omitempty"`
	VaR              *domain.VaRResult    `json:"var,omitempty"`
}

func toOptionDTO(res *domain.OptionResult, durationSeconds float64, workers int) *OptionResultDTO {
	return &OptionResultDTO{
		Price:                decimal.NewFromFloat(res.Price),
		StandardError:        res.StandardError,
		AnalyticPrice:        decimal.NewFromFloat(res.AnalyticPrice),
		RelativeError:        res.RelativeError,
		ControlVariateWeight: res.ControlVariateWeight,
		Scenarios:            res.Scenarios,
		DurationSeconds:      durationSeconds,
		ThroughputPerSec:     throughput(res.Scenarios, durationSeconds),
		Workers:              workers,
	}
}

func toVaRDTO(res *domain.VaRResult, durationSeconds float64, workers int) *VaRResultDTO {
	return &VaRResultDTO{
		Percentile:        res.Percentile,
		ValueAtRisk:       decimal.NewFromFloat(res.ValueAtRisk),
		ExpectedShortfall: decimal.NewFromFloat(res.ExpectedShortfall),
		MeanLoss:          decimal.NewFromFloat(res.MeanLoss),
		LossStdDev:        res.LossStdDev,
		Scenarios:         res.Scenarios,
		DurationSeconds:   durationSeconds,
		ThroughputPerSec:  throughput(res.Scenarios, durationSeconds),
		Workers:           workers,
	}
}

func toConvergenceDTOs(points []domain.ConvergencePoint) []ConvergencePointDTO {
	dtos := make([]ConvergencePointDTO, len(points))
	for i, p := range points {
		dtos[i] = ConvergencePointDTO{
			Scenarios:     p.Scenarios,
			Price:         p.Price,
			AbsoluteError: p.AbsoluteError,
			RelativeError: p.RelativeError,
			StandardError: p.StandardError,
		}
	}
	return dtos
}

func toRunDTO(run *domain.SimulationRun) *RunDTO {
	return &RunDTO{
		ID:               run.ID,
		CreatedAt:        run.CreatedAt.UnixMilli(),
		Command:          run.Command,
		DurationSeconds:  run.DurationSeconds,
		Workers:          run.Workers,
		SamplesProcessed: run.SamplesProcessed,
		ThroughputPerSec: run.ThroughputPerSec,
		Option:           run.Option,
		VaR:              run.VaR,
	}
}

func throughput(scenarios int, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return float64(scenarios) / durationSeconds
}
