// Package mysql 提供模拟运行台账的 GORM 持久化实现
package mysql

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
)

// SimulationRunModel 运行台账表模型
type SimulationRunModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Command          string  `gorm:"type:varchar(32);not null;index"`
	DurationSeconds  float64 `gorm:"not null"`
	Workers          int     `gorm:"not null"`
	SamplesProcessed int     `gorm:"not null"`
	ThroughputPerSec float64 `gorm:"not null"`

	// 运行入参快照，JSON 序列化存储
	MarketJSON     string `gorm:"column:market;type:json"`
	SimulationJSON string `gorm:"column:simulation;type:json"`

	// 期权定价结果，var 运行时为空
	Price         decimal.Decimal `gorm:"type:decimal(24,10)"`
	AnalyticPrice decimal.Decimal `gorm:"type:decimal(24,10)"`
	StandardError float64
	RelativeError float64
	CVWeight      float64 `gorm:"column:cv_weight"`

	// VaR 估计结果，option 运行时为空
	Percentile        float64
	ValueAtRisk       decimal.Decimal `gorm:"type:decimal(24,10)"`
	ExpectedShortfall decimal.Decimal `gorm:"type:decimal(24,10)"`
	MeanLoss          decimal.Decimal `gorm:"type:decimal(24,10)"`
	LossStdDev        float64
}

// TableName 指定表名
func (SimulationRunModel) TableName() string {
	return "simulation_runs"
}

func toModel(run *domain.SimulationRun) (*SimulationRunModel, error) {
	marketJSON, err := json.Marshal(run.Market)
	if err != nil {
		return nil, err
	}
	simJSON, err := json.Marshal(run.Simulation)
	if err != nil {
		return nil, err
	}

	m := &SimulationRunModel{
		ID:               run.ID,
		Command:          run.Command,
		DurationSeconds:  run.DurationSeconds,
		Workers:          run.Workers,
		SamplesProcessed: run.SamplesProcessed,
		ThroughputPerSec: run.ThroughputPerSec,
		MarketJSON:       string(marketJSON),
		SimulationJSON:   string(simJSON),
	}
	if run.Option != nil {
		m.Price = decimal.NewFromFloat(run.Option.Price)
		m.AnalyticPrice = decimal.NewFromFloat(run.Option.AnalyticPrice)
		m.StandardError = run.Option.StandardError
		m.RelativeError = run.Option.RelativeError
		m.CVWeight = run.Option.ControlVariateWeight
	}
	if run.VaR != nil {
		m.Percentile = run.VaR.Percentile
		m.ValueAtRisk = decimal.NewFromFloat(run.VaR.ValueAtRisk)
		m.ExpectedShortfall = decimal.NewFromFloat(run.VaR.ExpectedShortfall)
		m.MeanLoss = decimal.NewFromFloat(run.VaR.MeanLoss)
		m.LossStdDev = run.VaR.LossStdDev
	}
	return m, nil
}

func (m *SimulationRunModel) toDomain() (*domain.SimulationRun, error) {
	run := &domain.SimulationRun{
		ID:               m.ID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Command:          m.Command,
		DurationSeconds:  m.DurationSeconds,
		Workers:          m.Workers,
		SamplesProcessed: m.SamplesProcessed,
		ThroughputPerSec: m.ThroughputPerSec,
	}
	if m.MarketJSON != "" {
		if err := json.Unmarshal([]byte(m.MarketJSON), &run.Market); err != nil {
			return nil, err
		}
	}
	if m.SimulationJSON != "" {
		if err := json.Unmarshal([]byte(m.SimulationJSON), &run.Simulation); err != nil {
			return nil, err
		}
	}
	switch m.Command {
	case domain.RunCommandOption:
		run.Option = &domain.OptionResult{
			Price:                m.Price.InexactFloat64(),
			StandardError:        m.StandardError,
			AnalyticPrice:        m.AnalyticPrice.InexactFloat64(),
			RelativeError:        m.RelativeError,
			ControlVariateWeight: m.CVWeight,
			Scenarios:            m.SamplesProcessed,
		}
	case domain.RunCommandVaR:
		run.VaR = &domain.VaRResult{
			Percentile:        m.Percentile,
			ValueAtRisk:       m.ValueAtRisk.InexactFloat64(),
			ExpectedShortfall: m.ExpectedShortfall.InexactFloat64(),
			MeanLoss:          m.MeanLoss.InexactFloat64(),
			LossStdDev:        m.LossStdDev,
			Scenarios:         m.SamplesProcessed,
		}
	}
	return run, nil
}
