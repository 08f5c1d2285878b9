package domain

import (
	"context"
	"time"
)

// 运行类别
const (
	RunCommandOption      = "option"
	RunCommandVaR         = "var"
	RunCommandConvergence = "convergence"
)

// SimulationRun 一次模拟运行的台账记录，供历史查询与诊断使用
type SimulationRun struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time
	// 运行类别：option / var / convergence
	Command string
	// 本次运行耗时（秒）
	DurationSeconds float64
	// 参与计算的 worker 数
	Workers int
	// 处理的场景总数（对偶变量加倍后）
	SamplesProcessed int
	// 每秒处理的场景数
	ThroughputPerSec float64
	// 运行入参快照
	Market     MarketParams
	Simulation SimulationConfig
	// 期权运行结果（var 运行时为零值）
	Option *OptionResult
	// VaR 运行结果（option 运行时为零值）
	VaR *VaRResult
}

// RunRepository 模拟运行台账的持久化接口
type RunRepository interface {
	// Save 追加一条运行记录
	Save(ctx context.Context, run *SimulationRun) error

	// ListRecent 按时间倒序返回最近 limit 条记录
	ListRecent(ctx context.Context, limit int) ([]*SimulationRun, error)
}
