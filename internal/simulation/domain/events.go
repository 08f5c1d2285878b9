package domain

import "time"

const (
	OptionPricedEventType         = "OptionPriced"
	VaRComputedEventType          = "VaRComputed"
	ConvergenceCompletedEventType = "ConvergenceCompleted"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	Market     MarketParams     `json:"market"`
	Simulation SimulationConfig `json:"simulation"`
	Option     OptionConfig     `json:"option"`
	Result     OptionResult     `json:"result"`
	DurationMs float64          `json:"duration_ms"`
	OccurredOn time.Time        `json:"occurred_on"`
}

// VaRComputedEvent VaR 估计完成事件
type VaRComputedEvent struct {
	Market     MarketParams     `json:"market"`
	Simulation SimulationConfig `json:"simulation"`
	VaR        VaRConfig        `json:"var"`
	Result     VaRResult        `json:"result"`
	DurationMs float64          `json:"duration_ms"`
	OccurredOn time.Time        `json:"occurred_on"`
}

// ConvergenceCompletedEvent 收敛性研究完成事件
type ConvergenceCompletedEvent struct {
	Market     MarketParams       `json:"market"`
	Simulation SimulationConfig   `json:"simulation"`
	Option     OptionConfig       `json:"option"`
	Points     []ConvergencePoint `json:"points"`
	DurationMs float64            `json:"duration_ms"`
	OccurredOn time.Time          `json:"occurred_on"`
}
