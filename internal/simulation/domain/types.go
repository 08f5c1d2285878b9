package domain

// MarketParams 市场参数，交给引擎后不可变
type MarketParams struct {
	// 标的现价，必须为正
	Spot float64 `json:"spot"`
	// 无风险利率（连续复利）
	RiskFreeRate float64 `json:"risk_free_rate"`
	// 连续股息率
	DividendYield float64 `json:"dividend_yield"`
	// 年化波动率，必须为正
	Volatility float64 `json:"volatility"`
}

// SimulationConfig 模拟配置
type SimulationConfig struct {
	// 到期时间（年），必须为正
	Maturity float64 `json:"maturity"`
	// 每条路径的时间步数，必须为正
	TimeSteps int `json:"time_steps"`
	// 基础路径数（对偶变量加倍前），必须为正
	Paths int `json:"paths"`
	// 随机数种子
	Seed int64 `json:"seed"`
	// 是否启用对偶变量
	UseAntithetic bool `json:"use_antithetic"`
	// 是否启用控制变量
	UseControlVariate bool `json:"use_control_variate"`
	// 每个并行工作单元处理的路径数，0 时取 1024
	BlockSize int `json:"block_size"`
	// 默认 VaR 置信水平，仅供调用方参考，引擎不做校验
	VaRConfidenceLevel float64 `json:"var_confidence_level"`
	// 并行 worker 数，由调用方显式注入；<=0 时取 1
	Workers int `json:"workers"`
}

// OptionConfig 欧式期权配置
type OptionConfig struct {
	// 执行价，必须为正
	Strike float64 `json:"strike"`
	// true 为看涨，false 为看跌
	IsCall bool `json:"is_call"`
}

// VaRConfig VaR 计算配置
type VaRConfig struct {
	// 分位数，必须严格位于 (0,1)
	Percentile float64 `json:"percentile"`
	// 头寸名义本金，损失按其缩放，可为任意实数
	Notional float64 `json:"notional"`
}

// OptionResult 一次期权定价的不可变快照
type OptionResult struct {
	Price                float64 `json:"price"`
	StandardError        float64 `json:"standard_error"`
	AnalyticPrice        float64 `json:"analytic_price"`
	RelativeError        float64 `json:"relative_error"`
	ControlVariateWeight float64 `json:"control_variate_weight"`
	Scenarios            int     `json:"scenarios"`
}

// VaRResult 一次 VaR 估计的不可变快照
type VaRResult struct {
	Percentile        float64 `json:"percentile"`
	ValueAtRisk       float64 `json:"value_at_risk"`
	ExpectedShortfall float64 `json:"expected_shortfall"`
	MeanLoss          float64 `json:"mean_loss"`
	LossStdDev        float64 `json:"loss_std_dev"`
	Scenarios         int     `json:"scenarios"`
}

// ConvergencePoint 收敛性研究中单个样本量的结果
type ConvergencePoint struct {
	Scenarios     int     `json:"scenarios"`
	Price         float64 `json:"price"`
	AbsoluteError float64 `json:"absolute_error"`
	RelativeError float64 `json:"relative_error"`
	StandardError float64 `json:"standard_error"`
}
