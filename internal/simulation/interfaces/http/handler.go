// Package http 负责处理模拟相关的 HTTP 请求
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/risksim/internal/simulation/application"
	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/pkg/logger"
	"github.com/wyfcoding/risksim/pkg/response"
)

// Defaults 请求未携带的模拟参数的缺省值，来自服务配置
type Defaults struct {
	Paths     int
	TimeSteps int
	BlockSize int
	Seed      int64
	Workers   int
}

// SimulationHandler 模拟 HTTP 处理器
type SimulationHandler struct {
	svc      *application.SimulationService
	defaults Defaults
}

// NewSimulationHandler 创建 HTTP 处理器实例
func NewSimulationHandler(svc *application.SimulationService, defaults Defaults) *SimulationHandler {
	return &SimulationHandler{svc: svc, defaults: defaults}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *SimulationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/simulation")
	{
		api.POST("/option", h.PriceOption)
		api.POST("/var", h.ComputeVaR)
		api.POST("/convergence", h.Convergence)
		api.GET("/runs", h.ListRuns)
	}
}

// MarketRequest 市场参数
type MarketRequest struct {
	Spot       float64 `json:"spot" binding:"required"`
	Rate       float64 `json:"rate"`
	Dividend   float64 `json:"dividend"`
	Volatility float64 `json:"volatility" binding:"required"`
}

// SimulationRequest 模拟配置，缺省字段由服务配置补齐
type SimulationRequest struct {
	Maturity       float64 `json:"maturity" binding:"required"`
	TimeSteps      int     `json:"time_steps"`
	Paths          int     `json:"paths"`
	Seed           *int64  `json:"seed"`
	Antithetic     *bool   `json:"antithetic"`
	ControlVariate *bool   `json:"control_variate"`
	BlockSize      int     `json:"block_size"`
	Workers        int     `json:"workers"`
}

// OptionRequest 期权定价请求
type OptionRequest struct {
	Market     MarketRequest     `json:"market" binding:"required"`
	Simulation SimulationRequest `json:"simulation" binding:"required"`
	Strike     float64           `json:"strike" binding:"required"`
	Type       string            `json:"type"`
}

// VaRRequest VaR 估计请求
type VaRRequest struct {
	Market     MarketRequest     `json:"market" binding:"required"`
	Simulation SimulationRequest `json:"simulation" binding:"required"`
	Percentile float64           `json:"percentile" binding:"required"`
	Notional   float64           `json:"notional"`
}

// ConvergenceRequest 收敛性研究请求
type ConvergenceRequest struct {
	Market     MarketRequest     `json:"market" binding:"required"`
	Simulation SimulationRequest `json:"simulation" binding:"required"`
	Strike     float64           `json:"strike" binding:"required"`
	Type       string            `json:"type"`
	Samples    []int             `json:"samples" binding:"required,min=1"`
}

// PriceOption 期权定价
func (h *SimulationHandler) PriceOption(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	cmd := application.PriceOptionCommand{
		Market:     toMarket(req.Market),
		Simulation: h.toSimulation(req.Simulation),
		Option:     domain.OptionConfig{Strike: req.Strike, IsCall: req.Type != "put"},
	}
	result, err := h.svc.PriceOption(c.Request.Context(), cmd)
	if err != nil {
		h.renderError(c, "failed to price option", err)
		return
	}
	response.Success(c, result)
}

// ComputeVaR VaR 估计
func (h *SimulationHandler) ComputeVaR(c *gin.Context) {
	var req VaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	notional := req.Notional
	if notional == 0 {
		notional = 1
	}
	cmd := application.ComputeVaRCommand{
		Market:     toMarket(req.Market),
		Simulation: h.toSimulation(req.Simulation),
		VaR:        domain.VaRConfig{Percentile: req.Percentile, Notional: notional},
	}
	result, err := h.svc.ComputeVaR(c.Request.Context(), cmd)
	if err != nil {
		h.renderError(c, "failed to compute VaR", err)
		return
	}
	response.Success(c, result)
}

// Convergence 收敛性研究
func (h *SimulationHandler) Convergence(c *gin.Context) {
	var req ConvergenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	cmd := application.ConvergenceCommand{
		Market:      toMarket(req.Market),
		Simulation:  h.toSimulation(req.Simulation),
		Option:      domain.OptionConfig{Strike: req.Strike, IsCall: req.Type != "put"},
		SampleSizes: req.Samples,
	}
	points, err := h.svc.RunConvergenceStudy(c.Request.Context(), cmd)
	if err != nil {
		h.renderError(c, "failed to run convergence study", err)
		return
	}
	response.Success(c, gin.H{"points": points})
}

// ListRuns 查询最近的运行台账
func (h *SimulationHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.svc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.renderError(c, "failed to list runs", err)
		return
	}
	response.Success(c, gin.H{"runs": runs})
}

func (h *SimulationHandler) renderError(c *gin.Context, msg string, err error) {
	if errors.Is(err, domain.ErrInvalidConfiguration) {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	logger.Error(c.Request.Context(), msg, "error", err)
	response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
}

func toMarket(req MarketRequest) domain.MarketParams {
	return domain.MarketParams{
		Spot:          req.Spot,
		RiskFreeRate:  req.Rate,
		DividendYield: req.Dividend,
		Volatility:    req.Volatility,
	}
}

func (h *SimulationHandler) toSimulation(req SimulationRequest) domain.SimulationConfig {
	sim := domain.SimulationConfig{
		Maturity:          req.Maturity,
		TimeSteps:         req.TimeSteps,
		Paths:             req.Paths,
		Seed:              h.defaults.Seed,
		UseAntithetic:     true,
		UseControlVariate: true,
		BlockSize:         req.BlockSize,
		Workers:           req.Workers,
	}
	if sim.TimeSteps == 0 {
		sim.TimeSteps = h.defaults.TimeSteps
	}
	if sim.Paths == 0 {
		sim.Paths = h.defaults.Paths
	}
	if sim.BlockSize == 0 {
		sim.BlockSize = h.defaults.BlockSize
	}
	if sim.Workers == 0 {
		sim.Workers = h.defaults.Workers
	}
	if req.Seed != nil {
		sim.Seed = *req.Seed
	}
	if req.Antithetic != nil {
		sim.UseAntithetic = *req.Antithetic
	}
	if req.ControlVariate != nil {
		sim.UseControlVariate = *req.ControlVariate
	}
	return sim
}
