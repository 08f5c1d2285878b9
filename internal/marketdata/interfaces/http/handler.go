// Package http 负责处理历史行情相关的 HTTP 请求
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/risksim/internal/marketdata/application"
	"github.com/wyfcoding/risksim/internal/marketdata/domain"
	"github.com/wyfcoding/risksim/pkg/logger"
	"github.com/wyfcoding/risksim/pkg/response"
)

// MarketDataHandler 行情 HTTP 处理器
type MarketDataHandler struct {
	svc *application.MarketDataService
}

// NewMarketDataHandler 创建行情 HTTP 处理器
func NewMarketDataHandler(svc *application.MarketDataService) *MarketDataHandler {
	return &MarketDataHandler{svc: svc}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *MarketDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/marketdata")
	{
		api.GET("/historical", h.Historical)
		api.GET("/volatility", h.Volatility)
	}
}

// Historical 查询最近的历史行情
func (h *MarketDataHandler) Historical(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "0"))
	prices, err := h.svc.Latest(c.Request.Context(), count)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load historical prices", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, gin.H{
		"symbol": h.svc.Symbol(),
		"prices": prices,
	})
}

// Volatility 估计年化已实现波动率
func (h *MarketDataHandler) Volatility(c *gin.Context) {
	vol, err := h.svc.RealizedVolatility(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		logger.Error(c.Request.Context(), "failed to estimate realized volatility", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	response.Success(c, gin.H{
		"symbol":              h.svc.Symbol(),
		"realized_volatility": vol,
	})
}
