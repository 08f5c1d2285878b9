// Package application 提供历史行情查询与已实现波动率估计
package application

import (
	"context"

	"github.com/wyfcoding/risksim/internal/marketdata/domain"
)

// MarketDataService 行情应用服务
type MarketDataService struct {
	store domain.PriceStore
}

// NewMarketDataService 创建行情应用服务
func NewMarketDataService(store domain.PriceStore) *MarketDataService {
	return &MarketDataService{store: store}
}

// Latest 返回最近 n 条行情记录，按日期升序
func (s *MarketDataService) Latest(ctx context.Context, n int) ([]domain.HistoricalPrice, error) {
	prices, err := s.store.Prices(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(prices) {
		prices = prices[len(prices)-n:]
	}
	return prices, nil
}

// RealizedVolatility 用全部历史记录估计年化已实现波动率
func (s *MarketDataService) RealizedVolatility(ctx context.Context) (float64, error) {
	prices, err := s.store.Prices(ctx)
	if err != nil {
		return 0, err
	}
	return domain.RealizedVolatility(prices)
}

// Symbol 返回行情对应的标的代码
func (s *MarketDataService) Symbol() string {
	return s.store.Symbol()
}
