// Package domain 定义历史行情的领域模型
package domain

import (
	"context"
	"time"
)

// HistoricalPrice 单个交易日的行情记录
type HistoricalPrice struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// PriceStore 历史行情的只读存取接口
type PriceStore interface {
	// Prices 按日期升序返回全部行情记录
	Prices(ctx context.Context) ([]HistoricalPrice, error)

	// Symbol 返回行情对应的标的代码
	Symbol() string
}
