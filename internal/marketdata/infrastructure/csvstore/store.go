// Package csvstore 从本地 CSV 文件加载历史行情
package csvstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/wyfcoding/risksim/internal/marketdata/domain"
)

// priceRow CSV 行，字段名对应表头
type priceRow struct {
	Date     string  `csv:"date"`
	Open     float64 `csv:"open"`
	High     float64 `csv:"high"`
	Low      float64 `csv:"low"`
	Close    float64 `csv:"close"`
	AdjClose float64 `csv:"adj_close"`
	Volume   int64   `csv:"volume"`
}

// Store domain.PriceStore 的 CSV 文件实现，加载后常驻内存
type Store struct {
	path   string
	symbol string

	mu     sync.RWMutex
	prices []domain.HistoricalPrice
}

// NewStore 创建并加载 CSV 行情存储
func NewStore(path, symbol string) (*Store, error) {
	s := &Store{path: path, symbol: symbol}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload 重新读取 CSV 文件，替换内存中的全部记录
func (s *Store) Reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open market data csv: %w", err)
	}
	defer f.Close()

	var rows []priceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("parse market data csv: %w", err)
	}

	prices := make([]domain.HistoricalPrice, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return fmt.Errorf("parse market data date %q: %w", row.Date, err)
		}
		adjClose := row.AdjClose
		if adjClose == 0 {
			adjClose = row.Close
		}
		prices = append(prices, domain.HistoricalPrice{
			Symbol:   s.symbol,
			Date:     date,
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			AdjClose: adjClose,
			Volume:   row.Volume,
		})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })

	s.mu.Lock()
	s.prices = prices
	s.mu.Unlock()
	return nil
}

// Prices 按日期升序返回全部行情记录
func (s *Store) Prices(_ context.Context) ([]domain.HistoricalPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HistoricalPrice, len(s.prices))
	copy(out, s.prices)
	return out, nil
}

// Symbol 返回行情对应的标的代码
func (s *Store) Symbol() string {
	return s.symbol
}
