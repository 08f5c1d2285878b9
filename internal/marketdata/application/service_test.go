package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/risksim/internal/marketdata/domain"
)

type fakeStore struct {
	prices []domain.HistoricalPrice
}

func (s *fakeStore) Prices(_ context.Context) ([]domain.HistoricalPrice, error) {
	return s.prices, nil
}

func (s *fakeStore) Symbol() string { return "SPY" }

func seedPrices(closes ...float64) []domain.HistoricalPrice {
	prices := make([]domain.HistoricalPrice, len(closes))
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		prices[i] = domain.HistoricalPrice{Symbol: "SPY", Date: base.AddDate(0, 0, i), Close: c, AdjClose: c}
	}
	return prices
}

func TestLatestReturnsTailInOrder(t *testing.T) {
	svc := NewMarketDataService(&fakeStore{prices: seedPrices(100, 101, 102, 103)})

	prices, err := svc.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 102.0, prices[0].Close)
	assert.Equal(t, 103.0, prices[1].Close)
}

func TestLatestZeroLimitReturnsAll(t *testing.T) {
	svc := NewMarketDataService(&fakeStore{prices: seedPrices(100, 101, 102)})

	prices, err := svc.Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}

func TestRealizedVolatilityDelegatesToDomain(t *testing.T) {
	svc := NewMarketDataService(&fakeStore{prices: seedPrices(100, 110, 99, 105)})

	vol, err := svc.RealizedVolatility(context.Background())
	require.NoError(t, err)
	assert.Greater(t, vol, 0.0)
}

func TestRealizedVolatilityInsufficientData(t *testing.T) {
	svc := NewMarketDataService(&fakeStore{prices: seedPrices(100, 101)})

	_, err := svc.RealizedVolatility(context.Background())
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
