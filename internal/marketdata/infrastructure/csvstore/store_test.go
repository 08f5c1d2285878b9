package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStoreLoadsAndSortsByDate(t *testing.T) {
	// 故意乱序，存储层按日期升序排列
	path := writeCSV(t, `date,open,high,low,close,adj_close,volume
2024-01-04,103,104,102,103.5,103.5,1200
2024-01-02,100,101,99,100.5,100.5,1000
2024-01-03,101,103,100,102,102,1100
`)
	store, err := NewStore(path, "SPY")
	require.NoError(t, err)

	prices, err := store.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.Equal(t, "SPY", store.Symbol())
	assert.Equal(t, "2024-01-02", prices[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-01-03", prices[1].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-01-04", prices[2].Date.Format("2006-01-02"))
	assert.Equal(t, 100.5, prices[0].Close)
	assert.Equal(t, int64(1000), prices[0].Volume)
}

func TestStoreFallsBackToCloseWhenAdjCloseMissing(t *testing.T) {
	path := writeCSV(t, `date,open,high,low,close,adj_close,volume
2024-01-02,100,101,99,100.5,0,1000
`)
	store, err := NewStore(path, "SPY")
	require.NoError(t, err)

	prices, err := store.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 100.5, prices[0].AdjClose)
}

func TestStoreRejectsMissingFile(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing.csv"), "SPY")
	assert.Error(t, err)
}

func TestStoreRejectsBadDate(t *testing.T) {
	path := writeCSV(t, `date,open,high,low,close,adj_close,volume
not-a-date,100,101,99,100.5,100.5,1000
`)
	_, err := NewStore(path, "SPY")
	assert.Error(t, err)
}

func TestStoreReloadReplacesRecords(t *testing.T) {
	path := writeCSV(t, `date,open,high,low,close,adj_close,volume
2024-01-02,100,101,99,100.5,100.5,1000
`)
	store, err := NewStore(path, "SPY")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`date,open,high,low,close,adj_close,volume
2024-01-02,100,101,99,100.5,100.5,1000
2024-01-03,101,103,100,102,102,1100
`), 0o644))
	require.NoError(t, store.Reload())

	prices, err := store.Prices(context.Background())
	require.NoError(t, err)
	assert.Len(t, prices, 2)
}

func TestStorePricesReturnsCopy(t *testing.T) {
	path := writeCSV(t, `date,open,high,low,close,adj_close,volume
2024-01-02,100,101,99,100.5,100.5,1000
`)
	store, err := NewStore(path, "SPY")
	require.NoError(t, err)

	first, err := store.Prices(context.Background())
	require.NoError(t, err)
	first[0].Close = -1

	second, err := store.Prices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.5, second[0].Close)
}
