package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/risksim/internal/simulation/application"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := application.NewSimulationService(nil, nil, nil)
	handler := NewSimulationHandler(svc, Defaults{
		Paths:     2000,
		TimeSteps: 8,
		BlockSize: 512,
		Seed:      42,
		Workers:   2,
	})

	router := gin.New()
	handler.RegisterRoutes(&router.RouterGroup)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPriceOptionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/option", gin.H{
		"market":     gin.H{"spot": 100, "rate": 0.02, "dividend": 0.01, "volatility": 0.2},
		"simulation": gin.H{"maturity": 1.0, "paths": 4000},
		"strike":     100,
		"type":       "call",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Price     json.Number `json:"price"`
			Scenarios int         `json:"scenarios"`
			Workers   int         `json:"workers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	// 4000 条基础路径加对偶镜像
	assert.Equal(t, 8000, resp.Data.Scenarios)
	assert.Equal(t, 2, resp.Data.Workers)

	price, err := resp.Data.Price.Float64()
	require.NoError(t, err)
	assert.Greater(t, price, 0.0)
}

func TestPriceOptionEndpointRejectsInvalidConfiguration(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/option", gin.H{
		"market":     gin.H{"spot": 100, "volatility": 0.2},
		"simulation": gin.H{"maturity": 1.0},
		"strike":     -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceOptionEndpointRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/option", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeVaREndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/var", gin.H{
		"market":     gin.H{"spot": 100, "rate": 0.02, "volatility": 0.2},
		"simulation": gin.H{"maturity": 0.25, "time_steps": 4},
		"percentile": 0.99,
		"notional":   1000000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			ValueAtRisk       json.Number `json:"value_at_risk"`
			ExpectedShortfall json.Number `json:"expected_shortfall"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	v, err := resp.Data.ValueAtRisk.Float64()
	require.NoError(t, err)
	es, err := resp.Data.ExpectedShortfall.Float64()
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
	assert.GreaterOrEqual(t, es, v-1e-9)
}

func TestComputeVaREndpointRejectsBadPercentile(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/var", gin.H{
		"market":     gin.H{"spot": 100, "volatility": 0.2},
		"simulation": gin.H{"maturity": 0.25},
		"percentile": 1.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvergenceEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/convergence", gin.H{
		"market":     gin.H{"spot": 100, "rate": 0.02, "volatility": 0.2},
		"simulation": gin.H{"maturity": 1.0, "time_steps": 4},
		"strike":     100,
		"samples":    []int{500, 1000},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Points []struct {
				Scenarios int `json:"scenarios"`
			} `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Points, 2)
	assert.Equal(t, 1000, resp.Data.Points[0].Scenarios)
	assert.Equal(t, 2000, resp.Data.Points[1].Scenarios)
}

func TestConvergenceEndpointRequiresSamples(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/simulation/convergence", gin.H{
		"market":     gin.H{"spot": 100, "volatility": 0.2},
		"simulation": gin.H{"maturity": 1.0},
		"strike":     100,
		"samples":    []int{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRunsEndpointWithoutRepository(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulation/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Runs []json.RawMessage `json:"runs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Runs)
}
