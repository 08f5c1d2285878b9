// Package metrics 提供 Prometheus helper，覆盖模拟与 HTTP 两类指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/risksim/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// 按命令统计的模拟次数
	SimulationsTotal *prometheus.CounterVec
	// 模拟耗时
	SimulationDuration *prometheus.HistogramVec
	// 累计模拟的场景数
	PathsSimulated prometheus.Counter
	// 持久化/事件发布失败次数
	SideEffectFailures *prometheus.CounterVec

	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		SimulationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "simulations_total",
			Help:      "Total simulations executed, by command",
		}, []string{"command"}),
		SimulationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "simulation_duration_seconds",
			Help:      "Simulation wall time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"command"}),
		PathsSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "paths_simulated_total",
			Help:      "Total simulated scenarios",
		}),
		SideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "side_effect_failures_total",
			Help:      "Ledger persistence / event publish failures",
		}, []string{"kind"}),
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risksim",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.SimulationsTotal,
		m.SimulationDuration,
		m.PathsSimulated,
		m.SideEffectFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	}
	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordSimulation 记录一次模拟
func (m *Metrics) RecordSimulation(command string, durationSeconds float64, scenarios int) {
	m.SimulationsTotal.WithLabelValues(command).Inc()
	m.SimulationDuration.WithLabelValues(command).Observe(durationSeconds)
	m.PathsSimulated.Add(float64(scenarios))
}

// RecordSideEffectFailure 记录一次副作用失败
func (m *Metrics) RecordSideEffectFailure(kind string) {
	m.SideEffectFailures.WithLabelValues(kind).Inc()
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}
	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Prometheus HTTP server stopped", "error", err)
		}
	}()
}
