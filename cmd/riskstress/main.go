// riskstress 并发压测模拟引擎，报告延迟分布与吞吐
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/pkg/logger"
)

func main() {
	jobs := flag.Int("jobs", runtime.NumCPU(), "concurrent jobs")
	iterations := flag.Int("iterations", 20, "simulations per job")
	paths := flag.Int("paths", 50000, "base paths per simulation")
	steps := flag.Int("steps", 64, "time steps per path")
	workers := flag.Int("workers", runtime.NumCPU(), "engine workers per simulation")
	optionOnly := flag.Bool("option-only", false, "skip the VaR leg, price options only")
	flag.Parse()

	if err := logger.Init(logger.Config{Level: "warn", Format: "text"}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	market := domain.MarketParams{Spot: 100, RiskFreeRate: 0.02, DividendYield: 0.01, Volatility: 0.2}
	sim := domain.SimulationConfig{
		Maturity:          1.0,
		TimeSteps:         *steps,
		Paths:             *paths,
		Seed:              42,
		UseAntithetic:     true,
		UseControlVariate: true,
		BlockSize:         4096,
		Workers:           *workers,
	}

	var mu sync.Mutex
	var latencies []time.Duration
	var scenarios int64

	start := time.Now()
	g, _ := errgroup.WithContext(context.Background())
	for job := 0; job < *jobs; job++ {
		job := job
		g.Go(func() error {
			for i := 0; i < *iterations; i++ {
				cfg := sim
				cfg.Seed = sim.Seed + int64(job*(*iterations)+i)
				engine, err := domain.NewMonteCarloEngine(market, cfg)
				if err != nil {
					return err
				}

				iterStart := time.Now()
				res, err := engine.PriceEuropeanOption(domain.OptionConfig{Strike: 100, IsCall: true})
				if err != nil {
					return err
				}
				processed := res.Scenarios

				if !*optionOnly {
					varRes, err := engine.ComputeParametricVaR(domain.VaRConfig{Percentile: 0.99, Notional: 1_000_000})
					if err != nil {
						return err
					}
					processed += varRes.Scenarios
				}
				elapsed := time.Since(iterStart)

				mu.Lock()
				latencies = append(latencies, elapsed)
				scenarios += int64(processed)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	total := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	mean := sum / time.Duration(len(latencies))
	p50 := latencies[len(latencies)/2]
	p95 := latencies[len(latencies)*95/100]
	max := latencies[len(latencies)-1]

	fmt.Printf("jobs=%d iterations=%d paths=%d steps=%d workers=%d\n", *jobs, *iterations, *paths, *steps, *workers)
	fmt.Printf("  runs       : %d\n", len(latencies))
	fmt.Printf("  total time : %.3fs\n", total.Seconds())
	fmt.Printf("  latency    : mean=%s p50=%s p95=%s max=%s\n", mean, p50, p95, max)
	fmt.Printf("  throughput : %.0f scenarios/s\n", float64(scenarios)/total.Seconds())
}
