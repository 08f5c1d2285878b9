// risksim 是模拟引擎的命令行入口，不依赖任何外部服务
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/wyfcoding/risksim/internal/simulation/application"
	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/pkg/logger"
)

const usage = `Usage: risksim <command> [flags]

Commands:
  option       price a European option by Monte Carlo
  var          estimate portfolio VaR and expected shortfall
  convergence  run a convergence study over increasing sample sizes

Run "risksim <command> -h" for command flags.
`

// marketFlags 各子命令共享的市场与模拟参数
type marketFlags struct {
	spot       float64
	rate       float64
	dividend   float64
	volatility float64
	maturity   float64
	steps      int
	paths      int
	seed       int64
	block      int
	workers    int
	antithetic bool
	controlVar bool
	confidence float64
	format     string
}

func registerFlags(fs *flag.FlagSet) *marketFlags {
	f := &marketFlags{}
	fs.Float64Var(&f.spot, "spot", 100, "spot price of the underlying")
	fs.Float64Var(&f.rate, "rate", 0.02, "continuously compounded risk-free rate")
	fs.Float64Var(&f.dividend, "dividend", 0.01, "continuous dividend yield")
	fs.Float64Var(&f.volatility, "vol", 0.2, "annualized volatility")
	fs.Float64Var(&f.maturity, "maturity", 1.0, "time to maturity in years")
	fs.IntVar(&f.steps, "steps", 252, "time steps per path")
	fs.IntVar(&f.paths, "paths", 200000, "base simulation paths before antithetic doubling")
	fs.Int64Var(&f.seed, "seed", 42, "random seed")
	fs.IntVar(&f.block, "block", 4096, "paths per work block")
	fs.IntVar(&f.workers, "workers", runtime.NumCPU(), "parallel workers")
	fs.BoolVar(&f.antithetic, "antithetic", true, "use antithetic variates")
	fs.BoolVar(&f.controlVar, "control", true, "use the terminal price control variate")
	fs.Float64Var(&f.confidence, "confidence", 0.99, "default VaR confidence level")
	fs.StringVar(&f.format, "format", "text", "output format: text or json")
	return f
}

func (f *marketFlags) market() domain.MarketParams {
	return domain.MarketParams{
		Spot:          f.spot,
		RiskFreeRate:  f.rate,
		DividendYield: f.dividend,
		Volatility:    f.volatility,
	}
}

func (f *marketFlags) simulation() domain.SimulationConfig {
	return domain.SimulationConfig{
		Maturity:           f.maturity,
		TimeSteps:          f.steps,
		Paths:              f.paths,
		Seed:               f.seed,
		UseAntithetic:      f.antithetic,
		UseControlVariate:  f.controlVar,
		BlockSize:          f.block,
		VaRConfidenceLevel: f.confidence,
		Workers:            f.workers,
	}
}

func main() {
	if err := logger.Init(logger.Config{Level: "warn", Format: "text"}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	svc := application.NewSimulationService(nil, nil, nil)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "option":
		err = runOption(ctx, svc, os.Args[2:])
	case "var":
		err = runVaR(ctx, svc, os.Args[2:])
	case "convergence":
		err = runConvergence(ctx, svc, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runOption(ctx context.Context, svc *application.SimulationService, args []string) error {
	fs := flag.NewFlagSet("option", flag.ExitOnError)
	f := registerFlags(fs)
	strike := fs.Float64("strike", 100, "strike price")
	optType := fs.String("type", "call", "option type: call or put")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := svc.PriceOption(ctx, application.PriceOptionCommand{
		Market:     f.market(),
		Simulation: f.simulation(),
		Option:     domain.OptionConfig{Strike: *strike, IsCall: *optType != "put"},
	})
	if err != nil {
		return err
	}

	if f.format == "json" {
		return printJSON(res)
	}
	fmt.Printf("European %s  strike=%.4f  maturity=%.4f\n", *optType, *strike, f.maturity)
	fmt.Printf("  monte carlo price : %s\n", res.Price.StringFixed(6))
	fmt.Printf("  analytic price    : %s\n", res.AnalyticPrice.StringFixed(6))
	fmt.Printf("  standard error    : %.6f\n", res.StandardError)
	fmt.Printf("  relative error    : %.6f\n", res.RelativeError)
	fmt.Printf("  cv weight         : %.6f\n", res.ControlVariateWeight)
	fmt.Printf("  scenarios         : %d\n", res.Scenarios)
	fmt.Printf("  workers           : %d\n", res.Workers)
	fmt.Printf("  elapsed           : %.3fs  (%.0f scenarios/s)\n", res.DurationSeconds, res.ThroughputPerSec)
	return nil
}

func runVaR(ctx context.Context, svc *application.SimulationService, args []string) error {
	fs := flag.NewFlagSet("var", flag.ExitOnError)
	f := registerFlags(fs)
	percentile := fs.Float64("percentile", 0, "loss percentile in (0,1), defaults to -confidence")
	notional := fs.Float64("notional", 1_000_000, "position notional")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *percentile == 0 {
		*percentile = f.confidence
	}

	res, err := svc.ComputeVaR(ctx, application.ComputeVaRCommand{
		Market:     f.market(),
		Simulation: f.simulation(),
		VaR:        domain.VaRConfig{Percentile: *percentile, Notional: *notional},
	})
	if err != nil {
		return err
	}

	if f.format == "json" {
		return printJSON(res)
	}
	fmt.Printf("Parametric VaR  percentile=%.4f  notional=%.2f  horizon=%.4fy\n", *percentile, *notional, f.maturity)
	fmt.Printf("  value at risk      : %s\n", res.ValueAtRisk.StringFixed(2))
	fmt.Printf("  expected shortfall : %s\n", res.ExpectedShortfall.StringFixed(2))
	fmt.Printf("  mean loss          : %s\n", res.MeanLoss.StringFixed(2))
	fmt.Printf("  loss std dev       : %.2f\n", res.LossStdDev)
	fmt.Printf("  scenarios          : %d\n", res.Scenarios)
	fmt.Printf("  elapsed            : %.3fs  (%.0f scenarios/s)\n", res.DurationSeconds, res.ThroughputPerSec)
	return nil
}

func runConvergence(ctx context.Context, svc *application.SimulationService, args []string) error {
	fs := flag.NewFlagSet("convergence", flag.ExitOnError)
	f := registerFlags(fs)
	strike := fs.Float64("strike", 100, "strike price")
	optType := fs.String("type", "call", "option type: call or put")
	samplesArg := fs.String("samples", "5000,20000,80000,160000", "comma-separated base path counts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	samples, err := parseSamples(*samplesArg)
	if err != nil {
		return err
	}

	points, err := svc.RunConvergenceStudy(ctx, application.ConvergenceCommand{
		Market:      f.market(),
		Simulation:  f.simulation(),
		Option:      domain.OptionConfig{Strike: *strike, IsCall: *optType != "put"},
		SampleSizes: samples,
	})
	if err != nil {
		return err
	}

	if f.format == "json" {
		return printJSON(points)
	}
	fmt.Printf("%-12s %-14s %-14s %-14s %-14s\n", "scenarios", "price", "abs error", "rel error", "std error")
	for _, p := range points {
		fmt.Printf("%-12d %-14.6f %-14.6f %-14.6f %-14.6f\n",
			p.Scenarios, p.Price, p.AbsoluteError, p.RelativeError, p.StandardError)
	}
	return nil
}

func parseSamples(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	samples := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid sample size %q: %w", part, err)
		}
		samples = append(samples, n)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no sample sizes given")
	}
	return samples, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
