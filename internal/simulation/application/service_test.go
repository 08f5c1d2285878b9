package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
)

type fakeRepo struct {
	mu   sync.Mutex
	runs []*domain.SimulationRun
	err  error
}

func (r *fakeRepo) Save(_ context.Context, run *domain.SimulationRun) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRepo) ListRecent(_ context.Context, limit int) ([]*domain.SimulationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]*domain.SimulationRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

type fakePublisher struct {
	optionEvents      []domain.OptionPricedEvent
	varEvents         []domain.VaRComputedEvent
	convergenceEvents []domain.ConvergenceCompletedEvent
	err               error
}

func (p *fakePublisher) PublishOptionPriced(_ context.Context, e domain.OptionPricedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.optionEvents = append(p.optionEvents, e)
	return nil
}

func (p *fakePublisher) PublishVaRComputed(_ context.Context, e domain.VaRComputedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.varEvents = append(p.varEvents, e)
	return nil
}

func (p *fakePublisher) PublishConvergenceCompleted(_ context.Context, e domain.ConvergenceCompletedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.convergenceEvents = append(p.convergenceEvents, e)
	return nil
}

func testCommand() PriceOptionCommand {
	return PriceOptionCommand{
		Market: domain.MarketParams{Spot: 100, RiskFreeRate: 0.02, DividendYield: 0.01, Volatility: 0.2},
		Simulation: domain.SimulationConfig{
			Maturity:          1.0,
			TimeSteps:         8,
			Paths:             5000,
			Seed:              42,
			UseAntithetic:     true,
			UseControlVariate: true,
			Workers:           2,
		},
		Option: domain.OptionConfig{Strike: 100, IsCall: true},
	}
}

func TestPriceOptionRecordsRunAndPublishesEvent(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	svc := NewSimulationService(repo, pub, nil)

	dto, err := svc.PriceOption(context.Background(), testCommand())
	require.NoError(t, err)

	assert.Equal(t, 10000, dto.Scenarios)
	assert.Greater(t, dto.ThroughputPerSec, 0.0)

	require.Len(t, repo.runs, 1)
	assert.Equal(t, domain.RunCommandOption, repo.runs[0].Command)
	assert.Equal(t, 10000, repo.runs[0].SamplesProcessed)
	require.NotNil(t, repo.runs[0].Option)

	require.Len(t, pub.optionEvents, 1)
	assert.Equal(t, 10000, pub.optionEvents[0].Result.Scenarios)
}

func TestPriceOptionPropagatesValidationError(t *testing.T) {
	svc := NewSimulationService(nil, nil, nil)

	cmd := testCommand()
	cmd.Market.Volatility = 0
	dto, err := svc.PriceOption(context.Background(), cmd)
	assert.Nil(t, dto)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))

	cmd = testCommand()
	cmd.Option.Strike = -1
	dto, err = svc.PriceOption(context.Background(), cmd)
	assert.Nil(t, dto)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
}

func TestPriceOptionSurvivesSideEffectFailures(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewSimulationService(repo, pub, nil)

	dto, err := svc.PriceOption(context.Background(), testCommand())
	require.NoError(t, err)
	assert.NotNil(t, dto)
}

func TestComputeVaRRecordsRun(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	svc := NewSimulationService(repo, pub, nil)

	cmd := ComputeVaRCommand{
		Market:     domain.MarketParams{Spot: 100, RiskFreeRate: 0.02, Volatility: 0.2},
		Simulation: testCommand().Simulation,
		VaR:        domain.VaRConfig{Percentile: 0.99, Notional: 1_000_000},
	}
	dto, err := svc.ComputeVaR(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, dto.ExpectedShortfall.GreaterThanOrEqual(dto.ValueAtRisk))
	require.Len(t, repo.runs, 1)
	assert.Equal(t, domain.RunCommandVaR, repo.runs[0].Command)
	require.NotNil(t, repo.runs[0].VaR)
	require.Len(t, pub.varEvents, 1)
}

func TestRunConvergenceStudyKeepsOrder(t *testing.T) {
	svc := NewSimulationService(nil, &fakePublisher{}, nil)

	cmd := ConvergenceCommand{
		Market:      testCommand().Market,
		Simulation:  testCommand().Simulation,
		Option:      testCommand().Option,
		SampleSizes: []int{1000, 4000, 2000},
	}
	points, err := svc.RunConvergenceStudy(context.Background(), cmd)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// 顺序与调用方给出的样本序列一致，不做重排
	assert.Equal(t, 2000, points[0].Scenarios)
	assert.Equal(t, 8000, points[1].Scenarios)
	assert.Equal(t, 4000, points[2].Scenarios)
}

func TestListRunsWithoutRepository(t *testing.T) {
	svc := NewSimulationService(nil, nil, nil)
	runs, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListRunsReturnsNewestFirst(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewSimulationService(repo, nil, nil)

	_, err := svc.PriceOption(context.Background(), testCommand())
	require.NoError(t, err)

	cmd := ComputeVaRCommand{
		Market:     domain.MarketParams{Spot: 100, RiskFreeRate: 0.02, Volatility: 0.2},
		Simulation: testCommand().Simulation,
		VaR:        domain.VaRConfig{Percentile: 0.95, Notional: 1000},
	}
	_, err = svc.ComputeVaR(context.Background(), cmd)
	require.NoError(t, err)

	runs, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.RunCommandVaR, runs[0].Command)
	assert.Equal(t, domain.RunCommandOption, runs[1].Command)
}
