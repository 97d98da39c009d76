// Simulator orchestrating compound Poisson resimulations
package sim

import (
	"context"
	"sync"
	"time"

	"compound-sim/internal/config"
	"compound-sim/internal/logging"
	"compound-sim/internal/process"

	"github.com/google/uuid"
)

// RunWriter is an interface to support different output writers for run
// summary rows.
type RunWriter interface {
	WriteRun(RunRow) error
}

// PathWriter handles full sample-path exports.
type PathWriter interface {
	WritePath(PathRow) error
}

// HistogramWriter handles terminal-value histogram exports.
type HistogramWriter interface {
	WriteHistogram(HistogramRow) error
}

// Optional: run writers may support batch mode
type batchRunWriter interface {
	WriteRuns([]RunRow) error
}

// RunRow is the flattened summary of one completed resimulation, ready for
// writers (JSONL export, DB ingestion, TUI log).
type RunRow struct {
	RunID               string    `json:"run_id"`
	LabID               string    `json:"lab_id"`
	ArrivalRate         float64   `json:"arrival_rate"`
	JumpRate            float64   `json:"jump_rate"`
	Horizon             float64   `json:"horizon"`
	Simulations         int       `json:"simulations"`
	Arrivals            int       `json:"arrivals"`
	PathFinal           float64   `json:"path_final"`
	TheoreticalMean     float64   `json:"theoretical_mean"`
	TheoreticalVariance float64   `json:"theoretical_variance"`
	EmpiricalMean       float64   `json:"empirical_mean"`
	EmpiricalVariance   float64   `json:"empirical_variance"`
	ElapsedMS           int64     `json:"elapsed_ms"`
	Timestamp           time.Time `json:"timestamp"`
}

// PathRow carries the full step path of one run.
type PathRow struct {
	RunID     string          `json:"run_id"`
	LabID     string          `json:"lab_id"`
	Points    []process.Point `json:"points"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistogramRow carries the binned terminal-value distribution of one run.
type HistogramRow struct {
	RunID           string    `json:"run_id"`
	LabID           string    `json:"lab_id"`
	Edges           []float64 `json:"edges"`
	Counts          []float64 `json:"counts"`
	TheoreticalMean float64   `json:"theoretical_mean"`
	Timestamp       time.Time `json:"timestamp"`
}

// Result is the cached outcome of the latest resimulation. It is written
// wholesale into the simulator's single result slot and never mutated after
// publication, so readers can hold on to it without copying.
type Result struct {
	Row       RunRow
	Path      process.SamplePath
	Samples   []float64
	Histogram process.Histogram
	Summary   process.Summary
}

// Simulator owns the current parameters and the single cached result slot.
// Resimulation is synchronous: one trigger produces one complete Result, and
// readers only ever observe fully computed results.
type Simulator struct {
	labID      string
	cfg        *config.LabConfig
	params     process.Params
	rng        *process.PartitionedRNG
	writer     RunWriter
	pathWriter PathWriter
	histWriter HistogramWriter
	result     *Result
	runs       int
	now        func() time.Time
	mu         sync.Mutex
}

// NewSimulator initializes a simulator from config defaults. Any writer may
// be nil; rng may be nil to seed from the wall clock.
func NewSimulator(labID string, cfg *config.LabConfig, writer RunWriter, pathWriter PathWriter, histWriter HistogramWriter, rng *process.PartitionedRNG) *Simulator {
	if cfg == nil {
		cfg = config.Default()
	}
	if rng == nil {
		rng = process.NewPartitionedRNG(uint64(time.Now().UnixNano()))
	}
	return &Simulator{
		labID: labID,
		cfg:   cfg,
		params: process.Params{
			ArrivalRate: cfg.ArrivalRate,
			JumpRate:    cfg.JumpRate,
			Horizon:     cfg.Horizon,
			Simulations: cfg.Simulations,
		},
		rng:        rng,
		writer:     writer,
		pathWriter: pathWriter,
		histWriter: histWriter,
		now:        time.Now,
	}
}

// Params returns the parameters the next trigger will use.
func (s *Simulator) Params() process.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Config returns the lab configuration.
func (s *Simulator) Config() *config.LabConfig {
	return s.cfg
}

// Runs returns the number of completed resimulations.
func (s *Simulator) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// SetParams validates p, clamps it into the configured ranges and the
// simulation cap, and stores it for the next trigger. Changing parameters
// does not recompute anything.
func (s *Simulator) SetParams(p process.Params) (process.Params, error) {
	if err := p.Validate(); err != nil {
		return process.Params{}, err
	}
	p.ArrivalRate = s.cfg.ArrivalRange.Clamp(p.ArrivalRate)
	p.JumpRate = s.cfg.JumpRange.Clamp(p.JumpRate)
	p.Horizon = s.cfg.HorizonRange.Clamp(p.Horizon)
	if s.cfg.MaxSimulations > 0 && p.Simulations > s.cfg.MaxSimulations {
		p.Simulations = s.cfg.MaxSimulations
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return p, nil
}

// Snapshot returns the latest completed result, nil before the first trigger.
func (s *Simulator) Snapshot() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Resimulate regenerates the sample path and the terminal-value distribution
// from the current parameters, overwrites the cached result, and emits rows
// to the configured writers. Writer failures are logged, not propagated; the
// result is returned either way.
func (s *Simulator) Resimulate(ctx context.Context) (*Result, error) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	path, err := process.SimulatePath(s.params, s.rng.ForSubsystem(process.SubsystemPath))
	if err != nil {
		return nil, err
	}
	samples, err := process.SimulateTerminal(s.params, s.rng.ForSubsystem(process.SubsystemTerminal))
	if err != nil {
		return nil, err
	}
	hist := process.NewHistogram(samples, s.cfg.Bins)
	summary := process.Summarize(samples)
	ts := s.now()

	row := RunRow{
		RunID:               uuid.New().String(),
		LabID:               s.labID,
		ArrivalRate:         s.params.ArrivalRate,
		JumpRate:            s.params.JumpRate,
		Horizon:             s.params.Horizon,
		Simulations:         s.params.Simulations,
		Arrivals:            path.Arrivals,
		PathFinal:           path.Final,
		TheoreticalMean:     process.Mean(s.params),
		TheoreticalVariance: process.Variance(s.params),
		EmpiricalMean:       summary.Mean,
		EmpiricalVariance:   summary.Variance,
		ElapsedMS:           ts.Sub(start).Milliseconds(),
		Timestamp:           ts.UTC(),
	}
	res := &Result{Row: row, Path: path, Samples: samples, Histogram: hist, Summary: summary}
	s.result = res
	s.runs++

	log = logging.WithRun(log, row.RunID)
	if s.writer != nil {
		if err := s.writer.WriteRun(row); err != nil {
			log.Error("run write failed", "err", err)
		}
	}
	if s.pathWriter != nil {
		pr := PathRow{RunID: row.RunID, LabID: s.labID, Points: path.Points, Timestamp: row.Timestamp}
		if err := s.pathWriter.WritePath(pr); err != nil {
			log.Error("path write failed", "err", err)
		}
	}
	if s.histWriter != nil {
		hr := HistogramRow{
			RunID:           row.RunID,
			LabID:           s.labID,
			Edges:           hist.Edges,
			Counts:          hist.Counts,
			TheoreticalMean: row.TheoreticalMean,
			Timestamp:       row.Timestamp,
		}
		if err := s.histWriter.WriteHistogram(hr); err != nil {
			log.Error("histogram write failed", "err", err)
		}
	}
	return res, nil
}
