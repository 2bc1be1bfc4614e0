// Package snr estimates the per-cell statistical significance of a
// convergence map against a null hypothesis of no lensing signal.
//
// The null distribution is built by randomizing the input catalog many times
// (position shuffle or shear-orientation randomization), re-running the full
// bin/invert/smooth pipeline on each randomized catalog, and accumulating
// the per-cell mean and standard deviation of the resulting maps. The SNR
// at a cell is the observed convergence minus the null mean, over the null
// standard deviation.
//
// Trials are independent and run concurrently across a bounded worker pool.
// Per-trial randomness derives from sub-seeds drawn up front from the
// configured root seed, so a fixed seed reproduces the same maps regardless
// of worker count.
package snr

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-lensing/lensing/catalog"
	"github.com/cwbudde/algo-lensing/lensing/grid"
	"github.com/cwbudde/algo-lensing/lensing/kaisersquires"
	"github.com/cwbudde/algo-lensing/lensing/smooth"
	"github.com/cwbudde/algo-lensing/stats/running"
)

// Errors returned by estimation.
var (
	ErrInvalidTrials  = errors.New("snr: trial count must be > 0")
	ErrUnknownShuffle = errors.New("snr: unknown shuffle type")
)

// ShuffleType selects the catalog randomization used to build the null
// distribution.
type ShuffleType int

const (
	// ShuffleSpatial permutes coordinate pairs across records, breaking the
	// correlation between position and shear.
	ShuffleSpatial ShuffleType = iota

	// ShuffleOrientation rotates each record's shear by an independent
	// random angle, preserving positions and shear magnitudes.
	ShuffleOrientation
)

// String returns the configuration name of the shuffle type.
func (s ShuffleType) String() string {
	switch s {
	case ShuffleSpatial:
		return "spatial"
	case ShuffleOrientation:
		return "orientation"
	default:
		return "unknown"
	}
}

// Config controls the full estimation pipeline.
type Config struct {
	// Grid configures binning for the observed map and every trial. Trials
	// reuse the observed map's extents so all maps share one geometry.
	Grid grid.Config

	// Modes selects which convergence modes are reconstructed and assessed.
	Modes kaisersquires.Mode

	// MapSmoothing is applied to the observed map returned in the result.
	MapSmoothing smooth.Config

	// NullSmoothing is applied inside every trial and to the observed map
	// entering the SNR ratio. It may differ from MapSmoothing.
	NullSmoothing smooth.Config

	// Shuffle selects the null-hypothesis randomization.
	Shuffle ShuffleType

	// Trials is the number of null realizations. Zero selects the default
	// of 100.
	Trials int

	// Seed seeds the randomization. Zero draws a fresh time-based seed, so
	// only runs with an explicit seed are reproducible.
	Seed int64

	// Workers bounds trial concurrency. Zero or negative lets the worker
	// pool grow to one goroutine per trial.
	Workers int
}

// DefaultConfig returns a spatial-shuffle configuration with 100 trials,
// E-mode only, and smoothing disabled.
func DefaultConfig() Config {
	return Config{
		Grid:          grid.DefaultConfig(),
		Modes:         kaisersquires.ModeE,
		MapSmoothing:  smooth.DefaultConfig(),
		NullSmoothing: smooth.DefaultConfig(),
		Shuffle:       ShuffleSpatial,
		Trials:        100,
	}
}

// Result holds the observed convergence map and the per-cell
// signal-to-noise grids for each requested mode.
type Result struct {
	// Observed is the observed convergence map smoothed with MapSmoothing.
	Observed *kaisersquires.Convergence

	// SNRE and SNRB are the signal-to-noise grids for the requested modes;
	// a mode that was not requested is nil. Cells whose null distribution
	// had zero spread hold exactly zero.
	SNRE [][]float64
	SNRB [][]float64

	// Grid is the shared geometry of all maps in the result.
	Grid grid.Grid

	// Trials is the delivered null sample size. Estimation is fail-fast:
	// if any trial errors the whole estimate errors, so Trials always
	// equals the configured count on success.
	Trials int
}

// Estimate runs the observed pipeline and the shuffle trials, returning the
// observed map and its SNR grids.
func Estimate(cat *catalog.Catalog, cfg Config) (*Result, error) {
	if cfg.Trials == 0 {
		cfg.Trials = DefaultConfig().Trials
	}
	if cfg.Trials < 0 {
		return nil, ErrInvalidTrials
	}
	if cfg.Shuffle != ShuffleSpatial && cfg.Shuffle != ShuffleOrientation {
		return nil, ErrUnknownShuffle
	}

	// Clean once so the trials randomize exactly the records the observed
	// map was built from: shuffling an uncleaned catalog could pair valid
	// coordinates with records that binning later drops.
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("snr: %w", err)
	}
	cat = cat.Clean()

	// Observed pipeline.
	field, err := grid.Bin(cat, cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("snr: observed pipeline: %w", err)
	}

	conv, err := kaisersquires.Invert(field, cfg.Modes)
	if err != nil {
		return nil, fmt.Errorf("snr: observed pipeline: %w", err)
	}

	observed, err := smooth.SmoothConvergence(conv, cfg.MapSmoothing)
	if err != nil {
		return nil, fmt.Errorf("snr: observed pipeline: %w", err)
	}

	// The observed map entering the ratio is smoothed like the trials, not
	// like the returned map, so numerator and null share one resolution.
	nullObserved, err := smooth.SmoothConvergence(conv, cfg.NullSmoothing)
	if err != nil {
		return nil, fmt.Errorf("snr: observed pipeline: %w", err)
	}

	// Trials rebin against the observed extents; randomization never moves
	// records outside them, but pinning the bounds keeps every trial map on
	// the observed geometry even for median-centered sky grids.
	trialCfg := cfg.Grid
	bounds := field.Grid.Bounds
	trialCfg.Bounds = &bounds

	statsE, statsB, err := runTrials(cat, cfg, trialCfg, field.Grid)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Observed: observed,
		Grid:     field.Grid,
		Trials:   cfg.Trials,
	}

	if cfg.Modes.Has(kaisersquires.ModeE) {
		result.SNRE = snrGrid(nullObserved.KappaE, statsE)
	}
	if cfg.Modes.Has(kaisersquires.ModeB) {
		result.SNRB = snrGrid(nullObserved.KappaB, statsB)
	}

	return result, nil
}

// runTrials produces the null realizations concurrently and folds them into
// per-mode accumulators in trial order.
func runTrials(cat *catalog.Catalog, cfg Config, trialCfg grid.Config, g grid.Grid) (statsE, statsB *running.GridStats, err error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeds := trialSeeds(seed, cfg.Trials)

	type trialMaps struct {
		kappaE [][]float64
		kappaB [][]float64
	}
	maps := make([]trialMaps, cfg.Trials)

	var eg errgroup.Group
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}

	for i := 0; i < cfg.Trials; i++ {
		eg.Go(func() error {
			conv, err := runTrial(cat, cfg, trialCfg, seeds[i])
			if err != nil {
				return fmt.Errorf("snr: trial %d: %w", i, err)
			}
			maps[i] = trialMaps{kappaE: conv.KappaE, kappaB: conv.KappaB}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	// Single-threaded fold in trial order keeps the aggregation independent
	// of goroutine scheduling.
	if cfg.Modes.Has(kaisersquires.ModeE) {
		statsE = running.NewGridStats(g.Ny, g.Nx)
	}
	if cfg.Modes.Has(kaisersquires.ModeB) {
		statsB = running.NewGridStats(g.Ny, g.Nx)
	}

	for i := range maps {
		if statsE != nil {
			if err := statsE.Update(maps[i].kappaE); err != nil {
				return nil, nil, fmt.Errorf("snr: trial %d: %w", i, err)
			}
		}
		if statsB != nil {
			if err := statsB.Update(maps[i].kappaB); err != nil {
				return nil, nil, fmt.Errorf("snr: trial %d: %w", i, err)
			}
		}
	}

	return statsE, statsB, nil
}

func runTrial(cat *catalog.Catalog, cfg Config, trialCfg grid.Config, seed int64) (*kaisersquires.Convergence, error) {
	rng := newRand(seed)

	var shuffled *catalog.Catalog
	switch cfg.Shuffle {
	case ShuffleSpatial:
		shuffled = cat.ShuffleSpatial(rng)
	case ShuffleOrientation:
		shuffled = cat.RandomizeOrientation(rng)
	default:
		return nil, ErrUnknownShuffle
	}

	field, err := grid.Bin(shuffled, trialCfg)
	if err != nil {
		return nil, err
	}

	conv, err := kaisersquires.Invert(field, cfg.Modes)
	if err != nil {
		return nil, err
	}

	return smooth.SmoothConvergence(conv, cfg.NullSmoothing)
}

// snrGrid computes (observed - mean) / std per cell, with zero-variance
// cells mapped to exactly zero.
func snrGrid(observed [][]float64, stats *running.GridStats) [][]float64 {
	mean := stats.Mean()
	std := stats.Std()

	out := make([][]float64, len(observed))
	for y := range observed {
		out[y] = make([]float64, len(observed[y]))
		for x := range observed[y] {
			if std[y][x] == 0 {
				continue
			}
			out[y][x] = (observed[y][x] - mean[y][x]) / std[y][x]
		}
	}

	return out
}
