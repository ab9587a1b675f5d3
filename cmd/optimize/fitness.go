package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/game"
	"github.com/pthm-cable/fluid/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how well the fluid
// settles into a calm pool at rest density.
type FitnessEvaluator struct {
	params      *ParamVector
	maxFrames   int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastScore   score
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 0.5,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed from the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastScore returns the score breakdown from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// divergedCost is returned for runs that blow up or lose their particles.
const divergedCost = 1e3

// Score component weights.
const (
	weightKinetic  = 1.0
	weightDensity  = 4.0
	weightSpread   = 1.0
	weightOutside  = 10.0
	warmupFraction = 0.5 // leading share of windows ignored while the fluid falls
)

// score is the cost breakdown of one or more runs (lower = better).
type score struct {
	Kinetic  float64 // mean squared speed per particle, halved
	Density  float64 // squared relative error of the mean density
	Spread   float64 // squared coefficient of variation of density
	Outside  float64 // fraction of particles past the boundary
	Diverged bool
}

// Total combines the components into the scalar fitness.
func (s score) Total() float64 {
	if s.Diverged {
		return divergedCost
	}
	return weightKinetic*s.Kinetic +
		weightDensity*s.Density +
		weightSpread*s.Spread +
		weightOutside*s.Outside
}

type seedResult struct {
	score   score
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				score:   scoreWindows(windows, cfg.Fluid.RestDensity, cfg.Fluid.ParticleMass),
				windows: windows,
			}
		}(i, seed)
	}
	wg.Wait()

	var total score
	bestSeed := math.Inf(1)
	var bestWindows []telemetry.WindowStats
	for _, r := range results {
		total.Kinetic += r.score.Kinetic
		total.Density += r.score.Density
		total.Spread += r.score.Spread
		total.Outside += r.score.Outside
		total.Diverged = total.Diverged || r.score.Diverged
		if t := r.score.Total(); t < bestSeed {
			bestSeed = t
			bestWindows = r.windows
		}
	}
	n := float64(len(results))
	total.Kinetic /= n
	total.Density /= n
	total.Spread /= n
	total.Outside /= n
	fitness := total.Total()

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestWindows = bestWindows
	}
	fe.lastScore = total
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run and returns its stats windows.
// It stops early once the state stops being finite.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	sim, err := game.NewSimulation(cfg, seed, 0)
	if err != nil {
		return nil
	}
	defer sim.Close()

	var (
		sampler   telemetry.Sampler
		collector = telemetry.NewCollector(fe.statsWindow)
		windows   []telemetry.WindowStats
		dt        = cfg.Simulation.FixedDT
		limit     = cfg.Simulation.DomainHalfExtent
		simTime   float64
	)

	for sim.Frame() < fe.maxFrames {
		simTime += dt
		sim.Step(fluid.StepInput{DT: dt, Time: simTime, BoundaryLimit: limit})
		fs := sampler.Sample(sim, limit)
		if math.IsNaN(fs.KineticEnergy) || math.IsInf(fs.KineticEnergy, 0) {
			return append(windows, telemetry.WindowStats{KineticEnergyMean: math.NaN()})
		}
		collector.Record(fs, dt, false)
		if collector.ShouldFlush() {
			windows = append(windows, collector.Flush())
		}
	}
	return windows
}

// copyConfig creates a copy of the base config. Config holds only value
// sections, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// scoreWindows scores the settled part of a run.
func scoreWindows(windows []telemetry.WindowStats, restDensity, mass float64) score {
	if len(windows) == 0 {
		return score{Diverged: true}
	}
	for _, w := range windows {
		if math.IsNaN(w.KineticEnergyMean) || w.Particles == 0 {
			return score{Diverged: true}
		}
	}

	settled := windows[int(float64(len(windows))*warmupFraction):]
	kinetic := make([]float64, len(settled))
	density := make([]float64, len(settled))
	spread := make([]float64, len(settled))
	outside := make([]float64, len(settled))
	for i, w := range settled {
		n := float64(w.Particles)
		kinetic[i] = w.KineticEnergyMean / (n * mass)
		if restDensity > 0 {
			rel := (w.DensityMean - restDensity) / restDensity
			density[i] = rel * rel
		}
		if w.DensityMean > 0 {
			cv := w.DensityStd / w.DensityMean
			spread[i] = cv * cv
		}
		outside[i] = float64(w.Outside) / n
	}

	return score{
		Kinetic: stat.Mean(kinetic, nil),
		Density: stat.Mean(density, nil),
		Spread:  stat.Mean(spread, nil),
		Outside: stat.Mean(outside, nil),
	}
}
