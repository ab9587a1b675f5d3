package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fluid/telemetry"
)

// recordFrame samples the finished step and flushes the stats window when due.
func (g *Game) recordFrame(dt float64) {
	g.lastStats = g.sampler.Sample(g.sim, g.boundary)
	g.collector.Record(g.lastStats, dt, g.pointer.Active)

	if g.collector.ShouldFlush() {
		g.flushTelemetry()
	}
}

// flushTelemetry closes the current window, logs it and appends the CSV rows.
func (g *Game) flushTelemetry() {
	stats := g.collector.Flush()
	perf := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		slog.Info("perf", "stats", perf)
	}

	if err := g.outputManager.WriteWindow(stats); err != nil {
		slog.Error("failed to write frame stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perf, g.sim.Frame()); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
}

// saveSnapshot writes the current particle state next to the other output.
func (g *Game) saveSnapshot() {
	snap := telemetry.NewSnapshot(g.sim, g.seed)
	path, err := telemetry.SaveSnapshot(snap, g.outputManager.SnapshotDir())
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", snap.Frame, "particles", len(snap.Particles))
}

// restoreSnapshot loads a snapshot file and applies it to the simulation.
func (g *Game) restoreSnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Restore(g.sim); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	g.seed = snap.Seed
	g.simTime = snap.Time
	return nil
}

// LastStats returns the sample taken after the most recent step.
func (g *Game) LastStats() telemetry.FrameStats {
	return g.lastStats
}
