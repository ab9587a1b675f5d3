package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/fluid/fluid"
	"gonum.org/v1/gonum/spatial/r2"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Frame int64   `json:"frame"`
	Time  float64 `json:"time"`

	Params    fluid.Params    `json:"params"`
	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle's kinematic state.
type ParticleState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// NewSnapshot captures the simulation's last completed step.
func NewSnapshot(sim *fluid.Simulation, seed int64) *Snapshot {
	pos := sim.Positions()
	vel := sim.Velocities()
	particles := make([]ParticleState, len(pos))
	for i := range pos {
		particles[i] = ParticleState{X: pos[i].X, Y: pos[i].Y, VX: vel[i].X, VY: vel[i].Y}
	}
	return &Snapshot{
		Version:   SnapshotVersion,
		Seed:      seed,
		Frame:     sim.Frame(),
		Time:      sim.Time(),
		Params:    sim.Params(),
		Particles: particles,
	}
}

// Restore loads the snapshot's parameters and particles into sim.
func (s *Snapshot) Restore(sim *fluid.Simulation) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if err := sim.SetParams(s.Params); err != nil {
		return fmt.Errorf("restore params: %w", err)
	}
	pos := make([]r2.Vec, len(s.Particles))
	vel := make([]r2.Vec, len(s.Particles))
	for i, p := range s.Particles {
		pos[i] = r2.Vec{X: p.X, Y: p.Y}
		vel[i] = r2.Vec{X: p.VX, Y: p.VY}
	}
	if err := sim.Load(pos, vel, s.Frame, s.Time); err != nil {
		return fmt.Errorf("restore particles: %w", err)
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
