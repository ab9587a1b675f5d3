package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pointer is the interactive force source in simulation coordinates.
type Pointer struct {
	Active bool
	Pos    r2.Vec
}

// frameInputs are the per-frame values the force pass needs beyond Params.
type frameInputs struct {
	dt            float64 // already clamped
	boundaryLimit float64
	pointer       Pointer
}

// integrateForces computes the net acceleration of every active particle and
// advances it with semi-implicit Euler. It reads the front buffers and
// writes the back buffers; the caller swaps after the pass completes.
func integrateForces(pool *Pool, s *Store, nb neighbors, k Kernels, p *Params, in frameInputs) {
	n := s.Count()
	pos := s.pos[:n]
	vel := s.vel[:n]
	density := s.density[:n]
	press := s.press[:n]
	outPos := s.nextPos[:n]
	outVel := s.nextVel[:n]

	pool.Run(n, func(start, end, _ int) {
		for i := start; i < end; i++ {
			a := acceleration(i, pos, vel, density, press, nb, k, p, in)
			v := r2.Add(vel[i], r2.Scale(in.dt, a))
			v = clampSpeed(v, p.MaxSpeed)
			outVel[i] = v
			outPos[i] = r2.Add(pos[i], r2.Scale(in.dt, v))
		}
	})
}

// acceleration returns the force per unit mass acting on particle i.
func acceleration(i int, pos, vel []r2.Vec, density, press []float64, nb neighbors, k Kernels, p *Params, in frameInputs) r2.Vec {
	xi, vi := pos[i], vel[i]
	rhoI := max(density[i], densityEpsilon)
	pI := press[i]
	mass := p.ParticleMass

	var fPress, fVisc, normal r2.Vec
	var colorLap float64

	nb.each(xi, func(j int) {
		rij := r2.Sub(xi, pos[j])
		dist2 := r2.Norm2(rij)
		if dist2 >= k.H2 {
			return
		}
		rhoJ := max(density[j], densityEpsilon)
		vol := mass / rhoJ

		// Colour field terms include the particle itself.
		normal = r2.Add(normal, r2.Scale(vol, k.Poly6Grad(rij, dist2)))
		colorLap += vol * k.Poly6Laplacian(dist2)

		if j == i {
			return
		}
		dist := math.Sqrt(dist2)

		shared := -mass * (pI + press[j]) / (2 * rhoJ)
		fPress = r2.Add(fPress, r2.Scale(shared, k.SpikyGrad(rij, dist)))

		fVisc = r2.Add(fVisc, r2.Scale(vol*k.ViscosityLaplacian(dist), r2.Sub(vel[j], vi)))
	})

	force := r2.Scale(p.PressureMultiplier, fPress)
	force = r2.Add(force, r2.Scale(p.ViscosityConstant, fVisc))

	if nLen := r2.Norm(normal); nLen > p.SurfaceThreshold && nLen > 0 {
		force = r2.Add(force, r2.Scale(-p.SurfaceTension*colorLap/nLen, normal))
	}

	a := r2.Scale(1/rhoI, force)
	a.Y -= p.Gravity
	a = r2.Add(a, pointerAccel(xi, p, in))
	a = r2.Add(a, boundaryAccel(xi, vi, p, in.boundaryLimit))
	return a
}

// pointerAccel pulls particles towards the pointer (or pushes them away for
// negative strength) with linear falloff inside PointerRadius.
func pointerAccel(x r2.Vec, p *Params, in frameInputs) r2.Vec {
	if !in.pointer.Active || p.PointerRadius <= 0 {
		return r2.Vec{}
	}
	lim := in.boundaryLimit
	if math.Abs(in.pointer.Pos.X) > lim || math.Abs(in.pointer.Pos.Y) > lim {
		return r2.Vec{}
	}
	d := r2.Sub(in.pointer.Pos, x)
	dist := r2.Norm(d)
	if dist >= p.PointerRadius || dist == 0 {
		return r2.Vec{}
	}
	falloff := 1 - dist/p.PointerRadius
	return r2.Scale(p.PointerStrength*falloff/dist, d)
}

// boundaryAccel applies a spring-damper penalty on each axis once a particle
// passes the boundary limit minus the boundary radius. Damping acts only on
// the outward velocity component.
func boundaryAccel(x, v r2.Vec, p *Params, limit float64) r2.Vec {
	wall := limit - p.SmoothingRadius*p.BoundaryRadiusFactor
	return r2.Vec{
		X: wallAccel(x.X, v.X, wall, p.BoundaryStiffness, p.BoundaryDamping),
		Y: wallAccel(x.Y, v.Y, wall, p.BoundaryStiffness, p.BoundaryDamping),
	}
}

func wallAccel(x, v, wall, stiffness, damping float64) float64 {
	switch {
	case x > wall:
		return -stiffness*(x-wall) - damping*max(v, 0)
	case x < -wall:
		return stiffness*(-wall-x) - damping*min(v, 0)
	}
	return 0
}

func clampSpeed(v r2.Vec, maxSpeed float64) r2.Vec {
	if maxSpeed <= 0 {
		return v
	}
	speed := r2.Norm(v)
	if speed > maxSpeed {
		return r2.Scale(maxSpeed/speed, v)
	}
	return v
}
