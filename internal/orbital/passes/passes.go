// Package passes detects ground station visibility windows by sweeping a
// propagation model across a uniform time grid and running a two-state
// machine over the elevation series.
package passes

import (
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
	"github.com/salcedoinaki/stellar/internal/orbital/observation"
	"github.com/salcedoinaki/stellar/internal/orbital/sgp4"
)

// DefaultStep is the coarse scan interval. Passes shorter than two steps
// can be missed, which is the accepted trade-off at this resolution.
const DefaultStep = 30 * time.Second

// refineTolerance bounds the bisection of a threshold crossing.
const refineTolerance = time.Second

// Pass is one visibility window: acquisition of signal, time of closest
// approach, and loss of signal.
type Pass struct {
	AOS             time.Time     `json:"aos"`
	TCA             time.Time     `json:"tca"`
	LOS             time.Time     `json:"los"`
	MaxElevationDeg float64       `json:"max_elevation_deg"`
	AOSAzimuthDeg   float64       `json:"aos_azimuth_deg"`
	LOSAzimuthDeg   float64       `json:"los_azimuth_deg"`
	Duration        time.Duration `json:"duration"`
}

// Finder sweeps a time window for visibility passes.
type Finder struct {
	// Step is the scan interval; DefaultStep when zero.
	Step time.Duration
	// Refine bisects AOS/LOS threshold crossings to one-second precision.
	Refine bool
}

// Find returns the passes over gs between start and end in ascending AOS
// order. Samples whose propagation fails count as below-threshold, so a
// decaying satellite closes its open pass instead of aborting the sweep.
func (f Finder) Find(model *sgp4.Model, gs observation.GroundStation, start, end time.Time) []Pass {
	step := f.Step
	if step <= 0 {
		step = DefaultStep
	}

	var (
		result   []Pass
		inPass   bool
		current  Pass
		prevTime time.Time
	)

	for t := start; !t.After(end); t = t.Add(step) {
		look, ok := f.lookAt(model, gs, t)
		above := ok && look.ElevationDeg >= gs.MinElevationDeg

		switch {
		case above && !inPass:
			aos, aosLook := t, look
			if f.Refine && t.After(start) {
				aos = f.bisect(model, gs, prevTime, t)
				aosLook, _ = f.lookAt(model, gs, aos)
			}
			current = Pass{
				AOS:             aos,
				TCA:             t,
				MaxElevationDeg: look.ElevationDeg,
				AOSAzimuthDeg:   aosLook.AzimuthDeg,
			}
			inPass = true

		case above && inPass:
			if look.ElevationDeg > current.MaxElevationDeg {
				current.MaxElevationDeg = look.ElevationDeg
				current.TCA = t
			}

		case !above && inPass:
			los, losLook := t, look
			if f.Refine {
				los = f.bisect(model, gs, prevTime, t)
				losLook, _ = f.lookAt(model, gs, los)
			}
			current.LOS = los
			current.LOSAzimuthDeg = losLook.AzimuthDeg
			current.Duration = current.LOS.Sub(current.AOS)
			result = append(result, current)
			inPass = false
		}
		prevTime = t
	}

	// A pass still open at the end of the window closes there. No sample
	// exists past the window, so the LOS azimuth is reported as 0.
	if inPass {
		current.LOS = end
		current.LOSAzimuthDeg = 0
		current.Duration = current.LOS.Sub(current.AOS)
		result = append(result, current)
	}

	return result
}

// lookAt propagates and converts to look angles; ok is false when the
// propagation diverges at t.
func (f Finder) lookAt(model *sgp4.Model, gs observation.GroundStation, t time.Time) (observation.LookAngles, bool) {
	state, err := model.PropagateAt(t)
	if err != nil {
		return observation.LookAngles{}, false
	}
	ecef := frames.ECIToECEF(state.Position, frames.GMST(t))
	return observation.LookECEF(ecef, gs), true
}

// bisect localizes the threshold crossing inside (lo, hi] to one second.
// lo and hi sit on opposite sides of the threshold; the returned instant
// is the earliest sampled second on hi's side.
func (f Finder) bisect(model *sgp4.Model, gs observation.GroundStation, lo, hi time.Time) time.Time {
	hiLook, hiOK := f.lookAt(model, gs, hi)
	hiAbove := hiOK && hiLook.ElevationDeg >= gs.MinElevationDeg

	for hi.Sub(lo) > refineTolerance {
		mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Second)
		if !mid.After(lo) {
			break
		}
		look, ok := f.lookAt(model, gs, mid)
		above := ok && look.ElevationDeg >= gs.MinElevationDeg
		if above == hiAbove {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}
