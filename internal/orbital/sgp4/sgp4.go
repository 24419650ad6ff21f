// Package sgp4 exposes the SGP4/SDP4 propagation contract used by the rest
// of the service: a model initialized once per TLE and evaluated at minute
// offsets from the element epoch.
//
// The Vallado 2006 equation sets themselves are evaluated by
// github.com/joshuaferrara/go-satellite; this package owns element
// validation, the near-Earth/deep-space classification, epoch bookkeeping,
// and the error taxonomy. A Model is immutable after initialization and
// safe for concurrent propagation.
package sgp4

import (
	"fmt"
	"math"
	"time"

	gosatellite "github.com/joshuaferrara/go-satellite"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
	"github.com/salcedoinaki/stellar/internal/orbital/tle"
)

const (
	// EarthMuKmS is the geocentric gravitational parameter, km³/s².
	EarthMuKmS = 398600.4418

	// EarthRadiusKm is the WGS84 equatorial radius.
	EarthRadiusKm = 6378.137

	// deepSpacePeriodMin is the period above which the deep-space (SDP4)
	// equation set applies.
	deepSpacePeriodMin = 225.0
)

// InitError reports mean elements that do not describe a physical orbit.
type InitError struct {
	Reason string
}

func (e *InitError) Error() string {
	return "sgp4 init: " + e.Reason
}

// PropError reports a propagation that diverged at the requested time.
type PropError struct {
	MinutesFromEpoch float64
	Reason           string
}

func (e *PropError) Error() string {
	return fmt.Sprintf("sgp4 propagate at %+.3f min: %s", e.MinutesFromEpoch, e.Reason)
}

// EciState is a satellite state vector in the TEME inertial frame.
type EciState struct {
	Position frames.Vec3 // km
	Velocity frames.Vec3 // km/s
}

// Model is the initialized propagator state for one TLE.
type Model struct {
	epoch           time.Time
	sat             gosatellite.Satellite
	semiMajorAxisKm float64
	periodMin       float64
	deepSpace       bool
}

// NewModel validates the mean elements and initializes the propagator.
func NewModel(t *tle.TLE) (*Model, error) {
	n := t.MeanMotionRadMin
	if n <= 0 {
		return nil, &InitError{Reason: "mean motion must be positive"}
	}

	// Semi-major axis from Kepler's third law, n in rad/s.
	nRadSec := n / 60.0
	a := math.Cbrt(EarthMuKmS / (nRadSec * nRadSec))
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return nil, &InitError{Reason: "semi-major axis is not finite"}
	}

	perigee := a*(1-t.Eccentricity) - EarthRadiusKm
	if perigee < 0 {
		return nil, &InitError{
			Reason: fmt.Sprintf("perigee %.1f km below the surface (a=%.1f km, e=%.6f)", perigee, a, t.Eccentricity),
		}
	}

	sat := gosatellite.TLEToSat(t.Line1, t.Line2, gosatellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, &InitError{Reason: fmt.Sprintf("propagator rejected elements (code %d)", sat.Error)}
	}

	period := t.PeriodMinutes()
	return &Model{
		epoch:           t.Epoch,
		sat:             sat,
		semiMajorAxisKm: a,
		periodMin:       period,
		deepSpace:       period >= deepSpacePeriodMin,
	}, nil
}

// Epoch returns the element epoch the minute offsets are relative to.
func (m *Model) Epoch() time.Time { return m.epoch }

// SemiMajorAxisKm returns the mean semi-major axis derived at init.
func (m *Model) SemiMajorAxisKm() float64 { return m.semiMajorAxisKm }

// PeriodMinutes returns the mean orbital period.
func (m *Model) PeriodMinutes() float64 { return m.periodMin }

// DeepSpace reports whether the deep-space (SDP4) equations apply.
func (m *Model) DeepSpace() bool { return m.deepSpace }

// Propagate evaluates the model at the given offset from epoch. Negative
// offsets propagate backwards. The offset is rounded to the microsecond
// so float error in the minute count cannot push a whole-second instant
// just below that second.
func (m *Model) Propagate(minutesFromEpoch float64) (EciState, error) {
	t := m.epoch.Add(time.Duration(minutesFromEpoch * float64(time.Minute)).Round(time.Microsecond))
	return m.propagateAt(t, minutesFromEpoch)
}

// PropagateAt evaluates the model at an absolute instant. The instant is
// handed to go-satellite as whole UTC seconds; any fraction of a second is
// truncated.
func (m *Model) PropagateAt(t time.Time) (EciState, error) {
	minutes := t.Sub(m.epoch).Minutes()
	return m.propagateAt(t, minutes)
}

func (m *Model) propagateAt(t time.Time, minutes float64) (EciState, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, vel := gosatellite.Propagate(m.sat, year, int(month), day, hour, min, sec)

	state := EciState{
		Position: frames.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Velocity: frames.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z},
	}

	// The propagator reports divergence through non-finite output; decay
	// shows up as a radius inside the Earth.
	if !state.Position.IsFinite() || !state.Velocity.IsFinite() {
		return EciState{}, &PropError{MinutesFromEpoch: minutes, Reason: "state is not finite (eccentricity >= 1 or numeric overflow)"}
	}
	if r := state.Position.Norm(); r < EarthRadiusKm {
		return EciState{}, &PropError{MinutesFromEpoch: minutes, Reason: fmt.Sprintf("radius %.1f km inside the Earth (orbital decay)", r)}
	}
	return state, nil
}
