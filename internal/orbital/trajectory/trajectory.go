// Package trajectory sweeps a propagation model across a uniform time grid
// and pairs each state vector with its geodetic sub-satellite point.
package trajectory

import (
	"errors"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
	"github.com/salcedoinaki/stellar/internal/orbital/sgp4"
)

// ErrInvalidWindow reports a degenerate sweep request.
var ErrInvalidWindow = errors.New("trajectory: end must be after start and step positive")

// Sample is one trajectory point.
type Sample struct {
	Time  time.Time
	State sgp4.EciState
	Geo   geodesy.Geodetic
}

// Sweep emits samples at start + i*step for i = 0..⌊(end-start)/step⌋; the
// end instant is included only when the window is an exact multiple of the
// step. Samples whose propagation diverges are skipped and counted so the
// caller can log them; timestamps of the returned samples are strictly
// ascending.
func Sweep(model *sgp4.Model, start, end time.Time, step time.Duration) (samples []Sample, skipped int, err error) {
	if step <= 0 || !end.After(start) {
		return nil, 0, ErrInvalidWindow
	}

	n := int(end.Sub(start)/step) + 1
	samples = make([]Sample, 0, n)

	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * step)
		state, perr := model.PropagateAt(t)
		if perr != nil {
			skipped++
			continue
		}
		samples = append(samples, Sample{
			Time:  t,
			State: state,
			Geo:   geodesy.FromECI(state.Position, t),
		})
	}
	return samples, skipped, nil
}

// Count returns the number of grid points a sweep of the window produces,
// for callers enforcing a sample budget before doing the work.
func Count(start, end time.Time, step time.Duration) int {
	if step <= 0 || !end.After(start) {
		return 0
	}
	return int(end.Sub(start)/step) + 1
}
