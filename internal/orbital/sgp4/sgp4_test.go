package sgp4

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
	"github.com/salcedoinaki/stellar/internal/orbital/tle"
)

const (
	issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9021"
	issLine2 = "2 25544  51.6400 208.9163 0006703 130.5360 325.0288 15.50377579999993"
)

func issModel(t *testing.T) *Model {
	t.Helper()
	parsed, err := tle.Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	model, err := NewModel(parsed)
	if err != nil {
		t.Fatalf("NewModel() error: %v", err)
	}
	return model
}

func fixChecksum(line string) string {
	sum := 0
	for _, c := range line[:len(line)-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return line[:len(line)-1] + string(rune('0'+sum%10))
}

func TestNewModelISS(t *testing.T) {
	model := issModel(t)

	if model.DeepSpace() {
		t.Error("ISS classified deep-space, want near-Earth")
	}
	if a := model.SemiMajorAxisKm(); a < 6700 || a > 6900 {
		t.Errorf("semi-major axis %v km, want ~6790", a)
	}
	if p := model.PeriodMinutes(); p < 90 || p > 95 {
		t.Errorf("period %v min, want ~93", p)
	}
	wantEpoch := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	if !model.Epoch().Equal(wantEpoch) {
		t.Errorf("epoch %s, want %s", model.Epoch(), wantEpoch)
	}
}

func TestDeepSpaceClassification(t *testing.T) {
	// A geosynchronous mean motion (~1 rev/day) crosses the 225-minute
	// period boundary into the SDP4 regime.
	line1 := fixChecksum("1 19548U 88091B   24001.50000000  .00000100  00000-0  00000-0 0  9990")
	line2 := fixChecksum("2 19548  13.5000  10.0000 0002000 150.0000 210.0000  1.00270000123450")

	parsed, err := tle.Parse(line1, line2)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	model, err := NewModel(parsed)
	if err != nil {
		t.Fatalf("NewModel() error: %v", err)
	}
	if !model.DeepSpace() {
		t.Error("geosynchronous orbit classified near-Earth, want deep-space")
	}
}

func TestNewModelRejectsSubsurfaceOrbit(t *testing.T) {
	// 17.5 rev/day puts the semi-major axis inside the Earth.
	line2 := fixChecksum("2 25544  51.6400 208.9163 0006703 130.5360 325.0288 17.50000000999993")
	parsed, err := tle.Parse(issLine1, line2)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	_, err = NewModel(parsed)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("NewModel() = %v, want *InitError", err)
	}
}

func TestPropagateISSSanity(t *testing.T) {
	model := issModel(t)
	at := time.Unix(1704067200, 0).UTC() // 12 h before epoch

	state, err := model.PropagateAt(at)
	if err != nil {
		t.Fatalf("PropagateAt() error: %v", err)
	}

	r := state.Position.Norm()
	if r < 6700 || r > 6900 {
		t.Errorf("|r| = %v km, want (6700, 6900)", r)
	}
	v := state.Velocity.Norm()
	if v < 7.0 || v > 8.0 {
		t.Errorf("|v| = %v km/s, want (7, 8)", v)
	}

	geo := geodesy.FromECI(state.Position, at)
	if geo.AltitudeKm <= 350 || geo.AltitudeKm >= 450 {
		t.Errorf("altitude = %v km, want (350, 450)", geo.AltitudeKm)
	}
	if math.Abs(geo.LatitudeDeg) > 52.0 {
		t.Errorf("|latitude| = %v°, exceeds inclination bound", geo.LatitudeDeg)
	}
}

func TestPropagateMinutesMatchesAbsolute(t *testing.T) {
	model := issModel(t)

	byMinutes, err := model.Propagate(-720)
	if err != nil {
		t.Fatalf("Propagate() error: %v", err)
	}
	byTime, err := model.PropagateAt(time.Unix(1704067200, 0))
	if err != nil {
		t.Fatalf("PropagateAt() error: %v", err)
	}

	if d := byMinutes.Position.Sub(byTime.Position).Norm(); d > 1e-6 {
		t.Errorf("positions differ by %v km", d)
	}
}

func TestPropagateTwoWeekWindow(t *testing.T) {
	model := issModel(t)

	for minutes := -14.0 * 1440; minutes <= 14.0*1440; minutes += 360 {
		state, err := model.Propagate(minutes)
		if err != nil {
			t.Fatalf("Propagate(%v) error: %v", minutes, err)
		}
		r := state.Position.Norm()
		if r < EarthRadiusKm || r > 500000 {
			t.Errorf("Propagate(%v): |r| = %v km outside [%v, 500000]", minutes, r, EarthRadiusKm)
		}
		if !state.Velocity.IsFinite() {
			t.Errorf("Propagate(%v): velocity not finite", minutes)
		}
	}
}

func TestModelConcurrentUse(t *testing.T) {
	model := issModel(t)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(offset float64) {
			for m := offset; m < offset+60; m++ {
				if _, err := model.Propagate(m); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(float64(i) * 45)
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent propagation: %v", err)
		}
	}
}
