package trajectory

import (
	"errors"
	"testing"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/sgp4"
	"github.com/salcedoinaki/stellar/internal/orbital/tle"
)

const (
	issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9021"
	issLine2 = "2 25544  51.6400 208.9163 0006703 130.5360 325.0288 15.50377579999993"
)

func issModel(t *testing.T) *sgp4.Model {
	t.Helper()
	parsed, err := tle.Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	model, err := sgp4.NewModel(parsed)
	if err != nil {
		t.Fatalf("NewModel() error: %v", err)
	}
	return model
}

func TestSweepHourlyWindow(t *testing.T) {
	model := issModel(t)
	start := time.Unix(1704067200, 0).UTC()
	end := time.Unix(1704070800, 0).UTC()

	samples, skipped, err := Sweep(model, start, end, 60*time.Second)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(samples) != 61 {
		t.Fatalf("len(samples) = %d, want 61", len(samples))
	}

	for i, s := range samples {
		want := start.Add(time.Duration(i) * 60 * time.Second)
		if !s.Time.Equal(want) {
			t.Errorf("sample %d at %v, want %v", i, s.Time, want)
		}
		if !s.State.Position.IsFinite() {
			t.Errorf("sample %d position not finite", i)
		}
	}
}

func TestSweepCustomStep(t *testing.T) {
	model := issModel(t)
	start := time.Unix(1704067200, 0).UTC()
	end := start.Add(600 * time.Second)

	samples, _, err := Sweep(model, start, end, 120*time.Second)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if len(samples) != 6 {
		t.Fatalf("len(samples) = %d, want 6", len(samples))
	}
	last := samples[len(samples)-1]
	if !last.Time.Equal(end) {
		t.Errorf("last sample at %v, want window end %v (exact multiple)", last.Time, end)
	}
}

func TestSweepExcludesEndOnNonMultiple(t *testing.T) {
	model := issModel(t)
	start := time.Unix(1704067200, 0).UTC()
	end := start.Add(90 * time.Second)

	samples, _, err := Sweep(model, start, end, 60*time.Second)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(samples))
	}
	if samples[1].Time.Equal(end) {
		t.Error("end instant included although the window is not a multiple of the step")
	}
}

func TestSweepStrictlyAscending(t *testing.T) {
	model := issModel(t)
	start := time.Unix(1704067200, 0).UTC()

	samples, _, err := Sweep(model, start, start.Add(30*time.Minute), 45*time.Second)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	for i := 1; i < len(samples); i++ {
		if !samples[i].Time.After(samples[i-1].Time) {
			t.Fatalf("timestamps not strictly ascending at %d", i)
		}
		if samples[i].Time.Sub(samples[i-1].Time) != 45*time.Second {
			t.Fatalf("gap at %d is %v, want 45s", i, samples[i].Time.Sub(samples[i-1].Time))
		}
	}
}

func TestSweepInvalidWindows(t *testing.T) {
	model := issModel(t)
	start := time.Unix(1704067200, 0).UTC()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		step  time.Duration
	}{
		{name: "end equals start", start: start, end: start, step: time.Minute},
		{name: "end before start", start: start, end: start.Add(-time.Hour), step: time.Minute},
		{name: "zero step", start: start, end: start.Add(time.Hour), step: 0},
		{name: "negative step", start: start, end: start.Add(time.Hour), step: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Sweep(model, tt.start, tt.end, tt.step)
			if !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("Sweep() error = %v, want ErrInvalidWindow", err)
			}
		})
	}
}

func TestCount(t *testing.T) {
	start := time.Unix(1704067200, 0)
	if got := Count(start, start.Add(time.Hour), time.Minute); got != 61 {
		t.Errorf("Count = %d, want 61", got)
	}
	if got := Count(start, start, time.Minute); got != 0 {
		t.Errorf("Count on empty window = %d, want 0", got)
	}
}
