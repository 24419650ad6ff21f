package frames

import (
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name string
		unix int64
		want float64
	}{
		{
			name: "unix epoch",
			unix: 0,
			want: 2440587.5,
		},
		{
			name: "J2000",
			unix: 946728000, // 2000-01-01 12:00:00 UTC
			want: 2451545.0,
		},
		{
			name: "2024-01-01",
			unix: 1704067200,
			want: 2460310.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(time.Unix(tt.unix, 0))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("JulianDate(%d) = %.9f, want %.9f", tt.unix, got, tt.want)
			}
		})
	}
}

func TestGMSTAtJ2000(t *testing.T) {
	// At J2000 the polynomial reduces to its constant term.
	want := 280.46061837 * math.Pi / 180.0
	got := GMST(time.Unix(946728000, 0))
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("GMST(J2000) = %.12f rad, want %.12f", got, want)
	}
}

func TestGMSTRange(t *testing.T) {
	start := time.Unix(1704067200, 0)
	for i := 0; i < 48; i++ {
		ts := start.Add(time.Duration(i) * 30 * time.Minute)
		g := GMST(ts)
		if g < 0 || g >= 2*math.Pi {
			t.Fatalf("GMST(%s) = %v outside [0, 2π)", ts, g)
		}
	}
}

func TestGMSTSiderealPeriod(t *testing.T) {
	// One sidereal day (86164.0905 s) later the angle repeats. The test
	// steps a whole number of seconds, so allow for the 0.09 s remainder.
	t0 := time.Unix(1704067200, 0)
	t1 := t0.Add(86164 * time.Second)

	diff := math.Abs(GMST(t1) - GMST(t0))
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	if diff > 1e-4 {
		t.Errorf("GMST drift over one sidereal day = %v rad", diff)
	}
}

func TestRotationPreservesNorm(t *testing.T) {
	vectors := []Vec3{
		{X: 6790, Y: 0, Z: 0},
		{X: -1234.5, Y: 6543.2, Z: 987.6},
		{X: 0.001, Y: -0.002, Z: 42000},
	}
	gmsts := []float64{0, 1.234, math.Pi, 5.9}

	for _, v := range vectors {
		for _, g := range gmsts {
			rotated := ECIToECEF(v, g)
			if d := math.Abs(rotated.Norm() - v.Norm()); d > 1e-9 {
				t.Errorf("norm changed by %g for v=%+v gmst=%v", d, v, g)
			}
		}
	}
}

func TestRotationRoundTrip(t *testing.T) {
	v := Vec3{X: 4321.9, Y: -5678.1, Z: 1234.5}
	g := GMST(time.Unix(1704067200, 0))

	back := ECEFToECI(ECIToECEF(v, g), g)
	if math.Abs(back.X-v.X) > 1e-9 || math.Abs(back.Y-v.Y) > 1e-9 || math.Abs(back.Z-v.Z) > 1e-9 {
		t.Errorf("roundtrip = %+v, want %+v", back, v)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vec3{Z: math.Inf(1)}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}
