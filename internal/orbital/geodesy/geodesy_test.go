package geodesy

import (
	"math"
	"testing"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
)

func TestToECEFAnchors(t *testing.T) {
	// At the pole z = N(1-e²) = a(1-f), the semi-minor axis.
	const polarRadius = EquatorialRadiusKm * (1 - Flattening)

	tests := []struct {
		name string
		geo  Geodetic
		want frames.Vec3
		tol  float64
	}{
		{
			name: "equator prime meridian",
			geo:  Geodetic{LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0},
			want: frames.Vec3{X: EquatorialRadiusKm, Y: 0, Z: 0},
			tol:  1e-9,
		},
		{
			name: "equator 90E",
			geo:  Geodetic{LatitudeDeg: 0, LongitudeDeg: 90, AltitudeKm: 0},
			want: frames.Vec3{X: 0, Y: EquatorialRadiusKm, Z: 0},
			tol:  1e-9,
		},
		{
			name: "north pole",
			geo:  Geodetic{LatitudeDeg: 90, LongitudeDeg: 0, AltitudeKm: 0},
			want: frames.Vec3{X: 0, Y: 0, Z: polarRadius},
			tol:  1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToECEF(tt.geo)
			if math.Abs(got.X-tt.want.X) > tt.tol ||
				math.Abs(got.Y-tt.want.Y) > tt.tol ||
				math.Abs(got.Z-tt.want.Z) > tt.tol {
				t.Errorf("ToECEF = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestECEFRoundTrip(t *testing.T) {
	tests := []Geodetic{
		{LatitudeDeg: 45, LongitudeDeg: 30, AltitudeKm: 400},
		{LatitudeDeg: -33.8688, LongitudeDeg: 151.2093, AltitudeKm: 0.058},
		{LatitudeDeg: 0, LongitudeDeg: 179.99, AltitudeKm: 35786},
		{LatitudeDeg: 89.5, LongitudeDeg: -120, AltitudeKm: 800},
		{LatitudeDeg: -89.5, LongitudeDeg: 10, AltitudeKm: 400},
	}

	for _, geo := range tests {
		got := FromECEF(ToECEF(geo))
		if math.Abs(got.LatitudeDeg-geo.LatitudeDeg) > 1e-6 {
			t.Errorf("lat %v -> %v", geo.LatitudeDeg, got.LatitudeDeg)
		}
		if math.Abs(got.LongitudeDeg-geo.LongitudeDeg) > 1e-6 {
			t.Errorf("lon %v -> %v", geo.LongitudeDeg, got.LongitudeDeg)
		}
		if math.Abs(got.AltitudeKm-geo.AltitudeKm) > 1e-6 {
			t.Errorf("alt %v -> %v", geo.AltitudeKm, got.AltitudeKm)
		}
	}
}

func TestECIRoundTrip(t *testing.T) {
	// Geodetic -> ECEF -> ECI -> geodetic must return the same triple.
	geo := Geodetic{LatitudeDeg: 45, LongitudeDeg: 30, AltitudeKm: 400}
	at := time.Unix(1704067200, 0)

	eci := frames.ECEFToECI(ToECEF(geo), frames.GMST(at))
	got := FromECI(eci, at)

	if math.Abs(got.LatitudeDeg-geo.LatitudeDeg) > 1e-6 {
		t.Errorf("lat = %v, want %v", got.LatitudeDeg, geo.LatitudeDeg)
	}
	if math.Abs(got.LongitudeDeg-geo.LongitudeDeg) > 1e-6 {
		t.Errorf("lon = %v, want %v", got.LongitudeDeg, geo.LongitudeDeg)
	}
	if math.Abs(got.AltitudeKm-geo.AltitudeKm) > 1e-6 {
		t.Errorf("alt = %v, want %v", got.AltitudeKm, geo.AltitudeKm)
	}
}

func TestLongitudeNormalization(t *testing.T) {
	// A point just west of the antimeridian must come back in (-180, 180].
	geo := Geodetic{LatitudeDeg: 10, LongitudeDeg: -179.5, AltitudeKm: 500}
	got := FromECEF(ToECEF(geo))
	if got.LongitudeDeg <= -180 || got.LongitudeDeg > 180 {
		t.Fatalf("longitude %v outside (-180, 180]", got.LongitudeDeg)
	}
	if math.Abs(got.LongitudeDeg-geo.LongitudeDeg) > 1e-6 {
		t.Errorf("lon = %v, want %v", got.LongitudeDeg, geo.LongitudeDeg)
	}
}
