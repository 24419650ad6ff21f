package observation

import (
	"math"
	"testing"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
)

func equatorStation() GroundStation {
	return GroundStation{
		ID:              "eq",
		Name:            "Equator",
		LatitudeDeg:     0,
		LongitudeDeg:    0,
		AltitudeM:       0,
		MinElevationDeg: 5,
	}
}

func TestGroundStationAltitudeConversion(t *testing.T) {
	gs := GroundStation{AltitudeM: 1500}
	if got := gs.Geodetic().AltitudeKm; math.Abs(got-1.5) > 1e-12 {
		t.Errorf("AltitudeKm = %v, want 1.5", got)
	}
}

func TestLookOverhead(t *testing.T) {
	gs := equatorStation()
	sat := frames.Vec3{X: 7000, Y: 0, Z: 0} // straight up from (0°, 0°)

	look := LookECEF(sat, gs)
	if math.Abs(look.ElevationDeg-90) > 1e-6 {
		t.Errorf("elevation = %v, want 90", look.ElevationDeg)
	}
	if math.Abs(look.RangeKm-(7000-6378.137)) > 1e-6 {
		t.Errorf("range = %v, want %v", look.RangeKm, 7000-6378.137)
	}
}

func TestLookAzimuthQuadrants(t *testing.T) {
	gs := equatorStation()
	gsEcef := gs.ECEF()

	tests := []struct {
		name    string
		offset  frames.Vec3
		wantAz  float64
		wantEl  float64
	}{
		{name: "due north", offset: frames.Vec3{Z: 1000}, wantAz: 0, wantEl: 0},
		{name: "due east", offset: frames.Vec3{Y: 1000}, wantAz: 90, wantEl: 0},
		{name: "due west", offset: frames.Vec3{Y: -1000}, wantAz: 270, wantEl: 0},
		{name: "due south", offset: frames.Vec3{Z: -1000}, wantAz: 180, wantEl: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sat := frames.Vec3{X: gsEcef.X + tt.offset.X, Y: gsEcef.Y + tt.offset.Y, Z: gsEcef.Z + tt.offset.Z}
			look := LookECEF(sat, gs)
			if math.Abs(look.AzimuthDeg-tt.wantAz) > 1e-6 {
				t.Errorf("azimuth = %v, want %v", look.AzimuthDeg, tt.wantAz)
			}
			if math.Abs(look.ElevationDeg-tt.wantEl) > 1e-6 {
				t.Errorf("elevation = %v, want %v", look.ElevationDeg, tt.wantEl)
			}
			if math.Abs(look.RangeKm-1000) > 1e-6 {
				t.Errorf("range = %v, want 1000", look.RangeKm)
			}
		})
	}
}

func TestLookAzimuthAlwaysNormalized(t *testing.T) {
	gs := GroundStation{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060, AltitudeM: 10}
	gsEcef := gs.ECEF()

	for angle := 0.0; angle < 360; angle += 17 {
		rad := angle * math.Pi / 180
		sat := frames.Vec3{
			X: gsEcef.X + 900*math.Cos(rad),
			Y: gsEcef.Y + 900*math.Sin(rad),
			Z: gsEcef.Z + 300,
		}
		look := LookECEF(sat, gs)
		if look.AzimuthDeg < 0 || look.AzimuthDeg >= 360 {
			t.Fatalf("azimuth %v outside [0, 360)", look.AzimuthDeg)
		}
	}
}

func TestLookDegenerateRange(t *testing.T) {
	gs := equatorStation()
	gsEcef := gs.ECEF()
	sat := frames.Vec3{X: gsEcef.X + 0.1, Y: gsEcef.Y, Z: gsEcef.Z}

	look := LookECEF(sat, gs)
	if look.ElevationDeg != 90 || look.AzimuthDeg != 0 {
		t.Errorf("degenerate range gave az=%v el=%v, want az=0 el=90", look.AzimuthDeg, look.ElevationDeg)
	}
}

func TestLookMatchesECEFPath(t *testing.T) {
	// Look rotates by GMST and must agree with LookECEF on the rotated
	// vector.
	gs := GroundStation{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060, AltitudeM: 10}
	at := time.Unix(1704067200, 0)
	satEci := frames.Vec3{X: 5000, Y: 3000, Z: 2500}

	direct := Look(satEci, gs, at)
	viaEcef := LookECEF(frames.ECIToECEF(satEci, frames.GMST(at)), gs)

	if math.Abs(direct.AzimuthDeg-viaEcef.AzimuthDeg) > 1e-9 ||
		math.Abs(direct.ElevationDeg-viaEcef.ElevationDeg) > 1e-9 ||
		math.Abs(direct.RangeKm-viaEcef.RangeKm) > 1e-9 {
		t.Errorf("Look = %+v, LookECEF = %+v", direct, viaEcef)
	}
}
