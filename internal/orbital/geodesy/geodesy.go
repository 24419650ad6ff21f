// Package geodesy converts between geodetic coordinates on the WGS84
// ellipsoid and Cartesian Earth-fixed / inertial positions.
package geodesy

import (
	"math"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
)

// WGS84 ellipsoid.
const (
	// EquatorialRadiusKm is the WGS84 semi-major axis in km.
	EquatorialRadiusKm = 6378.137

	// Flattening is the WGS84 flattening 1/298.257223563.
	Flattening = 1.0 / 298.257223563

	// EccentricitySq is the first eccentricity squared, 2f - f².
	EccentricitySq = 2*Flattening - Flattening*Flattening

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// Latitude iteration count. Convergence is quadratic and sub-millimetre
	// after four iterations anywhere between the surface and GEO; the fixed
	// count keeps the conversion branch-free.
	latIterations = 10
)

// Geodetic is a position relative to the WGS84 ellipsoid.
type Geodetic struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeKm   float64 `json:"altitude_km"`
}

// ToECEF converts a geodetic position to Earth-fixed Cartesian km.
func ToECEF(g Geodetic) frames.Vec3 {
	lat := g.LatitudeDeg * degToRad
	lon := g.LongitudeDeg * degToRad

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	n := EquatorialRadiusKm / math.Sqrt(1-EccentricitySq*sinLat*sinLat)

	return frames.Vec3{
		X: (n + g.AltitudeKm) * cosLat * cosLon,
		Y: (n + g.AltitudeKm) * cosLat * sinLon,
		Z: (n*(1-EccentricitySq) + g.AltitudeKm) * sinLat,
	}
}

// FromECEF converts an Earth-fixed position to geodetic coordinates using
// the fixed-point latitude iteration.
func FromECEF(r frames.Vec3) Geodetic {
	lon := math.Atan2(r.Y, r.X)
	p := math.Sqrt(r.X*r.X + r.Y*r.Y)

	lat := math.Atan2(r.Z, p)
	var n float64
	for i := 0; i < latIterations; i++ {
		sinLat := math.Sin(lat)
		n = EquatorialRadiusKm / math.Sqrt(1-EccentricitySq*sinLat*sinLat)
		lat = math.Atan2(r.Z+EccentricitySq*n*sinLat, p)
	}

	sinLat, cosLat := math.Sincos(lat)
	n = EquatorialRadiusKm / math.Sqrt(1-EccentricitySq*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		// Near the poles p/cos(lat) degenerates; use the polar radius form.
		alt = math.Abs(r.Z)/math.Abs(sinLat) - n*(1-EccentricitySq)
	}

	return Geodetic{
		LatitudeDeg:  lat * radToDeg,
		LongitudeDeg: normalizeLonDeg(lon * radToDeg),
		AltitudeKm:   alt,
	}
}

// FromECI rotates an inertial position to Earth-fixed at t and converts it
// to geodetic coordinates.
func FromECI(r frames.Vec3, t time.Time) Geodetic {
	return FromECEF(frames.ECIToECEF(r, frames.GMST(t)))
}

// normalizeLonDeg maps a longitude into (-180, 180].
func normalizeLonDeg(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon > 180.0 {
		lon -= 360.0
	} else if lon <= -180.0 {
		lon += 360.0
	}
	return lon
}
