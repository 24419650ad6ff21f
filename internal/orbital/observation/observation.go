// Package observation computes topocentric look angles from a ground
// station to a satellite.
package observation

import (
	"math"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// Below this range the SEZ decomposition divides by a near-zero
	// magnitude; the satellite is effectively overhead.
	minRangeKm = 1.0
)

// GroundStation is an observer site on the WGS84 ellipsoid.
type GroundStation struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LatitudeDeg     float64 `json:"latitude_deg"`
	LongitudeDeg    float64 `json:"longitude_deg"`
	AltitudeM       float64 `json:"altitude_m"`
	MinElevationDeg float64 `json:"min_elevation_deg"`
}

// Geodetic returns the station position with altitude in km.
func (gs GroundStation) Geodetic() geodesy.Geodetic {
	return geodesy.Geodetic{
		LatitudeDeg:  gs.LatitudeDeg,
		LongitudeDeg: gs.LongitudeDeg,
		AltitudeKm:   gs.AltitudeM / 1000.0,
	}
}

// ECEF returns the station position in Earth-fixed km.
func (gs GroundStation) ECEF() frames.Vec3 {
	return geodesy.ToECEF(gs.Geodetic())
}

// LookAngles is the topocentric view of a satellite from a station.
type LookAngles struct {
	AzimuthDeg   float64 `json:"azimuth_deg"`   // [0, 360), 0 = North
	ElevationDeg float64 `json:"elevation_deg"` // [-90, 90]
	RangeKm      float64 `json:"range_km"`
}

// Look computes azimuth, elevation and range from the station to a
// satellite whose inertial position is satEci at time t.
//
// The satellite position rotates to ECEF by GMST, the range vector is
// decomposed in the station's South-East-Zenith frame, and azimuth is
// measured clockwise from North.
func Look(satEci frames.Vec3, gs GroundStation, t time.Time) LookAngles {
	return LookECEF(frames.ECIToECEF(satEci, frames.GMST(t)), gs)
}

// LookECEF is Look for a satellite position already in the Earth-fixed
// frame (shared by the pass sweep, which rotates once per sample).
func LookECEF(satEcef frames.Vec3, gs GroundStation) LookAngles {
	d := satEcef.Sub(gs.ECEF())

	lat := gs.LatitudeDeg * degToRad
	lon := gs.LongitudeDeg * degToRad
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	s := sinLat*cosLon*d.X + sinLat*sinLon*d.Y - cosLat*d.Z
	e := -sinLon*d.X + cosLon*d.Y
	z := cosLat*cosLon*d.X + cosLat*sinLon*d.Y + sinLat*d.Z

	rng := math.Sqrt(s*s + e*e + z*z)
	if rng < minRangeKm {
		return LookAngles{AzimuthDeg: 0, ElevationDeg: 90, RangeKm: rng}
	}

	// Bearing clockwise from North: north is -S, east is +E.
	az := math.Atan2(e, -s) * radToDeg
	if az < 0 {
		az += 360.0
	}

	return LookAngles{
		AzimuthDeg:   az,
		ElevationDeg: math.Asin(z/rng) * radToDeg,
		RangeKm:      rng,
	}
}
