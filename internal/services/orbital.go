// Package services provides business logic services for the orbital API.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salcedoinaki/stellar/internal/orbital/frames"
	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
	"github.com/salcedoinaki/stellar/internal/orbital/observation"
	"github.com/salcedoinaki/stellar/internal/orbital/passes"
	"github.com/salcedoinaki/stellar/internal/orbital/sgp4"
	"github.com/salcedoinaki/stellar/internal/orbital/tle"
	"github.com/salcedoinaki/stellar/internal/orbital/trajectory"
	"github.com/salcedoinaki/stellar/internal/platform/observability"
	"github.com/salcedoinaki/stellar/internal/utils"
)

const tleLineLength = 69

// Config tunes the boundary policy around the propagation core.
type Config struct {
	// MaxTrajectoryPoints caps sweep size per request.
	MaxTrajectoryPoints int
	// DefaultTrajectoryStep applies when a trajectory request omits the step.
	DefaultTrajectoryStep time.Duration
	// VisibilityStep is the pass scan interval when the request omits it.
	VisibilityStep time.Duration
	// RefinePasses enables one-second bisection of AOS/LOS crossings.
	RefinePasses bool
	// MaxTimestampAge rejects propagation timestamps further than this
	// before the present; zero disables the filter.
	MaxTimestampAge time.Duration
	// MaxTLEAge rejects elements older than this; zero disables the filter.
	MaxTLEAge time.Duration
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		MaxTrajectoryPoints:   10000,
		DefaultTrajectoryStep: 60 * time.Second,
		VisibilityStep:        passes.DefaultStep,
		RefinePasses:          true,
		MaxTimestampAge:       365 * 24 * time.Hour,
		MaxTLEAge:             365 * 24 * time.Hour,
	}
}

// OrbitalService validates requests, drives the propagation core, and
// records metrics. It holds no mutable state and is safe for concurrent use.
type OrbitalService struct {
	cfg     Config
	log     *utils.Logger
	metrics *observability.Metrics
}

// NewOrbitalService creates the service with injected logger and metrics.
func NewOrbitalService(cfg Config, log *utils.Logger, metrics *observability.Metrics) *OrbitalService {
	if cfg.MaxTrajectoryPoints <= 0 {
		cfg.MaxTrajectoryPoints = 10000
	}
	if cfg.DefaultTrajectoryStep <= 0 {
		cfg.DefaultTrajectoryStep = 60 * time.Second
	}
	if cfg.VisibilityStep <= 0 {
		cfg.VisibilityStep = passes.DefaultStep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &OrbitalService{cfg: cfg, log: log, metrics: metrics}
}

// PropagateRequest is a single-point propagation request.
type PropagateRequest struct {
	SatelliteID   string `json:"satellite_id"`
	Line1         string `json:"tle_line1"`
	Line2         string `json:"tle_line2"`
	TimestampUnix int64  `json:"timestamp_unix"`
}

// PropagateResult is a single-point propagation outcome.
type PropagateResult struct {
	SatelliteID   string           `json:"satellite_id"`
	TimestampUnix int64            `json:"timestamp_unix"`
	PositionKm    frames.Vec3      `json:"position_km"`
	VelocityKmS   frames.Vec3      `json:"velocity_km_s"`
	Geodetic      geodesy.Geodetic `json:"geodetic"`
}

// Propagate computes one state vector with its geodetic sub-point.
func (s *OrbitalService) Propagate(ctx context.Context, req PropagateRequest) (*PropagateResult, error) {
	start := time.Now()
	res, err := s.propagate(req)
	s.metrics.RecordOperation("propagate", time.Since(start), err == nil)
	if err != nil {
		s.log.Warn("propagate %s: %v", req.SatelliteID, err)
		return nil, err
	}
	return res, nil
}

func (s *OrbitalService) propagate(req PropagateRequest) (*PropagateResult, error) {
	t := time.Unix(req.TimestampUnix, 0).UTC()

	// Timestamps more than MaxTimestampAge before the present are likely
	// stale requests; instants in the future are legitimate predictions.
	if s.cfg.MaxTimestampAge > 0 {
		if age := s.cfg.Now().Sub(t); age > s.cfg.MaxTimestampAge {
			return nil, utils.WrapAPIError(
				fmt.Errorf("timestamp %d is %.0f days in the past", req.TimestampUnix, age.Hours()/24),
				utils.ErrStaleTimestamp.Code, utils.ErrStaleTimestamp.Message, utils.ErrStaleTimestamp.Status)
		}
	}

	model, elements, err := s.buildModel(req.Line1, req.Line2)
	if err != nil {
		return nil, err
	}

	state, err := model.Propagate(t.Sub(elements.Epoch).Minutes())
	if err != nil {
		return nil, utils.WrapAPIError(err, utils.ErrPropagation.Code, utils.ErrPropagation.Message, utils.ErrPropagation.Status)
	}

	return &PropagateResult{
		SatelliteID:   req.SatelliteID,
		TimestampUnix: req.TimestampUnix,
		PositionKm:    state.Position,
		VelocityKmS:   state.Velocity,
		Geodetic:      geodesy.FromECI(state.Position, t),
	}, nil
}

// BatchElement pairs one batch entry's result with its error, if any.
type BatchElement struct {
	Result *PropagateResult
	Err    error
}

// BatchCounts summarizes a batch outcome.
type BatchCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// PropagateBatch runs each request independently; per-element failures
// never abort the batch.
func (s *OrbitalService) PropagateBatch(ctx context.Context, reqs []PropagateRequest) ([]BatchElement, BatchCounts) {
	batchID := uuid.New().String()
	start := time.Now()

	elements := make([]BatchElement, len(reqs))
	counts := BatchCounts{Total: len(reqs)}
	for i, req := range reqs {
		res, err := s.propagate(req)
		elements[i] = BatchElement{Result: res, Err: err}
		if err != nil {
			counts.Errors++
		} else {
			counts.Success++
		}
	}

	s.metrics.RecordOperation("propagate_batch", time.Since(start), counts.Errors == 0)
	s.log.Info("batch %s: %d requests, %d ok, %d failed", batchID, counts.Total, counts.Success, counts.Errors)
	return elements, counts
}

// TrajectoryRequest is a uniform sweep request.
type TrajectoryRequest struct {
	SatelliteID string `json:"satellite_id"`
	Line1       string `json:"tle_line1"`
	Line2       string `json:"tle_line2"`
	StartUnix   int64  `json:"start_timestamp_unix"`
	EndUnix     int64  `json:"end_timestamp_unix"`
	StepSeconds int64  `json:"step_seconds"`
}

// Trajectory sweeps the window and returns the surviving samples.
func (s *OrbitalService) Trajectory(ctx context.Context, req TrajectoryRequest) ([]trajectory.Sample, error) {
	started := time.Now()
	samples, err := s.trajectory(req)
	s.metrics.RecordOperation("trajectory", time.Since(started), err == nil)
	if err != nil {
		s.log.Warn("trajectory %s: %v", req.SatelliteID, err)
		return nil, err
	}
	return samples, nil
}

func (s *OrbitalService) trajectory(req TrajectoryRequest) ([]trajectory.Sample, error) {
	step := time.Duration(req.StepSeconds) * time.Second
	if req.StepSeconds == 0 {
		step = s.cfg.DefaultTrajectoryStep
	}

	start := time.Unix(req.StartUnix, 0).UTC()
	end := time.Unix(req.EndUnix, 0).UTC()
	if err := s.validateWindow(start, end, step); err != nil {
		return nil, err
	}

	model, _, err := s.buildModel(req.Line1, req.Line2)
	if err != nil {
		return nil, err
	}

	samples, skipped, err := trajectory.Sweep(model, start, end, step)
	if err != nil {
		return nil, utils.WrapAPIError(err, utils.ErrInvalidWindow.Code, utils.ErrInvalidWindow.Message, utils.ErrInvalidWindow.Status)
	}
	if skipped > 0 {
		s.log.Warn("trajectory %s: skipped %d diverged samples", req.SatelliteID, skipped)
	}
	s.metrics.RecordTrajectoryPoints(len(samples), "success")
	s.metrics.RecordTrajectoryPoints(skipped, "error")
	return samples, nil
}

// VisibilityRequest asks for passes over a ground station.
type VisibilityRequest struct {
	SatelliteID string                    `json:"satellite_id"`
	Line1       string                    `json:"tle_line1"`
	Line2       string                    `json:"tle_line2"`
	Station     observation.GroundStation `json:"ground_station"`
	StartUnix   int64                     `json:"start_timestamp_unix"`
	EndUnix     int64                     `json:"end_timestamp_unix"`
	StepSeconds int64                     `json:"step_seconds,omitempty"`
}

// Visibility finds the station's visibility passes inside the window.
func (s *OrbitalService) Visibility(ctx context.Context, req VisibilityRequest) ([]passes.Pass, error) {
	started := time.Now()
	result, err := s.visibility(req)
	s.metrics.RecordOperation("visibility", time.Since(started), err == nil)
	if err != nil {
		s.log.Warn("visibility %s over %s: %v", req.SatelliteID, req.Station.ID, err)
		return nil, err
	}
	s.metrics.VisibilityPasses.Add(float64(len(result)))
	return result, nil
}

func (s *OrbitalService) visibility(req VisibilityRequest) ([]passes.Pass, error) {
	step := s.cfg.VisibilityStep
	if req.StepSeconds > 0 {
		step = time.Duration(req.StepSeconds) * time.Second
	}

	start := time.Unix(req.StartUnix, 0).UTC()
	end := time.Unix(req.EndUnix, 0).UTC()
	if err := s.validateWindow(start, end, step); err != nil {
		return nil, err
	}

	model, _, err := s.buildModel(req.Line1, req.Line2)
	if err != nil {
		return nil, err
	}

	finder := passes.Finder{Step: step, Refine: s.cfg.RefinePasses}
	return finder.Find(model, req.Station, start, end), nil
}

// buildModel parses, applies boundary policy, and initializes the model.
func (s *OrbitalService) buildModel(line1, line2 string) (*sgp4.Model, *tle.MeanElements, error) {
	if len(line1) != tleLineLength || len(line2) != tleLineLength {
		return nil, nil, utils.WrapAPIError(
			fmt.Errorf("lines are %d and %d characters, want %d", len(line1), len(line2), tleLineLength),
			utils.ErrTLEParse.Code, utils.ErrTLEParse.Message, utils.ErrTLEParse.Status)
	}

	parsed, err := tle.Parse(line1, line2)
	if err != nil {
		return nil, nil, utils.WrapAPIError(err, utils.ErrTLEParse.Code, utils.ErrTLEParse.Message, utils.ErrTLEParse.Status)
	}

	if s.cfg.MaxTLEAge > 0 {
		if age := s.cfg.Now().Sub(parsed.Epoch); age > s.cfg.MaxTLEAge {
			return nil, nil, utils.WrapAPIError(
				fmt.Errorf("epoch %s is %.0f days old", parsed.Epoch.Format(time.RFC3339), age.Hours()/24),
				utils.ErrStaleTLE.Code, utils.ErrStaleTLE.Message, utils.ErrStaleTLE.Status)
		}
	}

	model, err := sgp4.NewModel(parsed)
	if err != nil {
		var initErr *sgp4.InitError
		if errors.As(err, &initErr) {
			return nil, nil, utils.WrapAPIError(err, utils.ErrModelInit.Code, utils.ErrModelInit.Message, utils.ErrModelInit.Status)
		}
		return nil, nil, utils.WrapAPIError(err, utils.ErrInternalServer.Code, utils.ErrInternalServer.Message, utils.ErrInternalServer.Status)
	}
	return model, &parsed.MeanElements, nil
}

func (s *OrbitalService) validateWindow(start, end time.Time, step time.Duration) error {
	if !end.After(start) || step <= 0 {
		return utils.WrapAPIError(trajectory.ErrInvalidWindow,
			utils.ErrInvalidWindow.Code, utils.ErrInvalidWindow.Message, utils.ErrInvalidWindow.Status)
	}
	if n := trajectory.Count(start, end, step); n > s.cfg.MaxTrajectoryPoints {
		return utils.WrapAPIError(
			fmt.Errorf("window yields %d samples, max is %d", n, s.cfg.MaxTrajectoryPoints),
			utils.ErrInvalidWindow.Code, utils.ErrInvalidWindow.Message, utils.ErrInvalidWindow.Status)
	}
	return nil
}
