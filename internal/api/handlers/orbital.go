// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/salcedoinaki/stellar/internal/api/response"
	"github.com/salcedoinaki/stellar/internal/orbital/frames"
	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
	"github.com/salcedoinaki/stellar/internal/orbital/passes"
	"github.com/salcedoinaki/stellar/internal/orbital/trajectory"
	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

// OrbitalHandler serves the propagation endpoints.
type OrbitalHandler struct {
	svc *services.OrbitalService
	log *utils.Logger
}

// NewOrbitalHandler creates the handler.
func NewOrbitalHandler(svc *services.OrbitalService, log *utils.Logger) *OrbitalHandler {
	return &OrbitalHandler{svc: svc, log: log}
}

// Propagate handles POST /api/propagate.
func (h *OrbitalHandler) Propagate(w http.ResponseWriter, r *http.Request) {
	var req services.PropagateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, utils.ErrBadRequest.Code, "invalid JSON body: "+err.Error())
		return
	}

	result, err := h.svc.Propagate(r.Context(), req)
	if err != nil {
		sendAPIError(w, err)
		return
	}
	response.OK(w, result)
}

// batchRequest is the POST /api/propagate/batch body.
type batchRequest struct {
	Requests []services.PropagateRequest `json:"requests"`
}

// batchElement mirrors one batch entry in the response.
type batchElement struct {
	*services.PropagateResult
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type batchResponse struct {
	Responses []batchElement       `json:"responses"`
	Counts    services.BatchCounts `json:"counts"`
}

// PropagateBatch handles POST /api/propagate/batch. Per-element failures
// surface as per-element error strings; the call itself still succeeds.
func (h *OrbitalHandler) PropagateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, utils.ErrBadRequest.Code, "invalid JSON body: "+err.Error())
		return
	}

	elements, counts := h.svc.PropagateBatch(r.Context(), req.Requests)

	out := batchResponse{
		Responses: make([]batchElement, len(elements)),
		Counts:    counts,
	}
	for i, el := range elements {
		out.Responses[i] = batchElement{
			PropagateResult: el.Result,
			Success:         el.Err == nil,
		}
		if el.Err != nil {
			out.Responses[i].ErrorMessage = el.Err.Error()
		}
	}
	response.OK(w, out)
}

// trajectoryPoint is one sweep sample on the wire.
type trajectoryPoint struct {
	TimestampUnix int64            `json:"timestamp_unix"`
	PositionKm    frames.Vec3      `json:"position_km"`
	VelocityKmS   frames.Vec3      `json:"velocity_km_s"`
	Geodetic      geodesy.Geodetic `json:"geodetic"`
}

// Trajectory handles POST /api/trajectory.
func (h *OrbitalHandler) Trajectory(w http.ResponseWriter, r *http.Request) {
	var req services.TrajectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, utils.ErrBadRequest.Code, "invalid JSON body: "+err.Error())
		return
	}

	samples, err := h.svc.Trajectory(r.Context(), req)
	if err != nil {
		sendAPIError(w, err)
		return
	}

	points := make([]trajectoryPoint, len(samples))
	for i, s := range samples {
		points[i] = trajectoryPoint{
			TimestampUnix: s.Time.Unix(),
			PositionKm:    s.State.Position,
			VelocityKmS:   s.State.Velocity,
			Geodetic:      s.Geo,
		}
	}
	response.OK(w, map[string]interface{}{
		"satellite_id": req.SatelliteID,
		"points":       points,
	})
}

// wirePass is a visibility pass on the wire, timestamps in unix seconds.
type wirePass struct {
	AOSTimestamp          int64   `json:"aos_timestamp"`
	LOSTimestamp          int64   `json:"los_timestamp"`
	MaxElevationTimestamp int64   `json:"max_elevation_timestamp"`
	MaxElevationDeg       float64 `json:"max_elevation_deg"`
	AOSAzimuthDeg         float64 `json:"aos_azimuth_deg"`
	LOSAzimuthDeg         float64 `json:"los_azimuth_deg"`
	DurationSeconds       int64   `json:"duration_seconds"`
}

// Visibility handles POST /api/visibility.
func (h *OrbitalHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	var req services.VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, utils.ErrBadRequest.Code, "invalid JSON body: "+err.Error())
		return
	}

	found, err := h.svc.Visibility(r.Context(), req)
	if err != nil {
		sendAPIError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"satellite_id":      req.SatelliteID,
		"ground_station_id": req.Station.ID,
		"passes":            toWirePasses(found),
	})
}

func toWirePasses(found []passes.Pass) []wirePass {
	out := make([]wirePass, len(found))
	for i, p := range found {
		out[i] = wirePass{
			AOSTimestamp:          p.AOS.Unix(),
			LOSTimestamp:          p.LOS.Unix(),
			MaxElevationTimestamp: p.TCA.Unix(),
			MaxElevationDeg:       p.MaxElevationDeg,
			AOSAzimuthDeg:         p.AOSAzimuthDeg,
			LOSAzimuthDeg:         p.LOSAzimuthDeg,
			DurationSeconds:       int64(p.Duration / time.Second),
		}
	}
	return out
}

// sendAPIError maps service errors onto the wire per the error policy:
// input problems are 4xx, numeric failures 5xx.
func sendAPIError(w http.ResponseWriter, err error) {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		response.Fail(w, apiErr.Status, apiErr.Code, apiErr.Error())
		return
	}
	if errors.Is(err, trajectory.ErrInvalidWindow) {
		response.Fail(w, http.StatusBadRequest, utils.ErrInvalidWindow.Code, err.Error())
		return
	}
	response.Fail(w, http.StatusInternalServerError, utils.ErrInternalServer.Code, err.Error())
}
