package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salcedoinaki/stellar/internal/api/response"
	"github.com/salcedoinaki/stellar/internal/platform/tlesource"
	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

// TLEProvider supplies element sets by catalog number.
type TLEProvider interface {
	GetTLE(ctx context.Context, noradID int) (*tlesource.TLE, error)
}

// SatelliteHandler serves convenience endpoints for tracked satellites,
// resolving the TLE upstream instead of requiring it in the request.
type SatelliteHandler struct {
	svc    *services.OrbitalService
	source TLEProvider
	log    *utils.Logger
}

// NewSatelliteHandler creates the handler.
func NewSatelliteHandler(svc *services.OrbitalService, source TLEProvider, log *utils.Logger) *SatelliteHandler {
	return &SatelliteHandler{svc: svc, source: source, log: log}
}

// Position handles GET /api/satellites/{id}/position: the satellite's
// current state from the freshest cached TLE.
func (h *SatelliteHandler) Position(w http.ResponseWriter, r *http.Request) {
	noradID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, utils.ErrBadRequest.Code, "satellite id must be a NORAD catalog number")
		return
	}

	elset, err := h.source.GetTLE(r.Context(), noradID)
	if err != nil {
		h.log.Warn("TLE fetch for %d: %v", noradID, err)
		response.Fail(w, utils.ErrUpstreamSource.Status, utils.ErrUpstreamSource.Code, err.Error())
		return
	}

	result, err := h.svc.Propagate(r.Context(), services.PropagateRequest{
		SatelliteID:   strconv.Itoa(noradID),
		Line1:         elset.Line1,
		Line2:         elset.Line2,
		TimestampUnix: time.Now().Unix(),
	})
	if err != nil {
		sendAPIError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"norad_id":  noradID,
		"name":      elset.Name,
		"state":     result,
		"tle_epoch": elset.Epoch,
	})
}
