package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

const (
	// Time allowed to write a message to the peer.
	trackWriteWait = 10 * time.Second

	// Interval between position updates.
	trackInterval = time.Second
)

// TrackHandler streams live satellite positions over a WebSocket.
type TrackHandler struct {
	svc      *services.OrbitalService
	source   TLEProvider
	log      *utils.Logger
	upgrader websocket.Upgrader
}

// NewTrackHandler creates the live tracking handler.
func NewTrackHandler(svc *services.OrbitalService, source TLEProvider, log *utils.Logger) *TrackHandler {
	return &TrackHandler{
		svc:    svc,
		source: source,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The stream carries public orbital data; any origin may read it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// trackUpdate is one streamed position sample.
type trackUpdate struct {
	NoradID int                       `json:"norad_id"`
	Name    string                    `json:"name"`
	State   *services.PropagateResult `json:"state"`
}

// Track handles GET /ws/track/{id}: upgrades and streams the satellite's
// propagated position once per second until the client disconnects.
func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	noradID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "satellite id must be a NORAD catalog number", http.StatusBadRequest)
		return
	}

	elset, err := h.source.GetTLE(r.Context(), noradID)
	if err != nil {
		h.log.Warn("TLE fetch for %d: %v", noradID, err)
		http.Error(w, "TLE source unavailable", http.StatusBadGateway)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Drain control frames so pings and the close handshake are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(trackInterval)
	defer ticker.Stop()

	for {
		result, err := h.svc.Propagate(r.Context(), services.PropagateRequest{
			SatelliteID:   strconv.Itoa(noradID),
			Line1:         elset.Line1,
			Line2:         elset.Line2,
			TimestampUnix: time.Now().Unix(),
		})
		if err != nil {
			h.log.Warn("track %d: %v", noradID, err)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "propagation failed"),
				time.Now().Add(trackWriteWait))
			return
		}

		conn.SetWriteDeadline(time.Now().Add(trackWriteWait))
		if err := conn.WriteJSON(trackUpdate{
			NoradID: noradID,
			Name:    elset.Name,
			State:   result,
		}); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
