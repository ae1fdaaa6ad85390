package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"boleia/internal/service"
	"boleia/internal/stream"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from app origins we don't control here;
	// the ride ID is the capability.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler upgrades ride observers to a WebSocket and relays the
// ride's event stream to them.
type StreamHandler struct {
	hub         *stream.Hub
	rideService *service.RideService
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *stream.Hub, rideService *service.RideService) *StreamHandler {
	return &StreamHandler{hub: hub, rideService: rideService}
}

// StreamRide handles GET /v1/rides/:id/stream. The first frame is the
// ride's current state so a reconnecting observer never depends on
// events it missed; everything after is live events.
func (h *StreamHandler) StreamRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(ride.ID)
	defer sub.Close()

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(gin.H{"type": "SNAPSHOT", "ride": toRideResponse(ride)}); err != nil {
		return
	}

	// Reader loop: we never expect client frames, but reading is what
	// surfaces the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
