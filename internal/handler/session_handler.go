package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/steptracker/steptracker-backend-go/internal/middleware"
	"github.com/steptracker/steptracker-backend-go/internal/models"
	"github.com/steptracker/steptracker-backend-go/internal/service"
	"github.com/steptracker/steptracker-backend-go/internal/stream"
	"github.com/steptracker/steptracker-backend-go/pkg/response"
)

// SessionHandler handles HTTP requests for the live tracking session
type SessionHandler struct {
	sessionService *service.SessionService
	hub            *stream.Hub
	upgrader       websocket.Upgrader
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, hub *stream.Hub) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		hub:            hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tokens already gate the route; cross-origin views are fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start handles POST /api/session/start
func (h *SessionHandler) Start(c *gin.Context) {
	// The body is optional; an empty POST starts a JUST_WALK session.
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid start payload: "+err.Error())
		return
	}

	snap, err := h.sessionService.Start(middleware.UserID(c), req.WalkMode)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, snap)
}

// Ingest handles POST /api/session/ingest
func (h *SessionHandler) Ingest(c *gin.Context) {
	var sample models.GeoSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		response.BadRequest(c, "Invalid location sample: "+err.Error())
		return
	}

	snap, accepted, err := h.sessionService.Ingest(middleware.UserID(c), sample)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"accepted": accepted, "session": snap})
}

// Steps handles POST /api/session/steps
func (h *SessionHandler) Steps(c *gin.Context) {
	var req models.StepCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid step count payload: "+err.Error())
		return
	}

	snap, err := h.sessionService.RecordSteps(middleware.UserID(c), req.CounterValue)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, snap)
}

// Pause handles POST /api/session/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	snap, err := h.sessionService.Pause(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, snap)
}

// Resume handles POST /api/session/resume
func (h *SessionHandler) Resume(c *gin.Context) {
	snap, err := h.sessionService.Resume(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, snap)
}

// Snapshot handles GET /api/session
func (h *SessionHandler) Snapshot(c *gin.Context) {
	response.Success(c, h.sessionService.Snapshot(middleware.UserID(c)))
}

// Stop handles POST /api/session/stop
func (h *SessionHandler) Stop(c *gin.Context) {
	session, err := h.sessionService.Stop(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, session)
}

// Live handles GET /api/session/live, upgrading to a websocket that
// receives a snapshot after every state change of the user's session.
func (h *SessionHandler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	client := h.hub.Register(middleware.UserID(c))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Closing Send ends the writer goroutine even when no snapshots
	// are flowing.
	h.hub.Unregister(client)
	<-done
}
