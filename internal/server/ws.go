package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ayusman/handrps/internal/game"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Events is the part of the session the events socket needs.
type Events interface {
	State() game.Output
	Subscribe() (<-chan game.Output, func())
}

// EventsHandler pushes every frame's game output to websocket clients.
type EventsHandler struct {
	events Events
	logger *log.Logger
}

// NewEventsHandler creates a new EventsHandler over the given session.
func NewEventsHandler(e Events, logger *log.Logger) *EventsHandler {
	return &EventsHandler{events: e, logger: logger}
}

// ServeHTTP upgrades the request and streams outputs as JSON text frames,
// starting with the current state.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	outputs, cancel := h.events.Subscribe()
	defer cancel()

	// Reads only detect the close; clients send nothing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	h.logger.Debug("Viewer connected", "remote", r.RemoteAddr)
	defer h.logger.Debug("Viewer disconnected", "remote", r.RemoteAddr)

	if err := h.write(conn, h.events.State()); err != nil {
		return
	}
	for out := range outputs {
		if err := h.write(conn, out); err != nil {
			return
		}
	}
}

func (h *EventsHandler) write(conn *websocket.Conn, out game.Output) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(out)
}
