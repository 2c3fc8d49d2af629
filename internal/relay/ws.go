package relay

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/metrics"
)

const maxFrameSize = 64 * 1024

// makeUpgrader creates a WebSocket upgrader with origin checking. An empty
// allow list (or "*") accepts every origin.
func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// wsConn adapts a gorilla connection to the FrameWriter interface. Writes
// are serialized because deliveries arrive from other sessions' goroutines.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteFrame(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(f)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Handler upgrades HTTP requests into relay sessions and runs their read
// loops.
type Handler struct {
	engine   *Engine
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates the WebSocket entry point for the relay.
func NewHandler(engine *Engine, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		upgrader: makeUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// ServeHTTP handles one relay connection for its whole lifetime.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxFrameSize)

	session := h.engine.NewSession(&wsConn{conn: conn})
	metrics.ActiveConnections.Inc()

	defer func() {
		session.Close()
		metrics.ActiveConnections.Dec()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			// Normal closes and transport failures end the session the same
			// way: registry cleanup, no reply.
			h.logger.Debug().Err(err).Str("identity", session.Identity()).Msg("read loop ended")
			return
		}
		session.HandleFrame(string(msg))
	}
}
