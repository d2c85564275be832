package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"memomap/internal/models"
	"memomap/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Browser origins allowed besides the server's own host, as scheme://host[:port]
	AllowedOrigins []string
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

// GeolocationMessage is sent to the client after each reading.
type GeolocationMessage struct {
	Location *models.Location `json:"location"`
	Error    string           `json:"error,omitempty"`
}

// GeolocationHandler streams named locations for a device's geolocation readings.
type GeolocationHandler struct {
	names    tracker.NameResolver
	config   WebSocketConfig
	upgrader websocket.Upgrader
}

// NewGeolocationHandler creates a new geolocation handler. Every connection gets
// its own tracker; names is shared between them.
func NewGeolocationHandler(names tracker.NameResolver, config WebSocketConfig) *GeolocationHandler {
	return &GeolocationHandler{
		names:  names,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(config.AllowedOrigins),
		},
	}
}

// checkOrigin accepts requests without an Origin header (non-browser clients),
// same-host origins, and the configured origins.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			origins[strings.ToLower(u.Scheme+"://"+u.Host)] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return origins[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}

// geoSession is one connected device.
type geoSession struct {
	conn     *websocket.Conn
	config   WebSocketConfig
	tracker  *tracker.Tracker
	readings chan tracker.Reading
	send     chan []byte
}

// Stream handles GET /ws/geolocation
//
//	@Summary	Stream geolocation readings and receive location names
//	@Tags		location
//	@Router		/ws/geolocation [get]
func (h *GeolocationHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	s := &geoSession{
		conn:     conn,
		config:   h.config,
		tracker:  tracker.New(h.names),
		readings: make(chan tracker.Reading, 1),
		send:     make(chan []byte, 16),
	}

	// The session context ends with the connection, so late names are dropped.
	ctx, cancel := context.WithCancel(c.Request.Context())
	written := make(chan struct{})
	go func() {
		s.writePump(ctx)
		close(written)
	}()
	go s.process(ctx)

	s.readPump()
	cancel()
	<-written
	log.Debug().Msg("geolocation session closed")
}

// readPump decodes readings until the connection closes.
func (s *geoSession) readPump() {
	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var r tracker.Reading
		if err := json.Unmarshal(message, &r); err != nil {
			s.enqueueError("invalid reading")
			continue
		}
		s.enqueue(r)
	}
}

// enqueue keeps only the newest pending reading.
func (s *geoSession) enqueue(r tracker.Reading) {
	select {
	case s.readings <- r:
		return
	default:
	}
	select {
	case <-s.readings:
	default:
	}
	s.readings <- r
}

func (s *geoSession) enqueueError(msg string) {
	payload, _ := json.Marshal(GeolocationMessage{Error: msg})
	select {
	case s.send <- payload:
	default:
	}
}

// process resolves readings one at a time.
func (s *geoSession) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-s.readings:
			loc, err := s.tracker.Update(ctx, r)
			if ctx.Err() != nil {
				return
			}

			msg := GeolocationMessage{Location: loc}
			if err != nil {
				log.Warn().Err(err).Msg("failed to resolve location name")
				msg = GeolocationMessage{Error: "location unavailable"}
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Error().Err(err).Msg("failed to encode geolocation message")
				continue
			}

			select {
			case s.send <- payload:
			case <-ctx.Done():
				return
			}
		}
	}
}

// writePump is the only writer on the connection. It says goodbye once ctx ends.
func (s *geoSession) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
