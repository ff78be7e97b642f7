package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parkly/internal/middleware"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler accepts upgrades from any origin listed in origins, or from
// anywhere when origins is empty.
func NewHandler(hub *Hub, origins []string, log *zap.Logger) *Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		log: log,
	}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/ws", h.Connect)
}

// Connect upgrades GET /api/v1/ws. Browsers pass the JWT as ?token=.
func (h *Handler) Connect(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Int64("user_id", caller.UserID), zap.Error(err))
		return
	}

	h.hub.Register(caller.UserID, conn)
	h.log.Debug("websocket connected", zap.Int64("user_id", caller.UserID))
	defer func() {
		h.hub.Unregister(caller.UserID, conn)
		h.log.Debug("websocket disconnected", zap.Int64("user_id", caller.UserID))
	}()

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(caller.UserID, done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", zap.Int64("user_id", caller.UserID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) pingLoop(userID int64, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.hub.ping(userID); err != nil {
				return
			}
		}
	}
}
