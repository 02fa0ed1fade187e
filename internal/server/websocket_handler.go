package server

import (
	"context"
	"net/http"
	"strings"

	"recruithub/internal/domain"
	"recruithub/internal/transport/httpdto"
	"recruithub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// AuthVerifier resolves a credential token to a user at connection time.
type AuthVerifier interface {
	AuthenticateToken(ctx context.Context, token string) (domain.User, error)
}

type WebSocketHandler struct {
	auth   AuthVerifier
	hub    *Hub
	logger *logger.Logger
}

func NewWebSocketHandler(auth AuthVerifier, hub *Hub, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{auth: auth, hub: hub, logger: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connect authenticates the handshake and upgrades to a persistent
// connection. A bad or missing token rejects the connection before it can
// enter any room; no further events are accepted from it.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = extractBearer(c.GetHeader("Authorization"))
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("authentication required", "UNAUTHORIZED"))
		return
	}

	user, err := h.auth.AuthenticateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("authentication failed", "UNAUTHORIZED"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.Name, h.logger)
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
