package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"rental-server/usecases"
	"rental-server/ws"
)

type incomingMessage struct {
	Type string `json:"type"` // ping
}

// WSHandler serves the live notification feed.
type WSHandler struct {
	mgr  *ws.Manager
	auth *usecases.AuthUseCase
}

func NewWSHandler(mgr *ws.Manager, auth *usecases.AuthUseCase) *WSHandler {
	return &WSHandler{mgr: mgr, auth: auth}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleNotificationsWS upgrades an authenticated caller and keeps the socket
// registered until the client goes away.
// GET /ws?token=<jwt>
func (h *WSHandler) HandleNotificationsWS(c *gin.Context) {
	claims, err := h.auth.VerifyToken(c.Query("token"))
	if err != nil {
		status := http.StatusForbidden
		if errors.Is(err, usecases.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"message": usecases.Message(err)})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := h.mgr.Register(userID, conn)
	log.Printf("user connected: %s", userID)

	defer func() {
		client.Close()
		log.Printf("user disconnected: %s", userID)
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error from %s: %v", userID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			log.Printf("invalid json from %s: %v", userID, err)
			continue
		}
		if base.Type == "ping" {
			if err := client.WriteJSON(gin.H{"type": "pong"}); err != nil {
				log.Printf("pong to %s failed: %v", userID, err)
			}
		}
	}
}

// GetConnectedUsers handles GET /api/ws/connected (admin)
func (h *WSHandler) GetConnectedUsers(c *gin.Context) {
	conns := h.mgr.Connections()
	c.JSON(http.StatusOK, gin.H{"users": conns, "count": len(conns)})
}
