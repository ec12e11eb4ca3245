package controllers

import (
	"ixadmin/internal/logging"
	"ixadmin/internal/middleware"
	"ixadmin/internal/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// clientMessage is what browsers send on the live socket.
type clientMessage struct {
	Type string `json:"type"`
}

// LiveController upgrades /api/grafana/live and wires each socket to the hub.
type LiveController struct {
	hub      *services.LiveHub
	upgrader websocket.Upgrader
}

// NewLiveController checks browser origins against the CORS allow-list.
// Requests without an Origin header (CLI tools, probes) are accepted.
func NewLiveController(hub *services.LiveHub, allowedOrigins []string, allowAll bool) *LiveController {
	return &LiveController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || middleware.OriginAllowed(origin, allowedOrigins)
			},
		},
	}
}

// HandleWebSocket handles incoming WebSocket connections
func (lc *LiveController) HandleWebSocket(c *gin.Context) {
	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn().Err(err).Str("ip", c.ClientIP()).Msg("[WS] Upgrade error")
		return
	}

	client := services.NewLiveClient(uuid.NewString(), ws)
	if !lc.hub.Register(client) {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}
	middleware.GlobalSecurityLogger.LogWebSocketConnected(c.ClientIP(), client.ID)

	go lc.writePump(client)
	go lc.readPump(client, c.ClientIP())
}

// readPump reads messages from the WebSocket client
func (lc *LiveController) readPump(client *services.LiveClient, ip string) {
	defer func() {
		lc.hub.Unregister(client.ID)
		client.Conn.Close()
		middleware.GlobalSecurityLogger.LogWebSocketDisconnected(ip, client.ID)
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		err := client.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug().Err(err).Str("client", client.ID).Msg("[WS] Read error")
			}
			return
		}

		// Handle different message types
		switch msg.Type {
		case "ping":
			lc.hub.SendTo(client.ID, services.LiveMessage{Type: "pong", Timestamp: time.Now().UTC()})

		case "subscribe":
			client.SetSubscribed(true)
			lc.hub.SendTo(client.ID, services.LiveMessage{Type: "subscribed", Timestamp: time.Now().UTC()})

		case "unsubscribe":
			// The socket stays open; broadcasts skip this client.
			client.SetSubscribed(false)
			lc.hub.SendTo(client.ID, services.LiveMessage{Type: "unsubscribed", Timestamp: time.Now().UTC()})

		default:
			lc.hub.SendTo(client.ID, services.LiveMessage{
				Type:      "error",
				Timestamp: time.Now().UTC(),
				Error:     "unknown message type: " + msg.Type,
			})
		}
	}
}

// writePump writes messages to the WebSocket client and keeps it alive with
// pings. It exits when the hub closes the Send channel.
func (lc *LiveController) writePump(client *services.LiveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, close connection
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logging.Debug().Err(err).Str("client", client.ID).Msg("[WS] Write error")
				}
				return
			}

		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
