package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cortlandcast/core/state"
	"cortlandcast/logger"
	"cortlandcast/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be shorter than pongWait
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades the connection and streams state change
// events to the client until it disconnects or falls too far behind.
func (h *APIHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	sub := h.hub.Subscribe()
	logger.Info("websocket client connected",
		logger.String("subscriber", sub.ID),
		logger.String("remote", r.RemoteAddr))

	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

// readPump discards inbound frames. Clients only listen; the pump
// exists to notice disconnects and service pong replies.
func (h *APIHandler) readPump(conn *websocket.Conn, sub *state.Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", logger.ErrorField(err))
			}
			return
		}
	}
}

// writePump drains the subscriber queue onto the wire and keeps the
// connection alive with pings.
func (h *APIHandler) writePump(conn *websocket.Conn, sub *state.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us, likely for falling behind.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := ev.Encode()
			if err != nil {
				logger.Warn("event encode failed", logger.ErrorField(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			// Application-level heartbeat for clients that cannot see
			// protocol pings.
			frame, err := (&model.Event{Type: "ping", Data: struct{}{}}).Encode()
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}
