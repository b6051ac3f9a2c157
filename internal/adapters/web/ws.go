package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/darkwatt/internal/broadcast"
)

const (
	wsReadWaitTimeout    = 15 * time.Second
	wsWriteWaitTimeout   = 10 * time.Second
	wsPingPeriodTickTime = 10 * time.Second
	wsReadLimit          = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  8 * 1024,
	HandshakeTimeout: time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// handleChanges upgrades to a websocket and forwards every published Changes
// as a JSON text frame. Client frames are read only to detect disconnects.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub.ID)
	log.Info().Str("subscriber", sub.ID).Str("remote", r.RemoteAddr).Msg("websocket connected")

	closeCh := make(chan struct{})
	go readLoop(conn, closeCh)
	writeLoop(conn, sub, closeCh)

	log.Info().Str("subscriber", sub.ID).Msg("websocket disconnected")
}

func readLoop(conn *websocket.Conn, closeCh chan struct{}) {
	defer close(closeCh)

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWaitTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadWaitTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWaitTimeout))
	}
}

func writeLoop(conn *websocket.Conn, sub broadcast.Subscription, closeCh chan struct{}) {
	ticker := time.NewTicker(wsPingPeriodTickTime)
	defer ticker.Stop()

	for {
		select {
		case changes, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			data, err := json.Marshal(changes)
			if err != nil {
				log.Warn().Err(err).Msg("cannot marshal changes")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWaitTimeout)); err != nil {
				log.Debug().Err(err).Msg("websocket ping failed")
				return
			}

		case <-closeCh:
			return
		}
	}
}
