package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"docsai/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// eventBuffer bounds how many events a slow client may fall behind by
	// before it is disconnected.
	eventBuffer = 32
)

// Events streams the session tracker's state changes over a websocket. The
// first message is the current state as a "loaded" or "cleared" event.
func Events(reg *service.SessionRegistry, log *zap.Logger) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return websocket.New(func(conn *websocket.Conn) {
			log.Info("events_connected", zap.String("session_id", s.ID))
			serveEvents(conn, s, log)
			log.Info("events_disconnected", zap.String("session_id", s.ID))
		})(c)
	})
}

func serveEvents(conn *websocket.Conn, s *service.Session, log *zap.Logger) {
	events := make(chan service.Event, eventBuffer)
	overflow := make(chan struct{})
	var overflowOnce sync.Once
	cancel := s.Tracker.Subscribe(func(ev service.Event) {
		select {
		case events <- ev:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	})
	defer cancel()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	initial := service.Event{Type: service.EventCleared, State: s.Tracker.State(context.Background())}
	if initial.State.ActiveID != "" {
		initial.Type = service.EventLoaded
		initial.DocumentID = initial.State.ActiveID
	}
	if err := writeEvent(conn, initial); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			if err := writeEvent(conn, ev); err != nil {
				log.Debug("events_write_failed", zap.String("session_id", s.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-overflow:
			log.Warn("events_client_too_slow", zap.String("session_id", s.ID))
			return
		case <-closed:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev service.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

// readUntilClosed drains client frames so pongs and close frames are seen.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
