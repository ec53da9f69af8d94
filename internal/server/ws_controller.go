package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	lockws "github.com/AbbyGrylls/impetus9-backend/internal/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // Allow all origins
}

// wsHandler returns the WebSocket upgrade handler for per-event first-download
// notifications.
// GET /api/v1/events/:event/ws?passkey=...
//
// Passkey authentication (master or event secret) is performed before the
// WebSocket upgrade.
func (s *Server) wsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventName := c.Param("event")

		// Validate the passkey before upgrade.
		passkey := c.Query("passkey")
		if passkey == "" {
			jsonError(c, http.StatusUnauthorized, "missing passkey")
			return
		}
		if _, err := s.Auth.Authorize(eventName, passkey); err != nil {
			jsonError(c, http.StatusUnauthorized, "invalid passkey")
			return
		}

		// Read current lock state so the client gets an immediate snapshot.
		lock, err := s.Store.EnsureLock(c.Request.Context(), eventName)
		if err != nil {
			log.Error().Err(err).Str("event_name", eventName).Msg("ws: failed to read lock")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}

		// Upgrade the HTTP connection to WebSocket.
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrader already wrote an error response.
			log.Debug().Err(err).Str("event_name", eventName).Msg("ws: upgrade failed")
			return
		}

		s.Hub.Subscribe(eventName, conn)
		log.Info().Str("event_name", eventName).Msg("ws: client connected")

		// Send the current lock state immediately so the client knows where things stand.
		initialMsg := lockws.LockMessage{
			Type:      "lock_state",
			EventName: eventName,
			Claimed:   lock.VCardsDownloaded,
			Timestamp: time.Now(),
		}
		if lock.FirstDownloaderName != nil {
			initialMsg.DownloaderName = *lock.FirstDownloaderName
		}
		initialMsg.DownloadTime = lock.DownloadTime
		if writeErr := conn.WriteJSON(initialMsg); writeErr != nil {
			log.Debug().Err(writeErr).Str("event_name", eventName).Msg("ws: failed to send initial state")
			s.Hub.Unsubscribe(eventName, conn)
			conn.Close()
			return
		}

		// Read loop — block until the client disconnects.
		defer func() {
			s.Hub.Unsubscribe(eventName, conn)
			conn.Close()
			log.Info().Str("event_name", eventName).Msg("ws: client disconnected")
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break // client disconnected or error
			}
		}
	}
}
