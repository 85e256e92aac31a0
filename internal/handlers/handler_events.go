package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HeartbeatInterval is how often an idle event stream sends a keep-alive comment.
const HeartbeatInterval = 25 * time.Second

type eventsHandler struct {
	events    portssvc.EventStreamSvc
	heartbeat time.Duration
}

// RegisterEventRoutes registers the server-sent events stream. rg must already authenticate.
func RegisterEventRoutes(rg *gin.RouterGroup, events portssvc.EventStreamSvc) {
	h := &eventsHandler{events: events, heartbeat: HeartbeatInterval}
	rg.GET("/events", h.stream)
}

// stream godoc
// @Summary Live event stream
// @Description Server-sent events for the caller (transaction:created, transaction:updated, user:updated). Admins also receive admin-wide events.
// @Tags events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /events [get]
func (h *eventsHandler) stream(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok || !identity.Authenticated() {
		c.JSON(http.StatusUnauthorized, dto.Fail("Unauthorized"))
		return
	}

	channels := []domain.Channel{domain.UserChannelFor(identity.ID)}
	if identity.IsAdmin() {
		channels = append(channels, domain.AdminChannel())
	}
	events, cancel := h.events.Subscribe(channels...)
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	logger.Info("Event stream opened", slog.Int("channels", len(channels)))

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(evt.Name, evt.Payload)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
	logger.Info("Event stream closed")
}
