package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mongorepo "github.com/oakline/callbridge/internal/repositories/mongo"
	"github.com/oakline/callbridge/internal/utils"
)

// EventHandler exposes the raw delivery audit log for debugging replays.
type EventHandler struct {
	events mongorepo.EventLogRepository
}

func NewEventHandler(events mongorepo.EventLogRepository) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) ListByCall(c *gin.Context) {
	const op = "EventHandler.ListByCall"

	if h.events == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "event archive not configured", nil))
		return
	}

	callID := c.Param("call_id")
	if callID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing call_id", nil))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.events.ListByCallID(c.Request.Context(), callID, limit)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to list events", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"call_id": callID, "events": entries})
}
