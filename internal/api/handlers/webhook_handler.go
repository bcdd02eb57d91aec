package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oakline/callbridge/internal/services"
	"github.com/oakline/callbridge/internal/utils"
)

type WebhookHandler struct {
	svc services.IngestService
	log *logrus.Logger
}

func NewWebhookHandler(svc services.IngestService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

type WebhookResponse struct {
	Success     bool   `json:"success"`
	CallID      string `json:"call_id,omitempty"`
	BusinessID  string `json:"business_id,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	Status      string `json:"status,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Receive ingests one platform delivery. The platform retries on non-2xx,
// so processing failures still answer 200 with success=false; only a
// payload we could never process (no call identifier) gets a 400.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Success: false, Error: "unreadable request body"})
		return
	}

	res, err := h.svc.Process(c.Request.Context(), body)
	if err != nil {
		h.log.WithError(err).Error("webhook processing failed")
		status := http.StatusOK
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			status = http.StatusBadRequest
		}
		c.JSON(status, WebhookResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Success:     true,
		CallID:      res.CallID,
		BusinessID:  res.BusinessID,
		MessageType: res.MessageType,
		Status:      res.Status,
		Warning:     res.Warning,
	})
}

// Health answers the platform's endpoint verification probe.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
