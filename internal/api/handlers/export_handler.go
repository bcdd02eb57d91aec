package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oakline/callbridge/internal/services"
)

type ExportHandler struct {
	svc services.ExportService
}

func NewExportHandler(svc services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type ExportResponse struct {
	Object  string `json:"object"`
	Records int    `json:"records"`
}

func (h *ExportHandler) ExportTraining(c *gin.Context) {
	object, count, err := h.svc.ExportTraining(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{Object: object, Records: count})
}
