package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/oakline/callbridge/internal/api/handlers"
	"github.com/oakline/callbridge/internal/api/middleware"
)

type Deps struct {
	Webhook       *handlers.WebhookHandler
	Events        *handlers.EventHandler
	Export        *handlers.ExportHandler
	WebhookSecret string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// The platform probes GET before it starts delivering.
	r.GET("/webhook", d.Webhook.Health)

	guarded := r.Group("/")
	guarded.Use(middleware.WebhookSecret(d.WebhookSecret))

	guarded.POST("/webhook", d.Webhook.Receive)
	guarded.GET("/calls/:call_id/events", d.Events.ListByCall)
	guarded.POST("/export/training", d.Export.ExportTraining)
}
