package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/fiadolabs/fiado/internal/webhook"
)

// HandlePixWebhook acknowledges the gateway first and reconciles afterwards.
// The gateway retries undelivered notifications, and processing is
// idempotent, so a fast 200 here is safe.
func (s *Server) HandlePixWebhook(c *gin.Context) {
	secret := c.Param("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.WebhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var notification webhook.Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})

	s.webhookSvc.Dispatch(notification.Pix)
}
