package middleware

import (
	"github.com/ferrara94/CashCard-Microservice/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestIDHeader carries the id assigned to each audited request.
const RequestIDHeader = "X-Request-Id"

// Audit tags every request with an id and records method, path, principal
// and final status after the handler ran. Insert failures are ignored; the
// audit trail is best-effort and must not fail the request.
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header(RequestIDHeader, requestID)

		c.Next()

		var principal string
		if p := CurrentPrincipal(c); p != nil {
			principal = p.Username
		}

		entry := models.AccessLog{
			RequestID: requestID,
			Principal: principal,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
