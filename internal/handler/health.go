package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EstadoImpressora reports the printer circuit breaker state.
type EstadoImpressora interface {
	Estado() string
}

// Health returns a JSON health check response.
// Only the database is required; Redis and the printer are reported but
// never fail the check. A nil rdb reports "disabled".
func Health(db *gorm.DB, rdb *redis.Client, impressora EstadoImpressora) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		printerStatus := "disabled"
		if impressora != nil {
			printerStatus = impressora.Estado()
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"db":      dbStatus,
			"redis":   redisStatus,
			"printer": printerStatus,
		})
	}
}
