package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports whether the two stateful dependencies answer: Postgres
// (silos, reservas) and Redis (cache, job queues). Degraded means 503 so a
// load balancer stops routing reservations at an instance that cannot
// commit them.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "ok"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "unreachable"
		}

		cache := "ok"
		if rdb.Ping(ctx).Err() != nil {
			cache = "unreachable"
		}

		status := http.StatusOK
		if postgres != "ok" || cache != "ok" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":       status == http.StatusOK,
			"postgres": postgres,
			"redis":    cache,
		})
	}
}
