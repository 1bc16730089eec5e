package handler

import (
	"context"
	"net/http"
	"time"

	"minimarket/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings Postgres and Redis and reports the alert queue backlog.
// Degraded dependencies answer 503 so the load balancer can rotate the
// instance out; credentials and internals are never exposed.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbOK := false
		if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			dbOK = true
		}

		redisOK := rdb.Ping(ctx).Err() == nil

		body := gin.H{
			"ok":    dbOK && redisOK,
			"db":    estadoDependencia(dbOK),
			"redis": estadoDependencia(redisOK),
		}
		if redisOK {
			if pendientes, err := rdb.LLen(ctx, worker.QueueAlertas).Result(); err == nil {
				body["alertas_pendientes"] = pendientes
			}
			if descartadas, err := worker.DLQLength(ctx, rdb, worker.QueueAlertas); err == nil {
				body["alertas_descartadas"] = descartadas
			}
		}

		status := http.StatusOK
		if !dbOK || !redisOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

func estadoDependencia(ok bool) string {
	if ok {
		return "conectado"
	}
	return "error"
}
