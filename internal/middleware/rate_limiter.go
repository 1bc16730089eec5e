package middleware

import (
	"net/http"
	"sync"
	"time"

	"minimarket/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a fixed-window counter keyed by client IP. Windows are tracked
// in memory: the API runs as a single instance per store, so no shared
// backend is needed.
type limiter struct {
	limit   int
	window  time.Duration
	mensaje string

	mu      sync.Mutex
	ventana map[string]*ventanaIP
}

type ventanaIP struct {
	count int
	hasta time.Time
}

func newLimiter(limit int, window time.Duration, mensaje string) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		ventana: make(map[string]*ventanaIP),
	}
	go l.purge()
	return l
}

func (l *limiter) allow(ip string) (bool, time.Time) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ventana[ip]
	if !ok || now.After(v.hasta) {
		v = &ventanaIP{hasta: now.Add(l.window)}
		l.ventana[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.hasta
}

// purge drops expired windows so IPs that never return don't accumulate.
func (l *limiter) purge() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		eliminadas := 0
		for ip, v := range l.ventana {
			if now.After(v.hasta) {
				delete(l.ventana, ip)
				eliminadas++
			}
		}
		l.mu.Unlock()
		if eliminadas > 0 {
			log.Debug().Int("ventanas", eliminadas).Msg("rate limiter: ventanas expiradas eliminadas")
		}
	}
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, hasta := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.NewPlain(l.mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP to slow
// credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter is the general per-IP limiter applied to the whole API surface.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}
