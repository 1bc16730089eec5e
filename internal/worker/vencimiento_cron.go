package worker

// vencimiento_cron.go
// Background goroutine that periodically scans perishable products whose
// expiry date falls within the alert window and enqueues alert jobs for
// them. Sales also trigger alerts inline; this cron catches products
// that expire without being sold.

import (
	"context"
	"time"

	"minimarket/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	vencimientoTickInterval = 1 * time.Hour
	vencimientoDias         = 7
)

// VencimientoCronConfig holds all dependencies for the expiry-scan goroutine.
type VencimientoCronConfig struct {
	ProductoRepo repository.ProductoRepository
	Dispatcher   *Dispatcher
}

// StartVencimientoCron launches a background goroutine that ticks hourly
// and enqueues alerts for products expiring within the window.
// It respects the context for graceful shutdown.
func StartVencimientoCron(ctx context.Context, cfg VencimientoCronConfig) {
	go func() {
		ticker := time.NewTicker(vencimientoTickInterval)
		defer ticker.Stop()

		log.Info().Msg("vencimiento_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("vencimiento_cron: shutting down")
				return
			case <-ticker.C:
				scanVencimientos(ctx, cfg)
			}
		}
	}()
}

func scanVencimientos(ctx context.Context, cfg VencimientoCronConfig) {
	hasta := time.Now().AddDate(0, 0, vencimientoDias)
	productos, err := cfg.ProductoRepo.ListPorVencer(ctx, hasta)
	if err != nil {
		log.Error().Err(err).Msg("vencimiento_cron: failed to query expiring products")
		return
	}
	if len(productos) == 0 {
		return
	}

	log.Info().Int("count", len(productos)).Msg("vencimiento_cron: products near expiry")

	for i := range productos {
		p := &productos[i]
		err := cfg.Dispatcher.EnqueueAlertaStock(ctx, AlertaStockPayload{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			StockTotal:  p.StockTotal(),
			StockMinimo: p.StockMinimo,
		})
		if err != nil {
			log.Error().Err(err).Str("producto_id", p.ID.String()).Msg("vencimiento_cron: enqueue failed")
		}
	}
}
