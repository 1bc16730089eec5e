package worker

// alerta_worker.go
// Processes low-stock and near-expiry alert jobs from QueueAlertas.
// Alerts are deduplicated in Redis so a busy product doesn't emit one
// per sale: SETNX with a TTL acts as a per-product suppression window.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const alertaDedupeTTL = 6 * time.Hour

// AlertaStockPayload is the job envelope sent to QueueAlertas.
type AlertaStockPayload struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	StockTotal  int    `json:"stock_total"`
	StockMinimo int    `json:"stock_minimo"`
}

// AlertaStockWorker emits structured alerts for products whose stock
// dropped to or below the minimum after a sale.
type AlertaStockWorker struct {
	rdb *redis.Client
}

func NewAlertaStockWorker(rdb *redis.Client) *AlertaStockWorker {
	return &AlertaStockWorker{rdb: rdb}
}

// Process emits the alert unless one was already emitted for this product
// within the suppression window.
func (w *AlertaStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil // poison payload, don't retry
	}
	if payload.ProductoID == "" {
		log.Warn().Msg("alerta_worker: empty producto_id — skipping")
		return nil
	}

	dedupeKey := fmt.Sprintf("alerta:stock:%s", payload.ProductoID)
	ok, err := w.rdb.SetNX(ctx, dedupeKey, 1, alertaDedupeTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		log.Debug().Str("producto_id", payload.ProductoID).Msg("alerta_worker: alert suppressed (dedupe)")
		return nil
	}

	log.Warn().
		Str("producto_id", payload.ProductoID).
		Str("producto", payload.Nombre).
		Int("stock_total", payload.StockTotal).
		Int("stock_minimo", payload.StockMinimo).
		Msg("alerta_worker: stock bajo")
	return nil
}
