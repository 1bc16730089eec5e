package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio records every cost/margin mutation together with the sale
// price derived before and after, so price drift is always explainable.
type HistorialPrecio struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	CostoAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MargenAnterior decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	MargenNuevo    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	VentaAnterior  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaNueva     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
}
