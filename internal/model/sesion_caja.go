package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register session states. "cerrada" is terminal — no reopening.
const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// SesionCaja is a bounded period during which one operator's cash drawer is
// open and sales may be posted against it. At most one "abierta" session per
// operator at any time (enforced by a partial unique index, see infra).
type SesionCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FechaApertura time.Time       `gorm:"not null"`
	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaCierre   *time.Time
	MontoCierre   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// VentasTotales is computed on close: SUM(total) over contado+pagada sales
	// posted against this session.
	VentasTotales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// GananciaDelDia = MontoCierre - MontoInicial. This is a cash-drawer
	// reconciliation figure, NOT profit (cost of goods is unrelated); the
	// field name is inherited from the business and kept as-is.
	GananciaDelDia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	Observaciones  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}
