package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente carries a running debt balance for credit sales. The invariant
// DeudaTotal + cargo <= LimiteCredito is enforced at charge time only;
// the debt may equal but never exceed the limit.
type Cliente struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string          `gorm:"index;not null"`
	Telefono     *string
	Direccion    *string
	DeudaTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:100000"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PuedeComprarCredito reports whether a charge of monto fits under the limit.
func (c *Cliente) PuedeComprarCredito(monto decimal.Decimal) bool {
	return c.DeudaTotal.Add(monto).LessThanOrEqual(c.LimiteCredito)
}
