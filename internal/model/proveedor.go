package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is a catalog collaborator: products reference a supplier.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	Contacto  *string
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GORM would pluralize this as "proveedors".
func (Proveedor) TableName() string { return "proveedores" }
