package model

import (
	"time"

	"github.com/google/uuid"
)

// Operator roles.
const (
	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
	RolAdministrador = "administrador"
)

// Usuario stores system operators with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Operador is the authenticated identity threaded from the JWT middleware
// into the services. Capability checks happen explicitly in the services
// before mutating operations rather than in an ambient route middleware.
type Operador struct {
	ID     uuid.UUID
	Nombre string
	Rol    string
}

// EsSupervisor reports whether the operator holds supervisor-level powers.
func (o Operador) EsSupervisor() bool {
	return o.Rol == RolSupervisor || o.Rol == RolAdministrador
}

// EsAdministrador reports whether the operator is an administrator.
func (o Operador) EsAdministrador() bool {
	return o.Rol == RolAdministrador
}
