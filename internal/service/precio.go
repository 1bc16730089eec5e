package service

import (
	"context"
	"errors"

	"minimarket/internal/apierror"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var cien = decimal.NewFromInt(100)

// CalcularPrecioVenta derives the sale price from cost and margin percentage:
// costo × (1 + margen/100), rounded half-up to the cent. This is the single
// place the derivation lives; every write path that touches cost or margin
// calls it before persisting, and the derived price is never edited directly.
func CalcularPrecioVenta(costo, porcentajeMargen decimal.Decimal) decimal.Decimal {
	// decimal.Round is half-away-from-zero, which for non-negative money is
	// the half-up rule.
	return costo.Mul(decimal.NewFromInt(1).Add(porcentajeMargen.Div(cien))).Round(2)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// lookupErr classifies a repository lookup failure: a missing row maps to
// the given business error; anything else (connection down, bad query)
// passes through and surfaces as an internal error.
func lookupErr(err error, kind apierror.Kind, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.New(kind, msg)
	}
	return err
}
