package infra

import (
	"fmt"

	"minimarket/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// that GORM cannot express (partial unique indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Cliente{},
		&model.SesionCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
		&model.HistorialPrecio{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS / guarded
// DO blocks so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One open register session per operator. The partial unique index is
		// the authoritative guard: the service-level check only produces the
		// friendly error message, this closes the race.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_sesion_caja_abierta_por_usuario
		   ON sesion_cajas (usuario_id) WHERE estado = 'abierta'`,

		// Stock can never go negative, whatever bug reaches the DB.
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
		     ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo
		       CHECK (stock_sala >= 0 AND stock_bodega >= 0);
		   END IF;
		 END $$`,

		// Debt floors at zero.
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_clientes_deuda_no_negativa') THEN
		     ALTER TABLE clientes ADD CONSTRAINT chk_clientes_deuda_no_negativa
		       CHECK (deuda_total >= 0);
		   END IF;
		 END $$`,

		// Sale totals are consistent by construction; belt for the audit trail.
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_total_no_negativo') THEN
		     ALTER TABLE ventas ADD CONSTRAINT chk_ventas_total_no_negativo
		       CHECK (total >= 0 AND subtotal >= 0 AND descuento >= 0);
		   END IF;
		 END $$`,
	}

	for _, p := range patches {
		if err := db.Exec(p).Error; err != nil {
			return err
		}
	}
	return nil
}
