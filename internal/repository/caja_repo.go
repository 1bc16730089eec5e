package repository

import (
	"context"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	// SumVentasContadoPagadas totals contado+pagada sales posted against the
	// session — the close-time ventas_totales figure.
	SumVentasContadoPagadas(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error)
	ListCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado = ?", usuarioID, model.CajaAbierta).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Save(s).Error
}

func (r *cajaRepo) SumVentasContadoPagadas(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&model.Venta{}).
		Select("SUM(total)").
		Where("sesion_caja_id = ? AND tipo_venta = ? AND estado_pago = ?",
			sesionID, model.VentaContado, model.PagoPagada).
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *cajaRepo) ListCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Where("estado = ?", model.CajaCerrada)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Usuario").
		Order("fecha_apertura DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) DB() *gorm.DB { return r.db }
