package service

import (
	"context"
	"errors"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CajaService is the per-operator register session state machine:
// abierta → cerrada, terminal, at most one open session per operator.
type CajaService interface {
	Abrir(ctx context.Context, op model.Operador, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, op model.Operador, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	Actual(ctx context.Context, op model.Operador) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, op model.Operador, page, limit int) (*dto.HistorialCajaResponse, error)
	// SesionAbierta resolves the operator's open session for the sale
	// transaction; fails with NoOpenRegister when none exists.
	SesionAbierta(ctx context.Context, op model.Operador) (*model.SesionCaja, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── Abrir ────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, op model.Operador, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, apierror.New(apierror.KindValidation, "El monto inicial no puede ser negativo")
	}

	// Guard: one open session per operator. The partial unique index on
	// (usuario_id) WHERE estado='abierta' backs this check against races.
	existing, err := s.repo.FindAbiertaPorUsuario(ctx, op.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && existing != nil {
		return nil, apierror.New(apierror.KindRegisterAlreadyOpen,
			"Ya tienes una caja abierta. Ciérrala antes de abrir una nueva")
	}

	sesion := &model.SesionCaja{
		UsuarioID:     op.ID,
		FechaApertura: time.Now(),
		MontoInicial:  req.MontoInicial,
		Estado:        model.CajaAbierta,
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

// ── Cerrar ───────────────────────────────────────────────────────────────────
// ventas_totales = SUM(total) over contado+pagada sales of the session.
// ganancia_del_dia = monto_cierre - monto_inicial: a cash-drawer
// reconciliation figure, not profit — the name comes from the business and
// is kept deliberately.

func (s *cajaService) Cerrar(ctx context.Context, op model.Operador, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoCierre.IsNegative() {
		return nil, apierror.New(apierror.KindValidation, "El monto de cierre no puede ser negativo")
	}

	var resp *dto.SesionCajaResponse
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.findForUpdate(ctx, tx, sesionID)
		if err != nil {
			return err
		}
		if sesion.Estado != model.CajaAbierta {
			return apierror.New(apierror.KindRegisterClosed, "Esta caja ya está cerrada")
		}

		ventasTotales, err := s.repo.SumVentasContadoPagadas(tx, sesion.ID)
		if err != nil {
			return err
		}

		ahora := time.Now()
		montoCierre := req.MontoCierre
		sesion.FechaCierre = &ahora
		sesion.MontoCierre = &montoCierre
		sesion.VentasTotales = ventasTotales
		sesion.GananciaDelDia = montoCierre.Sub(sesion.MontoInicial)
		sesion.Estado = model.CajaCerrada
		if req.Observaciones != nil {
			sesion.Observaciones = req.Observaciones
		}

		if err := s.repo.UpdateSesionTx(tx, sesion); err != nil {
			return err
		}
		resp = sesionToResponse(sesion)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── Actual ───────────────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context, op model.Operador) (*dto.SesionCajaResponse, error) {
	sesion, err := s.SesionAbierta(ctx, op)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) SesionAbierta(ctx context.Context, op model.Operador) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindAbiertaPorUsuario(ctx, op.ID)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNoOpenRegister, "No tienes una caja abierta")
	}
	if sesion == nil {
		return nil, apierror.New(apierror.KindNoOpenRegister, "No tienes una caja abierta")
	}
	return sesion, nil
}

// ── Historial ────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, op model.Operador, page, limit int) (*dto.HistorialCajaResponse, error) {
	if !op.EsSupervisor() {
		return nil, apierror.New(apierror.KindForbidden, "Solo supervisores pueden ver el historial de cajas")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sesiones, total, err := s.repo.ListCerradas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		data = append(data, *sesionToResponse(&sesiones[i]))
	}
	return &dto.HistorialCajaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *cajaService) findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var sesion *model.SesionCaja
	var err error
	if tx != nil {
		sesion, err = s.repo.FindByIDForUpdateTx(tx, id)
	} else {
		sesion, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Caja no encontrada")
	}
	return sesion, nil
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:             s.ID.String(),
		UsuarioID:      s.UsuarioID.String(),
		FechaApertura:  s.FechaApertura.Format(time.RFC3339),
		MontoInicial:   s.MontoInicial,
		VentasTotales:  s.VentasTotales,
		GananciaDelDia: s.GananciaDelDia,
		Estado:         s.Estado,
		Observaciones:  s.Observaciones,
	}
	if s.Usuario != nil {
		resp.Usuario = s.Usuario.Nombre
	}
	if s.FechaCierre != nil {
		f := s.FechaCierre.Format(time.RFC3339)
		resp.FechaCierre = &f
	}
	if s.MontoCierre != nil {
		resp.MontoCierre = s.MontoCierre
	}
	return resp
}
