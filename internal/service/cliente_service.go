package service

import (
	"context"
	"fmt"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClienteService is the customer credit ledger plus light customer CRUD.
// The debt invariant (deuda + cargo ≤ limite) is enforced at charge time
// only; debt may equal but never exceed the limit.
type ClienteService interface {
	Crear(ctx context.Context, op model.Operador, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error

	// CargarCreditoTx increases the (already row-locked) customer's debt
	// inside the caller's transaction. Fails CreditLimitExceeded when the
	// charge would push debt past the limit. The model is updated in place.
	CargarCreditoTx(tx *gorm.DB, c *model.Cliente, monto decimal.Decimal) error
	// DescontarDeudaTx reduces the locked customer's debt (floored at zero)
	// inside the caller's transaction — the settlement path.
	DescontarDeudaTx(tx *gorm.DB, c *model.Cliente, monto decimal.Decimal) error

	RegistrarAbono(ctx context.Context, id uuid.UUID, req dto.AbonoRequest) (*dto.AbonoResponse, error)
	ClientesConDeuda(ctx context.Context) ([]dto.ClienteResponse, error)
	Deuda(ctx context.Context, id uuid.UUID) (*dto.DeudaClienteResponse, error)
}

type clienteService struct {
	repo      repository.ClienteRepository
	ventaRepo repository.VentaRepository
}

func NewClienteService(repo repository.ClienteRepository, ventaRepo repository.VentaRepository) ClienteService {
	return &clienteService{repo: repo, ventaRepo: ventaRepo}
}

// ── Credit ledger ────────────────────────────────────────────────────────────

func (s *clienteService) CargarCreditoTx(tx *gorm.DB, c *model.Cliente, monto decimal.Decimal) error {
	if !c.PuedeComprarCredito(monto) {
		return apierror.New(apierror.KindCreditLimitExceeded,
			fmt.Sprintf("El cliente %s ha excedido su límite de crédito (deuda: %s, límite: %s)",
				c.Nombre, c.DeudaTotal.StringFixed(2), c.LimiteCredito.StringFixed(2)))
	}
	nuevaDeuda := c.DeudaTotal.Add(monto)
	if err := s.repo.UpdateDeudaTx(tx, c.ID, nuevaDeuda); err != nil {
		return err
	}
	c.DeudaTotal = nuevaDeuda
	return nil
}

func (s *clienteService) DescontarDeudaTx(tx *gorm.DB, c *model.Cliente, monto decimal.Decimal) error {
	nuevaDeuda := c.DeudaTotal.Sub(monto)
	if nuevaDeuda.IsNegative() {
		nuevaDeuda = decimal.Zero
	}
	if err := s.repo.UpdateDeudaTx(tx, c.ID, nuevaDeuda); err != nil {
		return err
	}
	c.DeudaTotal = nuevaDeuda
	return nil
}

func (s *clienteService) RegistrarAbono(ctx context.Context, id uuid.UUID, req dto.AbonoRequest) (*dto.AbonoResponse, error) {
	var resp *dto.AbonoResponse
	err := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		c, err := s.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.Monto.LessThanOrEqual(decimal.Zero) {
			return apierror.New(apierror.KindInvalidPayment, "El monto del abono debe ser mayor a cero")
		}
		if req.Monto.GreaterThan(c.DeudaTotal) {
			return apierror.New(apierror.KindInvalidPayment,
				fmt.Sprintf("El monto del abono (%s) no puede ser mayor a la deuda total (%s)",
					req.Monto.StringFixed(2), c.DeudaTotal.StringFixed(2)))
		}

		deudaAnterior := c.DeudaTotal
		if err := s.DescontarDeudaTx(tx, c, req.Monto); err != nil {
			return err
		}

		resp = &dto.AbonoResponse{
			ClienteID:     c.ID.String(),
			Nombre:        c.Nombre,
			DeudaAnterior: deudaAnterior,
			MontoAbonado:  req.Monto,
			DeudaActual:   c.DeudaTotal,
			Saldada:       c.DeudaTotal.IsZero(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *clienteService) ClientesConDeuda(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.ListConDeuda(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Deuda(ctx context.Context, id uuid.UUID) (*dto.DeudaClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	pendientes, err := s.ventaRepo.ListPendientesPorCliente(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	ventas := make([]dto.VentaResponse, 0, len(pendientes))
	for i := range pendientes {
		ventas = append(ventas, *ventaToResponse(&pendientes[i]))
	}
	return &dto.DeudaClienteResponse{
		Cliente:          *clienteToResponse(c),
		VentasPendientes: ventas,
	}, nil
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func (s *clienteService) Crear(ctx context.Context, op model.Operador, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:        req.Nombre,
		Telefono:      req.Telefono,
		Direccion:     req.Direccion,
		DeudaTotal:    decimal.Zero,
		LimiteCredito: decimal.NewFromInt(100000),
		Activo:        true,
	}
	if req.LimiteCredito != nil {
		if req.LimiteCredito.IsNegative() {
			return nil, apierror.New(apierror.KindValidation, "El límite de crédito no puede ser negativo")
		}
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.LimiteCredito != nil {
		if req.LimiteCredito.IsNegative() {
			return nil, apierror.New(apierror.KindValidation, "El límite de crédito no puede ser negativo")
		}
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error {
	if !op.EsAdministrador() {
		return apierror.New(apierror.KindForbidden, "Solo administradores pueden eliminar clientes")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	if c.DeudaTotal.GreaterThan(decimal.Zero) {
		return apierror.New(apierror.KindValidation, "No se puede eliminar un cliente con deuda pendiente")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *clienteService) db() *gorm.DB { return s.repo.DB() }

func (s *clienteService) findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c *model.Cliente
	var err error
	if tx != nil {
		c, err = s.repo.FindByIDForUpdateTx(tx, id)
	} else {
		c, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	return c, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Telefono:      c.Telefono,
		Direccion:     c.Direccion,
		DeudaTotal:    c.DeudaTotal,
		LimiteCredito: c.LimiteCredito,
		Activo:        c.Activo,
	}
}
