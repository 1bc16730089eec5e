package service

import (
	"context"
	"fmt"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"
	"minimarket/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaService is the sale-posting orchestrator. A posting touches three
// entities at once — product stock, customer debt, the sale record — and
// must commit or roll back as a unit.
type VentaService interface {
	RegistrarVenta(ctx context.Context, op model.Operador, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	PagarVentaCredito(ctx context.Context, op model.Operador, ventaID uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo        repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	inventario   InventarioService
	clientes     ClienteService
	caja         CajaService
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	inventario InventarioService,
	clientes ClienteService,
	caja CajaService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		inventario:   inventario,
		clientes:     clientes,
		caja:         caja,
		dispatcher:   dispatcher,
	}
}

// ── RegistrarVenta ───────────────────────────────────────────────────────────
// Single ACID transaction:
//   1. Resolve the operator's open session (sin caja abierta → rechazo).
//   2. Lock every product row (FOR UPDATE), verify active + stock, snapshot
//      the live sale price per line.
//   3. For credito: lock the customer row, verify the credit limit.
//   4. Only then mutate: deduct stock sala-first, increase customer debt,
//      create the sale. Any failure rolls the whole posting back —
//      partial application is never a valid end state.
// Verification strictly precedes mutation inside the transaction, and the
// row locks serialize concurrent postings against the same product/customer.

func (s *ventaService) RegistrarVenta(ctx context.Context, op model.Operador, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	sesion, err := s.caja.SesionAbierta(ctx, op)
	if err != nil {
		return nil, err
	}

	if req.Descuento.IsNegative() {
		return nil, apierror.New(apierror.KindValidation, "El descuento no puede ser negativo")
	}

	var clienteID uuid.UUID
	if req.TipoVenta == model.VentaCredito {
		if req.ClienteID == nil {
			return nil, apierror.New(apierror.KindValidation, "Una venta a crédito requiere cliente")
		}
		clienteID, err = uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "cliente_id inválido")
		}
	}

	type lineaResuelta struct {
		producto *model.Producto
		cantidad int
		precio   decimal.Decimal
		subtotal decimal.Decimal
	}

	var venta model.Venta
	var cliente *model.Cliente
	var resueltas []lineaResuelta

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		resueltas = resueltas[:0]
		subtotal := decimal.Zero

		// Phase 1: lock + verify every line, snapshot live prices.
		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductoID)
			if err != nil {
				return apierror.New(apierror.KindValidation, "producto_id inválido")
			}
			p, err := s.findProductoForUpdate(ctx, tx, pid)
			if err != nil {
				return err
			}
			if !p.Activo {
				return apierror.New(apierror.KindValidation,
					fmt.Sprintf("El producto %s está inactivo y no puede venderse", p.Nombre))
			}
			if p.StockTotal() < item.Cantidad {
				return apierror.New(apierror.KindInsufficientStock,
					fmt.Sprintf("Stock insuficiente para %s. Disponible: %d (sala: %d, bodega: %d)",
						p.Nombre, p.StockTotal(), p.StockSala, p.StockBodega))
			}

			// Always the live derived price at posting time, never a stale one.
			precio := p.PrecioVenta
			lineSubtotal := precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
			subtotal = subtotal.Add(lineSubtotal)
			resueltas = append(resueltas, lineaResuelta{
				producto: p,
				cantidad: item.Cantidad,
				precio:   precio,
				subtotal: lineSubtotal,
			})
		}

		total := subtotal.Sub(req.Descuento)
		if total.IsNegative() {
			return apierror.New(apierror.KindValidation, "El descuento no puede superar el subtotal")
		}

		// Phase 2: credit limit / payment sufficiency, still before mutations.
		var montoRecibido *decimal.Decimal
		vuelto := decimal.Zero
		switch req.TipoVenta {
		case model.VentaCredito:
			cliente, err = s.findClienteForUpdate(ctx, tx, clienteID)
			if err != nil {
				return err
			}
			if !cliente.PuedeComprarCredito(total) {
				return apierror.New(apierror.KindCreditLimitExceeded,
					fmt.Sprintf("El cliente %s ha excedido su límite de crédito (deuda: %s, límite: %s)",
						cliente.Nombre, cliente.DeudaTotal.StringFixed(2), cliente.LimiteCredito.StringFixed(2)))
			}
		case model.VentaContado:
			if req.MontoRecibido == nil {
				return apierror.New(apierror.KindValidation, "Una venta al contado requiere monto_recibido")
			}
			if req.MontoRecibido.LessThan(total) {
				return apierror.New(apierror.KindValidation,
					fmt.Sprintf("El monto recibido (%s) es menor al total (%s)",
						req.MontoRecibido.StringFixed(2), total.StringFixed(2)))
			}
			montoRecibido = req.MontoRecibido
			vuelto = req.MontoRecibido.Sub(total)
		}

		// Phase 3: mutate. Stock first, then debt, then the sale record.
		venta = model.Venta{
			UsuarioID:    op.ID,
			SesionCajaID: sesion.ID,
			Subtotal:     subtotal,
			Descuento:    req.Descuento,
			Total:        total,
			TipoVenta:    req.TipoVenta,
			MontoRecibido: montoRecibido,
			Vuelto:        vuelto,
			EstadoPago:    model.PagoPagada,
		}
		if req.TipoVenta == model.VentaCredito {
			venta.ClienteID = &clienteID
			venta.EstadoPago = model.PagoPendiente
		}
		for _, r := range resueltas {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     r.producto.ID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Subtotal:       r.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		for _, r := range resueltas {
			ref := venta.ID
			motivo := fmt.Sprintf("Venta %s", venta.ID)
			if err := s.inventario.DescontarStockTx(tx, r.producto, r.cantidad, motivo, &ref); err != nil {
				return err
			}
		}

		if req.TipoVenta == model.VentaCredito {
			if err := s.clientes.CargarCreditoTx(tx, cliente, total); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit: best-effort stock/expiry alerts for the products touched.
	if s.dispatcher != nil {
		hoy := time.Now()
		for _, r := range resueltas {
			if StockBajo(r.producto) || VencimientoProximo(r.producto, hoy) {
				_ = s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
					ProductoID:  r.producto.ID.String(),
					Nombre:      r.producto.Nombre,
					StockTotal:  r.producto.StockTotal(),
					StockMinimo: r.producto.StockMinimo,
				})
			}
		}
	}

	resp := ventaToResponse(&venta)
	for i, r := range resueltas {
		resp.Items[i].Producto = r.producto.Nombre
	}
	if cliente != nil {
		nombre := cliente.Nombre
		resp.Cliente = &nombre
	}
	return resp, nil
}

// ── PagarVentaCredito ────────────────────────────────────────────────────────
// Settlement is sale-scoped: the customer's debt drops by exactly the sale's
// total (never an arbitrary amount) and the sale flips to pagada. Both
// mutations commit together; a second call fails as already paid.

func (s *ventaService) PagarVentaCredito(ctx context.Context, op model.Operador, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.findVentaForUpdate(ctx, tx, ventaID)
		if err != nil {
			return err
		}
		if venta.TipoVenta != model.VentaCredito {
			return apierror.New(apierror.KindNotCreditSale, "Esta venta no es a crédito")
		}
		if venta.EstadoPago == model.PagoPagada {
			return apierror.New(apierror.KindAlreadyPaid, "Esta venta ya fue pagada")
		}
		if venta.ClienteID == nil {
			return apierror.New(apierror.KindServer, "Error interno del servidor")
		}

		cliente, err := s.findClienteForUpdate(ctx, tx, *venta.ClienteID)
		if err != nil {
			return err
		}
		if err := s.clientes.DescontarDeudaTx(tx, cliente, venta.Total); err != nil {
			return err
		}
		return s.repo.UpdateEstadoPagoTx(tx, venta.ID, model.PagoPagada)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.ObtenerVenta(ctx, ventaID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *ventaService) findProductoForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p *model.Producto
	var err error
	if tx != nil {
		p, err = s.productoRepo.FindByIDForUpdateTx(tx, id)
	} else {
		p, err = s.productoRepo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, fmt.Sprintf("Producto %s no encontrado", id))
	}
	return p, nil
}

func (s *ventaService) findClienteForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c *model.Cliente
	var err error
	if tx != nil {
		c, err = s.clienteRepo.FindByIDForUpdateTx(tx, id)
	} else {
		c, err = s.clienteRepo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Cliente no encontrado")
	}
	return c, nil
}

func (s *ventaService) findVentaForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v *model.Venta
	var err error
	if tx != nil {
		v, err = s.repo.FindByIDForUpdateTx(tx, id)
	} else {
		v, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Venta no encontrada")
	}
	return v, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	resp := &dto.VentaResponse{
		ID:            v.ID.String(),
		SesionCajaID:  v.SesionCajaID.String(),
		UsuarioID:     v.UsuarioID.String(),
		Items:         items,
		Subtotal:      v.Subtotal,
		Descuento:     v.Descuento,
		Total:         v.Total,
		TipoVenta:     v.TipoVenta,
		MontoRecibido: v.MontoRecibido,
		Vuelto:        v.Vuelto,
		EstadoPago:    v.EstadoPago,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.ClienteID != nil {
		id := v.ClienteID.String()
		resp.ClienteID = &id
	}
	if v.Cliente != nil {
		nombre := v.Cliente.Nombre
		resp.Cliente = &nombre
	}
	return resp
}
