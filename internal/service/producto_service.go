package service

import (
	"context"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService owns the product catalog and its derived pricing.
// The sale price is never set directly: it is always recomputed from
// cost and margin, and every recomputation leaves an audit record.
type ProductoService interface {
	Crear(ctx context.Context, op model.Operador, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	AjustarStock(ctx context.Context, op model.Operador, id uuid.UUID, req dto.AjustarStockRequest) (*dto.StockResponse, error)
	Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error
	Reactivar(ctx context.Context, op model.Operador, id uuid.UUID) error
	HistorialPrecios(ctx context.Context, id uuid.UUID) ([]model.HistorialPrecio, error)
	ConsultaPrecio(ctx context.Context, id uuid.UUID) (*dto.ConsultaPrecioResponse, error)
}

type productoService struct {
	repo           repository.ProductoRepository
	proveedorRepo  repository.ProveedorRepository
	historialRepo  repository.HistorialPrecioRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewProductoService(
	repo repository.ProductoRepository,
	proveedorRepo repository.ProveedorRepository,
	historialRepo repository.HistorialPrecioRepository,
	movimientoRepo repository.MovimientoStockRepository,
) ProductoService {
	return &productoService{
		repo:           repo,
		proveedorRepo:  proveedorRepo,
		historialRepo:  historialRepo,
		movimientoRepo: movimientoRepo,
	}
}

func (s *productoService) Crear(ctx context.Context, op model.Operador, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if !op.EsAdministrador() {
		return nil, apierror.New(apierror.KindForbidden, "Solo un administrador puede crear productos")
	}
	if err := validarMargen(req.PorcentajeMargen); err != nil {
		return nil, err
	}
	if req.PrecioCosto.IsNegative() {
		return nil, apierror.New(apierror.KindValidation, "El precio de costo no puede ser negativo")
	}

	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, "proveedor_id inválido")
	}
	proveedor, err := s.proveedorRepo.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Proveedor no encontrado")
	}

	fechaVenc, err := parseFechaVencimiento(req.EsPerecible, req.FechaVencimiento)
	if err != nil {
		return nil, err
	}

	p := model.Producto{
		Nombre:           req.Nombre,
		ProveedorID:      proveedorID,
		PrecioCosto:      req.PrecioCosto.Round(2),
		PorcentajeMargen: req.PorcentajeMargen,
		PrecioVenta:      CalcularPrecioVenta(req.PrecioCosto, req.PorcentajeMargen),
		StockSala:        req.StockSala,
		StockBodega:      req.StockBodega,
		StockMinimo:      req.StockMinimo,
		EsAltaRotacion:   req.EsAltaRotacion,
		EsPerecible:      req.EsPerecible,
		FechaVencimiento: fechaVenc,
		Activo:           true,
	}
	if p.StockMinimo == 0 {
		p.StockMinimo = 10
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	p.Proveedor = proveedor
	return productoToResponse(&p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	return productoToResponse(p), nil
}

// Actualizar recomputes the sale price whenever cost or margin change and
// records the before/after values in the price history.
func (s *productoService) Actualizar(ctx context.Context, op model.Operador, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if !op.EsAdministrador() {
		return nil, apierror.New(apierror.KindForbidden, "Solo un administrador puede modificar productos")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.ProveedorID != nil {
		proveedorID, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.New(apierror.KindValidation, "proveedor_id inválido")
		}
		if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
			return nil, lookupErr(err, apierror.KindNotFound, "Proveedor no encontrado")
		}
		p.ProveedorID = proveedorID
		p.Proveedor = nil
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.EsAltaRotacion != nil {
		p.EsAltaRotacion = *req.EsAltaRotacion
	}
	if req.EsPerecible != nil {
		p.EsPerecible = *req.EsPerecible
	}
	if req.FechaVencimiento != nil || req.EsPerecible != nil {
		fechaStr := req.FechaVencimiento
		if fechaStr == nil && p.FechaVencimiento != nil {
			f := p.FechaVencimiento.Format("2006-01-02")
			fechaStr = &f
		}
		fechaVenc, err := parseFechaVencimiento(p.EsPerecible, fechaStr)
		if err != nil {
			return nil, err
		}
		p.FechaVencimiento = fechaVenc
	}

	cambioPrecio := req.PrecioCosto != nil || req.PorcentajeMargen != nil
	if cambioPrecio {
		costoAnterior := p.PrecioCosto
		margenAnterior := p.PorcentajeMargen
		ventaAnterior := p.PrecioVenta

		if req.PrecioCosto != nil {
			if req.PrecioCosto.IsNegative() {
				return nil, apierror.New(apierror.KindValidation, "El precio de costo no puede ser negativo")
			}
			p.PrecioCosto = req.PrecioCosto.Round(2)
		}
		if req.PorcentajeMargen != nil {
			if err := validarMargen(*req.PorcentajeMargen); err != nil {
				return nil, err
			}
			p.PorcentajeMargen = *req.PorcentajeMargen
		}
		p.PrecioVenta = CalcularPrecioVenta(p.PrecioCosto, p.PorcentajeMargen)

		h := model.HistorialPrecio{
			ProductoID:     p.ID,
			UsuarioID:      op.ID,
			CostoAnterior:  costoAnterior,
			CostoNuevo:     p.PrecioCosto,
			MargenAnterior: margenAnterior,
			MargenNuevo:    p.PorcentajeMargen,
			VentaAnterior:  ventaAnterior,
			VentaNueva:     p.PrecioVenta,
		}
		if err := s.historialRepo.Create(ctx, &h); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

// AjustarStock sets absolute counts for either location and records an
// "ajuste" movement. Supervisor-level operation: manual corrections after
// a physical count.
func (s *productoService) AjustarStock(ctx context.Context, op model.Operador, id uuid.UUID, req dto.AjustarStockRequest) (*dto.StockResponse, error) {
	if !op.EsSupervisor() {
		return nil, apierror.New(apierror.KindForbidden, "Solo un supervisor puede ajustar stock")
	}
	if req.StockSala == nil && req.StockBodega == nil {
		return nil, apierror.New(apierror.KindValidation, "Debe indicar stock_sala o stock_bodega")
	}

	var out *dto.StockResponse
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var p *model.Producto
		var err error
		if tx != nil {
			p, err = s.repo.FindByIDForUpdateTx(tx, id)
		} else {
			p, err = s.repo.FindByID(ctx, id)
		}
		if err != nil {
			return lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
		}

		salaAnterior, bodegaAnterior := p.StockSala, p.StockBodega
		if req.StockSala != nil {
			p.StockSala = *req.StockSala
		}
		if req.StockBodega != nil {
			p.StockBodega = *req.StockBodega
		}
		if err := s.repo.UpdateStockTx(tx, p.ID, p.StockSala, p.StockBodega); err != nil {
			return err
		}

		mov := model.MovimientoStock{
			ProductoID:     p.ID,
			Tipo:           model.MovimientoAjuste,
			Cantidad:       (p.StockSala + p.StockBodega) - (salaAnterior + bodegaAnterior),
			SalaAnterior:   salaAnterior,
			SalaNueva:      p.StockSala,
			BodegaAnterior: bodegaAnterior,
			BodegaNueva:    p.StockBodega,
			Motivo:         "Ajuste manual de inventario",
		}
		if err := s.movimientoRepo.CreateTx(tx, &mov); err != nil {
			return err
		}

		out = &dto.StockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			StockSala:   p.StockSala,
			StockBodega: p.StockBodega,
			StockTotal:  p.StockTotal(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *productoService) Desactivar(ctx context.Context, op model.Operador, id uuid.UUID) error {
	if !op.EsAdministrador() {
		return apierror.New(apierror.KindForbidden, "Solo un administrador puede desactivar productos")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, op model.Operador, id uuid.UUID) error {
	if !op.EsAdministrador() {
		return apierror.New(apierror.KindForbidden, "Solo un administrador puede reactivar productos")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID) ([]model.HistorialPrecio, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	return s.historialRepo.ListByProducto(ctx, id)
}

// ConsultaPrecio is the read side of the price-check kiosk: public, cheap,
// cached at the handler layer.
func (s *productoService) ConsultaPrecio(ctx context.Context, id uuid.UUID) (*dto.ConsultaPrecioResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	if !p.Activo {
		return nil, apierror.New(apierror.KindNotFound, "Producto no encontrado")
	}
	return &dto.ConsultaPrecioResponse{
		ProductoID:  p.ID.String(),
		Nombre:      p.Nombre,
		PrecioVenta: p.PrecioVenta,
		StockTotal:  p.StockTotal(),
	}, nil
}

func validarMargen(margen decimal.Decimal) error {
	if margen.IsNegative() || margen.GreaterThan(decimal.NewFromInt(100)) {
		return apierror.New(apierror.KindValidation, "El porcentaje de margen debe estar entre 0 y 100")
	}
	return nil
}

func parseFechaVencimiento(perecible bool, fecha *string) (*time.Time, error) {
	if !perecible {
		return nil, nil
	}
	if fecha == nil || *fecha == "" {
		return nil, apierror.New(apierror.KindValidation, "Un producto perecible requiere fecha de vencimiento")
	}
	t, err := time.Parse("2006-01-02", *fecha)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, "fecha_vencimiento inválida, formato esperado YYYY-MM-DD")
	}
	return &t, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:               p.ID.String(),
		Nombre:           p.Nombre,
		ProveedorID:      p.ProveedorID.String(),
		PrecioCosto:      p.PrecioCosto,
		PorcentajeMargen: p.PorcentajeMargen,
		PrecioVenta:      p.PrecioVenta,
		StockSala:        p.StockSala,
		StockBodega:      p.StockBodega,
		StockTotal:       p.StockTotal(),
		StockMinimo:      p.StockMinimo,
		EsAltaRotacion:   p.EsAltaRotacion,
		EsPerecible:      p.EsPerecible,
		Activo:           p.Activo,
	}
	if p.Proveedor != nil {
		resp.Proveedor = p.Proveedor.Nombre
	}
	if p.FechaVencimiento != nil {
		f := p.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &f
	}
	return resp
}
