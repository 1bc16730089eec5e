package service

import (
	"context"
	"fmt"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock locations.
const (
	UbicacionSala   = "sala"
	UbicacionBodega = "bodega"
)

// diasAlertaVencimiento is the expiry warning window in calendar days.
const diasAlertaVencimiento = 7

// InventarioService owns the dual-location stock rules: sala-first deduction,
// sala↔bodega transfers, and the low-stock / expiry alert checks.
type InventarioService interface {
	// DescontarStockTx deducts cantidad from the (already row-locked) product,
	// sala first, inside the caller's transaction. The product's counters are
	// updated in place so callers observe the new levels.
	DescontarStockTx(tx *gorm.DB, p *model.Producto, cantidad int, motivo string, referenciaID *uuid.UUID) error
	Transferir(ctx context.Context, op model.Operador, productoID uuid.UUID, req dto.TransferirStockRequest) (*dto.StockResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	Movimientos(ctx context.Context, productoID uuid.UUID, limit int) ([]model.MovimientoStock, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

// ── Pure stock rules ─────────────────────────────────────────────────────────

// AsignarSalaPrimero computes the post-deduction counters for a sale of
// cantidad units: consume from sala up to its level, remainder from bodega.
// ok is false when sala+bodega < cantidad.
func AsignarSalaPrimero(sala, bodega, cantidad int) (nuevaSala, nuevaBodega int, ok bool) {
	if sala+bodega < cantidad {
		return sala, bodega, false
	}
	if sala >= cantidad {
		return sala - cantidad, bodega, true
	}
	return 0, bodega - (cantidad - sala), true
}

// StockBajo reports whether total stock is at or below the minimum threshold.
func StockBajo(p *model.Producto) bool {
	return p.StockTotal() <= p.StockMinimo
}

// VencimientoProximo reports whether a perishable product expires within the
// warning window. Comparison is calendar-day based: a product expiring today
// counts, one already expired does not.
func VencimientoProximo(p *model.Producto, hoy time.Time) bool {
	if !p.EsPerecible || p.FechaVencimiento == nil {
		return false
	}
	dias := diasHasta(hoy, *p.FechaVencimiento)
	return dias >= 0 && dias <= diasAlertaVencimiento
}

func diasHasta(desde, hasta time.Time) int {
	d := time.Date(desde.Year(), desde.Month(), desde.Day(), 0, 0, 0, 0, time.UTC)
	h := time.Date(hasta.Year(), hasta.Month(), hasta.Day(), 0, 0, 0, 0, time.UTC)
	return int(h.Sub(d).Hours() / 24)
}

// ── Operations ───────────────────────────────────────────────────────────────

func (s *inventarioService) DescontarStockTx(tx *gorm.DB, p *model.Producto, cantidad int, motivo string, referenciaID *uuid.UUID) error {
	nuevaSala, nuevaBodega, ok := AsignarSalaPrimero(p.StockSala, p.StockBodega, cantidad)
	if !ok {
		return apierror.New(apierror.KindInsufficientStock,
			fmt.Sprintf("Stock insuficiente para %s. Disponible: %d (sala: %d, bodega: %d)",
				p.Nombre, p.StockTotal(), p.StockSala, p.StockBodega))
	}

	mov := &model.MovimientoStock{
		ProductoID:     p.ID,
		Tipo:           model.MovimientoVenta,
		Cantidad:       -cantidad,
		SalaAnterior:   p.StockSala,
		SalaNueva:      nuevaSala,
		BodegaAnterior: p.StockBodega,
		BodegaNueva:    nuevaBodega,
		Motivo:         motivo,
		ReferenciaID:   referenciaID,
	}

	if err := s.productoRepo.UpdateStockTx(tx, p.ID, nuevaSala, nuevaBodega); err != nil {
		return err
	}
	if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
		return err
	}

	p.StockSala = nuevaSala
	p.StockBodega = nuevaBodega
	return nil
}

func (s *inventarioService) Transferir(ctx context.Context, op model.Operador, productoID uuid.UUID, req dto.TransferirStockRequest) (*dto.StockResponse, error) {
	if !op.EsSupervisor() {
		return nil, apierror.New(apierror.KindForbidden, "Solo supervisores pueden transferir stock")
	}
	if req.Cantidad <= 0 {
		return nil, apierror.New(apierror.KindInvalidTransfer, "La cantidad debe ser mayor a cero")
	}
	if req.Origen == req.Destino {
		return nil, apierror.New(apierror.KindInvalidTransfer, "El origen y destino no pueden ser iguales")
	}

	var resp *dto.StockResponse
	err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.findForUpdate(ctx, tx, productoID)
		if err != nil {
			return err
		}

		origen := p.StockBodega
		if req.Origen == UbicacionSala {
			origen = p.StockSala
		}
		if origen < req.Cantidad {
			return apierror.New(apierror.KindInsufficientStock,
				fmt.Sprintf("Stock insuficiente en %s. Disponible: %d", req.Origen, origen))
		}

		nuevaSala, nuevaBodega := p.StockSala, p.StockBodega
		if req.Origen == UbicacionSala {
			nuevaSala -= req.Cantidad
			nuevaBodega += req.Cantidad
		} else {
			nuevaBodega -= req.Cantidad
			nuevaSala += req.Cantidad
		}

		mov := &model.MovimientoStock{
			ProductoID:     p.ID,
			Tipo:           model.MovimientoTransferencia,
			Cantidad:       req.Cantidad,
			SalaAnterior:   p.StockSala,
			SalaNueva:      nuevaSala,
			BodegaAnterior: p.StockBodega,
			BodegaNueva:    nuevaBodega,
			Motivo:         fmt.Sprintf("Transferencia %s → %s", req.Origen, req.Destino),
		}

		if err := s.productoRepo.UpdateStockTx(tx, p.ID, nuevaSala, nuevaBodega); err != nil {
			return err
		}
		if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		resp = &dto.StockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			StockSala:   nuevaSala,
			StockBodega: nuevaBodega,
			StockTotal:  nuevaSala + nuevaBodega,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// findForUpdate locks the product row when a live transaction is available;
// unit tests run with tx == nil and fall back to a plain lookup.
func (s *inventarioService) findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p *model.Producto
	var err error
	if tx != nil {
		p, err = s.productoRepo.FindByIDForUpdateTx(tx, id)
	} else {
		p, err = s.productoRepo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, apierror.KindNotFound, "Producto no encontrado")
	}
	return p, nil
}

func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}

	hoy := time.Now()
	alertas := make([]dto.AlertaStockResponse, 0)
	for i := range productos {
		p := &productos[i]
		bajo := StockBajo(p)
		vence := VencimientoProximo(p, hoy)
		if !bajo && !vence {
			continue
		}
		a := dto.AlertaStockResponse{
			ProductoID:   p.ID.String(),
			Nombre:       p.Nombre,
			StockTotal:   p.StockTotal(),
			StockMinimo:  p.StockMinimo,
			StockBajo:    bajo,
			VenceProximo: vence,
		}
		if p.FechaVencimiento != nil {
			f := p.FechaVencimiento.Format("2006-01-02")
			a.FechaVencimiento = &f
		}
		alertas = append(alertas, a)
	}
	return alertas, nil
}

func (s *inventarioService) Movimientos(ctx context.Context, productoID uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	return s.movimientoRepo.ListByProducto(ctx, productoID, limit)
}
