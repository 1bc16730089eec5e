package tests

import (
	"context"
	"testing"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productoFixture struct {
	repo          *stubProductoRepo
	proveedorRepo *stubProveedorRepo
	historialRepo *stubHistorialRepo
	movRepo       *stubMovimientoRepo
	svc           service.ProductoService
	proveedor     *model.Proveedor
}

func buildProductoFixture() *productoFixture {
	f := &productoFixture{
		repo:          newStubProductoRepo(),
		proveedorRepo: newStubProveedorRepo(),
		historialRepo: &stubHistorialRepo{},
		movRepo:       &stubMovimientoRepo{},
	}
	f.proveedor = &model.Proveedor{Nombre: "Distribuidora Central", Activo: true}
	_ = f.proveedorRepo.Create(context.Background(), f.proveedor)
	f.svc = service.NewProductoService(f.repo, f.proveedorRepo, f.historialRepo, f.movRepo)
	return f
}

func TestCalcularPrecioVenta(t *testing.T) {
	cases := []struct {
		costo, margen, want string
	}{
		{"1200", "35", "1620"},
		{"80", "40", "112"},
		{"1000", "0", "1000"},
		{"999", "33", "1328.67"},
		// Half-up on the third decimal: 10.05 × 1.105 = 11.10525 → 11.11
		{"10.05", "10.5", "11.11"},
	}
	for _, tc := range cases {
		costo := decimal.RequireFromString(tc.costo)
		margen := decimal.RequireFromString(tc.margen)
		got := service.CalcularPrecioVenta(costo, margen)
		assert.Equal(t, tc.want, got.String(), "costo %s margen %s", tc.costo, tc.margen)
	}
}

func TestCrearProducto(t *testing.T) {
	f := buildProductoFixture()

	resp, err := f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:           "Coca Cola 2L",
		ProveedorID:      f.proveedor.ID.String(),
		PrecioCosto:      decimal.NewFromInt(1200),
		PorcentajeMargen: decimal.NewFromInt(35),
		StockSala:        10,
		StockBodega:      24,
	})
	require.NoError(t, err)

	assert.Equal(t, "1620", resp.PrecioVenta.String())
	assert.Equal(t, 34, resp.StockTotal)
	// StockMinimo defaults to 10 when omitted
	assert.Equal(t, 10, resp.StockMinimo)
	assert.True(t, resp.Activo)
}

func TestCrearProductoSoloAdmin(t *testing.T) {
	f := buildProductoFixture()

	_, err := f.svc.Crear(context.Background(), opSupervisor(), dto.CrearProductoRequest{
		Nombre:      "Arroz 1kg",
		ProveedorID: f.proveedor.ID.String(),
		PrecioCosto: decimal.NewFromInt(1000),
	})
	assertKind(t, err, apierror.KindForbidden)
}

func TestCrearProductoMargenInvalido(t *testing.T) {
	f := buildProductoFixture()

	_, err := f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:           "Margen Alto",
		ProveedorID:      f.proveedor.ID.String(),
		PrecioCosto:      decimal.NewFromInt(1000),
		PorcentajeMargen: decimal.NewFromInt(101),
	})
	assertKind(t, err, apierror.KindValidation)

	_, err = f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:           "Margen Negativo",
		ProveedorID:      f.proveedor.ID.String(),
		PrecioCosto:      decimal.NewFromInt(1000),
		PorcentajeMargen: decimal.NewFromInt(-5),
	})
	assertKind(t, err, apierror.KindValidation)
}

func TestCrearProductoPerecibleSinFecha(t *testing.T) {
	f := buildProductoFixture()

	_, err := f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:      "Pan Hallulla",
		ProveedorID: f.proveedor.ID.String(),
		PrecioCosto: decimal.NewFromInt(80),
		EsPerecible: true,
	})
	assertKind(t, err, apierror.KindValidation)

	fecha := "2026-09-02"
	resp, err := f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:           "Pan Hallulla",
		ProveedorID:      f.proveedor.ID.String(),
		PrecioCosto:      decimal.NewFromInt(80),
		PorcentajeMargen: decimal.NewFromInt(40),
		EsPerecible:      true,
		FechaVencimiento: &fecha,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.FechaVencimiento)
	assert.Equal(t, fecha, *resp.FechaVencimiento)
}

func TestCrearProductoProveedorInexistente(t *testing.T) {
	f := buildProductoFixture()

	_, err := f.svc.Crear(context.Background(), opAdmin(), dto.CrearProductoRequest{
		Nombre:      "Huérfano",
		ProveedorID: "a2a1f5a0-0000-0000-0000-000000000001",
		PrecioCosto: decimal.NewFromInt(100),
	})
	assertKind(t, err, apierror.KindNotFound)
}

func TestActualizarPrecioRegistraHistorial(t *testing.T) {
	f := buildProductoFixture()
	admin := opAdmin()

	creado, err := f.svc.Crear(context.Background(), admin, dto.CrearProductoRequest{
		Nombre:           "Leche Entera 1L",
		ProveedorID:      f.proveedor.ID.String(),
		PrecioCosto:      decimal.NewFromInt(900),
		PorcentajeMargen: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Empty(t, f.historialRepo.historial)

	nuevoCosto := decimal.NewFromInt(1000)
	p := f.repo.productos[uuid.MustParse(creado.ID)]
	resp, err := f.svc.Actualizar(context.Background(), admin, p.ID, dto.ActualizarProductoRequest{
		PrecioCosto: &nuevoCosto,
	})
	require.NoError(t, err)

	// Derived price recomputed from the new cost, margin unchanged
	assert.Equal(t, "1250", resp.PrecioVenta.String())

	require.Len(t, f.historialRepo.historial, 1)
	h := f.historialRepo.historial[0]
	assert.Equal(t, "900", h.CostoAnterior.String())
	assert.Equal(t, "1000", h.CostoNuevo.String())
	assert.Equal(t, "1125", h.VentaAnterior.String())
	assert.Equal(t, "1250", h.VentaNueva.String())
	assert.Equal(t, admin.ID, h.UsuarioID)
}

func TestActualizarSinCambioDePrecioNoRegistraHistorial(t *testing.T) {
	f := buildProductoFixture()
	admin := opAdmin()
	p := seedProducto(f.repo, "Azúcar 1kg", 10, 10, 1080)

	nombre := "Azúcar Granulada 1kg"
	_, err := f.svc.Actualizar(context.Background(), admin, p.ID, dto.ActualizarProductoRequest{
		Nombre: &nombre,
	})
	require.NoError(t, err)
	assert.Empty(t, f.historialRepo.historial)
	assert.Equal(t, nombre, p.Nombre)
}

func TestAjustarStock(t *testing.T) {
	f := buildProductoFixture()
	p := seedProducto(f.repo, "Cerveza Lata", 5, 20, 900)

	sala := 8
	resp, err := f.svc.AjustarStock(context.Background(), opSupervisor(), p.ID, dto.AjustarStockRequest{
		StockSala: &sala,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, resp.StockSala)
	assert.Equal(t, 20, resp.StockBodega)

	require.Len(t, f.movRepo.movimientos, 1)
	m := f.movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoAjuste, m.Tipo)
	assert.Equal(t, 3, m.Cantidad)
	assert.Equal(t, 5, m.SalaAnterior)
	assert.Equal(t, 8, m.SalaNueva)
}

func TestAjustarStockSoloSupervisor(t *testing.T) {
	f := buildProductoFixture()
	p := seedProducto(f.repo, "Yogurt 125g", 5, 5, 405)

	sala := 2
	_, err := f.svc.AjustarStock(context.Background(), opCajero(), p.ID, dto.AjustarStockRequest{
		StockSala: &sala,
	})
	assertKind(t, err, apierror.KindForbidden)
}

func TestConsultaPrecioProductoInactivo(t *testing.T) {
	f := buildProductoFixture()
	p := seedProducto(f.repo, "Cigarrillos", 10, 0, 3600)
	p.Activo = false

	_, err := f.svc.ConsultaPrecio(context.Background(), p.ID)
	assertKind(t, err, apierror.KindNotFound)
}

func TestDesactivarYReactivarProducto(t *testing.T) {
	f := buildProductoFixture()
	p := seedProducto(f.repo, "Coca Cola 2L", 10, 10, 1620)

	require.NoError(t, f.svc.Desactivar(context.Background(), opAdmin(), p.ID))
	assert.False(t, p.Activo)

	require.NoError(t, f.svc.Reactivar(context.Background(), opAdmin(), p.ID))
	assert.True(t, p.Activo)
}
