//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"minimarket/internal/config"
	"minimarket/internal/infra"
	"minimarket/internal/model"
	"minimarket/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("minimarket_test"),
		tcPostgres.WithUsername("minimarket"),
		tcPostgres.WithPassword("minimarket"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username:     "admin",
		Nombre:       "Admin E2E",
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}).Error)

	r, _ := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin123"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) crearProveedor(t *testing.T) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/proveedores",
		jsonBody(t, map[string]any{"nombre": "Distribuidora E2E"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prov struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prov)
	return prov.ID
}

func (env *testEnv) crearProducto(t *testing.T, proveedorID string, sala, bodega int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"nombre":            "Gaseosa 500ml",
			"proveedor_id":      proveedorID,
			"precio_costo":      600,
			"porcentaje_margen": 50,
			"stock_sala":        sala,
			"stock_bodega":      bodega,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloVentaContado(t *testing.T) {
	env := setupTestEnv(t)
	provID := env.crearProveedor(t)
	prodID := env.crearProducto(t, provID, 5, 10)

	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 50000}), env.token)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	var caja struct {
		ID string `json:"id"`
	}
	decodeJSON(t, cajaResp, &caja)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":          []map[string]any{{"producto_id": prodID, "cantidad": 3}},
			"tipo_venta":     "contado",
			"monto_recibido": 3000,
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		Total      string `json:"total"`
		Vuelto     string `json:"vuelto"`
		EstadoPago string `json:"estado_pago"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "2700", venta.Total)
	assert.Equal(t, "300", venta.Vuelto)
	assert.Equal(t, "pagada", venta.EstadoPago)

	// Stock was deducted sala-first
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		StockSala   int `json:"stock_sala"`
		StockBodega int `json:"stock_bodega"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 2, prod.StockSala)
	assert.Equal(t, 10, prod.StockBodega)

	// Close: ventas_totales reflects the cash sale
	cierreResp := do(t, env.server, "POST", "/v1/caja/"+caja.ID+"/cerrar",
		jsonBody(t, map[string]any{"monto_cierre": 52700}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		VentasTotales  string `json:"ventas_totales"`
		GananciaDelDia string `json:"ganancia_del_dia"`
		Estado         string `json:"estado"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "cerrada", cierre.Estado)
	assert.Equal(t, "2700", cierre.VentasTotales)
	assert.Equal(t, "2700", cierre.GananciaDelDia)
}

func TestE2E_VentaCreditoYPago(t *testing.T) {
	env := setupTestEnv(t)
	provID := env.crearProveedor(t)
	prodID := env.crearProducto(t, provID, 10, 0)

	clienteResp := do(t, env.server, "POST", "/v1/clientes",
		jsonBody(t, map[string]any{"nombre": "Cliente E2E", "limite_credito": 50000}), env.token)
	require.Equal(t, http.StatusCreated, clienteResp.StatusCode)
	var cliente struct {
		ID string `json:"id"`
	}
	decodeJSON(t, clienteResp, &cliente)

	abrirResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 10000}), env.token)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":      []map[string]any{{"producto_id": prodID, "cantidad": 2}},
			"tipo_venta": "credito",
			"cliente_id": cliente.ID,
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID         string `json:"id"`
		EstadoPago string `json:"estado_pago"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "pendiente", venta.EstadoPago)

	deudaResp := do(t, env.server, "GET", "/v1/clientes/"+cliente.ID, nil, env.token)
	require.Equal(t, http.StatusOK, deudaResp.StatusCode)
	var conDeuda struct {
		DeudaTotal string `json:"deuda_total"`
	}
	decodeJSON(t, deudaResp, &conDeuda)
	assert.Equal(t, "1800", conDeuda.DeudaTotal)

	// Settle the sale: debt returns to zero and the sale flips to pagada
	pagoResp := do(t, env.server, "POST", "/v1/ventas/"+venta.ID+"/pagar", nil, env.token)
	require.Equal(t, http.StatusOK, pagoResp.StatusCode)
	var pagada struct {
		EstadoPago string `json:"estado_pago"`
	}
	decodeJSON(t, pagoResp, &pagada)
	assert.Equal(t, "pagada", pagada.EstadoPago)

	saldadoResp := do(t, env.server, "GET", "/v1/clientes/"+cliente.ID, nil, env.token)
	decodeJSON(t, saldadoResp, &conDeuda)
	assert.Equal(t, "0", conDeuda.DeudaTotal)
}

func TestE2E_VentaSinStockRechazada(t *testing.T) {
	env := setupTestEnv(t)
	provID := env.crearProveedor(t)
	prodID := env.crearProducto(t, provID, 1, 0)

	abrirResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 10000}), env.token)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items":          []map[string]any{{"producto_id": prodID, "cantidad": 5}},
			"tipo_venta":     "contado",
			"monto_recibido": 10000,
		}), env.token)
	defer ventaResp.Body.Close()
	require.Equal(t, http.StatusBadRequest, ventaResp.StatusCode)

	// Stock untouched after the rejection
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	var prod struct {
		StockSala int `json:"stock_sala"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 1, prod.StockSala)
}
