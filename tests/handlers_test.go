package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"minimarket/internal/apierror"
	"minimarket/internal/handler"
	"minimarket/internal/middleware"
	"minimarket/internal/model"
	"minimarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCajaRouter builds a minimal engine with the production middleware chain
// around the caja handler, with the JWT step replaced by fixed claims.
func newCajaRouter(svc service.CajaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID: uuid.NewString(),
			Nombre: "Cajero de Prueba",
			Rol:    model.RolCajero,
		})
	})
	h := handler.NewCajaHandler(svc)
	r.GET("/v1/caja/actual", h.Actual)
	return r
}

func TestErrorInternoRespuestaUnica(t *testing.T) {
	r := newCajaRouter(service.NewCajaService(&cajaRepoCaido{stubCajaRepo: newStubCajaRepo(nil)}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/caja/actual", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The body must be exactly one JSON envelope; Unmarshal rejects
	// trailing data, so a duplicated write would fail here.
	var body apierror.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierror.KindServer, body.Kind)
	assert.Equal(t, "Error interno del servidor", body.Detail)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorDeNegocioRespuestaUnica(t *testing.T) {
	r := newCajaRouter(service.NewCajaService(newStubCajaRepo(nil)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/caja/actual", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body apierror.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierror.KindNoOpenRegister, body.Kind)
}
