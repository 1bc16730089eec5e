package handler

import (
	"net/http"
	"strconv"

	"minimarket/internal/dto"
	"minimarket/internal/middleware"
	"minimarket/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir opens a register session for the authenticated operator.
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op := middleware.GetOperador(c)

	resp, err := h.svc.Abrir(c.Request.Context(), op, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar closes a session, computing the totals for the shift.
func (h *CajaHandler) Cerrar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op := middleware.GetOperador(c)

	resp, err := h.svc.Cerrar(c.Request.Context(), op, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actual returns the operator's currently open session.
func (h *CajaHandler) Actual(c *gin.Context) {
	op := middleware.GetOperador(c)
	resp, err := h.svc.Actual(c.Request.Context(), op)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial lists closed sessions, newest first. Supervisor only.
func (h *CajaHandler) Historial(c *gin.Context) {
	op := middleware.GetOperador(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.Historial(c.Request.Context(), op, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
