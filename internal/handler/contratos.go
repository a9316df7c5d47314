package handler

import (
	"net/http"

	"siloshare/internal/middleware"
	"siloshare/internal/service"

	"github.com/gin-gonic/gin"
)

type ContratosHandler struct{ svc service.ContratoService }

func NewContratosHandler(svc service.ContratoService) *ContratosHandler {
	return &ContratosHandler{svc: svc}
}

func (h *ContratosHandler) PorReserva(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.PorReserva(c.Request.Context(), middleware.GetAtor(c), reservaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BaixarPDF streams the locally generated contract file.
func (h *ContratosHandler) BaixarPDF(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	caminho, err := h.svc.CaminhoPDF(c.Request.Context(), middleware.GetAtor(c), reservaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	c.File(caminho)
}
