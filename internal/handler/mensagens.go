package handler

import (
	"net/http"

	"siloshare/internal/dto"
	"siloshare/internal/middleware"
	"siloshare/internal/service"

	"github.com/gin-gonic/gin"
)

type MensagensHandler struct{ svc service.MensagemService }

func NewMensagensHandler(svc service.MensagemService) *MensagensHandler {
	return &MensagensHandler{svc: svc}
}

func (h *MensagensHandler) Enviar(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.EnviarMensagemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), middleware.GetAtor(c), reservaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MensagensHandler) Listar(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetAtor(c), reservaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
