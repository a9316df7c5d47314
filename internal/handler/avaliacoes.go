package handler

import (
	"net/http"

	"siloshare/internal/dto"
	"siloshare/internal/middleware"
	"siloshare/internal/service"

	"github.com/gin-gonic/gin"
)

type AvaliacoesHandler struct{ svc service.AvaliacaoService }

func NewAvaliacoesHandler(svc service.AvaliacaoService) *AvaliacoesHandler {
	return &AvaliacoesHandler{svc: svc}
}

// Criar godoc
// @Summary      Avaliar silo
// @Description  Só o produtor de uma reserva concluída avalia, uma única vez. A média do silo é recalculada na mesma transação.
// @Tags         avaliacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da reserva"
// @Param        body body dto.CriarAvaliacaoRequest true "Nota e comentário"
// @Success      201  {object} dto.AvaliacaoResponse
// @Failure      403  {object} apierror.APIError
// @Router       /v1/reservas/{id}/avaliacao [post]
func (h *AvaliacoesHandler) Criar(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CriarAvaliacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetAtor(c), reservaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AvaliacoesHandler) ListarPorSilo(c *gin.Context) {
	siloID, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorSilo(c.Request.Context(), siloID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
