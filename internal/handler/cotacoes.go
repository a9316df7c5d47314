package handler

import (
	"net/http"

	"siloshare/internal/apierror"
	"siloshare/internal/dto"
	"siloshare/internal/middleware"
	"siloshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CotacoesHandler struct{ svc service.CotacaoService }

func NewCotacoesHandler(svc service.CotacaoService) *CotacoesHandler {
	return &CotacoesHandler{svc: svc}
}

// Criar godoc
// @Summary      Enviar cotação de frete
// @Description  Transportadoras cotam frete para reservas confirmadas. Cotações não mexem na capacidade do silo.
// @Tags         cotacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da reserva"
// @Param        body body dto.CriarCotacaoRequest true "Cotação"
// @Success      201  {object} dto.CotacaoResponse
// @Failure      403  {object} apierror.APIError
// @Router       /v1/reservas/{id}/cotacoes [post]
func (h *CotacoesHandler) Criar(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CriarCotacaoRequest
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

func (h *CotacoesHandler) Listar(c *gin.Context) {
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

// Selecionar godoc
// @Summary      Selecionar cotação vencedora
// @Description  O produtor escolhe uma cotação; as demais são recusadas na mesma transação.
// @Tags         cotacoes
// @Security     BearerAuth
// @Param        id         path string true "UUID da reserva"
// @Param        cotacaoId  path string true "UUID da cotação"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Router       /v1/reservas/{id}/cotacoes/{cotacaoId}/selecionar [post]
func (h *CotacoesHandler) Selecionar(c *gin.Context) {
	reservaID, ok := parseID(c)
	if !ok {
		return
	}
	cotacaoID, err := uuid.Parse(c.Param("cotacaoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cotação inválido"))
		return
	}
	if err := h.svc.Selecionar(c.Request.Context(), middleware.GetAtor(c), reservaID, cotacaoID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
