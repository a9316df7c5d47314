package handler

import (
	"context"
	"net/http"

	"siloshare/internal/apierror"
	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/middleware"
	"siloshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservasHandler struct{ svc service.ReservaService }

func NewReservasHandler(svc service.ReservaService) *ReservasHandler {
	return &ReservasHandler{svc: svc}
}

// Criar godoc
// @Summary      Criar reserva
// @Description  Reserva capacidade em um silo aprovado. O valor total é calculado e congelado na criação; a capacidade é debitada atomicamente.
// @Tags         reservas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarReservaRequest true "Dados da reserva"
// @Success      201  {object} dto.ReservaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError "Capacidade insuficiente"
// @Router       /v1/reservas [post]
func (h *ReservasHandler) Criar(c *gin.Context) {
	var req dto.CriarReservaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetAtor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Minhas godoc
// @Summary   Minhas reservas (produtor)
// @Tags      reservas
// @Produce   json
// @Security  BearerAuth
// @Param     status query string false "Filtra por status"
// @Success   200 {object} dto.ReservaListResponse
// @Router    /v1/reservas/minhas [get]
func (h *ReservasHandler) Minhas(c *gin.Context) {
	var filter dto.ReservaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Minhas(c.Request.Context(), middleware.GetAtor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recebidas godoc
// @Summary   Reservas recebidas (proprietário)
// @Tags      reservas
// @Produce   json
// @Security  BearerAuth
// @Param     status  query string false "Filtra por status"
// @Param     silo_id query string false "Filtra por silo"
// @Success   200 {object} dto.ReservaListResponse
// @Router    /v1/reservas/recebidas [get]
func (h *ReservasHandler) Recebidas(c *gin.Context) {
	var filter dto.ReservaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Recebidas(c.Request.Context(), middleware.GetAtor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservasHandler) Detalhes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Detalhes(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservasHandler) Historico(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Historico(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar reserva
// @Description  Só o produtor cancela, e só enquanto pendente. A capacidade volta ao silo na mesma transação.
// @Tags         reservas
// @Security     BearerAuth
// @Param        id   path string true "UUID da reserva"
// @Param        body body dto.TransicaoRequest false "Motivo"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError "Transição inválida"
// @Router       /v1/reservas/{id}/cancelar [post]
func (h *ReservasHandler) Cancelar(c *gin.Context) {
	h.transicao(c, h.svc.Cancelar)
}

// Aprovar godoc
// @Summary      Aprovar reserva
// @Description  Só o proprietário do silo aprova. Dispara pagamento, contrato e notificação de forma assíncrona.
// @Tags         reservas
// @Security     BearerAuth
// @Param        id   path string true "UUID da reserva"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError "Transição inválida"
// @Router       /v1/reservas/{id}/aprovar [post]
func (h *ReservasHandler) Aprovar(c *gin.Context) {
	h.transicao(c, h.svc.Aprovar)
}

// Rejeitar godoc
// @Summary   Rejeitar reserva
// @Tags      reservas
// @Security  BearerAuth
// @Param     id   path string true "UUID da reserva"
// @Param     body body dto.TransicaoRequest false "Motivo"
// @Success   204
// @Router    /v1/reservas/{id}/rejeitar [post]
func (h *ReservasHandler) Rejeitar(c *gin.Context) {
	h.transicao(c, h.svc.Rejeitar)
}

func (h *ReservasHandler) Iniciar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Iniciar(c.Request.Context(), middleware.GetAtor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservasHandler) Concluir(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Concluir(c.Request.Context(), middleware.GetAtor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// transicao is the shared body of cancel/approve/reject: optional detail in
// the request body, 204 on success.
func (h *ReservasHandler) transicao(c *gin.Context, fn func(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TransicaoRequest
	// Body is optional on transitions; ignore bind errors for empty bodies.
	_ = c.ShouldBindJSON(&req)

	if err := fn(c.Request.Context(), middleware.GetAtor(c), id, req.Detalhe); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
