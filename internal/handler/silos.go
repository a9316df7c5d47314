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

type SilosHandler struct{ svc service.SiloService }

func NewSilosHandler(svc service.SiloService) *SilosHandler { return &SilosHandler{svc: svc} }

// Criar godoc
// @Summary      Cadastrar um silo
// @Description  Cria um silo com status de aprovação "pendente". Só aceita reservas após aprovação do admin.
// @Tags         silos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarSiloRequest true "Dados do silo"
// @Success      201  {object} dto.SiloResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/silos [post]
func (h *SilosHandler) Criar(c *gin.Context) {
	var req dto.CriarSiloRequest
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

// Listar godoc
// @Summary  Catálogo público de silos
// @Tags     silos
// @Produce  json
// @Param    cidade         query string false "Filtra por cidade"
// @Param    estado         query string false "UF (2 letras)"
// @Param    tipo_grao      query string false "Tipo de grão aceito"
// @Param    capacidade_min query string false "Capacidade disponível mínima (t)"
// @Success  200 {object} dto.SiloListResponse
// @Router   /v1/silos [get]
func (h *SilosHandler) Listar(c *gin.Context) {
	var filter dto.SiloFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarPublico(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SilosHandler) Detalhes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Detalhes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SilosHandler) MeusSilos(c *gin.Context) {
	resp, err := h.svc.MeusSilos(c.Request.Context(), middleware.GetAtor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SilosHandler) Atualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AtualizarSiloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), middleware.GetAtor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AjustarCapacidade godoc
// @Summary      Ajustar capacidade disponível
// @Description  Edição direta do proprietário (grão movimentado fora da plataforma). O valor precisa ficar entre 0 e a capacidade total.
// @Tags         silos
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string true "UUID do silo"
// @Param        body body dto.AjustarCapacidadeRequest true "Nova capacidade disponível"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/silos/{id}/capacidade [patch]
func (h *SilosHandler) AjustarCapacidade(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AjustarCapacidadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AjustarCapacidade(c.Request.Context(), middleware.GetAtor(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SilosHandler) Desativar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), middleware.GetAtor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SilosHandler) DefinirAprovacao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AprovacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.DefinirAprovacao(c.Request.Context(), middleware.GetAtor(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
