package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ReservaFilter is bound from the query string of the "minhas" and
// "recebidas" listings. SiloID narrowing only applies to the owner view.
type ReservaFilter struct {
	Status    string `form:"status"` // pendente | confirmada | em_andamento | concluida | cancelada | rejeitada | all
	SiloID    string `form:"silo_id"    validate:"omitempty,uuid"`
	InicioDe  string `form:"inicio_de"`  // YYYY-MM-DD
	InicioAte string `form:"inicio_ate"` // YYYY-MM-DD
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ReservaResponse struct {
	ID           string          `json:"id"`
	SiloID       string          `json:"silo_id"`
	SiloNome     string          `json:"silo_nome"`
	ProdutorID   string          `json:"produtor_id"`
	ProdutorNome string          `json:"produtor_nome"`
	Quantidade   decimal.Decimal `json:"quantidade"`
	DataInicio   string          `json:"data_inicio"`
	DataFim      string          `json:"data_fim"`
	ValorTotal   decimal.Decimal `json:"valor_total"`
	Status       string          `json:"status"`
	TipoGrao     string          `json:"tipo_grao"`
	Observacoes  *string         `json:"observacoes,omitempty"`

	CotacaoSelecionadaID *string `json:"cotacao_selecionada_id,omitempty"`
	PagamentoRef         *string `json:"pagamento_ref,omitempty"`
	ContratoID           *string `json:"contrato_id,omitempty"`

	CreatedAt string `json:"created_at"`
}

type ReservaListResponse struct {
	Data  []ReservaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type HistoricoResponse struct {
	AtorID    string `json:"ator_id"`
	AtorNome  string `json:"ator_nome"`
	Acao      string `json:"acao"`
	Detalhe   string `json:"detalhe,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarReservaRequest struct {
	SiloID      string          `json:"silo_id"     validate:"required,uuid"`
	Quantidade  decimal.Decimal `json:"quantidade"  validate:"required"`
	DataInicio  string          `json:"data_inicio" validate:"required,datetime=2006-01-02"`
	DataFim     string          `json:"data_fim"    validate:"required,datetime=2006-01-02"`
	TipoGrao    string          `json:"tipo_grao"   validate:"required"`
	Observacoes *string         `json:"observacoes"`
}

// TransicaoRequest carries the optional free-text detail recorded in the
// audit trail on cancel/approve/reject.
type TransicaoRequest struct {
	Detalhe string `json:"detalhe"`
}
