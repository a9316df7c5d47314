package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SiloFilter is bound from the query string of GET /v1/silos.
type SiloFilter struct {
	Cidade        string `form:"cidade"`
	Estado        string `form:"estado"`
	TipoGrao      string `form:"tipo_grao"`
	CapacidadeMin string `form:"capacidade_min"` // tonnes, decimal string
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type SiloResponse struct {
	ID                   string          `json:"id"`
	ProprietarioID       string          `json:"proprietario_id"`
	Nome                 string          `json:"nome"`
	Descricao            *string         `json:"descricao,omitempty"`
	Cidade               string          `json:"cidade"`
	Estado               string          `json:"estado"`
	CapacidadeTotal      decimal.Decimal `json:"capacidade_total"`
	CapacidadeDisponivel decimal.Decimal `json:"capacidade_disponivel"`
	PrecoPorToneladaMes  decimal.Decimal `json:"preco_por_tonelada_mes"`
	TiposGraos           []string        `json:"tipos_graos"`
	Fotos                []string        `json:"fotos"`
	Infraestrutura       []string        `json:"infraestrutura"`
	StatusAprovacao      string          `json:"status_aprovacao"`
	Disponivel           bool            `json:"disponivel"`
	MediaAvaliacao       decimal.Decimal `json:"media_avaliacao"`
	TotalAvaliacoes      int             `json:"total_avaliacoes"`
	CreatedAt            string          `json:"created_at"`
}

type SiloListResponse struct {
	Data  []SiloResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarSiloRequest struct {
	Nome                string          `json:"nome"                   validate:"required,min=3"`
	Descricao           *string         `json:"descricao"`
	Cidade              string          `json:"cidade"                 validate:"required"`
	Estado              string          `json:"estado"                 validate:"required,len=2"`
	CapacidadeTotal     decimal.Decimal `json:"capacidade_total"       validate:"required,gt=0"`
	PrecoPorToneladaMes decimal.Decimal `json:"preco_por_tonelada_mes" validate:"required,gt=0"`
	TiposGraos          []string        `json:"tipos_graos"            validate:"required,min=1"`
	Fotos               []string        `json:"fotos"`
	Infraestrutura      []string        `json:"infraestrutura"`
}

type AtualizarSiloRequest struct {
	Nome                *string          `json:"nome"      validate:"omitempty,min=3"`
	Descricao           *string          `json:"descricao"`
	PrecoPorToneladaMes *decimal.Decimal `json:"preco_por_tonelada_mes" validate:"omitempty,gt=0"`
	TiposGraos          []string         `json:"tipos_graos"`
	Fotos               []string         `json:"fotos"`
	Infraestrutura      []string         `json:"infraestrutura"`
	Disponivel          *bool            `json:"disponivel"`
}

// AjustarCapacidadeRequest is the owner/admin direct capacity edit.
type AjustarCapacidadeRequest struct {
	CapacidadeDisponivel decimal.Decimal `json:"capacidade_disponivel" validate:"required"`
}

// AprovacaoRequest is the admin moderation action on a listed silo.
type AprovacaoRequest struct {
	Status string `json:"status" validate:"required,oneof=aprovado reprovado aguardando_documentos"`
	Motivo string `json:"motivo"`
}
