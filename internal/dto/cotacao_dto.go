package dto

import "github.com/shopspring/decimal"

type CriarCotacaoRequest struct {
	ValorFrete decimal.Decimal `json:"valor_frete" validate:"required,gt=0"`
	PrazoDias  int             `json:"prazo_dias"  validate:"required,min=1"`
	Veiculo    string          `json:"veiculo"     validate:"required"`
}

type CotacaoResponse struct {
	ID                 string          `json:"id"`
	ReservaID          string          `json:"reserva_id"`
	TransportadoraID   string          `json:"transportadora_id"`
	TransportadoraNome string          `json:"transportadora_nome"`
	ValorFrete         decimal.Decimal `json:"valor_frete"`
	PrazoDias          int             `json:"prazo_dias"`
	Veiculo            string          `json:"veiculo"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at"`
}
