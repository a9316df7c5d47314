package dto

type ContratoResponse struct {
	ID                 string  `json:"id"`
	ReservaID          string  `json:"reserva_id"`
	Status             string  `json:"status"`
	EnvelopeDocusignID *string `json:"envelope_docusign_id,omitempty"`
	URLAssinatura      *string `json:"url_assinatura,omitempty"`
	CreatedAt          string  `json:"created_at"`
}
