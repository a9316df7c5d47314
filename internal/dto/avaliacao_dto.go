package dto

type CriarAvaliacaoRequest struct {
	Nota       int     `json:"nota"       validate:"required,min=1,max=5"`
	Comentario *string `json:"comentario" validate:"omitempty,max=2000"`
}

type AvaliacaoResponse struct {
	ID         string  `json:"id"`
	SiloID     string  `json:"silo_id"`
	ReservaID  string  `json:"reserva_id"`
	ProdutorID string  `json:"produtor_id"`
	Nota       int     `json:"nota"`
	Comentario *string `json:"comentario,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
