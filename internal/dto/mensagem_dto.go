package dto

type EnviarMensagemRequest struct {
	Conteudo string `json:"conteudo" validate:"required,min=1,max=5000"`
}

type MensagemResponse struct {
	ID            string `json:"id"`
	ReservaID     string `json:"reserva_id"`
	RemetenteID   string `json:"remetente_id"`
	RemetenteNome string `json:"remetente_nome"`
	Conteudo      string `json:"conteudo"`
	Lida          bool   `json:"lida"`
	CreatedAt     string `json:"created_at"`
}
