package dto

type RegisterRequest struct {
	Nome      string  `json:"nome"      validate:"required,min=3"`
	Email     string  `json:"email"     validate:"required,email"`
	Senha     string  `json:"senha"     validate:"required,min=8"`
	Papel     string  `json:"papel"     validate:"required,oneof=produtor proprietario transportadora"`
	Telefone  *string `json:"telefone"  validate:"omitempty,min=8"`
	Documento *string `json:"documento" validate:"omitempty,min=11,max=18"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UsuarioResponse struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	Email     string  `json:"email"`
	Papel     string  `json:"papel"`
	Telefone  *string `json:"telefone,omitempty"`
	Documento *string `json:"documento,omitempty"`
	Ativo     bool    `json:"ativo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         UsuarioResponse `json:"user"`
}
