package model

import (
	"time"

	"github.com/google/uuid"
)

// Mensagem trocada entre o produtor e o proprietário dentro do contexto
// de uma reserva. Visível apenas para os dois participantes.
type Mensagem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReservaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	RemetenteID   uuid.UUID `gorm:"type:uuid;not null"`
	RemetenteNome string    `gorm:"not null"`
	Conteudo      string    `gorm:"not null"`
	Lida          bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (Mensagem) TableName() string { return "mensagens" }
