package model

import (
	"time"

	"github.com/google/uuid"
)

// Avaliacao é a nota (1–5) que o produtor dá a um silo após uma reserva
// concluída. Uma por reserva; os agregados ficam em silos.media_avaliacao
// e silos.total_avaliacoes e são recalculados na mesma transação.
type Avaliacao struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SiloID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ReservaID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProdutorID uuid.UUID `gorm:"type:uuid;not null"`
	Nota       int       `gorm:"not null"`
	Comentario *string
	CreatedAt  time.Time
}

func (Avaliacao) TableName() string { return "avaliacoes" }
