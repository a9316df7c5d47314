package model

import (
	"time"

	"github.com/google/uuid"
)

// Status de um contrato de armazenagem.
const (
	ContratoGerado   = "gerado"
	ContratoEnviado  = "enviado"
	ContratoAssinado = "assinado"
	ContratoErro     = "erro"
)

// Contrato is the signing artifact generated after a reservation is
// confirmed: a local PDF plus the DocuSign envelope reference. Signature
// completion is never a precondition for any reservation transition —
// the contract worker and retry cron own this record, reservation state
// is the source of truth.
type Contrato struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReservaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CaminhoPDF         string
	EnvelopeDocusignID *string
	URLAssinatura      *string
	Status             string `gorm:"type:varchar(20);not null;default:'gerado'"`

	// Retry bookkeeping for the contract cron.
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Contrato) TableName() string { return "contratos" }
