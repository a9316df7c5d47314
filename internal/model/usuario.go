package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores marketplace accounts with role-based access.
// Papel: "produtor" | "proprietario" | "transportadora" | "admin"
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	SenhaHash string    `gorm:"not null"`
	Papel     string    `gorm:"type:varchar(20);not null"`
	Telefone  *string
	// Documento holds CPF for individuals or CNPJ for companies.
	Documento *string
	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }
