package domain

import "github.com/google/uuid"

// Papeis de usuário aceitos pelo sistema.
const (
	PapelProdutor       = "produtor"
	PapelProprietario   = "proprietario"
	PapelTransportadora = "transportadora"
	PapelAdmin          = "admin"
)

// Ator is the authenticated identity attached to every mutating call.
// The auth middleware builds it from JWT claims; services trust it and
// perform their own ownership checks on top.
type Ator struct {
	ID    uuid.UUID
	Nome  string
	Papel string
}

func (a Ator) Admin() bool { return a.Papel == PapelAdmin }
