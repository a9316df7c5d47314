// Package domain holds the typed errors and actor identity shared by the
// reservation core. Services return these sentinels; the HTTP layer maps
// them to status codes without inspecting messages.
package domain

import "errors"

var (
	// ErrQuantidadeInvalida: reserved quantity must be strictly positive.
	ErrQuantidadeInvalida = errors.New("quantidade deve ser maior que zero")

	// ErrCapacidadeInsuficiente: the silo does not have enough available
	// capacity for the requested quantity.
	ErrCapacidadeInsuficiente = errors.New("capacidade disponível insuficiente")

	// ErrSiloIndisponivel: the silo is inactive, not listed, or not yet
	// approved for the marketplace.
	ErrSiloIndisponivel = errors.New("silo indisponível para reservas")

	// ErrPeriodoInvalido: dataFim must be strictly after dataInicio.
	ErrPeriodoInvalido = errors.New("período inválido: data final deve ser posterior à inicial")

	// ErrTransicaoInvalida: the requested status change is not in the
	// reservation transition table, or the row was concurrently moved.
	ErrTransicaoInvalida = errors.New("transição de status inválida")

	// ErrAcessoNegado: the authenticated actor is neither the reservation's
	// producer nor the owner of the silo it targets.
	ErrAcessoNegado = errors.New("acesso negado")

	// ErrInvariante: a direct capacity edit would leave
	// capacidade_disponivel outside [0, capacidade_total].
	ErrInvariante = errors.New("violação de invariante de capacidade")

	// ErrNaoEncontrado: the referenced record does not exist.
	ErrNaoEncontrado = errors.New("registro não encontrado")
)
