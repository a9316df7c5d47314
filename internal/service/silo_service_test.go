package service

import (
	"context"
	"testing"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriarSilo_ComecaPendenteComCapacidadeCheia(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}

	resp, err := svc.Criar(context.Background(), dono, dto.CriarSiloRequest{
		Nome:                "Silo Norte",
		Cidade:              "Rondonópolis",
		Estado:              "MT",
		CapacidadeTotal:     decimal.NewFromInt(8000),
		PrecoPorToneladaMes: decimal.NewFromFloat(22.50),
		TiposGraos:          []string{"soja", "milho"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SiloPendente, resp.StatusAprovacao)
	assert.True(t, resp.CapacidadeDisponivel.Equal(resp.CapacidadeTotal))
}

func TestCriarSilo_ProdutorNaoPode(t *testing.T) {
	svc := NewSiloService(newStubSiloRepo(), nil)
	produtor := domain.Ator{ID: uuid.New(), Nome: "Produtor", Papel: domain.PapelProdutor}

	_, err := svc.Criar(context.Background(), produtor, dto.CriarSiloRequest{
		Nome:                "Silo Qualquer",
		Cidade:              "Cuiabá",
		Estado:              "MT",
		CapacidadeTotal:     decimal.NewFromInt(100),
		PrecoPorToneladaMes: decimal.NewFromInt(10),
		TiposGraos:          []string{"soja"},
	})
	assert.ErrorIs(t, err, domain.ErrAcessoNegado)
}

func TestAjustarCapacidade_RespeitaLimites(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}
	ctx := context.Background()

	silo := &model.Silo{
		ProprietarioID:       dono.ID,
		Nome:                 "Silo Sul",
		CapacidadeTotal:      decimal.NewFromInt(5000),
		CapacidadeDisponivel: decimal.NewFromInt(5000),
		Ativo:                true,
	}
	require.NoError(t, repo.Create(ctx, silo))

	require.NoError(t, svc.AjustarCapacidade(ctx, dono, silo.ID,
		dto.AjustarCapacidadeRequest{CapacidadeDisponivel: decimal.NewFromInt(3000)}))

	err := svc.AjustarCapacidade(ctx, dono, silo.ID,
		dto.AjustarCapacidadeRequest{CapacidadeDisponivel: decimal.NewFromInt(6000)})
	assert.ErrorIs(t, err, domain.ErrInvariante)

	err = svc.AjustarCapacidade(ctx, dono, silo.ID,
		dto.AjustarCapacidadeRequest{CapacidadeDisponivel: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvariante)

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(3000)))
}

func TestAjustarCapacidade_SoDonoOuAdmin(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}
	ctx := context.Background()

	silo := &model.Silo{
		ProprietarioID:       dono.ID,
		CapacidadeTotal:      decimal.NewFromInt(1000),
		CapacidadeDisponivel: decimal.NewFromInt(1000),
	}
	require.NoError(t, repo.Create(ctx, silo))

	outro := domain.Ator{ID: uuid.New(), Nome: "Outro", Papel: domain.PapelProprietario}
	err := svc.AjustarCapacidade(ctx, outro, silo.ID,
		dto.AjustarCapacidadeRequest{CapacidadeDisponivel: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, domain.ErrAcessoNegado)

	admin := domain.Ator{ID: uuid.New(), Nome: "Admin", Papel: domain.PapelAdmin}
	assert.NoError(t, svc.AjustarCapacidade(ctx, admin, silo.ID,
		dto.AjustarCapacidadeRequest{CapacidadeDisponivel: decimal.NewFromInt(500)}))
}

func TestAtualizarSilo_NaoReescreveCapacidadeDoLedger(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}
	ctx := context.Background()

	silo := &model.Silo{
		ProprietarioID:       dono.ID,
		Nome:                 "Silo Oeste",
		CapacidadeTotal:      decimal.NewFromInt(10000),
		CapacidadeDisponivel: decimal.NewFromInt(10000),
		StatusAprovacao:      model.SiloAprovado,
		Disponivel:           true,
		Ativo:                true,
	}
	require.NoError(t, repo.Create(ctx, silo))

	// Uma reserva debita 4000 t entre a leitura do Atualizar e a sua escrita.
	// A escrita não pode devolver o valor obsoleto ao ledger.
	repo.afterFind = func() {
		repo.afterFind = nil
		require.NoError(t, repo.ReservarCapacidadeTx(nil, silo.ID, decimal.NewFromInt(4000)))
	}

	nome := "Silo Oeste Renovado"
	_, err := svc.Atualizar(ctx, dono, silo.ID, dto.AtualizarSiloRequest{Nome: &nome})
	require.NoError(t, err)

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silo Oeste Renovado", atual.Nome)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(6000)),
		"disponivel = %s", atual.CapacidadeDisponivel)
}

func TestDesativarSilo_NaoTocaNoLedger(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}
	ctx := context.Background()

	silo := &model.Silo{
		ProprietarioID:       dono.ID,
		Nome:                 "Silo Leste",
		CapacidadeTotal:      decimal.NewFromInt(5000),
		CapacidadeDisponivel: decimal.NewFromInt(5000),
		StatusAprovacao:      model.SiloAprovado,
		Disponivel:           true,
		Ativo:                true,
	}
	require.NoError(t, repo.Create(ctx, silo))
	require.NoError(t, repo.ReservarCapacidadeTx(nil, silo.ID, decimal.NewFromInt(2000)))

	require.NoError(t, svc.Desativar(ctx, dono, silo.ID))

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.False(t, atual.Ativo)
	assert.False(t, atual.Disponivel)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(3000)))
}

func TestDefinirAprovacao_SoAdmin(t *testing.T) {
	repo := newStubSiloRepo()
	svc := NewSiloService(repo, nil)
	ctx := context.Background()

	silo := &model.Silo{StatusAprovacao: model.SiloPendente}
	require.NoError(t, repo.Create(ctx, silo))

	dono := domain.Ator{ID: uuid.New(), Nome: "Dono", Papel: domain.PapelProprietario}
	err := svc.DefinirAprovacao(ctx, dono, silo.ID, dto.AprovacaoRequest{Status: model.SiloAprovado})
	assert.ErrorIs(t, err, domain.ErrAcessoNegado)

	admin := domain.Ator{ID: uuid.New(), Nome: "Admin", Papel: domain.PapelAdmin}
	require.NoError(t, svc.DefinirAprovacao(ctx, admin, silo.ID, dto.AprovacaoRequest{Status: model.SiloAprovado}))

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SiloAprovado, atual.StatusAprovacao)
}
