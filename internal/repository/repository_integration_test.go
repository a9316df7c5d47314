//go:build integration

package repository

// Integration tests against real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v
//
// These exercise the SQL that the unit stubs only imitate: the guarded
// capacity UPDATE under real concurrency, the LEAST clamp on release and
// the guarded status flip.

import (
	"context"
	"sync"
	"testing"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/infra"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("siloshare_test"),
		tcPostgres.WithUsername("siloshare"),
		tcPostgres.WithPassword("siloshare"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func seedSilo(t *testing.T, db *gorm.DB, total int64) *model.Silo {
	t.Helper()
	dono := &model.Usuario{Nome: "Dono", Email: uuid.NewString() + "@t.test", SenhaHash: "x", Papel: "proprietario", Ativo: true}
	require.NoError(t, db.Create(dono).Error)

	silo := &model.Silo{
		ProprietarioID:       dono.ID,
		Nome:                 "Silo Integração",
		Cidade:               "Sorriso",
		Estado:               "MT",
		CapacidadeTotal:      decimal.NewFromInt(total),
		CapacidadeDisponivel: decimal.NewFromInt(total),
		PrecoPorToneladaMes:  decimal.NewFromInt(25),
		StatusAprovacao:      model.SiloAprovado,
		Disponivel:           true,
		Ativo:                true,
	}
	require.NoError(t, db.Create(silo).Error)
	return silo
}

func TestReservarCapacidade_GuardaSobConcorrencia(t *testing.T) {
	db := setupDB(t)
	repo := NewSiloRepository(db)
	silo := seedSilo(t, db, 5000)

	const n = 10
	qtd := decimal.NewFromInt(4000)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Transaction(func(tx *gorm.DB) error {
				return repo.ReservarCapacidadeTx(tx, silo.ID, qtd)
			})
		}(i)
	}
	wg.Wait()

	sucessos := 0
	for _, err := range errs {
		if err == nil {
			sucessos++
		} else {
			assert.ErrorIs(t, err, domain.ErrCapacidadeInsuficiente)
		}
	}
	assert.Equal(t, 1, sucessos)

	atual, err := repo.FindByID(context.Background(), silo.ID)
	require.NoError(t, err)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(1000)))
}

func TestLiberarCapacidade_ClampaNaCapacidadeTotal(t *testing.T) {
	db := setupDB(t)
	repo := NewSiloRepository(db)
	silo := seedSilo(t, db, 1000)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReservarCapacidadeTx(tx, silo.ID, decimal.NewFromInt(300))
	}))

	// Credita mais do que foi debitado; o LEAST impede passar do total
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.LiberarCapacidadeTx(tx, silo.ID, decimal.NewFromInt(900))
	}))

	atual, err := repo.FindByID(context.Background(), silo.ID)
	require.NoError(t, err)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(1000)))
}

func TestUpdateStatus_GuardaTransicaoObsoleta(t *testing.T) {
	db := setupDB(t)
	reservaRepo := NewReservaRepository(db)
	silo := seedSilo(t, db, 1000)

	produtor := &model.Usuario{Nome: "Produtor", Email: uuid.NewString() + "@t.test", SenhaHash: "x", Papel: "produtor", Ativo: true}
	require.NoError(t, db.Create(produtor).Error)

	reserva := &model.Reserva{
		SiloID:       silo.ID,
		ProdutorID:   produtor.ID,
		SiloNome:     silo.Nome,
		ProdutorNome: produtor.Nome,
		Quantidade:   decimal.NewFromInt(100),
		DataInicio:   time.Now().AddDate(0, 0, 7),
		DataFim:      time.Now().AddDate(0, 2, 7),
		ValorTotal:   decimal.NewFromInt(5000),
		Status:       model.ReservaPendente,
		TipoGrao:     "soja",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return reservaRepo.CreateTx(tx, reserva)
	}))

	// Primeiro flip vence
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return reservaRepo.UpdateStatusTx(tx, reserva.ID, model.ReservaPendente, model.ReservaConfirmada)
	}))

	// Segundo flip a partir do mesmo estado antigo perde
	err := db.Transaction(func(tx *gorm.DB) error {
		return reservaRepo.UpdateStatusTx(tx, reserva.ID, model.ReservaPendente, model.ReservaCancelada)
	})
	assert.ErrorIs(t, err, domain.ErrTransicaoInvalida)

	atual, err := reservaRepo.FindByID(context.Background(), reserva.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaConfirmada, atual.Status)
}

func TestUpdateSilo_NaoEscreveColunasDoLedger(t *testing.T) {
	db := setupDB(t)
	repo := NewSiloRepository(db)
	silo := seedSilo(t, db, 10000)
	ctx := context.Background()

	// Read-modify-write with a reservation debit committed in between; the
	// write-back must not restore the stale capacity.
	stale, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReservarCapacidadeTx(tx, silo.ID, decimal.NewFromInt(4000))
	}))

	stale.Nome = "Silo Renomeado"
	require.NoError(t, repo.Update(ctx, stale))

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silo Renomeado", atual.Nome)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(6000)))
}

func TestDesativarSilo_AtualizacaoDirigida(t *testing.T) {
	db := setupDB(t)
	repo := NewSiloRepository(db)
	silo := seedSilo(t, db, 1000)
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.ReservarCapacidadeTx(tx, silo.ID, decimal.NewFromInt(400))
	}))

	require.NoError(t, repo.Desativar(ctx, silo.ID))
	assert.ErrorIs(t, repo.Desativar(ctx, uuid.New()), domain.ErrNaoEncontrado)

	atual, err := repo.FindByID(ctx, silo.ID)
	require.NoError(t, err)
	assert.False(t, atual.Ativo)
	assert.False(t, atual.Disponivel)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(600)))
}

func TestAjustarDisponivel_DistingueAusenteDeInvariante(t *testing.T) {
	db := setupDB(t)
	repo := NewSiloRepository(db)
	silo := seedSilo(t, db, 1000)
	ctx := context.Background()

	assert.ErrorIs(t, repo.AjustarDisponivel(ctx, uuid.New(), decimal.NewFromInt(10)), domain.ErrNaoEncontrado)
	assert.ErrorIs(t, repo.AjustarDisponivel(ctx, silo.ID, decimal.NewFromInt(2000)), domain.ErrInvariante)
	assert.NoError(t, repo.AjustarDisponivel(ctx, silo.ID, decimal.NewFromInt(500)))
}

func TestHistorico_AppendOnlyEOrdenado(t *testing.T) {
	db := setupDB(t)
	histRepo := NewHistoricoRepository(db)
	reservaID := uuid.New()

	for _, acao := range []string{"criada", "aprovada", "iniciada"} {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return histRepo.CreateTx(tx, &model.ReservaHistorico{
				ReservaID: reservaID,
				AtorID:    uuid.New(),
				AtorNome:  "Teste",
				Acao:      acao,
			})
		}))
	}

	hist, err := histRepo.ListByReserva(context.Background(), reservaID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "criada", hist[0].Acao)
	assert.Equal(t, "iniciada", hist[2].Acao)
}
