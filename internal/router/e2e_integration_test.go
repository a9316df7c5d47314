//go:build integration

package router_test

// End-to-end tests over the full HTTP surface using real Postgres + Redis
// via testcontainers. Run with: go test -tags integration ./internal/router/... -v
//
// Covered flows:
//   - register/login for each papel
//   - silo listing only after admin approval
//   - reservation creation with valor_total snapshot and capacity debit
//   - approval keeps capacity debited and enqueues jobs
//   - rejection returns capacity
//   - authorization failures surface as 403, illegal transitions as 409

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"siloshare/internal/config"
	"siloshare/internal/dto"
	"siloshare/internal/infra"
	"siloshare/internal/router"
	"siloshare/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
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

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		WorkerPoolSize:      1,
		ContratoStoragePath: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := router.New(cfg, db, rdb, worker.NewDispatcher(rdb))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb}
}

// register creates a user through the public endpoint and returns a JWT.
func (env *testEnv) register(t *testing.T, nome, email, papel string) string {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/auth/register", jsonBody(t, map[string]any{
		"nome":  nome,
		"email": email,
		"senha": "senha-forte-123",
		"papel": papel,
	}), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/auth/login", jsonBody(t, map[string]any{
		"email": email,
		"senha": "senha-forte-123",
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

// criarSiloAprovado lists a silo as proprietário and approves it straight in
// the database, standing in for the admin moderation step.
func (env *testEnv) criarSiloAprovado(t *testing.T, token string, capacidade int) dto.SiloResponse {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/silos", jsonBody(t, map[string]any{
		"nome":                   "Silo Sorriso",
		"cidade":                 "Sorriso",
		"estado":                 "MT",
		"capacidade_total":       capacidade,
		"preco_por_tonelada_mes": 25,
		"tipos_graos":            []string{"soja", "milho"},
	}), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var silo dto.SiloResponse
	decodeJSON(t, resp, &silo)
	require.Equal(t, "pendente", silo.StatusAprovacao)

	require.NoError(t, env.db.Exec(
		`UPDATE silos SET status_aprovacao = 'aprovado' WHERE id = ?`, silo.ID,
	).Error)
	return silo
}

func (env *testEnv) criarReserva(t *testing.T, token, siloID string, qtd int) dto.ReservaResponse {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/reservas", jsonBody(t, map[string]any{
		"silo_id":     siloID,
		"quantidade":  qtd,
		"data_inicio": "2026-09-01",
		"data_fim":    "2026-10-31",
		"tipo_grao":   "soja",
	}), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reserva dto.ReservaResponse
	decodeJSON(t, resp, &reserva)
	return reserva
}

func (env *testEnv) siloDetalhes(t *testing.T, siloID string) dto.SiloResponse {
	t.Helper()
	resp := do(t, env.server, http.MethodGet, "/v1/silos/"+siloID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var silo dto.SiloResponse
	decodeJSON(t, resp, &silo)
	return silo
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_ReservaCicloCompleto(t *testing.T) {
	env := setupTestEnv(t)
	proprietario := env.register(t, "Dona Marta", "marta@e2e.test", "proprietario")
	produtor := env.register(t, "Seu João", "joao@e2e.test", "produtor")

	silo := env.criarSiloAprovado(t, proprietario, 10000)

	// 4000 t por 2 meses a R$25/t/mês
	reserva := env.criarReserva(t, produtor, silo.ID, 4000)
	assert.Equal(t, "pendente", reserva.Status)
	assert.Equal(t, "200000.00", reserva.ValorTotal.StringFixed(2))

	atual := env.siloDetalhes(t, silo.ID)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(6000)))

	// Aprovação pelo dono mantém capacidade debitada
	resp := do(t, env.server, http.MethodPost, "/v1/reservas/"+reserva.ID+"/aprovar", nil, proprietario)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	atual = env.siloDetalhes(t, silo.ID)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(6000)))

	// Aprovação enfileira pagamento, contrato e email
	ctx := context.Background()
	assert.Equal(t, int64(1), env.rdb.LLen(ctx, "jobs:pagamento").Val())
	assert.Equal(t, int64(1), env.rdb.LLen(ctx, "jobs:contrato").Val())

	// Cancelamento após confirmação é ilegal
	resp = do(t, env.server, http.MethodPost, "/v1/reservas/"+reserva.ID+"/cancelar", nil, produtor)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Iniciar e concluir fecham o ciclo sem devolver capacidade
	for _, acao := range []string{"iniciar", "concluir"} {
		resp = do(t, env.server, http.MethodPost, "/v1/reservas/"+reserva.ID+"/"+acao, nil, produtor)
		require.Equal(t, http.StatusNoContent, resp.StatusCode, acao)
		resp.Body.Close()
	}
	atual = env.siloDetalhes(t, silo.ID)
	assert.True(t, atual.CapacidadeDisponivel.Equal(decimal.NewFromInt(6000)))

	// Histórico registra a trilha completa
	resp = do(t, env.server, http.MethodGet, "/v1/reservas/"+reserva.ID+"/historico", nil, produtor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist []dto.HistoricoResponse
	decodeJSON(t, resp, &hist)
	require.Len(t, hist, 4)
	assert.Equal(t, "criada", hist[0].Acao)
	assert.Equal(t, "concluida", hist[3].Acao)
}

func TestE2E_RejeicaoDevolveCapacidade(t *testing.T) {
	env := setupTestEnv(t)
	proprietario := env.register(t, "Dona Marta", "marta@e2e.test", "proprietario")
	produtor := env.register(t, "Seu João", "joao@e2e.test", "produtor")

	silo := env.criarSiloAprovado(t, proprietario, 5000)
	reserva := env.criarReserva(t, produtor, silo.ID, 2000)

	assert.True(t, env.siloDetalhes(t, silo.ID).CapacidadeDisponivel.Equal(decimal.NewFromInt(3000)))

	resp := do(t, env.server, http.MethodPost, "/v1/reservas/"+reserva.ID+"/rejeitar",
		jsonBody(t, map[string]any{"detalhe": "período indisponível"}), proprietario)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	assert.True(t, env.siloDetalhes(t, silo.ID).CapacidadeDisponivel.Equal(decimal.NewFromInt(5000)))
}

func TestE2E_CapacidadeInsuficienteRetorna409(t *testing.T) {
	env := setupTestEnv(t)
	proprietario := env.register(t, "Dona Marta", "marta@e2e.test", "proprietario")
	produtor := env.register(t, "Seu João", "joao@e2e.test", "produtor")

	silo := env.criarSiloAprovado(t, proprietario, 1000)

	resp := do(t, env.server, http.MethodPost, "/v1/reservas", jsonBody(t, map[string]any{
		"silo_id":     silo.ID,
		"quantidade":  1001,
		"data_inicio": "2026-09-01",
		"data_fim":    "2026-10-31",
		"tipo_grao":   "soja",
	}), produtor)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	assert.True(t, env.siloDetalhes(t, silo.ID).CapacidadeDisponivel.Equal(decimal.NewFromInt(1000)))
}

func TestE2E_AutorizacaoNasTransicoes(t *testing.T) {
	env := setupTestEnv(t)
	proprietario := env.register(t, "Dona Marta", "marta@e2e.test", "proprietario")
	intruso := env.register(t, "Dono Alheio", "alheio@e2e.test", "proprietario")
	produtor := env.register(t, "Seu João", "joao@e2e.test", "produtor")

	silo := env.criarSiloAprovado(t, proprietario, 5000)
	reserva := env.criarReserva(t, produtor, silo.ID, 1000)

	// Dono de outro silo não aprova nem rejeita esta reserva
	for _, acao := range []string{"aprovar", "rejeitar"} {
		resp := do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/reservas/%s/%s", reserva.ID, acao), nil, intruso)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, acao)
		resp.Body.Close()
	}

	// Produtor não aprova a própria reserva: o middleware de papel barra antes
	resp := do(t, env.server, http.MethodPost, "/v1/reservas/"+reserva.ID+"/aprovar", nil, produtor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Detalhes são invisíveis para terceiros
	resp = do(t, env.server, http.MethodGet, "/v1/reservas/"+reserva.ID, nil, intruso)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_SiloPendenteNaoAceitaReserva(t *testing.T) {
	env := setupTestEnv(t)
	proprietario := env.register(t, "Dona Marta", "marta@e2e.test", "proprietario")
	produtor := env.register(t, "Seu João", "joao@e2e.test", "produtor")

	resp := do(t, env.server, http.MethodPost, "/v1/silos", jsonBody(t, map[string]any{
		"nome":                   "Silo Novo",
		"cidade":                 "Rondonópolis",
		"estado":                 "MT",
		"capacidade_total":       3000,
		"preco_por_tonelada_mes": 18,
		"tipos_graos":            []string{"milho"},
	}), proprietario)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var silo dto.SiloResponse
	decodeJSON(t, resp, &silo)

	resp = do(t, env.server, http.MethodPost, "/v1/reservas", jsonBody(t, map[string]any{
		"silo_id":     silo.ID,
		"quantidade":  500,
		"data_inicio": "2026-09-01",
		"data_fim":    "2026-10-31",
		"tipo_grao":   "milho",
	}), produtor)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
