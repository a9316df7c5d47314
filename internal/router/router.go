package router

import (
	"time"

	"siloshare/internal/config"
	"siloshare/internal/handler"
	"siloshare/internal/middleware"
	"siloshare/internal/repository"
	"siloshare/internal/service"
	"siloshare/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	siloRepo := repository.NewSiloRepository(db)
	reservaRepo := repository.NewReservaRepository(db)
	historicoRepo := repository.NewHistoricoRepository(db)
	cotacaoRepo := repository.NewCotacaoRepository(db)
	avaliacaoRepo := repository.NewAvaliacaoRepository(db)
	mensagemRepo := repository.NewMensagemRepository(db)
	contratoRepo := repository.NewContratoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	siloSvc := service.NewSiloService(siloRepo, rdb)
	reservaSvc := service.NewReservaService(reservaRepo, siloRepo, historicoRepo, dispatcher)
	cotacaoSvc := service.NewCotacaoService(cotacaoRepo, reservaRepo, siloRepo)
	avaliacaoSvc := service.NewAvaliacaoService(avaliacaoRepo, reservaRepo, siloRepo)
	mensagemSvc := service.NewMensagemService(mensagemRepo, reservaRepo, siloRepo)
	contratoSvc := service.NewContratoService(contratoRepo, reservaRepo, siloRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	silosH := handler.NewSilosHandler(siloSvc)
	reservasH := handler.NewReservasHandler(reservaSvc)
	cotacoesH := handler.NewCotacoesHandler(cotacaoSvc)
	avaliacoesH := handler.NewAvaliacoesHandler(avaliacaoSvc)
	mensagensH := handler.NewMensagensHandler(mensagemSvc)
	contratosH := handler.NewContratosHandler(contratoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Public catalog — browsing needs no account
	r.GET("/v1/silos", silosH.Listar)
	r.GET("/v1/silos/:id", silosH.Detalhes)
	r.GET("/v1/silos/:id/avaliacoes", avaliacoesH.ListarPorSilo)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/perfil", authH.Perfil)

		// Silos — owner writes, admin moderates
		silos := v1.Group("/silos")
		{
			silos.POST("", middleware.RequireRole("proprietario", "admin"), silosH.Criar)
			silos.GET("/meus", middleware.RequireRole("proprietario", "admin"), silosH.MeusSilos)
			silos.PUT("/:id", middleware.RequireRole("proprietario", "admin"), silosH.Atualizar)
			silos.PATCH("/:id/capacidade", middleware.RequireRole("proprietario", "admin"), silosH.AjustarCapacidade)
			silos.DELETE("/:id", middleware.RequireRole("proprietario", "admin"), silosH.Desativar)
			silos.PATCH("/:id/aprovacao", middleware.RequireRole("admin"), silosH.DefinirAprovacao)
		}

		// Reservas — producer creates/cancels, owner approves/rejects,
		// either party starts/completes; ownership is enforced in the service
		reservas := v1.Group("/reservas")
		{
			reservas.POST("", middleware.RequireRole("produtor", "admin"), reservasH.Criar)
			reservas.GET("/minhas", middleware.RequireRole("produtor", "admin"), reservasH.Minhas)
			reservas.GET("/recebidas", middleware.RequireRole("proprietario", "admin"), reservasH.Recebidas)
			reservas.GET("/:id", reservasH.Detalhes)
			reservas.GET("/:id/historico", reservasH.Historico)

			reservas.POST("/:id/cancelar", reservasH.Cancelar)
			reservas.POST("/:id/aprovar", middleware.RequireRole("proprietario", "admin"), reservasH.Aprovar)
			reservas.POST("/:id/rejeitar", middleware.RequireRole("proprietario", "admin"), reservasH.Rejeitar)
			reservas.POST("/:id/iniciar", reservasH.Iniciar)
			reservas.POST("/:id/concluir", reservasH.Concluir)

			// Freight quotes live under the reservation they belong to
			reservas.POST("/:id/cotacoes", middleware.RequireRole("transportadora"), cotacoesH.Criar)
			reservas.GET("/:id/cotacoes", cotacoesH.Listar)
			reservas.POST("/:id/cotacoes/:cotacaoId/selecionar", middleware.RequireRole("produtor", "admin"), cotacoesH.Selecionar)

			reservas.POST("/:id/avaliacao", middleware.RequireRole("produtor"), avaliacoesH.Criar)

			reservas.POST("/:id/mensagens", mensagensH.Enviar)
			reservas.GET("/:id/mensagens", mensagensH.Listar)

			reservas.GET("/:id/contrato", contratosH.PorReserva)
			reservas.GET("/:id/contrato/pdf", contratosH.BaixarPDF)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
