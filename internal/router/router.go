package router

import (
	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/handler"
	"github.com/silvioaquino/Gestao-PDV/internal/middleware"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"
	"github.com/silvioaquino/Gestao-PDV/internal/service"
	"github.com/silvioaquino/Gestao-PDV/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services are shared between the HTTP layer and the worker pool.
type Services struct {
	Auth        service.AuthService
	Caixa       service.CaixaService
	Vendas      service.VendaService
	VendaManual service.VendaManualService
	Retiradas   service.RetiradaService

	// Fila is nil when Redis is not configured.
	Fila *worker.Dispatcher
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	caixaRepo := repository.NewCaixaRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	manualRepo := repository.NewVendaManualRepository(db)
	retiradaRepo := repository.NewRetiradaRepository(db)

	s := &Services{}
	// A typed nil would make the services believe a queue exists
	var fila service.Fila
	if rdb != nil {
		s.Fila = worker.NewDispatcher(rdb)
		fila = s.Fila
	}

	s.Auth = service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	s.Caixa = service.NewCaixaService(caixaRepo, vendaRepo, manualRepo, retiradaRepo, fila, cfg)
	s.Vendas = service.NewVendaService(vendaRepo, caixaRepo, s.Caixa, cfg)
	s.VendaManual = service.NewVendaManualService(manualRepo, caixaRepo, s.Caixa, cfg)
	s.Retiradas = service.NewRetiradaService(retiradaRepo, caixaRepo, s.Caixa, cfg)
	return s
}

// Deps are the collaborators main builds before the router.
type Deps struct {
	Services   *Services
	Impressora *worker.Impressora
	// Idempotencia stores webhook responses; defaults to the database store.
	Idempotencia repository.IdempotenciaRepository
	// Stop ends the rate limiter cleanup goroutines.
	Stop <-chan struct{}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Services == nil {
		deps.Services = NewServices(cfg, db, rdb)
	}
	if deps.Idempotencia == nil {
		deps.Idempotencia = repository.NewIdempotenciaRepository(db)
	}
	if deps.Impressora == nil {
		deps.Impressora = worker.NewImpressora(printer.NewNullPrinter(), nil, cfg.PrinterWidth)
	}
	svc := deps.Services

	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}, deps.Stop)
	loginLimiter := middleware.NewIPRateLimiter(middleware.LoginRateLimiterConfig(), deps.Stop)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	var filaImpressao handler.FilaImpressao
	if svc.Fila != nil {
		filaImpressao = svc.Fila
	}
	authH := handler.NewAuthHandler(svc.Auth)
	usuariosH := handler.NewUsuariosHandler(svc.Auth)
	caixaH := handler.NewCaixaHandler(svc.Caixa, filaImpressao, deps.Impressora)
	vendasH := handler.NewVendasHandler(svc.Vendas)
	manuaisH := handler.NewVendasManuaisHandler(svc.VendaManual)
	retiradasH := handler.NewRetiradasHandler(svc.Retiradas)
	webhookH := handler.NewWebhookHandler(svc.Vendas)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Impressora))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Webhook: shared token instead of JWT
	webhook := api.Group("/webhook/cardapio-ai")
	{
		webhook.GET("", webhookH.Status)
		webhook.POST("", middleware.WebhookToken(cfg.WebhookToken), middleware.Idempotency(deps.Idempotencia), webhookH.Receber)
	}

	// Protected routes; with AUTH_ENABLED=false every route is open
	role := func(roles ...string) gin.HandlerFunc {
		if !cfg.AuthEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequireRole(roles...)
	}
	protegido := api.Group("")
	if cfg.AuthEnabled {
		protegido.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	protegido.Use(middleware.Idempotency(deps.Idempotencia))

	todos := role(model.RolOperador, model.RolGerente, model.RolAdministrador)
	gestao := role(model.RolGerente, model.RolAdministrador)
	{
		caixa := protegido.Group("/caixa")
		caixa.GET("/status", todos, caixaH.Status)
		caixa.POST("/abrir", todos, caixaH.Abrir)
		caixa.POST("/fechar", todos, caixaH.Fechar)
		caixa.GET("/consulta", todos, caixaH.Consultar)
		caixa.GET("/historico", gestao, caixaH.Historico)
		caixa.GET("/:id", todos, caixaH.Detalhe)
		caixa.GET("/:id/relatorio", todos, caixaH.Relatorio)
		caixa.POST("/:id/imprimir", todos, caixaH.Imprimir)

		vendas := protegido.Group("/vendas")
		vendas.GET("", todos, vendasH.Listar)
		vendas.POST("", todos, vendasH.Registrar)
		vendas.GET("/:id", todos, vendasH.Obter)
		vendas.PUT("/:id", todos, vendasH.AtualizarPagamento)
		vendas.DELETE("/:id", gestao, vendasH.Excluir)

		manuais := protegido.Group("/vendas-manuais")
		manuais.GET("", todos, manuaisH.Listar)
		manuais.POST("", todos, manuaisH.Registrar)
		manuais.DELETE("/:id", todos, manuaisH.Excluir)

		retiradas := protegido.Group("/retiradas")
		retiradas.GET("", todos, retiradasH.Listar)
		retiradas.POST("", todos, retiradasH.Registrar)
		retiradas.DELETE("/:id", gestao, retiradasH.Excluir)

		usuarios := protegido.Group("/usuarios", role(model.RolAdministrador))
		usuarios.POST("", usuariosH.Criar)
		usuarios.GET("", usuariosH.Listar)
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
