package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/bizledger/internal/auth"
	"github.com/smallbiznis/bizledger/internal/auth/authorization"
	authdomain "github.com/smallbiznis/bizledger/internal/auth/domain"
	"github.com/smallbiznis/bizledger/internal/auth/session"
	"github.com/smallbiznis/bizledger/internal/catalog"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/expense"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/income"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/smallbiznis/bizledger/internal/migration"
	"github.com/smallbiznis/bizledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/bizledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bizledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bizledger/internal/observability/tracing"
	"github.com/smallbiznis/bizledger/internal/ratelimit"
	"github.com/smallbiznis/bizledger/internal/report"
	reportdomain "github.com/smallbiznis/bizledger/internal/report/domain"
	"github.com/smallbiznis/bizledger/internal/seed"
	"github.com/smallbiznis/bizledger/internal/state"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	migration.Module,
	ratelimit.Module,
	auth.Module,
	catalog.Module,
	expense.Module,
	income.Module,
	state.Module,
	report.Module,
	seed.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	authsvc    authdomain.Service
	sessions   *session.Manager
	authz      *authorization.Authorizer
	stateSvc   statedomain.Service
	catalogSvc catalogdomain.Service
	expenseSvc expensedomain.Service
	incomeSvc  incomedomain.Service
	reportSvc  reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Authsvc    authdomain.Service
	Sessions   *session.Manager
	Authz      *authorization.Authorizer
	StateSvc   statedomain.Service
	CatalogSvc catalogdomain.Service
	ExpenseSvc expensedomain.Service
	IncomeSvc  incomedomain.Service
	ReportSvc  reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		authsvc:    p.Authsvc,
		sessions:   p.Sessions,
		authz:      p.Authz,
		stateSvc:   p.StateSvc,
		catalogSvc: p.CatalogSvc,
		expenseSvc: p.ExpenseSvc,
		incomeSvc:  p.IncomeSvc,
		reportSvc:  p.ReportSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	read := func(object string) gin.HandlerFunc { return s.Authorize(object, authorization.ActionRead) }
	write := func(object string) gin.HandlerFunc { return s.Authorize(object, authorization.ActionWrite) }

	api.GET("/state", read(authorization.ObjectState), s.GetState)

	// -------- Catalog --------
	api.PUT("/catalog/:collection", write(authorization.ObjectCatalog), s.UpsertCatalogRecord)
	api.DELETE("/catalog/:collection/:id", write(authorization.ObjectCatalog), s.DeleteCatalogRecord)

	// -------- Expenses --------
	api.GET("/expenses", read(authorization.ObjectExpense), s.ListExpenses)
	api.POST("/expenses", write(authorization.ObjectExpense), s.CreateExpense)
	api.DELETE("/expenses/:id", write(authorization.ObjectExpense), s.DeleteExpense)
	api.GET("/outstanding", read(authorization.ObjectExpense), s.ListOutstanding)
	api.POST("/outstanding/:id/settle", write(authorization.ObjectExpense), s.SettleOutstanding)

	// -------- Incomes --------
	api.GET("/incomes", read(authorization.ObjectIncome), s.ListIncomes)
	api.PUT("/incomes", write(authorization.ObjectIncome), s.UpsertIncome)
	api.GET("/incomes/:id", read(authorization.ObjectIncome), s.GetIncome)
	api.DELETE("/incomes/:id", write(authorization.ObjectIncome), s.DeleteIncome)
	api.GET("/incomes/:id/summary", read(authorization.ObjectIncome), s.GetIncomeSummary)

	// -------- Reports --------
	api.GET("/reports/:name", read(authorization.ObjectReport), s.GetReport)
	api.GET("/reports/:name/export", read(authorization.ObjectReport), s.ExportReport)

	// -------- Users --------
	api.POST("/users", write(authorization.ObjectUser), s.CreateUser)
	api.DELETE("/users/:id", write(authorization.ObjectUser), s.DeleteUser)
}
