package app

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"inspecciones/backend/libs/db"
	libredis "inspecciones/backend/libs/redis"
	"inspecciones/backend/services/cuadros-service/internal/clock"
	appconfig "inspecciones/backend/services/cuadros-service/internal/config"
	httpserver "inspecciones/backend/services/cuadros-service/internal/http"
	"inspecciones/backend/services/cuadros-service/internal/http/handlers"
	"inspecciones/backend/services/cuadros-service/internal/http/middleware"
	"inspecciones/backend/services/cuadros-service/internal/http/views"
	"inspecciones/backend/services/cuadros-service/internal/password"
	redisstore "inspecciones/backend/services/cuadros-service/internal/redis"
	"inspecciones/backend/services/cuadros-service/internal/report"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/service"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

const limiterCleanupEvery = 5 * time.Minute

// App wires dependencies for the cuadros service.
type App struct {
	server  *httpserver.Server
	limiter *middleware.RateLimiter
	db      *sql.DB
	redis   *goredis.Client
	logger  *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	clk, err := clock.New(cfg.Session.TimeZone)
	if err != nil {
		return nil, err
	}
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}
	proxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN, db.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnLifetime: cfg.Database.ConnLifetime,
	})
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(libredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	centroRepo := repository.NewCentroRepository(sqlDB)
	cuadroRepo := repository.NewCuadroRepository(sqlDB)
	sesionRepo := repository.NewSesionRepository(sqlDB)

	reports, err := newReportService(cfg, centroRepo, cuadroRepo, clk, logger)
	if err != nil {
		sqlDB.Close()
		redisClient.Close()
		return nil, err
	}
	tokens := redisstore.NewTokenStore(redisClient)

	authSvc := service.NewAuthService(userRepo, password.NewBcryptHasher(0), logger)
	navSvc := service.NewNavigationService(authSvc, sesionRepo, tokens, centroRepo, clk, logger)
	centrosSvc := service.NewCentrosService(centroRepo, cfg.Provincias, logger)
	cuadrosSvc := service.NewCuadrosService(cuadroRepo, clk, logger)

	jar := middleware.NewCookieJar(session.NewCookieCodec(cfg.Session.Secret, nil), cfg.Session.Secure)
	h := handlers.New(handlers.Deps{
		Navigation: navSvc,
		Centros:    centrosSvc,
		Cuadros:    cuadrosSvc,
		Reports:    reports,
		Cookies:    jar,
		Views:      renderer,
		Logger:     logger,
	})

	router := httpserver.NewRouter(h,
		middleware.CSRF(middleware.CSRFOptions{
			Key:            cfg.CSRFKey(),
			Secure:         cfg.Session.Secure,
			TrustedOrigins: cfg.CSRF.TrustedOrigins,
			ErrorHandler:   http.HandlerFunc(h.CSRFFailure),
		}),
		middleware.LoadSession(jar, navSvc, http.HandlerFunc(h.Loading), logger),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, proxies)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, httpserver.Timeouts{
		Read:     cfg.HTTP.ReadTimeout,
		Write:    cfg.HTTP.WriteTimeout,
		Idle:     cfg.HTTP.IdleTimeout,
		Shutdown: cfg.HTTP.ShutdownTimeout,
	}, logger,
		middleware.Recover(logger),
		middleware.AccessLog(logger, proxies),
		limiter.Middleware,
	)

	return &App{
		server:  server,
		limiter: limiter,
		db:      sqlDB,
		redis:   redisClient,
		logger:  logger,
	}, nil
}

// newReportService prefers the remote generator when one is configured and
// falls back to building the workbook in process.
func newReportService(cfg *appconfig.Config, centros report.CentroSource, cuadros report.CuadroSource, clk clock.Clock, logger *zap.Logger) (*report.Service, error) {
	var generator report.Generator = report.NewXLSXGenerator()
	if cfg.Reports.ServiceURL != "" {
		generator = report.NewRemoteGenerator(cfg.Reports.ServiceURL, cfg.Reports.Timeout, logger)
	}

	var archive report.Archive
	if s3 := cfg.Reports.S3; s3.Bucket != "" {
		a, err := report.NewS3Archive(report.S3Options{
			Bucket:    s3.Bucket,
			Region:    s3.Region,
			Endpoint:  s3.Endpoint,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		archive = a
	}

	return report.NewService(centros, cuadros, generator, archive, clk, logger), nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	cleanupCtx, cancel := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.limiter.Cleanup(cleanupCtx, limiterCleanupEvery)
	}()

	err := a.server.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
