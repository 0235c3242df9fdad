// @title                       Job Board API
// @version                     1.0
// @description                 Job board API with bearer-token authentication and role authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/api"
	"github.com/jobnexus/jobboard/internal/api/handler"
	"github.com/jobnexus/jobboard/internal/core/access"
	"github.com/jobnexus/jobboard/internal/core/service"
	"github.com/jobnexus/jobboard/internal/infrastructure/config"
	"github.com/jobnexus/jobboard/internal/infrastructure/db/mongo"
	"github.com/jobnexus/jobboard/internal/infrastructure/db/redis"
	"github.com/jobnexus/jobboard/internal/infrastructure/queue"
	"github.com/jobnexus/jobboard/internal/infrastructure/tokens"
	"github.com/jobnexus/jobboard/internal/policy"
	"github.com/jobnexus/jobboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// Init returns the configured logger when run got that far.
		l := logger.Init(logger.Options{Service: "jobboard"})
		l.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "jobboard",
	})

	table, err := policy.Load()
	if err != nil {
		return err
	}

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	identities := mongo.NewIdentityRepository(db)
	companies := mongo.NewCompanyRepository(db)
	tokenManager := tokens.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	// The dispatcher outlives the HTTP server so queued audit events drain
	// after the last request.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, mongo.NewAuditRepository(db), logger.Component("audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	e, err := api.NewRouter(api.Deps{
		Log:    log,
		Policy: table,
		Gate:   access.NewGate(tokenManager, identities),
		Audit:  dispatcher,
		Auth: service.NewAuthService(
			identities,
			tokenManager,
			redis.NewLoginLimiter(redisClient, cfg.Login.MaxAttempts, cfg.Login.Window),
			dispatcher,
			logger.Component("auth"),
		),
		Jobs: service.NewJobService(
			mongo.NewJobRepository(db),
			companies,
			mongo.NewApplicationRepository(db),
			logger.Component("jobs"),
		),
		Companies: service.NewCompanyService(companies, logger.Component("companies")),
		Admin:     service.NewAdminService(identities, dispatcher, logger.Component("admin")),
		Health: map[string]handler.Pinger{
			"mongo": mongo.Pinger{Client: mongoClient},
			"redis": redis.Pinger{Client: redisClient},
		},
	})
	if err != nil {
		return err
	}

	return serve(ctx, e, ":"+cfg.Port, log)
}

type server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

func serve(ctx context.Context, srv server, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
