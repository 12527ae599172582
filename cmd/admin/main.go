package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/almacen/admin-console/internal/api"
	"github.com/almacen/admin-console/internal/api/handler"
	"github.com/almacen/admin-console/internal/api/middleware"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/core/service"
	mongodb "github.com/almacen/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/almacen/admin-console/internal/infrastructure/db/redis"
	"github.com/almacen/admin-console/internal/infrastructure/gateway"
	"github.com/almacen/admin-console/internal/infrastructure/memory"
	"github.com/almacen/admin-console/internal/infrastructure/queue"
	"github.com/almacen/admin-console/internal/pkg/config"
	"github.com/almacen/admin-console/internal/pkg/validation"
	"github.com/almacen/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "admin-console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("admin console stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	health := make(map[string]handler.DependencyCheck)

	// --- MongoDB: accounts (local mode) and the sign-in audit trail ---
	var db *mongo.Database
	if cfg.Mongo.URI != "" {
		client, database, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		db = database
		health["mongodb"] = handler.MongoCheck(db)
		log.Info().Str("db", cfg.Mongo.Database).Msg("mongodb connected")
	}

	// --- Session storage ---
	var (
		sessions ports.SessionRepository
		guard    ports.InFlightGuard
	)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redisdb.NewSessionRepository(rdb, cfg.Session.TTL)
		guard = redisdb.NewInFlightGuard(rdb)
		health["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	default:
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		guard = memory.NewInFlightGuard()
		log.Warn().Msg("in-memory sessions: state is lost on restart")
	}

	// --- Authentication service ---
	var gw ports.AuthGateway
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		gw = gateway.NewLocalGateway(mongodb.NewAccountRepository(db))
	default:
		gw = gateway.NewRemoteGateway(gateway.RemoteConfig{BaseURL: cfg.Auth.BaseURL, Timeout: cfg.Auth.Timeout})
	}
	log.Info().Str("mode", cfg.Auth.Mode).Msg("authentication gateway ready")

	// --- Audit workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var recorder ports.AuditRecorder
	var dispatcher *queue.AuditDispatcher
	if db != nil {
		dispatcher = queue.NewAuditDispatcher(cfg.AuditWorkers, mongodb.NewAuditRepository(db), logger.Component("audit"))
		dispatcher.Start(workerCtx)
		recorder = dispatcher
	}

	auth := service.NewAuthenticator(gw, guard, recorder, validation.New(), logger.Component("auth"))

	e := api.NewRouter(api.Deps{
		Log:           logger.Component("http"),
		Authenticator: auth,
		Sessions:      sessions,
		Codec:         middleware.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieSecure),
		Health:        health,
		SignInRate:    cfg.Session.RateLimit,
		SignInBurst:   cfg.Session.RateBurst,
		Registerer:    prometheus.DefaultRegisterer,
		Gatherer:      prometheus.DefaultGatherer,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("admin console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancelWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}
