package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"querychat/internal/api"
	"querychat/internal/backend"
	"querychat/internal/config"
	"querychat/internal/conversation"
	"querychat/internal/logger"
	"querychat/internal/redis"
	"querychat/internal/service/ask"
	"querychat/internal/service/sqlgen"
	"querychat/internal/session"
	"querychat/internal/storage"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Setup(cfg.BasicConfig.LogLevel, cfg.BasicConfig.LogFormat)
	return cfg, nil
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			qs := backend.NewClient(cfg.Backend.URL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
			engine, cleanup, err := buildEngine(ctx, cfg, qs)
			if err != nil {
				return err
			}
			defer cleanup()

			router := newRouter(cfg)
			api.NewHandler(engine).RegisterRoutes(router)
			return runServer(ctx, cfg.BasicConfig.ServerAddress, router)
		},
	}
}

func newBackendCmd(cfgPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run the natural-language query service (POST /ask)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, db, err := buildAskService(ctx, cfg, seed)
			if err != nil {
				return err
			}
			defer db.Close()

			router := newRouter(cfg)
			api.NewAskHandler(svc).RegisterRoutes(router)
			return runServer(ctx, cfg.BasicConfig.BackendAddress, router)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "fill an empty database with demo data")
	return cmd
}

func newChatCmd(cfgPath *string) *cobra.Command {
	var local, seed bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var qs backend.QueryService
			if local {
				svc, db, err := buildAskService(ctx, cfg, seed)
				if err != nil {
					return err
				}
				defer db.Close()
				qs = svc
			} else {
				qs = backend.NewClient(cfg.Backend.URL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
			}

			engine, cleanup, err := buildEngine(ctx, cfg, qs)
			if err != nil {
				return err
			}
			defer cleanup()
			return newREPL(engine, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "answer questions in-process instead of calling the backend URL")
	cmd.Flags().BoolVar(&seed, "seed", false, "with --local, fill an empty database with demo data")
	return cmd
}

// buildEngine wires the session store, the configured persister and the
// query service into a conversation engine with restored history.
func buildEngine(ctx context.Context, cfg *config.Config, qs backend.QueryService) (*conversation.Engine, func(), error) {
	store, err := session.NewStore(cfg.ChannelModels(), cfg.BasicConfig.NodeID)
	if err != nil {
		return nil, nil, fmt.Errorf("init session store: %w", err)
	}
	persister, closePersister, err := buildPersister(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := conversation.NewEngine(store, qs, conversation.Options{
		Persister: persister,
		QueueSize: cfg.BasicConfig.QueueSize,
	})
	if err := engine.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("starting with empty history")
	}
	cleanup := func() {
		engine.Close()
		closePersister()
	}
	return engine, cleanup, nil
}

func buildPersister(cfg *config.Config) (conversation.Persister, func(), error) {
	driver := cfg.Persistence.Driver
	switch driver {
	case "":
		log.Info().Msg("chat history is kept in memory only")
		return nil, func() {}, nil
	case "redis":
		client, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis client: %w", err)
		}
		return redis.NewSnapshotCache(client, cfg.Persistence.Key), func() { client.Close() }, nil
	default:
		db, err := storage.Open(driver, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := storage.Migrate(db, driver); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return storage.NewSnapshotRepository(db, driver, cfg.Persistence.Key), func() { db.Close() }, nil
	}
}

func buildAskService(ctx context.Context, cfg *config.Config, seed bool) (*ask.Service, *sql.DB, error) {
	dbType := cfg.SQLGenerator.Database
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(db, dbType); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	if seed {
		if err := storage.Seed(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	chatModel, err := sqlgen.NewChatModel(ctx, cfg.SQLGenerator.Provider, cfg.SQLGenerator.Model, cfg.Providers)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	gen := sqlgen.NewGenerator(chatModel, dbType)
	return ask.NewService(db, gen), db, nil
}

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.BasicConfig.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter()
}

// runServer serves router until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, addr string, router *gin.Engine) error {
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
