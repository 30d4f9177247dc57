package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kishan-kumar001/mern-task-manager/api"
	"github.com/Kishan-kumar001/mern-task-manager/auth"
	"github.com/Kishan-kumar001/mern-task-manager/config"
	"github.com/Kishan-kumar001/mern-task-manager/db"
	"github.com/Kishan-kumar001/mern-task-manager/mongodb"
	"github.com/Kishan-kumar001/mern-task-manager/service"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the task API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), app.Config)
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		s, err := db.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMongo:
		s, err := mongodb.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func openRevoker(ctx context.Context, cfg *config.Config) (auth.Revoker, func() error, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		return auth.NewMemoryRevoker(), func() error { return nil }, nil
	}
	r := auth.NewRedisRevoker(cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return r, r.Close, nil
}

func jwtSecret(cfg *config.Config) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	log.Warn("JWT_SECRET_KEY not set, using a random key; tokens will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if !cfg.DotEnvLoaded {
		log.Info("No .env file found, using system environment variables")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer st.Close()
	log.WithField("store", cfg.Store).Info("connected to store")

	revoker, closeRevoker, err := openRevoker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRevoker()

	secret, err := jwtSecret(cfg)
	if err != nil {
		return err
	}
	tokens := auth.NewManager(secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, revoker)

	server := api.NewServer(service.NewTasks(st), auth.NewService(st, tokens), api.Options{
		Env:                cfg.Env,
		StoreTimeout:       cfg.StoreTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "env": cfg.Env}).Info("server started")
		errCh <- srv.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigs:
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
