package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"murmur/auth"
	"murmur/cache"
	"murmur/config"
	"murmur/handlers"
	"murmur/logging"
	"murmur/repositories"
	"murmur/routes"
	"murmur/seed"
	"murmur/service"
)

var (
	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "murmur",
		Short:         "Microblogging API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile := config.LoadDotenv()
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			logger = logging.New(cfg.Log)
			if envFile != "" {
				logger.Debug("loaded env file", "path", envFile)
			}
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			logger.Info("schema migrated", "driver", cfg.DB.Driver)
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo users, follows, murmurs and likes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			res, err := seed.Run(cmd.Context(), db, time.Now())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("database seeded",
				"users", len(res.Users),
				"follows", res.Follows,
				"murmurs", res.Murmurs,
				"likes", res.Likes,
			)
			for _, name := range []string{"alice", "bob", "charlie", "diana"} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tid=%s\tpassword=%s\n", name, res.Users[name], seed.Password)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// openDB connects and migrates. Every subcommand needs the schema in place.
func openDB() (*gorm.DB, error) {
	db, err := repositories.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	users := repositories.NewUserRepository(db)
	follows := repositories.NewFollowRepository(db)
	murmurRepo := repositories.NewMurmurRepository(db)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// the cache falls back to the database on every failure
			logger.Warn("redis unreachable, like counts will hit the database", "addr", cfg.Redis.Addr, "error", err)
		}
		murmurRepo = cache.NewLikeCounts(murmurRepo, rdb, cfg.Redis.LikeTTL)
	}

	graph := service.NewGraph(users, follows)
	murmurs := service.NewMurmurs(murmurRepo)
	timeline := service.NewTimeline(graph, murmurRepo)
	profiles := service.NewUsers(users, follows)
	authn := auth.New(users, cfg.Auth)

	router := routes.SetupRoutes(routes.Deps{
		DB:          db,
		Logger:      logger,
		Resolver:    authn,
		AllowHeader: cfg.Auth.AllowHeader,
		Auth:        handlers.NewAuthHandler(authn, profiles, logger),
		Murmurs:     handlers.NewMurmurHandler(murmurs, timeline, logger),
		Users:       handlers.NewUserHandler(profiles, graph, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "db_driver", cfg.DB.Driver, "like_cache", cfg.Redis.Addr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
