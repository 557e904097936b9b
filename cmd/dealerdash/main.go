package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/config"
	"github.com/deppfellow/dealer-dashboard/internal/database"
	"github.com/deppfellow/dealer-dashboard/internal/handler"
	"github.com/deppfellow/dealer-dashboard/internal/logger"
	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/router"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second
	migrateTimeout  = 2 * time.Minute
)

var migrateOnStart bool

var rootCmd = &cobra.Command{
	Use:           "dealerdash",
	Short:         "Dealer dashboard API server",
	Long:          `dealerdash serves the dealer dashboard's JSON API and static frontend over a PostgreSQL database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
	}
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// bootstrap loads config and builds the logger. A config failure is reported
// on a default logger since the configured one cannot exist yet.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Error().Err(err).Msg("failed to load config")
		return nil, nil, fallback, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Error().Err(err).Msg("failed to initialize logger service")
		return nil, nil, fallback, err
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, loggerService, log, nil
}

func migrate(cfg *config.Config, log *zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if err := database.Migrate(ctx, log, cfg); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	return migrate(cfg, &log)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	if migrateOnStart {
		if err := migrate(cfg, &log); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			_ = srv.Shutdown(context.Background())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
