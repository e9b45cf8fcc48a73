package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"xianxia/internal/app"
	"xianxia/internal/config"
	"xianxia/internal/session"
	"xianxia/internal/web"
)

func main() {
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xianxia-server | migrate up|down\n")
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)

	if args := flag.Args(); len(args) > 0 {
		if args[0] != "migrate" {
			flag.Usage()
			os.Exit(2)
		}
		if err := migrate(cfg, args[1:]); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		return
	}

	if err := serve(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func migrate(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("migrate requires 'up' or 'down'")
	}
	m, err := session.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("unknown migrate action %q; use up|down", args[0])
	}
	if err != nil && !errors.Is(err, session.ErrNoChange) {
		return err
	}
	fmt.Println("Migrations", args[0], "done")
	return nil
}

func serve(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("close connections")
		}
	}()

	srv := &web.Server{
		Play:      a.Play,
		Saves:     a.Saves,
		AssetsDir: cfg.AssetsDir,
		Metrics:   promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Logger:    logger.With().Str("component", "web").Logger(),
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.ShutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
