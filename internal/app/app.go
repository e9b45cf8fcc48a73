// Package app wires a configured playthrough together: story, catalog,
// event sinks and the save backend. Both the server and the terminal client
// start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"xianxia/internal/combat"
	"xianxia/internal/config"
	"xianxia/internal/events"
	"xianxia/internal/game"
	"xianxia/internal/play"
	"xianxia/internal/session"
)

// App owns everything a running playthrough needs. Close releases the
// connections it opened.
type App struct {
	Story    *game.Story
	Catalog  *combat.Catalog
	Play     *play.Playthrough
	Saves    session.Store[play.SaveData]
	Registry *prometheus.Registry
	Logger   zerolog.Logger

	closers []func() error
}

// New loads the story and catalog, cross-checks them, and connects the
// configured save backend and event sinks.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	story, err := game.LoadStory(cfg.StoryPath)
	if err != nil {
		return nil, fmt.Errorf("load story: %w", err)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	if err := story.Validate(cat.HasEnemy); err != nil {
		return nil, fmt.Errorf("story %s: %w", cfg.StoryPath, err)
	}
	a.Story, a.Catalog = story, cat

	sinks := events.Fanout{
		events.LogSink{Logger: logger.With().Str("component", "events").Logger()},
		events.NewMetricsSink(a.Registry),
	}
	if cfg.AMQPURL != "" {
		sink, err := a.openAMQP(cfg)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	saves, err := a.openSaves(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Saves = saves

	engine := game.NewEngine(story, sinks, logger)
	resolver := combat.NewResolver(cat, sinks, logger)
	a.Play, err = play.New(engine, resolver, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info().
		Str("story", story.Title).
		Int("chapters", len(story.Chapters)).
		Str("saves", cfg.Backend).
		Bool("amqp", cfg.AMQPURL != "").
		Msg("playthrough ready")
	return a, nil
}

func loadCatalog(path string) (*combat.Catalog, error) {
	if path == "" {
		return combat.DefaultCatalog(), nil
	}
	cat, err := combat.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (a *App) openAMQP(cfg *config.Config) (*events.AMQPSink, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	a.closers = append(a.closers, conn.Close)
	sink, err := events.NewAMQPSink(conn, cfg.AMQPExchange, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("amqp sink: %w", err)
	}
	return sink, nil
}

func (a *App) openSaves(ctx context.Context, cfg *config.Config) (session.Store[play.SaveData], error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		mig, err := session.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := mig.Up(); err != nil && !errors.Is(err, session.ErrNoChange) {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := session.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if sdb, err := db.DB(); err == nil {
			a.closers = append(a.closers, sdb.Close)
		}
		return session.NewPostgresStore[play.SaveData](db, a.Logger), nil
	case config.BackendRedis:
		client, err := session.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return session.NewRedisStore[play.SaveData](client, "xianxia:", cfg.RedisTTL, a.Logger), nil
	default:
		return session.NewMemoryStore[play.SaveData](), nil
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
