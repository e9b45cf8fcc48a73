package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenPostgres connects through gorm and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return gdb, nil
}

// PostgresStore keeps slots in the saves table created by the migrations.
type PostgresStore[T any] struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewPostgresStore[T any](db *gorm.DB, logger zerolog.Logger) *PostgresStore[T] {
	return &PostgresStore[T]{db: db, logger: logger.With().Str("component", "postgres_store").Logger()}
}

func (s *PostgresStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	var raw []byte
	row := s.db.WithContext(ctx).Raw(`SELECT data FROM saves WHERE slot = ?`, id).Row()
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("load slot %s: %w", id, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Error().Err(err).Str("slot", id).Msg("corrupted save")
		return zero, false, fmt.Errorf("decode slot %s: %w", id, err)
	}
	return v, true, nil
}

func (s *PostgresStore[T]) Put(ctx context.Context, id string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", id, err)
	}
	err = s.db.WithContext(ctx).Exec(`INSERT INTO saves(slot, data, updated_at) VALUES(?, ?, now())
		ON CONFLICT (slot) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, id, string(raw)).Error
	if err != nil {
		return fmt.Errorf("store slot %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore[T]) List(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Table("saves").Order("slot").Pluck("slot", &ids).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore[T]) NewID() string { return NewID() }
