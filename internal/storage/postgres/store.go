package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// PoolConfig задаёт параметры пула подключений.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig — параметры пула по умолчанию. Киоск обслуживает один
// терминал, поэтому пул небольшой.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// StoreOption настраивает Store при открытии.
type StoreOption func(*PoolConfig)

// WithPoolConfig заменяет параметры пула целиком.
func WithPoolConfig(cfg PoolConfig) StoreOption {
	return func(pc *PoolConfig) { *pc = cfg }
}

// Store оборачивает SQL-подключение к PostgreSQL для хранилищ киоска.
type Store struct {
	db *sql.DB
}

// Open открывает подключение через pgx stdlib драйвер и проверяет базу.
func Open(ctx context.Context, dsn string, opts ...StoreOption) (*Store, error) {
	pool := DefaultPoolConfig()
	for _, opt := range opts {
		opt(&pool)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	store := &Store{db: db}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DB возвращает raw SQL DB для хранилищ и низкоуровневых запросов.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность базы с коротким таймаутом.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close закрывает подключение.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
