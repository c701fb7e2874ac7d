package densify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/umegbewe/densify/internal/config"
	"github.com/umegbewe/densify/internal/logging"
	"github.com/umegbewe/densify/internal/metrics"
	"github.com/umegbewe/densify/internal/storage"
)

type Service struct {
	Config  *config.Config
	Pool    *Pool
	metrics *http.Server
}

func openStore(cfg *config.Config) (storage.SequenceStore, error) {
	compression, err := storage.ParseCompression(cfg.Database.Compression)
	if err != nil {
		return nil, err
	}

	switch cfg.Database.Type {
	case "bolt":
		if cfg.Database.Bolt.Path == "" {
			return nil, fmt.Errorf("bolt database path is required")
		}
		return storage.NewBoltStore(cfg.Database.Bolt.Path, compression)
	case "sqlite":
		if cfg.Database.Sqlite.Path == "" {
			return nil, fmt.Errorf("sqlite database path is required")
		}
		return storage.NewSqliteStore(cfg.Database.Sqlite.Path, compression)
	case "redis":
		return storage.NewRedisStore(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB, compression)
	case "memory":
		return storage.NewMemoryStore(compression), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// InitService wires logging, storage, the pool and the metrics endpoint
// from cfg and creates every declared sequence.
func InitService(cfg *config.Config) (*Service, error) {
	if err := logging.SetupLogging(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sequence store: %w", err)
	}

	pool, err := NewPool(cfg.Densify.Strategy, cfg.Densify.Verify, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	for _, s := range cfg.Densify.Sequences {
		if err := pool.Create(s.Name, s.Size); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create sequence %q: %w", s.Name, err)
		}
	}
	log.Infof("[INIT] Strategy %s, %d sequences, %s store", pool.Strategy(), len(pool.Names()), cfg.Database.Type)

	s := &Service{
		Config: cfg,
		Pool:   pool,
	}

	if cfg.Metrics.Enabled {
		s.metrics = metrics.StartMetricsServer(cfg.Metrics.ListenAddress)
		log.Infof("[INIT] Metrics server listening on %s", cfg.Metrics.ListenAddress)
	}

	return s, nil
}

func (s *Service) Close() error {
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
	}
	return s.Pool.Close()
}
