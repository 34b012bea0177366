package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/config"
	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/db/memory"
	dbMongo "github.com/cityhealth/directory/internal/db/mongo"
	dbRedis "github.com/cityhealth/directory/internal/db/redis"
	"github.com/cityhealth/directory/internal/db/retry"
	"github.com/cityhealth/directory/internal/db/sqlite"
)

// storeSet holds the backends selected by configuration.
type storeSet struct {
	docs     db.DocumentStore
	indexer  db.Indexer
	kv       db.KVStore
	profiles db.ProfileStore
	closers  []func()
}

// Close releases every backend in reverse opening order.
func (s *storeSet) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeSet, error) {
	st := &storeSet{}
	var mem *memory.Store
	shared := func() *memory.Store {
		if mem == nil {
			mem = memory.NewStore()
		}
		return mem
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case "mongo":
		mongoStore, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:            cfg.Database.URI,
			Database:       cfg.Database.Name,
			MaxPoolSize:    cfg.Database.MaxPoolSize,
			ConnectTimeout: readiness,
		})
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		st.closers = append(st.closers, mongoStore.Close)
		retried := retry.New(mongoStore, retry.Policy{
			Attempts:  cfg.Database.Retry.Attempts,
			BaseDelay: time.Duration(cfg.Database.Retry.BaseDelayMs) * time.Millisecond,
			MaxDelay:  time.Duration(cfg.Database.Retry.MaxDelayMs) * time.Millisecond,
		}, logger)
		if err := retried.WaitForReady(ctx, readiness); err != nil {
			st.Close()
			return nil, fmt.Errorf("mongo not ready: %w", err)
		}
		st.docs, st.indexer = retried, retried
		logger.Info("Connected to MongoDB", zap.String("database", cfg.Database.Name))
	case "memory":
		st.docs, st.indexer = shared(), shared()
		logger.Warn("Using in-memory provider store; data is lost on restart")
	}

	var redisStore *dbRedis.Store
	switch cfg.Cache.Driver {
	case "redis":
		var err error
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		st.closers = append(st.closers, redisStore.Close)
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			st.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		st.kv = redisStore
		logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Cache.Addrs))
	case "memory":
		st.kv = shared()
	}

	switch cfg.Profiles.Driver {
	case "sqlite":
		sqliteStore, err := sqlite.NewStore(cfg.Profiles.DataDir)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		st.closers = append(st.closers, func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Warn("Failed to close profile store", zap.Error(err))
			}
		})
		st.profiles = sqliteStore
		logger.Info("Opened profile store", zap.String("path", sqliteStore.Path()))
	case "redis":
		st.profiles = redisStore
	case "memory":
		st.profiles = shared()
	}

	return st, nil
}
