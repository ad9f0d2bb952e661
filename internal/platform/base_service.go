// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"context"
	"fmt"
	"time"

	collectionrepo "github.com/drapcode/exchange-engine/collection/repository"
	"github.com/drapcode/exchange-engine/internal/cache"
	"github.com/drapcode/exchange-engine/internal/database/interfaces"
	"github.com/drapcode/exchange-engine/internal/database/mongodb"
	"github.com/drapcode/exchange-engine/internal/database/postgres"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	platformconfig "github.com/drapcode/exchange-engine/internal/platform/config"
	"github.com/drapcode/exchange-engine/internal/platform/email"
	"github.com/drapcode/exchange-engine/internal/platform/sms"
)

// BaseService bundles the shared connections every feature service is built on.
type BaseService struct {
	Mongo       *mongodb.Pool
	Builder     *postgres.Client
	Cache       *cache.GenericCacheService
	Collections collectionrepo.Repository
	Email       email.Sender
	SMS         sms.Sender

	maxRetries int
}

// NewBaseService connects to the item and builder databases, sets up the
// metadata cache and the optional message senders.
func NewBaseService(ctx context.Context, cfg *platformconfig.Config) (*BaseService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("platform configuration is required")
	}
	s := &BaseService{maxRetries: 3}

	err := s.ExecuteWithRetry(ctx, func() error {
		pool, err := mongodb.NewPool(ctx, MongoConfig(cfg))
		if err != nil {
			return err
		}
		s.Mongo = pool
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect item database: %w", err)
	}

	err = s.ExecuteWithRetry(ctx, func() error {
		client, err := postgres.NewClient(ctx, PostgresConfig(cfg))
		if err != nil {
			return err
		}
		s.Builder = client
		return nil
	})
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to connect builder database: %w", err)
	}

	cacheConfig := CacheConfig(cfg)
	if cacheConfig.Enabled {
		backend, err := cache.NewCache(cacheConfig)
		if err != nil {
			log.Warn("cache backend %s unavailable, continuing without cache: %v", cacheConfig.Backend, err)
		} else {
			s.Cache = cache.NewGenericCacheService(backend, cacheConfig)
		}
	}

	next := collectionrepo.NewPostgresRepositoryWithSchema(s.Builder, cfg.Builder.Schema)
	s.Collections = collectionrepo.NewCachedRepository(next, s.Cache)

	s.Email, s.SMS = newSenders(cfg)
	return s, nil
}

func newSenders(cfg *platformconfig.Config) (email.Sender, sms.Sender) {
	var emailSender email.Sender
	if cfg.Email.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPEmail)
		if err != nil {
			log.Warn("failed to initialize SMTP sender: %v", err)
		} else {
			emailSender = sender
		}
	}

	var smsSender sms.Sender
	if cfg.SMS.AuthID != "" {
		sender, err := sms.NewPlivoSender(cfg.SMS.AuthID, cfg.SMS.AuthToken, cfg.SMS.SourceNumber)
		if err != nil {
			log.Warn("failed to initialize SMS sender: %v", err)
		} else {
			smsSender = sender
		}
	}
	return emailSender, smsSender
}

// MongoConfig maps the process configuration onto the driver settings.
func MongoConfig(cfg *platformconfig.Config) *interfaces.MongoDBConfig {
	return &interfaces.MongoDBConfig{
		Host:                   cfg.Mongo.Host,
		Port:                   cfg.Mongo.Port,
		Username:               cfg.Mongo.Username,
		Password:               cfg.Mongo.Password,
		AuthDatabase:           cfg.Mongo.AuthDatabase,
		ReplicaSet:             cfg.Mongo.ReplicaSet,
		ConnectTimeout:         seconds(cfg.Mongo.ConnectTimeout),
		SocketTimeout:          seconds(cfg.Mongo.SocketTimeout),
		MaxPoolSize:            uint64(cfg.Mongo.MaxPoolSize),
		MinPoolSize:            uint64(cfg.Mongo.MinPoolSize),
		ServerSelectionTimeout: seconds(cfg.Mongo.ServerSelectionTimeout),
		DatabasePrefix:         cfg.Mongo.DatabasePrefix,
	}
}

// PostgresConfig maps the builder database settings.
func PostgresConfig(cfg *platformconfig.Config) *interfaces.PostgreSQLConfig {
	return &interfaces.PostgreSQLConfig{
		Host:            cfg.Builder.Host,
		Port:            cfg.Builder.Port,
		Username:        cfg.Builder.Username,
		Password:        cfg.Builder.Password,
		Database:        cfg.Builder.Database,
		SSLMode:         cfg.Builder.SSLMode,
		Schema:          cfg.Builder.Schema,
		MaxOpenConns:    cfg.Builder.MaxOpenConns,
		MaxIdleConns:    cfg.Builder.MaxIdleConns,
		ConnMaxLifetime: cfg.Builder.ConnMaxLifetime,
		ConnectTimeout:  10 * time.Second,
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// CacheConfig maps the cache settings.
func CacheConfig(cfg *platformconfig.Config) *cache.CacheConfig {
	return &cache.CacheConfig{
		Enabled:         cfg.Cache.Enabled,
		TTL:             cfg.Cache.TTL,
		Prefix:          cfg.Cache.Prefix,
		Backend:         cache.CacheType(cfg.Cache.Backend),
		CleanupInterval: time.Minute,
		Redis: cache.RedisConfig{
			Address:      cfg.Cache.Redis.Address,
			Password:     cfg.Cache.Redis.Password,
			Database:     cfg.Cache.Redis.Database,
			PoolSize:     cfg.Cache.Redis.PoolSize,
			MinIdleConns: cfg.Cache.Redis.MinIdleConns,
			MaxConnAge:   cfg.Cache.Redis.MaxConnAge,
		},
	}
}

// ExecuteWithRetry executes fn until it succeeds or the retries run out,
// backing off between attempts.
func (s *BaseService) ExecuteWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := 200 * time.Millisecond

	for i := 0; i <= s.maxRetries; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == s.maxRetries {
			break
		}
		log.Warn("attempt %d failed: %v", i+1, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("operation failed after %d retries: %w", s.maxRetries, lastErr)
}

// HealthCheck pings both databases.
func (s *BaseService) HealthCheck(ctx context.Context) error {
	if s.Mongo != nil {
		if err := s.Mongo.Ping(ctx); err != nil {
			return fmt.Errorf("item database: %w", err)
		}
	}
	if s.Builder != nil {
		if err := s.Builder.Ping(ctx); err != nil {
			return fmt.Errorf("builder database: %w", err)
		}
	}
	return nil
}

// Health is the body of the health endpoint.
type Health struct {
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Cache  *cache.Stats `json:"cache,omitempty"`
}

// Health runs HealthCheck and attaches the collection cache counters when a
// cache is configured.
func (s *BaseService) Health(ctx context.Context) Health {
	h := Health{Status: "ok"}
	if err := s.HealthCheck(ctx); err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
	}
	if s.Cache != nil {
		stats := s.Cache.GetStats()
		h.Cache = &stats
	}
	return h
}

// Close releases every connection the bundle owns.
func (s *BaseService) Close(ctx context.Context) {
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			log.Warn("cache close: %v", err)
		}
	}
	if s.Builder != nil {
		if err := s.Builder.Close(); err != nil {
			log.Warn("builder database close: %v", err)
		}
	}
	if s.Mongo != nil {
		if err := s.Mongo.Close(ctx); err != nil {
			log.Warn("item database close: %v", err)
		}
	}
}
