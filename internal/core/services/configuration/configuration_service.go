package configuration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
	"github.com/lcalzada-xor/biowatch/internal/telemetry"
)

// DefaultCacheTTL bounds how long a configuration read is served from memory.
const DefaultCacheTTL = 30 * time.Second

// ConfigurationService manages per-user scoring configurations over a
// repository, with a read-through cache refreshed on every write.
type ConfigurationService struct {
	repo   ports.ConfigurationRepository
	cache  *cache.Cache
	logger *slog.Logger

	// mu guards generation. A read only fills the cache when no write
	// started or finished while it was reading the repository.
	mu         sync.Mutex
	generation uint64
}

// NewConfigurationService creates the service. A non-positive ttl disables caching.
func NewConfigurationService(repo ports.ConfigurationRepository, ttl time.Duration, logger *slog.Logger) *ConfigurationService {
	if logger == nil {
		logger = slog.Default()
	}
	var c *cache.Cache
	if ttl > 0 {
		// No janitor: expired entries are dropped lazily on Get.
		c = cache.New(ttl, 0)
	}
	return &ConfigurationService{
		repo:   repo,
		cache:  c,
		logger: logger.With("component", "configuration_service"),
	}
}

// Lookup returns the stored configuration for userID, or nil when none
// exists. It never writes.
func (s *ConfigurationService) Lookup(ctx context.Context, userID string) (*domain.ScoringConfiguration, error) {
	userID = normalizeUser(userID)

	if s.cache != nil {
		if v, ok := s.cache.Get(userID); ok {
			cfg := v.(domain.ScoringConfiguration)
			return &cfg, nil
		}
	}

	gen := s.currentGeneration()
	cfg, err := s.repo.GetConfiguration(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	if cfg != nil && s.cache != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.cache.SetDefault(userID, *cfg)
		}
		s.mu.Unlock()
	}
	return cfg, nil
}

// Get returns the configuration for userID, creating it with the defaults
// on first read.
func (s *ConfigurationService) Get(ctx context.Context, userID string) (domain.ScoringConfiguration, error) {
	userID = normalizeUser(userID)

	cfg, err := s.Lookup(ctx, userID)
	if err != nil {
		return domain.ScoringConfiguration{}, err
	}
	if cfg != nil {
		return *cfg, nil
	}

	created, err := s.save(ctx, domain.DefaultScoringConfiguration(userID))
	if err != nil {
		return domain.ScoringConfiguration{}, err
	}
	s.logger.Info("Created default scoring configuration", "user_id", userID)
	return *created, nil
}

// Update validates cfg and stores it as the configuration of userID.
// A rejected configuration leaves the stored one untouched.
func (s *ConfigurationService) Update(ctx context.Context, userID string, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error) {
	cfg.UserID = normalizeUser(userID)

	if err := cfg.Validate(); err != nil {
		telemetry.ConfigurationUpdates.WithLabelValues("rejected").Inc()
		s.logger.Warn("Rejected scoring configuration", "user_id", cfg.UserID, "reason", err.Error())
		return nil, err
	}

	saved, err := s.save(ctx, cfg)
	if err != nil {
		telemetry.ConfigurationUpdates.WithLabelValues("error").Inc()
		return nil, err
	}
	telemetry.ConfigurationUpdates.WithLabelValues("accepted").Inc()
	s.logger.Info("Scoring configuration updated", "user_id", saved.UserID, "fingerprint", saved.Fingerprint())
	return saved, nil
}

// Reset restores the defaults for userID.
func (s *ConfigurationService) Reset(ctx context.Context, userID string) (*domain.ScoringConfiguration, error) {
	saved, err := s.save(ctx, domain.DefaultScoringConfiguration(normalizeUser(userID)))
	if err != nil {
		telemetry.ConfigurationUpdates.WithLabelValues("error").Inc()
		return nil, err
	}
	telemetry.ConfigurationUpdates.WithLabelValues("reset").Inc()
	s.logger.Info("Scoring configuration reset to defaults", "user_id", saved.UserID)
	return saved, nil
}

func (s *ConfigurationService) save(ctx context.Context, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error) {
	cfg.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	saved, err := s.repo.UpsertConfiguration(ctx, cfg)

	s.mu.Lock()
	s.generation++
	if s.cache != nil {
		if err != nil || saved == nil {
			s.cache.Delete(cfg.UserID)
		} else {
			s.cache.SetDefault(cfg.UserID, *saved)
		}
	}
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("save configuration: %w", err)
	}
	return saved, nil
}

func (s *ConfigurationService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func normalizeUser(userID string) string {
	if userID == "" {
		return domain.DefaultUserID
	}
	return userID
}
