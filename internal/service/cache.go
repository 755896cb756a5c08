// internal/service/cache.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/cache"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"
	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
)

// CacheService stores per-session lookups such as the organization list
type CacheService struct {
	cache *cache.InMemoryCache
}

// CacheConfig holds configuration for the cache service
type CacheConfig struct {
	TTL         time.Duration
	CleanupFreq time.Duration
}

// NewCacheService creates a cache service and starts its cleanup routine
func NewCacheService(ctx context.Context, config CacheConfig) *CacheService {
	c := cache.NewInMemoryCache(config.TTL, config.CleanupFreq)
	c.StartCleanup(ctx)

	return &CacheService{
		cache: c,
	}
}

// Set stores a value under key
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	s.cache.Set(ctx, key, value)
	return nil
}

// Get copies the cached value for key into result
func (s *CacheService) Get(ctx context.Context, key string, result interface{}) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	value, found := s.cache.Get(ctx, key)
	if !found {
		return domain.ErrNotFound
	}

	if raw, ok := value.([]byte); ok {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshaling cached value: %w", err)
		}
		return nil
	}

	if err := assignValue(value, result); err != nil {
		return fmt.Errorf("assigning cached value: %w", err)
	}
	return nil
}

// GetOrSet retrieves a value from cache or fetches and stores it
func (s *CacheService) GetOrSet(ctx context.Context, key string, result interface{}, fetchFunc func() (interface{}, error)) error {
	err := s.Get(ctx, key, result)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("getting from cache: %w", err)
	}

	value, err := fetchFunc()
	if err != nil {
		return fmt.Errorf("fetching value: %w", err)
	}

	if err := s.Set(ctx, key, value); err != nil {
		return fmt.Errorf("storing in cache: %w", err)
	}

	if err := assignValue(value, result); err != nil {
		return fmt.Errorf("assigning fetched value: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (s *CacheService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	s.cache.Delete(ctx, key)
	return nil
}

// Close stops the cleanup routine
func (s *CacheService) Close() {
	s.cache.StopCleanup()
}

// SessionOrganizations loads the organization list once per session and
// serves it from the cache until the entry expires.
func (s *CacheService) SessionOrganizations(ctx context.Context, dir directory.DirectoryIface, sessionID, token string) ([]model.Organization, error) {
	var orgs []model.Organization
	err := s.GetOrSet(ctx, "organizations:"+sessionID, &orgs, func() (interface{}, error) {
		return dir.Organizations(ctx, token, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("loading session organizations: %w", err)
	}
	return orgs, nil
}

// assignValue copies src into dst, going through JSON for non-trivial types
func assignValue(src interface{}, dst interface{}) error {
	if v, ok := dst.(*interface{}); ok {
		*v = src
		return nil
	}
	if v, ok := dst.(*[]model.Organization); ok {
		if orgs, ok := src.([]model.Organization); ok {
			*v = orgs
			return nil
		}
	}

	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("marshaling value: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshaling value: %w", err)
	}
	return nil
}
