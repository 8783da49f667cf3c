package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repowatch/core"
)

const (
	trustCacheKeyPrefix  = "go-repowatch::trusted_repo::v1"
	trustCacheListingKey = "go-repowatch::trusted_repo_list::v1"
)

// CachedTrustStore fronts a TrustStore with a read-through cache. Trust
// lookups sit on the hot path of every inbound webhook, while mutations are
// rare operator actions, so the cache is invalidated on write.
type CachedTrustStore struct {
	base  core.TrustStore
	cache repositorycache.CacheService
}

func NewCachedTrustStore(base core.TrustStore, cacheService repositorycache.CacheService) (*CachedTrustStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base trust store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: trust cache service is required")
	}
	return &CachedTrustStore{base: base, cache: cacheService}, nil
}

// TrustCacheKey returns the deterministic cache key for a single trusted
// repository entry: go-repowatch::trusted_repo::v1::<repo> with the repo
// segment URL-path escaped after normalization.
func TrustCacheKey(repo string) (string, error) {
	repo = core.NormalizeRepo(repo)
	if repo == "" {
		return "", fmt.Errorf("sqlstore: repository is required")
	}
	return strings.Join([]string{trustCacheKeyPrefix, url.PathEscape(repo)}, "::"), nil
}

func (s *CachedTrustStore) Trust(ctx context.Context, repo string) (core.TrustedRepo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: cached trust store is not configured")
	}
	entry, err := s.base.Trust(ctx, repo)
	if err != nil {
		return core.TrustedRepo{}, err
	}
	if err := s.invalidate(ctx, entry.Repo); err != nil {
		return core.TrustedRepo{}, err
	}
	return entry, nil
}

func (s *CachedTrustStore) SetEnabled(ctx context.Context, repo string, enabled bool) (core.TrustedRepo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: cached trust store is not configured")
	}
	entry, err := s.base.SetEnabled(ctx, repo, enabled)
	if err != nil {
		return core.TrustedRepo{}, err
	}
	if err := s.invalidate(ctx, entry.Repo); err != nil {
		return core.TrustedRepo{}, err
	}
	return entry, nil
}

func (s *CachedTrustStore) Untrust(ctx context.Context, repo string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached trust store is not configured")
	}
	if err := s.base.Untrust(ctx, repo); err != nil {
		return err
	}
	return s.invalidate(ctx, repo)
}

func (s *CachedTrustStore) Get(ctx context.Context, repo string) (core.TrustedRepo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: cached trust store is not configured")
	}
	cacheKey, err := TrustCacheKey(repo)
	if err != nil {
		return core.TrustedRepo{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.TrustedRepo, error) {
		return s.base.Get(ctx, repo)
	})
}

func (s *CachedTrustStore) List(ctx context.Context) ([]core.TrustedRepo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached trust store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, trustCacheListingKey, func(ctx context.Context) ([]core.TrustedRepo, error) {
		return s.base.List(ctx)
	})
}

func (s *CachedTrustStore) invalidate(ctx context.Context, repo string) error {
	cacheKey, err := TrustCacheKey(repo)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, trustCacheListingKey)
}
