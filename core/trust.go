package core

import (
	"context"
	"fmt"
)

// TrustFilter answers whether events from a repository are admitted. A
// repository is trusted iff an entry exists for the exact repo string and its
// enabled flag is set; absence and disabled state both read as untrusted.
type TrustFilter struct {
	store TrustStore
}

func NewTrustFilter(store TrustStore) (*TrustFilter, error) {
	if store == nil {
		return nil, fmt.Errorf("core: trust store is required")
	}
	return &TrustFilter{store: store}, nil
}

func (f *TrustFilter) IsTrusted(ctx context.Context, repo string) (bool, error) {
	if f == nil || f.store == nil {
		return false, fmt.Errorf("core: trust filter is not configured")
	}
	repo = NormalizeRepo(repo)
	if repo == "" {
		return false, nil
	}
	entry, err := f.store.Get(ctx, repo)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return entry.Enabled, nil
}
