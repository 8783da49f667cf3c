package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryTrustStore is an in-process TrustStore for tests and single-node
// deployments.
type MemoryTrustStore struct {
	mu      sync.Mutex
	entries map[string]TrustedRepo
	Now     func() time.Time
}

func NewMemoryTrustStore() *MemoryTrustStore {
	return &MemoryTrustStore{
		entries: map[string]TrustedRepo{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryTrustStore) Trust(_ context.Context, repo string) (TrustedRepo, error) {
	if s == nil {
		return TrustedRepo{}, fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	if repo == "" {
		return TrustedRepo{}, fmt.Errorf("core: repository is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[repo]; ok {
		return existing, nil
	}
	now := s.now()
	entry := TrustedRepo{
		Repo:      repo,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.entries[repo] = entry
	return entry, nil
}

func (s *MemoryTrustStore) SetEnabled(_ context.Context, repo string, enabled bool) (TrustedRepo, error) {
	if s == nil {
		return TrustedRepo{}, fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[repo]
	if !ok {
		return TrustedRepo{}, NotFoundError(fmt.Sprintf("core: repository %q is not trusted", repo))
	}
	entry.Enabled = enabled
	entry.UpdatedAt = s.now()
	s.entries[repo] = entry
	return entry, nil
}

func (s *MemoryTrustStore) Untrust(_ context.Context, repo string) error {
	if s == nil {
		return fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[repo]; !ok {
		return NotFoundError(fmt.Sprintf("core: repository %q is not trusted", repo))
	}
	delete(s.entries, repo)
	return nil
}

func (s *MemoryTrustStore) Get(_ context.Context, repo string) (TrustedRepo, error) {
	if s == nil {
		return TrustedRepo{}, fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[repo]
	if !ok {
		return TrustedRepo{}, NotFoundError(fmt.Sprintf("core: repository %q is not trusted", repo))
	}
	return entry, nil
}

func (s *MemoryTrustStore) List(_ context.Context) ([]TrustedRepo, error) {
	if s == nil {
		return nil, fmt.Errorf("core: trust store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrustedRepo, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Repo < out[j].Repo })
	return out, nil
}

func (s *MemoryTrustStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// MemorySubscriptionStore is an in-process SubscriptionStore keyed by
// (platform, channel_id, repo).
type MemorySubscriptionStore struct {
	mu      sync.Mutex
	entries map[string]Subscription
	nextID  int
	Now     func() time.Time
}

func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{
		entries: map[string]Subscription{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemorySubscriptionStore) Create(_ context.Context, in CreateSubscriptionInput) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	platform := strings.TrimSpace(strings.ToLower(in.Platform))
	channelID := strings.TrimSpace(in.ChannelID)
	repo := NormalizeRepo(in.Repo)
	if platform == "" || channelID == "" {
		return Subscription{}, fmt.Errorf("core: platform and channel id are required")
	}
	if repo == "" {
		return Subscription{}, fmt.Errorf("core: repository is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.Platform == platform && existing.ChannelID == channelID && existing.Repo == repo {
			return existing, nil
		}
	}
	now := s.now()
	s.nextID++
	sub := Subscription{
		ID:        fmt.Sprintf("sub_%d", s.nextID),
		Platform:  platform,
		ChannelID: channelID,
		GuildID:   strings.TrimSpace(in.GuildID),
		UserID:    strings.TrimSpace(in.UserID),
		Repo:      repo,
		Events:    sortedKinds(in.Events),
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.entries[sub.ID] = sub
	return sub, nil
}

func (s *MemorySubscriptionStore) Get(_ context.Context, id string) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.entries[strings.TrimSpace(id)]
	if !ok {
		return Subscription{}, NotFoundError(fmt.Sprintf("core: subscription %q not found", id))
	}
	return sub, nil
}

func (s *MemorySubscriptionStore) GetBySession(
	_ context.Context,
	platform string,
	channelID string,
	repo string,
) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	platform = strings.TrimSpace(strings.ToLower(platform))
	channelID = strings.TrimSpace(channelID)
	repo = NormalizeRepo(repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.entries {
		if sub.Platform == platform && sub.ChannelID == channelID && sub.Repo == repo {
			return sub, nil
		}
	}
	return Subscription{}, NotFoundError(fmt.Sprintf(
		"core: subscription not found for %s:%s on %q", platform, channelID, repo,
	))
}

func (s *MemorySubscriptionStore) SetEnabled(_ context.Context, id string, enabled bool) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.entries[strings.TrimSpace(id)]
	if !ok {
		return Subscription{}, NotFoundError(fmt.Sprintf("core: subscription %q not found", id))
	}
	sub.Enabled = enabled
	sub.UpdatedAt = s.now()
	s.entries[sub.ID] = sub
	return sub, nil
}

func (s *MemorySubscriptionStore) SetEvents(_ context.Context, id string, events []EventKind) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.entries[strings.TrimSpace(id)]
	if !ok {
		return Subscription{}, NotFoundError(fmt.Sprintf("core: subscription %q not found", id))
	}
	sub.Events = sortedKinds(events)
	sub.UpdatedAt = s.now()
	s.entries[sub.ID] = sub
	return sub, nil
}

func (s *MemorySubscriptionStore) Remove(_ context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("core: subscription store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[strings.TrimSpace(id)]; !ok {
		return NotFoundError(fmt.Sprintf("core: subscription %q not found", id))
	}
	delete(s.entries, strings.TrimSpace(id))
	return nil
}

func (s *MemorySubscriptionStore) ListByRepo(_ context.Context, repo string) ([]Subscription, error) {
	if s == nil {
		return nil, fmt.Errorf("core: subscription store is not configured")
	}
	repo = NormalizeRepo(repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Subscription, 0)
	for _, sub := range s.entries {
		if sub.Repo == repo {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *MemorySubscriptionStore) ListByChannel(
	_ context.Context,
	platform string,
	channelID string,
) ([]Subscription, error) {
	if s == nil {
		return nil, fmt.Errorf("core: subscription store is not configured")
	}
	platform = strings.TrimSpace(strings.ToLower(platform))
	channelID = strings.TrimSpace(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Subscription, 0)
	for _, sub := range s.entries {
		if sub.Platform == platform && sub.ChannelID == channelID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Repo < out[j].Repo })
	return out, nil
}

func (s *MemorySubscriptionStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// MemoryStoreProvider bundles the in-process stores behind StoreProvider.
type MemoryStoreProvider struct {
	Deliveries    *MemoryDeliveryLedger
	Trusted       *MemoryTrustStore
	Subscriptions *MemorySubscriptionStore
}

func NewMemoryStoreProvider() *MemoryStoreProvider {
	return &MemoryStoreProvider{
		Deliveries:    NewMemoryDeliveryLedger(),
		Trusted:       NewMemoryTrustStore(),
		Subscriptions: NewMemorySubscriptionStore(),
	}
}

func (p *MemoryStoreProvider) DeliveryStore() DeliveryStore {
	if p == nil {
		return nil
	}
	return p.Deliveries
}

func (p *MemoryStoreProvider) TrustStore() TrustStore {
	if p == nil {
		return nil
	}
	return p.Trusted
}

func (p *MemoryStoreProvider) SubscriptionStore() SubscriptionStore {
	if p == nil {
		return nil
	}
	return p.Subscriptions
}
