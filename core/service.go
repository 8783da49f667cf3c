package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the administrative surface over the trust list and the
// subscription set. The webhook pipeline only reads the records this service
// manages; it never mutates them.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	deliveryStore     DeliveryStore
	trustStore        TrustStore
	subscriptionStore SubscriptionStore
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	DeliveryStore     DeliveryStore
	TrustStore        TrustStore
	SubscriptionStore SubscriptionStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("repowatch", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("repowatch"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = serviceErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if needsStores(builder) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			provider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			adoptStores(&builder, provider)
		} else if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			adoptStores(&builder, provider)
		}
	}
	if needsStores(builder) {
		adoptStores(&builder, NewMemoryStoreProvider())
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		deliveryStore:     builder.deliveryStore,
		trustStore:        builder.trustStore,
		subscriptionStore: builder.subscriptionStore,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func needsStores(builder serviceBuilder) bool {
	return builder.deliveryStore == nil || builder.trustStore == nil || builder.subscriptionStore == nil
}

func adoptStores(builder *serviceBuilder, provider StoreProvider) {
	if provider == nil {
		return
	}
	if builder.deliveryStore == nil {
		builder.deliveryStore = provider.DeliveryStore()
	}
	if builder.trustStore == nil {
		builder.trustStore = provider.TrustStore()
	}
	if builder.subscriptionStore == nil {
		builder.subscriptionStore = provider.SubscriptionStore()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		DeliveryStore:     s.deliveryStore,
		TrustStore:        s.trustStore,
		SubscriptionStore: s.subscriptionStore,
	}
}

func (s *Service) DeliveryStore() DeliveryStore {
	if s == nil {
		return nil
	}
	return s.deliveryStore
}

func (s *Service) TrustStore() TrustStore {
	if s == nil {
		return nil
	}
	return s.trustStore
}

func (s *Service) SubscriptionStore() SubscriptionStore {
	if s == nil {
		return nil
	}
	return s.subscriptionStore
}

func (s *Service) TrustRepo(ctx context.Context, repo string) (TrustedRepo, error) {
	startedAt := time.Now()
	entry, err := s.trustRepo(ctx, repo)
	s.observeOperation(ctx, startedAt, "trust.add", err, map[string]any{"repo": repo})
	return entry, err
}

func (s *Service) trustRepo(ctx context.Context, repo string) (TrustedRepo, error) {
	if s == nil || s.trustStore == nil {
		return TrustedRepo{}, fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	if err := validateRepo(repo); err != nil {
		return TrustedRepo{}, s.mapError(err)
	}
	entry, err := s.trustStore.Trust(ctx, repo)
	if err != nil {
		return TrustedRepo{}, s.mapError(err)
	}
	return entry, nil
}

func (s *Service) SetTrustEnabled(ctx context.Context, repo string, enabled bool) (TrustedRepo, error) {
	startedAt := time.Now()
	entry, err := s.setTrustEnabled(ctx, repo, enabled)
	s.observeOperation(ctx, startedAt, "trust.set_enabled", err, map[string]any{
		"repo":    repo,
		"enabled": enabled,
	})
	return entry, err
}

func (s *Service) setTrustEnabled(ctx context.Context, repo string, enabled bool) (TrustedRepo, error) {
	if s == nil || s.trustStore == nil {
		return TrustedRepo{}, fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	if err := validateRepo(repo); err != nil {
		return TrustedRepo{}, s.mapError(err)
	}
	entry, err := s.trustStore.SetEnabled(ctx, repo, enabled)
	if err != nil {
		return TrustedRepo{}, s.mapError(err)
	}
	return entry, nil
}

func (s *Service) UntrustRepo(ctx context.Context, repo string) error {
	startedAt := time.Now()
	err := s.untrustRepo(ctx, repo)
	s.observeOperation(ctx, startedAt, "trust.remove", err, map[string]any{"repo": repo})
	return err
}

func (s *Service) untrustRepo(ctx context.Context, repo string) error {
	if s == nil || s.trustStore == nil {
		return fmt.Errorf("core: trust store is not configured")
	}
	repo = NormalizeRepo(repo)
	if err := validateRepo(repo); err != nil {
		return s.mapError(err)
	}
	if err := s.trustStore.Untrust(ctx, repo); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) ListTrustedRepos(ctx context.Context) ([]TrustedRepo, error) {
	if s == nil || s.trustStore == nil {
		return nil, fmt.Errorf("core: trust store is not configured")
	}
	entries, err := s.trustStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return entries, nil
}

type SubscribeRequest struct {
	Platform  string
	ChannelID string
	GuildID   string
	UserID    string
	Repo      string
	Events    []EventKind
}

type UnsubscribeRequest struct {
	Platform  string
	ChannelID string
	Repo      string
}

// Subscribe creates the (session, repository) subscription, defaulting to
// every event kind when none are named. Re-subscribing returns the existing
// record unchanged.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (Subscription, error) {
	startedAt := time.Now()
	sub, err := s.subscribe(ctx, req)
	s.observeOperation(ctx, startedAt, "subscription.subscribe", err, map[string]any{
		"platform":   req.Platform,
		"channel_id": req.ChannelID,
		"repo":       req.Repo,
	})
	return sub, err
}

func (s *Service) subscribe(ctx context.Context, req SubscribeRequest) (Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	if strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.ChannelID) == "" {
		return Subscription{}, s.mapError(fmt.Errorf("core: platform and channel id are required"))
	}
	repo := NormalizeRepo(req.Repo)
	if err := validateRepo(repo); err != nil {
		return Subscription{}, s.mapError(err)
	}
	events := req.Events
	if len(events) == 0 {
		events = EventKinds()
	}
	sub, err := s.subscriptionStore.Create(ctx, CreateSubscriptionInput{
		Platform:  req.Platform,
		ChannelID: req.ChannelID,
		GuildID:   req.GuildID,
		UserID:    req.UserID,
		Repo:      repo,
		Events:    events,
	})
	if err != nil {
		return Subscription{}, s.mapError(err)
	}
	return sub, nil
}

func (s *Service) SetSubscriptionEvents(ctx context.Context, id string, events []EventKind) (Subscription, error) {
	startedAt := time.Now()
	sub, err := s.setSubscriptionEvents(ctx, id, events)
	s.observeOperation(ctx, startedAt, "subscription.set_events", err, map[string]any{
		"subscription_id": id,
	})
	return sub, err
}

func (s *Service) setSubscriptionEvents(ctx context.Context, id string, events []EventKind) (Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Subscription{}, s.mapError(fmt.Errorf("core: subscription id is required"))
	}
	if len(events) == 0 {
		return Subscription{}, s.mapError(fmt.Errorf("core: at least one event kind is required"))
	}
	for _, kind := range events {
		if _, ok := ParseEventKind(string(kind)); !ok {
			return Subscription{}, s.mapError(fmt.Errorf("core: unknown event kind %q", kind))
		}
	}
	sub, err := s.subscriptionStore.SetEvents(ctx, id, events)
	if err != nil {
		return Subscription{}, s.mapError(err)
	}
	return sub, nil
}

func (s *Service) SetSubscriptionEnabled(ctx context.Context, id string, enabled bool) (Subscription, error) {
	startedAt := time.Now()
	sub, err := s.setSubscriptionEnabled(ctx, id, enabled)
	s.observeOperation(ctx, startedAt, "subscription.set_enabled", err, map[string]any{
		"subscription_id": id,
		"enabled":         enabled,
	})
	return sub, err
}

func (s *Service) setSubscriptionEnabled(ctx context.Context, id string, enabled bool) (Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return Subscription{}, fmt.Errorf("core: subscription store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Subscription{}, s.mapError(fmt.Errorf("core: subscription id is required"))
	}
	sub, err := s.subscriptionStore.SetEnabled(ctx, id, enabled)
	if err != nil {
		return Subscription{}, s.mapError(err)
	}
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, req UnsubscribeRequest) error {
	startedAt := time.Now()
	err := s.unsubscribe(ctx, req)
	s.observeOperation(ctx, startedAt, "subscription.unsubscribe", err, map[string]any{
		"platform":   req.Platform,
		"channel_id": req.ChannelID,
		"repo":       req.Repo,
	})
	return err
}

func (s *Service) unsubscribe(ctx context.Context, req UnsubscribeRequest) error {
	if s == nil || s.subscriptionStore == nil {
		return fmt.Errorf("core: subscription store is not configured")
	}
	if strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.ChannelID) == "" {
		return s.mapError(fmt.Errorf("core: platform and channel id are required"))
	}
	repo := NormalizeRepo(req.Repo)
	if err := validateRepo(repo); err != nil {
		return s.mapError(err)
	}
	sub, err := s.subscriptionStore.GetBySession(ctx, req.Platform, req.ChannelID, repo)
	if err != nil {
		return s.mapError(err)
	}
	if err := s.subscriptionStore.Remove(ctx, sub.ID); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) ListSubscriptions(ctx context.Context, platform, channelID string) ([]Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return nil, fmt.Errorf("core: subscription store is not configured")
	}
	subs, err := s.subscriptionStore.ListByChannel(ctx, platform, channelID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return subs, nil
}

// CleanupDeliveries prunes ledger records older than the configured
// retention window. A non-positive retention disables cleanup.
func (s *Service) CleanupDeliveries(ctx context.Context) (int, error) {
	startedAt := time.Now()
	pruned, err := s.cleanupDeliveries(ctx)
	s.observeOperation(ctx, startedAt, "ledger.cleanup", err, map[string]any{"pruned": pruned})
	return pruned, err
}

func (s *Service) cleanupDeliveries(ctx context.Context) (int, error) {
	if s == nil || s.deliveryStore == nil {
		return 0, fmt.Errorf("core: delivery store is not configured")
	}
	if !s.config.Ledger.RetentionEnabled() {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.config.Ledger.Retention)
	pruned, err := s.deliveryStore.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, s.mapError(err)
	}
	return pruned, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func validateRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("core: repository is required")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("core: repository %q must use owner/name form", repo)
	}
	return nil
}
