package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repowatch/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SubscriptionStore struct {
	db   *bun.DB
	repo repository.Repository[*subscriptionRecord]
}

func NewSubscriptionStore(db *bun.DB) (*SubscriptionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*subscriptionRecord](db, subscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscription repository wiring: %w", err)
		}
	}
	return &SubscriptionStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *SubscriptionStore) Create(ctx context.Context, in core.CreateSubscriptionInput) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	platform := strings.TrimSpace(strings.ToLower(in.Platform))
	channelID := strings.TrimSpace(in.ChannelID)
	repo := core.NormalizeRepo(in.Repo)
	if platform == "" || channelID == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: platform and channel id are required")
	}
	if repo == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: repository is required")
	}

	now := time.Now().UTC()
	var out core.Subscription
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.findBySessionTx(ctx, tx, platform, channelID, repo)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing.toDomain()
			return nil
		}
		record := &subscriptionRecord{
			ID:        uuid.NewString(),
			Platform:  platform,
			ChannelID: channelID,
			GuildID:   strings.TrimSpace(in.GuildID),
			UserID:    strings.TrimSpace(in.UserID),
			Repo:      repo,
			Events:    kindsToStrings(in.Events),
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return s.GetBySession(ctx, platform, channelID, repo)
		}
		return core.Subscription{}, err
	}
	return out, nil
}

func (s *SubscriptionStore) Get(ctx context.Context, id string) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	record := &subscriptionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Subscription{}, core.NotFoundError(fmt.Sprintf("sqlstore: subscription %q not found", id))
		}
		return core.Subscription{}, err
	}
	return record.toDomain(), nil
}

func (s *SubscriptionStore) GetBySession(
	ctx context.Context,
	platform string,
	channelID string,
	repo string,
) (core.Subscription, error) {
	if s == nil || s.repo == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	platform = strings.TrimSpace(strings.ToLower(platform))
	channelID = strings.TrimSpace(channelID)
	repo = core.NormalizeRepo(repo)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("platform", "=", platform),
		repository.SelectBy("channel_id", "=", channelID),
		repository.SelectBy("repo", "=", repo),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Subscription{}, err
	}
	if len(records) == 0 {
		return core.Subscription{}, core.NotFoundError(fmt.Sprintf(
			"sqlstore: subscription not found for %s:%s on %q", platform, channelID, repo,
		))
	}
	return records[0].toDomain(), nil
}

func (s *SubscriptionStore) SetEnabled(ctx context.Context, id string, enabled bool) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	result, err := s.db.NewUpdate().
		Model((*subscriptionRecord)(nil)).
		Set("enabled = ?", enabled).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.Subscription{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.Subscription{}, core.NotFoundError(fmt.Sprintf("sqlstore: subscription %q not found", id))
	}
	return s.Get(ctx, id)
}

func (s *SubscriptionStore) SetEvents(ctx context.Context, id string, events []core.EventKind) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	record, err := s.fetchRecord(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	record.Events = kindsToStrings(events)
	record.UpdatedAt = time.Now().UTC()
	if _, err := s.db.NewUpdate().
		Model(record).
		Column("events", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return core.Subscription{}, err
	}
	return record.toDomain(), nil
}

func (s *SubscriptionStore) Remove(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	result, err := s.db.NewDelete().
		Model((*subscriptionRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.NotFoundError(fmt.Sprintf("sqlstore: subscription %q not found", id))
	}
	return nil
}

func (s *SubscriptionStore) ListByRepo(ctx context.Context, repo string) ([]core.Subscription, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	repo = core.NormalizeRepo(repo)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("repo", "=", repo),
		repository.OrderBy("platform ASC"),
		repository.OrderBy("channel_id ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SubscriptionStore) ListByChannel(
	ctx context.Context,
	platform string,
	channelID string,
) ([]core.Subscription, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	platform = strings.TrimSpace(strings.ToLower(platform))
	channelID = strings.TrimSpace(channelID)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("platform", "=", platform),
		repository.SelectBy("channel_id", "=", channelID),
		repository.OrderBy("repo ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SubscriptionStore) fetchRecord(ctx context.Context, id string) (*subscriptionRecord, error) {
	record := &subscriptionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundError(fmt.Sprintf("sqlstore: subscription %q not found", id))
		}
		return nil, err
	}
	return record, nil
}

func (s *SubscriptionStore) findBySessionTx(
	ctx context.Context,
	tx bun.Tx,
	platform string,
	channelID string,
	repo string,
) (*subscriptionRecord, error) {
	record := &subscriptionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.platform = ?", platform).
		Where("?TableAlias.channel_id = ?", channelID).
		Where("?TableAlias.repo = ?", repo).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
