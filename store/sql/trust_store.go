package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repowatch/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type TrustStore struct {
	db   *bun.DB
	repo repository.Repository[*trustedRepoRecord]
}

func NewTrustStore(db *bun.DB) (*TrustStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*trustedRepoRecord](db, trustedRepoHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid trusted repo repository wiring: %w", err)
		}
	}
	return &TrustStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *TrustStore) Trust(ctx context.Context, repo string) (core.TrustedRepo, error) {
	if s == nil || s.db == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: trust store is not configured")
	}
	repo = core.NormalizeRepo(repo)
	if repo == "" {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: repository is required")
	}

	if existing, err := s.Get(ctx, repo); err == nil {
		return existing, nil
	} else if !core.IsNotFound(err) {
		return core.TrustedRepo{}, err
	}

	now := time.Now().UTC()
	record := &trustedRepoRecord{
		ID:        uuid.NewString(),
		Repo:      repo,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return s.Get(ctx, repo)
		}
		return core.TrustedRepo{}, err
	}
	return record.toDomain(), nil
}

func (s *TrustStore) SetEnabled(ctx context.Context, repo string, enabled bool) (core.TrustedRepo, error) {
	if s == nil || s.db == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: trust store is not configured")
	}
	repo = core.NormalizeRepo(repo)
	result, err := s.db.NewUpdate().
		Model((*trustedRepoRecord)(nil)).
		Set("enabled = ?", enabled).
		Set("updated_at = ?", time.Now().UTC()).
		Where("repo = ?", repo).
		Exec(ctx)
	if err != nil {
		return core.TrustedRepo{}, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.TrustedRepo{}, core.NotFoundError(fmt.Sprintf("sqlstore: repository %q is not trusted", repo))
	}
	return s.Get(ctx, repo)
}

func (s *TrustStore) Untrust(ctx context.Context, repo string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: trust store is not configured")
	}
	repo = core.NormalizeRepo(repo)
	result, err := s.db.NewDelete().
		Model((*trustedRepoRecord)(nil)).
		Where("repo = ?", repo).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.NotFoundError(fmt.Sprintf("sqlstore: repository %q is not trusted", repo))
	}
	return nil
}

func (s *TrustStore) Get(ctx context.Context, repo string) (core.TrustedRepo, error) {
	if s == nil || s.db == nil {
		return core.TrustedRepo{}, fmt.Errorf("sqlstore: trust store is not configured")
	}
	repo = core.NormalizeRepo(repo)
	record := &trustedRepoRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.repo = ?", repo).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.TrustedRepo{}, core.NotFoundError(fmt.Sprintf("sqlstore: repository %q is not trusted", repo))
		}
		return core.TrustedRepo{}, err
	}
	return record.toDomain(), nil
}

func (s *TrustStore) List(ctx context.Context) ([]core.TrustedRepo, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: trust store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("repo ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.TrustedRepo, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
