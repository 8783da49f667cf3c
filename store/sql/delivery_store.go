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

// DeliveryStore persists the webhook idempotency ledger. A unique index on
// delivery_id keeps concurrent inserts of the same delivery from producing
// duplicate rows.
type DeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryRecord]
}

func NewDeliveryStore(db *bun.DB) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	return &DeliveryStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *DeliveryStore) Record(ctx context.Context, in core.RecordDeliveryInput) (core.DeliveryRecord, error) {
	if s == nil || s.db == nil {
		return core.DeliveryRecord{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	deliveryID := strings.TrimSpace(in.DeliveryID)
	if deliveryID == "" {
		return core.DeliveryRecord{}, fmt.Errorf("sqlstore: delivery id is required")
	}

	record := &deliveryRecord{
		ID:         uuid.NewString(),
		DeliveryID: deliveryID,
		Repo:       core.NormalizeRepo(in.Repo),
		EventName:  strings.TrimSpace(in.EventName),
		ReceivedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return s.get(ctx, deliveryID)
		}
		return core.DeliveryRecord{}, err
	}
	return record.toDomain(), nil
}

func (s *DeliveryStore) IsDelivered(ctx context.Context, deliveryID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return false, fmt.Errorf("sqlstore: delivery id is required")
	}
	exists, err := s.db.NewSelect().
		Model((*deliveryRecord)(nil)).
		Where("?TableAlias.delivery_id = ?", deliveryID).
		Exists(ctx)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *DeliveryStore) Cleanup(ctx context.Context, before time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*deliveryRecord)(nil)).
		Where("received_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *DeliveryStore) get(ctx context.Context, deliveryID string) (core.DeliveryRecord, error) {
	record := &deliveryRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.delivery_id = ?", deliveryID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.DeliveryRecord{}, core.NotFoundError(fmt.Sprintf(
				"sqlstore: delivery %q not found", deliveryID,
			))
		}
		return core.DeliveryRecord{}, err
	}
	return record.toDomain(), nil
}
