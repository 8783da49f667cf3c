package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type trustedRepoRecord struct {
	bun.BaseModel `bun:"table:watch_trusted_repos,alias:wtr"`

	ID        string    `bun:"id,pk"`
	Repo      string    `bun:"repo,notnull"`
	Enabled   bool      `bun:"enabled,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type subscriptionRecord struct {
	bun.BaseModel `bun:"table:watch_subscriptions,alias:ws"`

	ID        string    `bun:"id,pk"`
	Platform  string    `bun:"platform,notnull"`
	ChannelID string    `bun:"channel_id,notnull"`
	GuildID   string    `bun:"guild_id"`
	UserID    string    `bun:"user_id"`
	Repo      string    `bun:"repo,notnull"`
	Events    []string  `bun:"events,type:jsonb,notnull"`
	Enabled   bool      `bun:"enabled,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type deliveryRecord struct {
	bun.BaseModel `bun:"table:watch_deliveries,alias:wd"`

	ID         string    `bun:"id,pk"`
	DeliveryID string    `bun:"delivery_id,notnull"`
	Repo       string    `bun:"repo,notnull"`
	EventName  string    `bun:"event_name,notnull"`
	ReceivedAt time.Time `bun:"received_at,nullzero,notnull,default:current_timestamp"`
}
