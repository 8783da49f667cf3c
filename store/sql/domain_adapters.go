package sqlstore

import (
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

func (r *trustedRepoRecord) toDomain() core.TrustedRepo {
	if r == nil {
		return core.TrustedRepo{}
	}
	return core.TrustedRepo{
		Repo:      r.Repo,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *subscriptionRecord) toDomain() core.Subscription {
	if r == nil {
		return core.Subscription{}
	}
	return core.Subscription{
		ID:        r.ID,
		Platform:  r.Platform,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		UserID:    r.UserID,
		Repo:      r.Repo,
		Events:    kindsFromStrings(r.Events),
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *deliveryRecord) toDomain() core.DeliveryRecord {
	if r == nil {
		return core.DeliveryRecord{}
	}
	return core.DeliveryRecord{
		ID:         r.DeliveryID,
		Repo:       r.Repo,
		EventName:  r.EventName,
		ReceivedAt: r.ReceivedAt,
	}
}

func kindsToStrings(kinds []core.EventKind) []string {
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}
	return out
}

func kindsFromStrings(values []string) []core.EventKind {
	out := make([]core.EventKind, 0, len(values))
	for _, value := range values {
		out = append(out, core.EventKind(value))
	}
	return out
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
