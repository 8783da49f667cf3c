package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

const (
	TypeGetTrustedRepo        = "repowatch.query.trust.get"
	TypeListTrustedRepos      = "repowatch.query.trust.list"
	TypeGetSubscription       = "repowatch.query.subscription.get"
	TypeListSubscriptions     = "repowatch.query.subscription.list"
	TypeListRepoSubscriptions = "repowatch.query.subscription.list_by_repo"
	TypeIsDelivered           = "repowatch.query.ledger.is_delivered"
)

type GetTrustedRepoMessage struct {
	Repo string
}

func (GetTrustedRepoMessage) Type() string { return TypeGetTrustedRepo }

func (m GetTrustedRepoMessage) Validate() error {
	if strings.TrimSpace(m.Repo) == "" {
		return fmt.Errorf("query: repository is required")
	}
	return nil
}

type ListTrustedReposMessage struct{}

func (ListTrustedReposMessage) Type() string { return TypeListTrustedRepos }

func (ListTrustedReposMessage) Validate() error { return nil }

type GetSubscriptionMessage struct {
	SubscriptionID string
}

func (GetSubscriptionMessage) Type() string { return TypeGetSubscription }

func (m GetSubscriptionMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("query: subscription id is required")
	}
	return nil
}

type ListSubscriptionsMessage struct {
	Platform  string
	ChannelID string
}

func (ListSubscriptionsMessage) Type() string { return TypeListSubscriptions }

func (m ListSubscriptionsMessage) Validate() error {
	if strings.TrimSpace(m.Platform) == "" {
		return fmt.Errorf("query: platform is required")
	}
	if strings.TrimSpace(m.ChannelID) == "" {
		return fmt.Errorf("query: channel id is required")
	}
	return nil
}

type ListRepoSubscriptionsMessage struct {
	Repo string
}

func (ListRepoSubscriptionsMessage) Type() string { return TypeListRepoSubscriptions }

func (m ListRepoSubscriptionsMessage) Validate() error {
	if core.NormalizeRepo(m.Repo) == "" {
		return fmt.Errorf("query: repository is required")
	}
	return nil
}

type IsDeliveredMessage struct {
	DeliveryID string
}

func (IsDeliveredMessage) Type() string { return TypeIsDelivered }

func (m IsDeliveredMessage) Validate() error {
	if strings.TrimSpace(m.DeliveryID) == "" {
		return fmt.Errorf("query: delivery id is required")
	}
	return nil
}
