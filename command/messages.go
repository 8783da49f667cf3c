package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

const (
	TypeTrustRepo             = "repowatch.command.trust.add"
	TypeSetTrustEnabled       = "repowatch.command.trust.set_enabled"
	TypeUntrustRepo           = "repowatch.command.trust.remove"
	TypeSubscribe             = "repowatch.command.subscription.subscribe"
	TypeSetSubscriptionEvents = "repowatch.command.subscription.set_events"
	TypeSetSubscriptionState  = "repowatch.command.subscription.set_enabled"
	TypeUnsubscribe           = "repowatch.command.subscription.unsubscribe"
	TypeCleanupDeliveries     = "repowatch.command.ledger.cleanup"
)

type TrustRepoMessage struct {
	Repo string
}

func (TrustRepoMessage) Type() string { return TypeTrustRepo }

func (m TrustRepoMessage) Validate() error {
	return validateRepoField(m.Repo)
}

type SetTrustEnabledMessage struct {
	Repo    string
	Enabled bool
}

func (SetTrustEnabledMessage) Type() string { return TypeSetTrustEnabled }

func (m SetTrustEnabledMessage) Validate() error {
	return validateRepoField(m.Repo)
}

type UntrustRepoMessage struct {
	Repo string
}

func (UntrustRepoMessage) Type() string { return TypeUntrustRepo }

func (m UntrustRepoMessage) Validate() error {
	return validateRepoField(m.Repo)
}

type SubscribeMessage struct {
	Request core.SubscribeRequest
}

func (SubscribeMessage) Type() string { return TypeSubscribe }

func (m SubscribeMessage) Validate() error {
	if strings.TrimSpace(m.Request.Platform) == "" {
		return fmt.Errorf("command: platform is required")
	}
	if strings.TrimSpace(m.Request.ChannelID) == "" {
		return fmt.Errorf("command: channel id is required")
	}
	return validateRepoField(m.Request.Repo)
}

type SetSubscriptionEventsMessage struct {
	SubscriptionID string
	Events         []core.EventKind
}

func (SetSubscriptionEventsMessage) Type() string { return TypeSetSubscriptionEvents }

func (m SetSubscriptionEventsMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("command: subscription id is required")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("command: at least one event kind is required")
	}
	for _, kind := range m.Events {
		if _, ok := core.ParseEventKind(string(kind)); !ok {
			return fmt.Errorf("command: unknown event kind %q", kind)
		}
	}
	return nil
}

type SetSubscriptionEnabledMessage struct {
	SubscriptionID string
	Enabled        bool
}

func (SetSubscriptionEnabledMessage) Type() string { return TypeSetSubscriptionState }

func (m SetSubscriptionEnabledMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("command: subscription id is required")
	}
	return nil
}

type UnsubscribeMessage struct {
	Request core.UnsubscribeRequest
}

func (UnsubscribeMessage) Type() string { return TypeUnsubscribe }

func (m UnsubscribeMessage) Validate() error {
	if strings.TrimSpace(m.Request.Platform) == "" {
		return fmt.Errorf("command: platform is required")
	}
	if strings.TrimSpace(m.Request.ChannelID) == "" {
		return fmt.Errorf("command: channel id is required")
	}
	return validateRepoField(m.Request.Repo)
}

type CleanupDeliveriesMessage struct{}

func (CleanupDeliveriesMessage) Type() string { return TypeCleanupDeliveries }

func (CleanupDeliveriesMessage) Validate() error { return nil }

func validateRepoField(repo string) error {
	repo = core.NormalizeRepo(repo)
	if repo == "" {
		return fmt.Errorf("command: repository is required")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("command: repository %q must use owner/name form", repo)
	}
	return nil
}
