package repowatch

import (
	"fmt"

	repowatchcommand "github.com/goliatone/go-repowatch/command"
	"github.com/goliatone/go-repowatch/core"
	repowatchquery "github.com/goliatone/go-repowatch/query"
)

// CommandQueryService is the service surface the facade wires handlers onto:
// the mutating operations plus the store accessors the queries read from.
type CommandQueryService interface {
	repowatchcommand.MutatingService

	DeliveryStore() core.DeliveryStore
	TrustStore() core.TrustStore
	SubscriptionStore() core.SubscriptionStore
}

type Commands struct {
	TrustRepo              *repowatchcommand.TrustRepoCommand
	SetTrustEnabled        *repowatchcommand.SetTrustEnabledCommand
	UntrustRepo            *repowatchcommand.UntrustRepoCommand
	Subscribe              *repowatchcommand.SubscribeCommand
	SetSubscriptionEvents  *repowatchcommand.SetSubscriptionEventsCommand
	SetSubscriptionEnabled *repowatchcommand.SetSubscriptionEnabledCommand
	Unsubscribe            *repowatchcommand.UnsubscribeCommand
	CleanupDeliveries      *repowatchcommand.CleanupDeliveriesCommand
}

type Queries struct {
	GetTrustedRepo        *repowatchquery.GetTrustedRepoQuery
	ListTrustedRepos      *repowatchquery.ListTrustedReposQuery
	GetSubscription       *repowatchquery.GetSubscriptionQuery
	ListSubscriptions     *repowatchquery.ListSubscriptionsQuery
	ListRepoSubscriptions *repowatchquery.ListRepoSubscriptionsQuery
	IsDelivered           *repowatchquery.IsDeliveredQuery
}

// Facade bundles the command and query handlers for one service instance so
// hosts can register them on a dispatcher without wiring each handler by hand.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("repowatch: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		TrustRepo:              repowatchcommand.NewTrustRepoCommand(service),
		SetTrustEnabled:        repowatchcommand.NewSetTrustEnabledCommand(service),
		UntrustRepo:            repowatchcommand.NewUntrustRepoCommand(service),
		Subscribe:              repowatchcommand.NewSubscribeCommand(service),
		SetSubscriptionEvents:  repowatchcommand.NewSetSubscriptionEventsCommand(service),
		SetSubscriptionEnabled: repowatchcommand.NewSetSubscriptionEnabledCommand(service),
		Unsubscribe:            repowatchcommand.NewUnsubscribeCommand(service),
		CleanupDeliveries:      repowatchcommand.NewCleanupDeliveriesCommand(service),
	}
	facade.queries = Queries{
		GetTrustedRepo:        repowatchquery.NewGetTrustedRepoQuery(service.TrustStore()),
		ListTrustedRepos:      repowatchquery.NewListTrustedReposQuery(service.TrustStore()),
		GetSubscription:       repowatchquery.NewGetSubscriptionQuery(service.SubscriptionStore()),
		ListSubscriptions:     repowatchquery.NewListSubscriptionsQuery(service.SubscriptionStore()),
		ListRepoSubscriptions: repowatchquery.NewListRepoSubscriptionsQuery(service.SubscriptionStore()),
		IsDelivered:           repowatchquery.NewIsDeliveredQuery(service.DeliveryStore()),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)
