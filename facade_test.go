package repowatch

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	repowatchcommand "github.com/goliatone/go-repowatch/command"
	"github.com/goliatone/go-repowatch/core"
	repowatchquery "github.com/goliatone/go-repowatch/query"
)

func newFacadeService(t *testing.T) *core.Service {
	t.Helper()
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	facade, err := NewFacade(newFacadeService(t))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.TrustRepo == nil || commands.Subscribe == nil || commands.CleanupDeliveries == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.ListTrustedRepos == nil || queries.IsDelivered == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	facade, err := NewFacade(newFacadeService(t))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.TrustedRepo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().TrustRepo.Execute(ctx, repowatchcommand.TrustRepoMessage{
		Repo: "octo/widgets",
	}); err != nil {
		t.Fatalf("trust repo: %v", err)
	}

	entry, err := facade.Queries().GetTrustedRepo.Query(context.Background(), repowatchquery.GetTrustedRepoMessage{
		Repo: "octo/widgets",
	})
	if err != nil {
		t.Fatalf("get trusted repo: %v", err)
	}
	if entry.Repo != "octo/widgets" || !entry.Enabled {
		t.Fatalf("unexpected entry: %#v", entry)
	}

	if err := facade.Commands().Subscribe.Execute(context.Background(), repowatchcommand.SubscribeMessage{
		Request: core.SubscribeRequest{
			Platform:  "discord",
			ChannelID: "chan-1",
			Repo:      "octo/widgets",
			Events:    []core.EventKind{core.KindPush},
		},
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	subs, err := facade.Queries().ListRepoSubscriptions.Query(context.Background(), repowatchquery.ListRepoSubscriptionsMessage{
		Repo: "octo/widgets",
	})
	if err != nil {
		t.Fatalf("list repo subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected one subscription, got %d", len(subs))
	}
}
