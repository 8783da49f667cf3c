package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-repowatch/core"
	"github.com/goliatone/go-repowatch/dispatch"
	"github.com/goliatone/go-repowatch/transport"
)

type capturingTransport struct {
	platform string
	failFor  map[string]bool

	mu       sync.Mutex
	messages []core.Message
	targets  []core.PushTarget
}

func (t *capturingTransport) Platform() string { return t.platform }

func (t *capturingTransport) Send(_ context.Context, target core.PushTarget, message core.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets = append(t.targets, target)
	t.messages = append(t.messages, message)
	if t.failFor[target.ChannelID] {
		return fmt.Errorf("send rejected for %s", target.ChannelID)
	}
	return nil
}

func (t *capturingTransport) sendCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.targets)
}

type pipelineFixture struct {
	pipeline *Pipeline
	stores   *core.MemoryStoreProvider
	sender   *capturingTransport
}

func newPipelineFixture(t *testing.T, cfg core.WebhookConfig) *pipelineFixture {
	t.Helper()
	stores := core.NewMemoryStoreProvider()
	sender := &capturingTransport{platform: "discord", failFor: map[string]bool{}}
	registry := transport.NewRegistry()
	if err := registry.Register(sender); err != nil {
		t.Fatalf("register transport: %v", err)
	}
	dispatcher, err := dispatch.NewDispatcher(registry)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	pipeline, err := NewPipeline(cfg, stores.DeliveryStore(), stores.TrustStore(), stores.SubscriptionStore(), dispatcher)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return &pipelineFixture{pipeline: pipeline, stores: stores, sender: sender}
}

func (f *pipelineFixture) trust(t *testing.T, repo string) {
	t.Helper()
	if _, err := f.stores.TrustStore().Trust(context.Background(), repo); err != nil {
		t.Fatalf("trust repo: %v", err)
	}
}

func (f *pipelineFixture) subscribe(t *testing.T, channelID, repo string, kinds ...core.EventKind) {
	t.Helper()
	if len(kinds) == 0 {
		kinds = core.EventKinds()
	}
	if _, err := f.stores.SubscriptionStore().Create(context.Background(), core.CreateSubscriptionInput{
		Platform:  "discord",
		ChannelID: channelID,
		Repo:      repo,
		Events:    kinds,
	}); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
}

func pushBody(commitCount int) []byte {
	commits := make([]string, 0, commitCount)
	for i := 0; i < commitCount; i++ {
		commits = append(commits, fmt.Sprintf(`{
			"id": "%02dbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"message": "commit %d",
			"author": {"username": "ada"}
		}`, i, i))
	}
	return []byte(fmt.Sprintf(`{
		"ref": "refs/heads/main",
		"compare": "https://example.com/compare",
		"commits": [%s],
		"pusher": {"name": "ada"},
		"repository": {"full_name": "octo/widgets", "html_url": "https://example.com/octo/widgets"}
	}`, strings.Join(commits, ",")))
}

func signedRequest(secret, eventName, deliveryID string, body []byte) Request {
	headers := map[string]string{
		"X-GitHub-Event":    eventName,
		"X-GitHub-Delivery": deliveryID,
	}
	if secret != "" {
		headers["X-Hub-Signature-256"] = SignBody(secret, "sha256=", body)
	}
	return Request{Headers: headers, Body: body}
}

func TestPipeline_EndToEndPush(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.trust(t, "octo/widgets")
	f.subscribe(t, "chan-1", "octo/widgets", core.KindPush)

	body := pushBody(5)
	outcome, err := f.pipeline.Process(context.Background(), signedRequest("s3cret", "push", "delivery-1", body))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusOK || outcome.Pushed != 1 || outcome.HTTPStatus != http.StatusOK {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if f.sender.sendCount() != 1 {
		t.Fatalf("expected one delivery, got %d", f.sender.sendCount())
	}

	text := f.sender.messages[0].Text()
	for _, want := range []string{"octo/widgets", "ada", "main", "+2 more"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered message missing %q:\n%s", want, text)
		}
	}
	if strings.Count(text, "• ") != 3 {
		t.Fatalf("expected exactly three commit lines:\n%s", text)
	}
}

func TestPipeline_DuplicateShortCircuits(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.trust(t, "octo/widgets")
	f.subscribe(t, "chan-1", "octo/widgets")

	body := pushBody(1)
	ctx := context.Background()
	if _, err := f.pipeline.Process(ctx, signedRequest("s3cret", "push", "delivery-1", body)); err != nil {
		t.Fatalf("first process: %v", err)
	}
	outcome, err := f.pipeline.Process(ctx, signedRequest("s3cret", "push", "delivery-1", body))
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if outcome.Status != StatusDuplicate || outcome.HTTPStatus != http.StatusOK {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if f.sender.sendCount() != 1 {
		t.Fatalf("duplicate must not dispatch again, got %d sends", f.sender.sendCount())
	}
}

func TestPipeline_UntrustedRepositoryIgnoredWithoutRecording(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.subscribe(t, "chan-1", "octo/widgets")

	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "push", "delivery-1", pushBody(1)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusIgnored || outcome.Reason != ReasonUntrusted {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if f.sender.sendCount() != 0 {
		t.Fatalf("untrusted event must not dispatch")
	}

	// Trust check precedes recording, so the ledger stays empty.
	delivered, err := f.stores.DeliveryStore().IsDelivered(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if delivered {
		t.Fatalf("untrusted delivery must not be recorded")
	}
}

func TestPipeline_AllowUntrustedBypassesFilter(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret", AllowUntrusted: true})
	f.subscribe(t, "chan-1", "octo/widgets", core.KindPush)

	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "push", "delivery-1", pushBody(1)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusOK || outcome.Pushed != 1 {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
}

func TestPipeline_UnsupportedEventAcknowledged(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.trust(t, "octo/widgets")

	body := []byte(`{"repository": {"full_name": "octo/widgets"}}`)
	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "deployment_status", "delivery-1", body))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusIgnored || outcome.Reason != ReasonUnsupported || outcome.HTTPStatus != http.StatusOK {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
}

func TestPipeline_RecordsEvenWithZeroTargets(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.trust(t, "octo/widgets")

	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "push", "delivery-1", pushBody(1)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusOK || outcome.Pushed != 0 {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}

	delivered, err := f.stores.DeliveryStore().IsDelivered(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if !delivered {
		t.Fatalf("delivery must be recorded even with zero targets")
	}
}

func TestPipeline_SignatureOutcomes(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})

	body := pushBody(1)
	outcome, err := f.pipeline.Process(context.Background(), Request{
		Headers: map[string]string{"X-GitHub-Event": "push", "X-GitHub-Delivery": "delivery-1"},
		Body:    body,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusError || outcome.Reason != ReasonMissingSignature || outcome.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("unexpected outcome for missing signature: %#v", outcome)
	}

	outcome, err = f.pipeline.Process(context.Background(), Request{
		Headers: map[string]string{
			"X-GitHub-Event":      "push",
			"X-GitHub-Delivery":   "delivery-1",
			"X-Hub-Signature-256": SignBody("wrong-secret", "sha256=", body),
		},
		Body: body,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusError || outcome.Reason != ReasonInvalidSignature || outcome.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("unexpected outcome for invalid signature: %#v", outcome)
	}
}

func TestPipeline_NoSecretSkipsVerification(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{})
	f.trust(t, "octo/widgets")
	f.subscribe(t, "chan-1", "octo/widgets", core.KindPush)

	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("", "push", "delivery-1", pushBody(1)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusOK || outcome.Pushed != 1 {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
}

func TestPipeline_MalformedPayloadOutcomes(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})

	body := []byte("not json")
	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "push", "delivery-1", body))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusError || outcome.Reason != ReasonInvalidPayload || outcome.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected outcome for invalid payload: %#v", outcome)
	}

	body = []byte(`{"action": "opened"}`)
	outcome, err = f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "issues", "delivery-1", body))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusError || outcome.Reason != ReasonMissingRepository {
		t.Fatalf("unexpected outcome for missing repository: %#v", outcome)
	}

	body = []byte(`{"repository": {"full_name": "octo/widgets"}}`)
	outcome, err = f.pipeline.Process(context.Background(), Request{
		Headers: map[string]string{
			"X-GitHub-Event":      "push",
			"X-Hub-Signature-256": SignBody("s3cret", "sha256=", body),
		},
		Body: body,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusError || outcome.Reason != ReasonMissingDeliveryID {
		t.Fatalf("unexpected outcome for missing delivery id: %#v", outcome)
	}
}

func TestPipeline_PartialDispatchFailureStillOK(t *testing.T) {
	f := newPipelineFixture(t, core.WebhookConfig{Secret: "s3cret"})
	f.trust(t, "octo/widgets")
	f.subscribe(t, "chan-1", "octo/widgets", core.KindPush)
	f.subscribe(t, "chan-2", "octo/widgets", core.KindPush)
	f.sender.failFor["chan-2"] = true

	outcome, err := f.pipeline.Process(context.Background(),
		signedRequest("s3cret", "push", "delivery-1", pushBody(1)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != StatusOK || outcome.Pushed != 1 {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if f.sender.sendCount() != 2 {
		t.Fatalf("expected both targets attempted, got %d", f.sender.sendCount())
	}
}
