package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-repowatch/core"
	"github.com/goliatone/go-repowatch/transport"
)

type recordingTransport struct {
	platform string
	delay    time.Duration
	failFor  map[string]bool

	mu       sync.Mutex
	sent     []string
	inFlight int
	peak     int
}

func (t *recordingTransport) Platform() string { return t.platform }

func (t *recordingTransport) Send(_ context.Context, target core.PushTarget, _ core.Message) error {
	t.mu.Lock()
	t.inFlight++
	if t.inFlight > t.peak {
		t.peak = t.inFlight
	}
	t.mu.Unlock()

	if t.delay > 0 {
		time.Sleep(t.delay)
	}

	t.mu.Lock()
	t.inFlight--
	t.sent = append(t.sent, target.ChannelID)
	fail := t.failFor[target.ChannelID]
	t.mu.Unlock()

	if fail {
		return fmt.Errorf("send rejected for %s", target.ChannelID)
	}
	return nil
}

func newTestRegistry(t *testing.T, transports ...core.Transport) *transport.Registry {
	t.Helper()
	registry := transport.NewRegistry()
	for _, tr := range transports {
		if err := registry.Register(tr); err != nil {
			t.Fatalf("register transport: %v", err)
		}
	}
	return registry
}

func targetsFor(platform string, count int) []core.PushTarget {
	targets := make([]core.PushTarget, 0, count)
	for i := 0; i < count; i++ {
		targets = append(targets, core.PushTarget{
			Platform:  platform,
			ChannelID: fmt.Sprintf("chan-%d", i+1),
		})
	}
	return targets
}

func TestDispatch_EmptyTargetListIsNoOp(t *testing.T) {
	dispatcher, err := NewDispatcher(newTestRegistry(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	results, err := dispatcher.Dispatch(context.Background(), nil, core.Message{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result list, got %d", len(results))
	}
}

func TestDispatch_IsolatesPerTargetFailures(t *testing.T) {
	sender := &recordingTransport{
		platform: "discord",
		failFor:  map[string]bool{"chan-2": true},
	}
	dispatcher, err := NewDispatcher(newTestRegistry(t, sender))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	results, err := dispatcher.Dispatch(context.Background(), targetsFor("discord", 4), core.Message{Header: "hi"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	succeeded, failed := Summary(results)
	if succeeded != 3 || failed != 1 {
		t.Fatalf("expected 3 successes and 1 failure, got %d/%d", succeeded, failed)
	}
	for _, result := range results {
		if result.Target.ChannelID == "chan-2" {
			if result.OK() {
				t.Fatalf("expected chan-2 to fail")
			}
			continue
		}
		if !result.OK() {
			t.Fatalf("expected %s to succeed, got %v", result.Target.ChannelID, result.Err)
		}
	}
	if len(sender.sent) != 4 {
		t.Fatalf("expected every target attempted, got %d sends", len(sender.sent))
	}
}

func TestDispatch_UnresolvableTransportIsFailureNotCrash(t *testing.T) {
	sender := &recordingTransport{platform: "discord"}
	dispatcher, err := NewDispatcher(newTestRegistry(t, sender))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	targets := []core.PushTarget{
		{Platform: "discord", ChannelID: "chan-1"},
		{Platform: "matrix", ChannelID: "room-1"},
	}
	results, err := dispatcher.Dispatch(context.Background(), targets, core.Message{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	succeeded, failed := Summary(results)
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", succeeded, failed)
	}
}

func TestDispatch_RespectsConcurrencyBound(t *testing.T) {
	delay := 30 * time.Millisecond
	sender := &recordingTransport{platform: "discord", delay: delay}
	dispatcher, err := NewDispatcher(newTestRegistry(t, sender), WithConcurrency(2))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	started := time.Now()
	results, err := dispatcher.Dispatch(context.Background(), targetsFor("discord", 10), core.Message{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	elapsed := time.Since(started)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if sender.peak > 2 {
		t.Fatalf("expected at most 2 concurrent sends, saw %d", sender.peak)
	}
	// 10 targets over 2 workers is 5 sequential rounds per worker.
	if elapsed < 5*delay {
		t.Fatalf("dispatch finished too fast for the bound: %v", elapsed)
	}
	if elapsed > 9*delay {
		t.Fatalf("dispatch too slow, workers not draining concurrently: %v", elapsed)
	}
}

func TestDispatch_SendTimeoutCancelsSlowSend(t *testing.T) {
	slow := &contextAwareTransport{platform: "discord", delay: 200 * time.Millisecond}
	dispatcher, err := NewDispatcher(newTestRegistry(t, slow), WithSendTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	results, err := dispatcher.Dispatch(context.Background(), targetsFor("discord", 1), core.Message{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 1 || results[0].OK() {
		t.Fatalf("expected timed-out send to fail, got %#v", results)
	}
}

type contextAwareTransport struct {
	platform string
	delay    time.Duration
}

func (t *contextAwareTransport) Platform() string { return t.platform }

func (t *contextAwareTransport) Send(ctx context.Context, _ core.PushTarget, _ core.Message) error {
	select {
	case <-time.After(t.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
