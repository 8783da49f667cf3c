package core

import "testing"

func TestParseEventKind_AcceptsClosedSetOnly(t *testing.T) {
	for _, kind := range EventKinds() {
		parsed, ok := ParseEventKind(string(kind))
		if !ok {
			t.Fatalf("expected %q to parse", kind)
		}
		if parsed != kind {
			t.Fatalf("expected %q, got %q", kind, parsed)
		}
	}

	if _, ok := ParseEventKind("deployment"); ok {
		t.Fatalf("expected unknown kind to be rejected")
	}
	if _, ok := ParseEventKind(""); ok {
		t.Fatalf("expected empty kind to be rejected")
	}
}

func TestParseEventKinds_DedupesAndRejectsUnknown(t *testing.T) {
	kinds, err := ParseEventKinds([]string{"push", "Push", "release"})
	if err != nil {
		t.Fatalf("parse kinds: %v", err)
	}
	if len(kinds) != 2 {
		t.Fatalf("expected duplicates collapsed, got %v", kinds)
	}

	if _, err := ParseEventKinds([]string{"push", "bogus"}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestEventValidate_RequiresKindAndRepo(t *testing.T) {
	event := Event{Kind: KindPush, Repo: "octo/widgets"}
	if err := event.Validate(); err != nil {
		t.Fatalf("validate event: %v", err)
	}

	if err := (Event{Kind: "bogus", Repo: "octo/widgets"}).Validate(); err == nil {
		t.Fatalf("expected unrecognized kind to fail validation")
	}
	if err := (Event{Kind: KindPush}).Validate(); err == nil {
		t.Fatalf("expected missing repository to fail validation")
	}
}

func TestSubscriptionWants(t *testing.T) {
	sub := Subscription{Events: []EventKind{KindPush, KindRelease}}
	if !sub.Wants(KindPush) {
		t.Fatalf("expected push to be wanted")
	}
	if sub.Wants(KindStar) {
		t.Fatalf("expected star to be filtered")
	}
}

func TestMessageText_SkipsEmptyLines(t *testing.T) {
	msg := Message{Header: "header", URL: "https://example.com"}
	if got := msg.Text(); got != "header\nhttps://example.com" {
		t.Fatalf("unexpected rendered text: %q", got)
	}
}
