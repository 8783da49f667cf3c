package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type EventKind string

const (
	KindPush          EventKind = "push"
	KindIssue         EventKind = "issue"
	KindIssueComment  EventKind = "issue_comment"
	KindPullRequest   EventKind = "pull_request"
	KindReview        EventKind = "review"
	KindReviewComment EventKind = "review_comment"
	KindRelease       EventKind = "release"
	KindStar          EventKind = "star"
	KindFork          EventKind = "fork"
	KindBranchCreate  EventKind = "branch_create"
	KindBranchDelete  EventKind = "branch_delete"
	KindWorkflowRun   EventKind = "workflow_run"
)

// EventKinds returns the closed set of canonical event kinds in stable order.
func EventKinds() []EventKind {
	return []EventKind{
		KindPush,
		KindIssue,
		KindIssueComment,
		KindPullRequest,
		KindReview,
		KindReviewComment,
		KindRelease,
		KindStar,
		KindFork,
		KindBranchCreate,
		KindBranchDelete,
		KindWorkflowRun,
	}
}

func ParseEventKind(value string) (EventKind, bool) {
	kind := EventKind(strings.TrimSpace(strings.ToLower(value)))
	for _, known := range EventKinds() {
		if kind == known {
			return known, true
		}
	}
	return "", false
}

func ParseEventKinds(values []string) ([]EventKind, error) {
	seen := map[EventKind]bool{}
	out := make([]EventKind, 0, len(values))
	for _, value := range values {
		kind, ok := ParseEventKind(value)
		if !ok {
			return nil, fmt.Errorf("core: unknown event kind %q", value)
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		out = append(out, kind)
	}
	return out, nil
}

// MaxDisplayCommits bounds the commit list carried by a push event; the true
// count is preserved in TotalCommits.
const MaxDisplayCommits = 3

type Commit struct {
	SHA     string
	Message string
	Author  string
	URL     string
}

// Event is the canonical representation of an accepted provider event.
// Kind and Repo are always present; the remaining fields are kind-dependent.
type Event struct {
	Kind         EventKind
	Repo         string
	Actor        string
	Action       string
	Title        string
	Number       int
	URL          string
	Body         string
	Ref          string
	TagName      string
	StarCount    int
	Commits      []Commit
	TotalCommits int
}

func (e Event) Validate() error {
	if _, ok := ParseEventKind(string(e.Kind)); !ok {
		return fmt.Errorf("core: event kind %q is not recognized", e.Kind)
	}
	if strings.TrimSpace(e.Repo) == "" {
		return fmt.Errorf("core: event repository is required")
	}
	return nil
}

// Message is a rendered notification ready for transport delivery.
type Message struct {
	Header string
	Body   string
	URL    string
}

func (m Message) Text() string {
	lines := make([]string, 0, 3)
	for _, line := range []string{m.Header, m.Body, m.URL} {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

type DeliveryRecord struct {
	ID         string
	Repo       string
	EventName  string
	ReceivedAt time.Time
}

type RecordDeliveryInput struct {
	DeliveryID string
	Repo       string
	EventName  string
}

type TrustedRepo struct {
	Repo      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subscription struct {
	ID        string
	Platform  string
	ChannelID string
	GuildID   string
	UserID    string
	Repo      string
	Events    []EventKind
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Wants reports whether the subscription covers the given event kind.
func (s Subscription) Wants(kind EventKind) bool {
	for _, subscribed := range s.Events {
		if subscribed == kind {
			return true
		}
	}
	return false
}

// PushTarget is the delivery-addressing projection of a subscription. Event
// kind filtering happens before projection; targets carry no kind data.
type PushTarget struct {
	Platform  string
	ChannelID string
	GuildID   string
	UserID    string
}

func (t PushTarget) String() string {
	return strings.TrimSpace(t.Platform) + ":" + strings.TrimSpace(t.ChannelID)
}

type CreateSubscriptionInput struct {
	Platform  string
	ChannelID string
	GuildID   string
	UserID    string
	Repo      string
	Events    []EventKind
}

// NormalizeRepo canonicalizes an owner/name repository identifier.
func NormalizeRepo(repo string) string {
	return strings.TrimSpace(repo)
}

func sortedKinds(kinds []EventKind) []EventKind {
	out := append([]EventKind(nil), kinds...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
