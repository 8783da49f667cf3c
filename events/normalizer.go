package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

// Provider event names recognized by the normalizer.
const (
	EventPush          = "push"
	EventIssues        = "issues"
	EventIssueComment  = "issue_comment"
	EventPullRequest   = "pull_request"
	EventReview        = "pull_request_review"
	EventReviewComment = "pull_request_review_comment"
	EventRelease       = "release"
	EventStar          = "star"
	EventFork          = "fork"
	EventCreate        = "create"
	EventDelete        = "delete"
	EventWorkflowRun   = "workflow_run"
)

// ActionMerged is derived, not a provider value: a closed pull request whose
// merged flag is set is re-tagged so renderers can distinguish merge from
// plain close.
const ActionMerged = "merged"

type extractor func(payload []byte) (core.Event, bool, error)

// Normalizer maps (event name, raw payload) pairs onto the canonical event
// model. Unrecognized event names and action sub-types yield ok=false; only a
// payload that fails to decode is an error.
type Normalizer struct {
	extractors map[string]extractor
}

func NewNormalizer() *Normalizer {
	n := &Normalizer{}
	n.extractors = map[string]extractor{
		EventPush:          n.extractPush,
		EventIssues:        n.extractIssues,
		EventIssueComment:  n.extractIssueComment,
		EventPullRequest:   n.extractPullRequest,
		EventReview:        n.extractReview,
		EventReviewComment: n.extractReviewComment,
		EventRelease:       n.extractRelease,
		EventStar:          n.extractStar,
		EventFork:          n.extractFork,
		EventCreate:        n.extractCreate,
		EventDelete:        n.extractDelete,
		EventWorkflowRun:   n.extractWorkflowRun,
	}
	return n
}

// SupportedEvents returns the provider event names the normalizer handles,
// in stable order.
func SupportedEvents() []string {
	return []string{
		EventPush,
		EventIssues,
		EventIssueComment,
		EventPullRequest,
		EventReview,
		EventReviewComment,
		EventRelease,
		EventStar,
		EventFork,
		EventCreate,
		EventDelete,
		EventWorkflowRun,
	}
}

func (n *Normalizer) Normalize(eventName string, payload []byte) (core.Event, bool, error) {
	if n == nil {
		return core.Event{}, false, fmt.Errorf("events: normalizer is not configured")
	}
	extract, ok := n.extractors[strings.TrimSpace(strings.ToLower(eventName))]
	if !ok {
		return core.Event{}, false, nil
	}
	return extract(payload)
}

func (n *Normalizer) extractPush(payload []byte) (core.Event, bool, error) {
	var p pushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid push payload: %w", err)
	}
	actor := p.Pusher.display()
	if actor == "" {
		actor = p.Sender.display()
	}
	ref := shortRef(p.Ref)

	// A ref update with no commits is a branch lifecycle event, not a push.
	if len(p.Commits) == 0 {
		switch {
		case p.Created:
			return core.Event{
				Kind:  core.KindBranchCreate,
				Repo:  p.Repository.FullName,
				Actor: actor,
				Ref:   ref,
				URL:   p.Repository.HTMLURL,
			}, true, nil
		case p.Deleted:
			return core.Event{
				Kind:  core.KindBranchDelete,
				Repo:  p.Repository.FullName,
				Actor: actor,
				Ref:   ref,
				URL:   p.Repository.HTMLURL,
			}, true, nil
		default:
			return core.Event{}, false, nil
		}
	}

	commits := make([]core.Commit, 0, core.MaxDisplayCommits)
	for i, c := range p.Commits {
		if i >= core.MaxDisplayCommits {
			break
		}
		commits = append(commits, core.Commit{
			SHA:     shortSHA(c.ID),
			Message: firstLine(c.Message),
			Author:  commitAuthorName(c.Author),
			URL:     c.URL,
		})
	}

	return core.Event{
		Kind:         core.KindPush,
		Repo:         p.Repository.FullName,
		Actor:        actor,
		Ref:          ref,
		URL:          p.CompareURL,
		Commits:      commits,
		TotalCommits: len(p.Commits),
	}, true, nil
}

func (n *Normalizer) extractIssues(payload []byte) (core.Event, bool, error) {
	var p issuesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid issues payload: %w", err)
	}
	if !actionAllowed(p.Action, "opened", "closed", "reopened") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:   core.KindIssue,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: p.Action,
		Title:  p.Issue.Title,
		Number: p.Issue.Number,
		URL:    p.Issue.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractIssueComment(payload []byte) (core.Event, bool, error) {
	var p issueCommentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid issue comment payload: %w", err)
	}
	if !actionAllowed(p.Action, "created") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:   core.KindIssueComment,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: p.Action,
		Title:  p.Issue.Title,
		Number: p.Issue.Number,
		URL:    p.Comment.HTMLURL,
		Body:   firstLine(p.Comment.Body),
	}, true, nil
}

func (n *Normalizer) extractPullRequest(payload []byte) (core.Event, bool, error) {
	var p pullRequestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid pull request payload: %w", err)
	}
	if !actionAllowed(p.Action, "opened", "closed", "reopened") {
		return core.Event{}, false, nil
	}
	action := p.Action
	if action == "closed" && p.PullRequest.Merged {
		action = ActionMerged
	}
	return core.Event{
		Kind:   core.KindPullRequest,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: action,
		Title:  p.PullRequest.Title,
		Number: p.PullRequest.Number,
		URL:    p.PullRequest.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractReview(payload []byte) (core.Event, bool, error) {
	var p reviewPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid review payload: %w", err)
	}
	if !actionAllowed(p.Action, "submitted") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:   core.KindReview,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: strings.ToLower(strings.TrimSpace(p.Review.State)),
		Title:  p.PullRequest.Title,
		Number: p.PullRequest.Number,
		URL:    p.Review.HTMLURL,
		Body:   firstLine(p.Review.Body),
	}, true, nil
}

func (n *Normalizer) extractReviewComment(payload []byte) (core.Event, bool, error) {
	var p reviewCommentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid review comment payload: %w", err)
	}
	if !actionAllowed(p.Action, "created") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:   core.KindReviewComment,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: p.Action,
		Title:  p.PullRequest.Title,
		Number: p.PullRequest.Number,
		URL:    p.Comment.HTMLURL,
		Body:   firstLine(p.Comment.Body),
	}, true, nil
}

func (n *Normalizer) extractRelease(payload []byte) (core.Event, bool, error) {
	var p releasePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid release payload: %w", err)
	}
	if !actionAllowed(p.Action, "published") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:    core.KindRelease,
		Repo:    p.Repository.FullName,
		Actor:   p.Sender.display(),
		Action:  p.Action,
		Title:   p.Release.Name,
		TagName: p.Release.TagName,
		URL:     p.Release.HTMLURL,
		Body:    firstLine(p.Release.Body),
	}, true, nil
}

func (n *Normalizer) extractStar(payload []byte) (core.Event, bool, error) {
	var p starPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid star payload: %w", err)
	}
	if !actionAllowed(p.Action, "created") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:      core.KindStar,
		Repo:      p.Repository.FullName,
		Actor:     p.Sender.display(),
		Action:    p.Action,
		StarCount: p.Repository.StargazersCount,
		URL:       p.Repository.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractFork(payload []byte) (core.Event, bool, error) {
	var p forkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid fork payload: %w", err)
	}
	return core.Event{
		Kind:  core.KindFork,
		Repo:  p.Repository.FullName,
		Actor: p.Sender.display(),
		Title: p.Forkee.FullName,
		URL:   p.Forkee.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractCreate(payload []byte) (core.Event, bool, error) {
	var p refPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid create payload: %w", err)
	}
	if !actionAllowed(p.RefType, "branch") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:  core.KindBranchCreate,
		Repo:  p.Repository.FullName,
		Actor: p.Sender.display(),
		Ref:   p.Ref,
		URL:   p.Repository.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractDelete(payload []byte) (core.Event, bool, error) {
	var p refPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid delete payload: %w", err)
	}
	if !actionAllowed(p.RefType, "branch") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:  core.KindBranchDelete,
		Repo:  p.Repository.FullName,
		Actor: p.Sender.display(),
		Ref:   p.Ref,
		URL:   p.Repository.HTMLURL,
	}, true, nil
}

func (n *Normalizer) extractWorkflowRun(payload []byte) (core.Event, bool, error) {
	var p workflowRunPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return core.Event{}, false, fmt.Errorf("events: invalid workflow run payload: %w", err)
	}
	if !actionAllowed(p.Action, "completed") {
		return core.Event{}, false, nil
	}
	return core.Event{
		Kind:   core.KindWorkflowRun,
		Repo:   p.Repository.FullName,
		Actor:  p.Sender.display(),
		Action: strings.ToLower(strings.TrimSpace(p.WorkflowRun.Conclusion)),
		Title:  p.WorkflowRun.Name,
		Ref:    p.WorkflowRun.HeadBranch,
		URL:    p.WorkflowRun.HTMLURL,
	}, true, nil
}

func actionAllowed(action string, allowed ...string) bool {
	action = strings.ToLower(strings.TrimSpace(action))
	for _, candidate := range allowed {
		if action == candidate {
			return true
		}
	}
	return false
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx]
	}
	return strings.TrimSpace(message)
}

func shortSHA(sha string) string {
	sha = strings.TrimSpace(sha)
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func shortRef(ref string) string {
	ref = strings.TrimPrefix(ref, "refs/heads/")
	return strings.TrimPrefix(ref, "refs/tags/")
}

func commitAuthorName(author commitAuthor) string {
	if strings.TrimSpace(author.Username) != "" {
		return strings.TrimSpace(author.Username)
	}
	return strings.TrimSpace(author.Name)
}
