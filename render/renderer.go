package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

type template func(event core.Event) core.Message

// Renderer produces one message per event. Every message carries a header
// line `{emoji}[{repo}] {display name}`, a body describing actor and subject,
// and a trailing URL when the event has one.
type Renderer struct {
	templates map[core.EventKind]template
}

func NewRenderer() *Renderer {
	r := &Renderer{}
	r.templates = map[core.EventKind]template{
		core.KindPush:          r.renderPush,
		core.KindIssue:         r.renderIssue,
		core.KindIssueComment:  r.renderIssueComment,
		core.KindPullRequest:   r.renderPullRequest,
		core.KindReview:        r.renderReview,
		core.KindReviewComment: r.renderReviewComment,
		core.KindRelease:       r.renderRelease,
		core.KindStar:          r.renderStar,
		core.KindFork:          r.renderFork,
		core.KindBranchCreate:  r.renderBranchCreate,
		core.KindBranchDelete:  r.renderBranchDelete,
		core.KindWorkflowRun:   r.renderWorkflowRun,
	}
	return r
}

func (r *Renderer) Render(event core.Event) core.Message {
	if r == nil {
		return core.Message{}
	}
	if tmpl, ok := r.templates[event.Kind]; ok {
		return tmpl(event)
	}
	return r.renderGeneric(event)
}

func (r *Renderer) renderPush(event core.Event) core.Message {
	noun := "commits"
	if event.TotalCommits == 1 {
		noun = "commit"
	}
	lines := []string{fmt.Sprintf(
		"%s pushed %d %s to %s", actor(event), event.TotalCommits, noun, event.Ref,
	)}
	for _, commit := range event.Commits {
		lines = append(lines, fmt.Sprintf("• %s - %s", commit.SHA, commit.Message))
	}
	if extra := event.TotalCommits - len(event.Commits); extra > 0 {
		lines = append(lines, fmt.Sprintf("+%d more", extra))
	}
	return core.Message{
		Header: header("📦", event.Repo, "Push"),
		Body:   strings.Join(lines, "\n"),
		URL:    event.URL,
	}
}

func (r *Renderer) renderIssue(event core.Event) core.Message {
	return core.Message{
		Header: header("❗", event.Repo, "Issue"),
		Body:   fmt.Sprintf("%s %s #%d: %s", actor(event), verb(event.Action), event.Number, event.Title),
		URL:    event.URL,
	}
}

func (r *Renderer) renderIssueComment(event core.Event) core.Message {
	body := fmt.Sprintf("%s commented on #%d: %s", actor(event), event.Number, event.Title)
	if event.Body != "" {
		body += "\n" + event.Body
	}
	return core.Message{
		Header: header("💬", event.Repo, "Comment"),
		Body:   body,
		URL:    event.URL,
	}
}

func (r *Renderer) renderPullRequest(event core.Event) core.Message {
	return core.Message{
		Header: header("🔀", event.Repo, "Pull Request"),
		Body:   fmt.Sprintf("%s %s #%d: %s", actor(event), verb(event.Action), event.Number, event.Title),
		URL:    event.URL,
	}
}

func (r *Renderer) renderReview(event core.Event) core.Message {
	body := fmt.Sprintf("%s reviewed #%d (%s): %s", actor(event), event.Number, verb(event.Action), event.Title)
	if event.Body != "" {
		body += "\n" + event.Body
	}
	return core.Message{
		Header: header("👀", event.Repo, "Review"),
		Body:   body,
		URL:    event.URL,
	}
}

func (r *Renderer) renderReviewComment(event core.Event) core.Message {
	body := fmt.Sprintf("%s commented on a review of #%d: %s", actor(event), event.Number, event.Title)
	if event.Body != "" {
		body += "\n" + event.Body
	}
	return core.Message{
		Header: header("💬", event.Repo, "Review Comment"),
		Body:   body,
		URL:    event.URL,
	}
}

func (r *Renderer) renderRelease(event core.Event) core.Message {
	name := event.Title
	if name == "" {
		name = event.TagName
	}
	return core.Message{
		Header: header("🚀", event.Repo, "Release"),
		Body:   fmt.Sprintf("%s published %s", actor(event), name),
		URL:    event.URL,
	}
}

func (r *Renderer) renderStar(event core.Event) core.Message {
	return core.Message{
		Header: header("⭐", event.Repo, "Star"),
		Body:   fmt.Sprintf("%s starred the repository (%d stars)", actor(event), event.StarCount),
		URL:    event.URL,
	}
}

func (r *Renderer) renderFork(event core.Event) core.Message {
	body := fmt.Sprintf("%s forked the repository", actor(event))
	if event.Title != "" {
		body = fmt.Sprintf("%s forked the repository to %s", actor(event), event.Title)
	}
	return core.Message{
		Header: header("🍴", event.Repo, "Fork"),
		Body:   body,
		URL:    event.URL,
	}
}

func (r *Renderer) renderBranchCreate(event core.Event) core.Message {
	return core.Message{
		Header: header("🌱", event.Repo, "Branch Created"),
		Body:   fmt.Sprintf("%s created branch %s", actor(event), event.Ref),
		URL:    event.URL,
	}
}

func (r *Renderer) renderBranchDelete(event core.Event) core.Message {
	return core.Message{
		Header: header("🗑️", event.Repo, "Branch Deleted"),
		Body:   fmt.Sprintf("%s deleted branch %s", actor(event), event.Ref),
		URL:    event.URL,
	}
}

func (r *Renderer) renderWorkflowRun(event core.Event) core.Message {
	conclusion := event.Action
	if conclusion == "" {
		conclusion = "finished"
	}
	body := fmt.Sprintf("workflow %s %s", event.Title, conclusion)
	if event.Ref != "" {
		body += " on " + event.Ref
	}
	return core.Message{
		Header: header("⚙️", event.Repo, "Workflow"),
		Body:   body,
		URL:    event.URL,
	}
}

func (r *Renderer) renderGeneric(event core.Event) core.Message {
	action := event.Action
	if action == "" {
		action = "triggered"
	}
	subject := event.Title
	if subject == "" {
		subject = string(event.Kind)
	}
	return core.Message{
		Header: header("🔔", event.Repo, "Activity"),
		Body:   fmt.Sprintf("%s %s %s", actor(event), action, subject),
		URL:    event.URL,
	}
}

func header(emoji, repo, display string) string {
	return fmt.Sprintf("%s[%s] %s", emoji, repo, display)
}

func actor(event core.Event) string {
	if strings.TrimSpace(event.Actor) != "" {
		return strings.TrimSpace(event.Actor)
	}
	return "someone"
}

func verb(action string) string {
	if strings.TrimSpace(action) == "" {
		return "updated"
	}
	return strings.TrimSpace(action)
}
