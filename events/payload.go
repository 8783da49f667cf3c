package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPayload    = errors.New("events: invalid payload")
	ErrMissingRepository = errors.New("events: payload is missing repository identity")
)

type repository struct {
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	StargazersCount int    `json:"stargazers_count"`
}

type account struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

func (a account) display() string {
	if strings.TrimSpace(a.Login) != "" {
		return strings.TrimSpace(a.Login)
	}
	return strings.TrimSpace(a.Name)
}

// envelope carries the fields shared by every provider payload. The pipeline
// uses it to identify the repository before normalization is attempted.
type envelope struct {
	Action     string     `json:"action"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

// ParseEnvelope decodes the shared payload fields and returns the repository
// identity. A payload without a repository full name is malformed input.
func ParseEnvelope(payload []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	repo := strings.TrimSpace(env.Repository.FullName)
	if repo == "" {
		return "", ErrMissingRepository
	}
	return repo, nil
}

type commitAuthor struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type pushCommit struct {
	ID      string       `json:"id"`
	Message string       `json:"message"`
	URL     string       `json:"url"`
	Author  commitAuthor `json:"author"`
}

type pushPayload struct {
	Ref        string       `json:"ref"`
	Created    bool         `json:"created"`
	Deleted    bool         `json:"deleted"`
	CompareURL string       `json:"compare"`
	Commits    []pushCommit `json:"commits"`
	Pusher     account      `json:"pusher"`
	Repository repository   `json:"repository"`
	Sender     account      `json:"sender"`
}

type issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type issuesPayload struct {
	Action     string     `json:"action"`
	Issue      issue      `json:"issue"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type comment struct {
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type issueCommentPayload struct {
	Action     string     `json:"action"`
	Issue      issue      `json:"issue"`
	Comment    comment    `json:"comment"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type pullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Merged  bool   `json:"merged"`
}

type pullRequestPayload struct {
	Action      string      `json:"action"`
	PullRequest pullRequest `json:"pull_request"`
	Repository  repository  `json:"repository"`
	Sender      account     `json:"sender"`
}

type review struct {
	State   string `json:"state"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type reviewPayload struct {
	Action      string      `json:"action"`
	Review      review      `json:"review"`
	PullRequest pullRequest `json:"pull_request"`
	Repository  repository  `json:"repository"`
	Sender      account     `json:"sender"`
}

type reviewCommentPayload struct {
	Action      string      `json:"action"`
	Comment     comment     `json:"comment"`
	PullRequest pullRequest `json:"pull_request"`
	Repository  repository  `json:"repository"`
	Sender      account     `json:"sender"`
}

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type releasePayload struct {
	Action     string     `json:"action"`
	Release    release    `json:"release"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type starPayload struct {
	Action     string     `json:"action"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type forkee struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

type forkPayload struct {
	Forkee     forkee     `json:"forkee"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type refPayload struct {
	Ref        string     `json:"ref"`
	RefType    string     `json:"ref_type"`
	Repository repository `json:"repository"`
	Sender     account    `json:"sender"`
}

type workflowRun struct {
	Name       string `json:"name"`
	HeadBranch string `json:"head_branch"`
	Conclusion string `json:"conclusion"`
	HTMLURL    string `json:"html_url"`
}

type workflowRunPayload struct {
	Action      string      `json:"action"`
	WorkflowRun workflowRun `json:"workflow_run"`
	Repository  repository  `json:"repository"`
	Sender      account     `json:"sender"`
}
