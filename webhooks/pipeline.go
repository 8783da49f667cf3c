package webhooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-repowatch/core"
	"github.com/goliatone/go-repowatch/dispatch"
	"github.com/goliatone/go-repowatch/events"
	"github.com/goliatone/go-repowatch/render"
)

const (
	StatusOK        = "ok"
	StatusIgnored   = "ignored"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

const (
	ReasonMissingSignature  = "missing signature"
	ReasonInvalidSignature  = "invalid signature"
	ReasonInvalidPayload    = "invalid payload"
	ReasonMissingRepository = "missing repository"
	ReasonMissingDeliveryID = "missing delivery id"
	ReasonUntrusted         = "untrusted"
	ReasonUnsupported       = "unsupported"
	ReasonInternal          = "internal error"
)

// Outcome is the terminal result of one pipeline execution.
type Outcome struct {
	Status     string
	Reason     string
	Pushed     int
	HTTPStatus int
}

// Pipeline runs one inbound delivery through verification, dedup, trust
// filtering, normalization, recording, and fan-out. Collaborator fields may
// be replaced before first use; NewPipeline fills in defaults.
type Pipeline struct {
	Verifier    Verifier
	ExtractID   DeliveryIDExtractor
	EventHeader string
	Ledger      core.DeliveryStore
	Trust       *core.TrustFilter
	// AllowUntrusted skips the trust filter entirely; the filter is not
	// consulted, so an empty trust list never blocks processing.
	AllowUntrusted bool
	Normalizer     *events.Normalizer
	Resolver       *core.TargetResolver
	Renderer       *render.Renderer
	Dispatcher     *dispatch.Dispatcher
	Logger         core.Logger
	Now            func() time.Time
}

func NewPipeline(
	cfg core.WebhookConfig,
	ledger core.DeliveryStore,
	trustStore core.TrustStore,
	subscriptionStore core.SubscriptionStore,
	dispatcher *dispatch.Dispatcher,
) (*Pipeline, error) {
	if ledger == nil {
		return nil, fmt.Errorf("webhooks: delivery ledger is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("webhooks: dispatcher is required")
	}
	trust, err := core.NewTrustFilter(trustStore)
	if err != nil {
		return nil, err
	}
	resolver, err := core.NewTargetResolver(subscriptionStore)
	if err != nil {
		return nil, err
	}

	template := NewGitHubWebhookTemplate(cfg.Secret)
	p := &Pipeline{
		ExtractID:      template.Extractor,
		EventHeader:    template.EventHeader,
		Ledger:         ledger,
		Trust:          trust,
		AllowUntrusted: cfg.AllowUntrusted,
		Normalizer:     events.NewNormalizer(),
		Resolver:       resolver,
		Renderer:       render.NewRenderer(),
		Dispatcher:     dispatcher,
		Logger:         glog.Nop(),
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
	// No secret means verification is disabled, not that every request is
	// rejected.
	if cfg.Secret != "" {
		p.Verifier = template.Verifier
	}
	return p, nil
}

func (p *Pipeline) Process(ctx context.Context, req Request) (Outcome, error) {
	if p == nil || p.Ledger == nil || p.Dispatcher == nil {
		err := fmt.Errorf("webhooks: pipeline requires ledger and dispatcher")
		return internalOutcome(), err
	}

	if p.Verifier != nil {
		if err := p.Verifier.Verify(ctx, req); err != nil {
			reason := ReasonInvalidSignature
			if errors.Is(err, ErrMissingSignature) {
				reason = ReasonMissingSignature
			}
			p.logger().Warn("rejected unauthenticated delivery", "reason", reason)
			return Outcome{
				Status:     StatusError,
				Reason:     reason,
				HTTPStatus: http.StatusUnauthorized,
			}, nil
		}
	}

	repo, err := events.ParseEnvelope(req.Body)
	if err != nil {
		reason := ReasonInvalidPayload
		if errors.Is(err, events.ErrMissingRepository) {
			reason = ReasonMissingRepository
		}
		return Outcome{
			Status:     StatusError,
			Reason:     reason,
			HTTPStatus: http.StatusBadRequest,
		}, nil
	}

	deliveryID, err := p.extractDeliveryID(req)
	if err != nil {
		return Outcome{
			Status:     StatusError,
			Reason:     ReasonMissingDeliveryID,
			HTTPStatus: http.StatusBadRequest,
		}, nil
	}
	eventName := headerValue(req.Headers, p.eventHeader())

	delivered, err := p.Ledger.IsDelivered(ctx, deliveryID)
	if err != nil {
		return internalOutcome(), fmt.Errorf("webhooks: dedup check: %w", err)
	}
	if delivered {
		p.logger().Debug("skipped duplicate delivery", "delivery_id", deliveryID, "repo", repo)
		return Outcome{Status: StatusDuplicate, HTTPStatus: http.StatusOK}, nil
	}

	if !p.AllowUntrusted {
		trusted, err := p.Trust.IsTrusted(ctx, repo)
		if err != nil {
			return internalOutcome(), fmt.Errorf("webhooks: trust check: %w", err)
		}
		if !trusted {
			p.logger().Info("ignored untrusted repository", "repo", repo, "event", eventName)
			return Outcome{
				Status:     StatusIgnored,
				Reason:     ReasonUntrusted,
				HTTPStatus: http.StatusOK,
			}, nil
		}
	}

	event, supported, err := p.Normalizer.Normalize(eventName, req.Body)
	if err != nil {
		return Outcome{
			Status:     StatusError,
			Reason:     ReasonInvalidPayload,
			HTTPStatus: http.StatusBadRequest,
		}, nil
	}
	if !supported {
		p.logger().Debug("ignored unsupported event", "repo", repo, "event", eventName)
		return Outcome{
			Status:     StatusIgnored,
			Reason:     ReasonUnsupported,
			HTTPStatus: http.StatusOK,
		}, nil
	}

	// Record before dispatch, even when no targets resolve, so a redelivery
	// of this event dedups instead of reprocessing.
	if _, err := p.Ledger.Record(ctx, core.RecordDeliveryInput{
		DeliveryID: deliveryID,
		Repo:       repo,
		EventName:  eventName,
	}); err != nil {
		return internalOutcome(), fmt.Errorf("webhooks: record delivery: %w", err)
	}

	targets, err := p.Resolver.ResolveTargets(ctx, repo, event.Kind)
	if err != nil {
		return internalOutcome(), fmt.Errorf("webhooks: resolve targets: %w", err)
	}

	message := p.Renderer.Render(event)
	results, err := p.Dispatcher.Dispatch(ctx, targets, message)
	if err != nil {
		return internalOutcome(), fmt.Errorf("webhooks: dispatch: %w", err)
	}

	succeeded, failed := dispatch.Summary(results)
	p.logger().Info("processed delivery",
		"delivery_id", deliveryID,
		"repo", repo,
		"event", eventName,
		"kind", string(event.Kind),
		"pushed", succeeded,
		"failed", failed,
	)
	return Outcome{Status: StatusOK, Pushed: succeeded, HTTPStatus: http.StatusOK}, nil
}

func (p *Pipeline) extractDeliveryID(req Request) (string, error) {
	extractor := p.ExtractID
	if extractor == nil {
		extractor = HeaderDeliveryIDExtractor("X-GitHub-Delivery")
	}
	return extractor(req)
}

func (p *Pipeline) eventHeader() string {
	if p != nil && p.EventHeader != "" {
		return p.EventHeader
	}
	return "X-GitHub-Event"
}

func (p *Pipeline) logger() core.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return glog.Nop()
}

func internalOutcome() Outcome {
	return Outcome{
		Status:     StatusError,
		Reason:     ReasonInternal,
		HTTPStatus: http.StatusInternalServerError,
	}
}
