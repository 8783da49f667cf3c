package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-repowatch/core"
)

const defaultConcurrency = 5

// Result is the delivery outcome for a single target.
type Result struct {
	Target core.PushTarget
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Summary tallies a result list into success and failure counts.
func Summary(results []Result) (succeeded int, failed int) {
	for _, result := range results {
		if result.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Dispatcher drains a target list through a fixed-size worker pool. The pool
// size is min(concurrency, len(targets)); each worker resolves the target's
// transport, sends, and records one result. Dispatch returns only after every
// worker has finished.
type Dispatcher struct {
	resolver    core.TransportResolver
	logger      core.Logger
	concurrency int
	sendTimeout time.Duration
}

type Option func(*Dispatcher)

func WithConcurrency(concurrency int) Option {
	return func(d *Dispatcher) {
		d.concurrency = concurrency
	}
}

// WithSendTimeout bounds each individual send. Zero disables the per-send
// timeout; a transport that hangs then stalls its worker until the context
// is cancelled.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.sendTimeout = timeout
	}
}

func WithLogger(logger core.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(resolver core.TransportResolver, options ...Option) (*Dispatcher, error) {
	if resolver == nil {
		return nil, fmt.Errorf("dispatch: transport resolver is required")
	}
	d := &Dispatcher{
		resolver:    resolver,
		concurrency: defaultConcurrency,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	if d.concurrency <= 0 {
		d.concurrency = defaultConcurrency
	}
	d.logger = glog.Ensure(d.logger)
	return d, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, targets []core.PushTarget, message core.Message) ([]Result, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatch: dispatcher is not configured")
	}
	if len(targets) == 0 {
		return []Result{}, nil
	}

	workers := d.concurrency
	if len(targets) < workers {
		workers = len(targets)
	}

	queue := make(chan int)
	results := make([]Result, len(targets))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range queue {
				results[idx] = Result{
					Target: targets[idx],
					Err:    d.send(ctx, targets[idx], message),
				}
			}
		}()
	}

	for idx := range targets {
		queue <- idx
	}
	close(queue)
	wg.Wait()

	for _, result := range results {
		if result.Err != nil {
			d.logger.Warn("delivery failed",
				"target", result.Target.String(),
				"error", result.Err.Error(),
			)
		}
	}
	return results, nil
}

func (d *Dispatcher) send(ctx context.Context, target core.PushTarget, message core.Message) error {
	transport, err := d.resolver.Resolve(target.Platform)
	if err != nil {
		return fmt.Errorf("dispatch: resolve transport for %s: %w", target.String(), err)
	}
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}
	if err := transport.Send(ctx, target, message); err != nil {
		return fmt.Errorf("dispatch: send to %s: %w", target.String(), err)
	}
	return nil
}
