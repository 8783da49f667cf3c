// Package dispatch fans a rendered message out to subscriber targets under a
// bounded concurrency budget. Per-target failures are captured as results,
// never propagated; a failed send does not stop sibling deliveries.
package dispatch
