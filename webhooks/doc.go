// Package webhooks contains the inbound delivery pipeline: signature
// verification, dedup against the delivery ledger, trust filtering, event
// normalization, and fan-out, plus the HTTP handler that fronts it.
//
// The pipeline is a linear state machine; each stage is a short-circuit
// point with its own terminal outcome, and the dedup record is written
// before dispatch begins so a redelivery of the same event can never be
// processed twice.
package webhooks
