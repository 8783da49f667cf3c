// Package events converts raw provider webhook payloads into the canonical
// core.Event model. Dispatch happens over a closed table of provider event
// names; unrecognized names and unrecognized action sub-types are dropped
// silently rather than treated as errors.
package events
