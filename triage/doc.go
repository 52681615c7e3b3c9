// Package triage merges freshly scraped offers with the triage state saved by
// the previous session and owns that state while the user works through it.
//
// Every known offer URL is in exactly one of two sets. New holds offers that
// still need a decision, each with an interesting flag. Rejected holds
// offers the user excluded, each with one Reason. Reconcile builds the sets
// at startup; Store is then the only write path until the session ends.
package triage
