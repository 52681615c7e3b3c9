package triage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"offer_manager/models"
)

// Source is one listing site.
type Source interface {
	ID() string
	Name() string
	Endpoint() string
	Fetch(ctx context.Context) ([]models.Listing, error)
}

// RunRecorder keeps per-source run history. Failures to record are logged only.
type RunRecorder interface {
	CreateRun(run *models.ScrapeRun) error
	UpdateRun(run *models.ScrapeRun) error
	Log(runID *uuid.UUID, level models.LogLevel, message, siteID string) error
}

// Snapshot is the full triage state, in display order.
type Snapshot struct {
	New      []models.NewListing
	Rejected []models.RejectedListing
}

// delayer is a Source with its own pause before fetching.
type delayer interface {
	Delay() time.Duration
}

type Result struct {
	Snapshot
	Anomalies []Anomaly
}

type Reconciler struct {
	sources  []Source
	recorder RunRecorder
	delay    time.Duration
	level    models.LogLevel
}

func NewReconciler(sources []Source) *Reconciler {
	return &Reconciler{sources: sources, level: models.LogLevelInfo}
}

func (r *Reconciler) SetRecorder(rec RunRecorder) {
	r.recorder = rec
}

// SetDelay sets the pause between two source fetches. A source with a
// non-zero Delay of its own uses that instead.
func (r *Reconciler) SetDelay(d time.Duration) {
	r.delay = d
}

// SetLogLevel drops run log lines below level.
func (r *Reconciler) SetLogLevel(level models.LogLevel) {
	r.level = level
}

func (r *Reconciler) pauseBefore(src Source) time.Duration {
	if d, ok := src.(delayer); ok && d.Delay() > 0 {
		return d.Delay()
	}
	return r.delay
}

// Reconcile is a Reconciler without run history or delay.
func Reconcile(ctx context.Context, prev Snapshot, sources []Source) Result {
	return NewReconciler(sources).Run(ctx, prev)
}

// Run fetches every source once, in order, and merges the results with prev.
//
// Offers persisted as New keep their state when seen again. Offers persisted
// as Rejected are carried over whether seen or not. Offers persisted as New
// but returned by no source are dropped, with an anomaly if they were marked
// interesting. A failing source is reported as an anomaly and contributes
// nothing. Run never fails.
func (r *Reconciler) Run(ctx context.Context, prev Snapshot) Result {
	rejected := make(map[string]bool, len(prev.Rejected))
	for _, l := range prev.Rejected {
		rejected[l.URL] = true
	}

	// Working copy of the persisted New set. Rejected wins if saved state
	// ever lists a URL in both.
	pending := make(map[string]models.NewListing, len(prev.New))
	for _, l := range prev.New {
		if rejected[l.URL] {
			log.Printf("Offer %s is both new and rejected in saved state, keeping it rejected", l.URL)
			continue
		}
		pending[l.URL] = l
	}

	var result Result
	seen := make(map[string]bool)

	for i, src := range r.sources {
		if pause := r.pauseBefore(src); i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}

		run := models.NewScrapeRun(src.ID())
		r.createRun(run)
		r.log(run, models.LogLevelInfo, fmt.Sprintf("Fetching %s", src.Endpoint()))

		listings, err := src.Fetch(ctx)
		if err != nil {
			r.log(run, models.LogLevelError, fmt.Sprintf("Fetch failed: %v", err))
			result.Anomalies = append(result.Anomalies, SourceUnavailable(src.Name(), src.Endpoint(), err))
			run.Status = models.RunStatusFailed
			run.Error = err.Error()
			r.finishRun(run)
			continue
		}

		if len(listings) == 0 {
			r.log(run, models.LogLevelWarn, "No offers on page")
		}

		for _, l := range listings {
			// First occurrence wins, so a preserved entry is never replaced by a fresh one.
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			run.ListingsFound++

			if kept, ok := pending[l.URL]; ok {
				result.New = append(result.New, kept)
				delete(pending, l.URL)
				continue
			}
			if rejected[l.URL] {
				continue
			}
			result.New = append(result.New, l.Fresh())
			run.ListingsNew++
		}

		run.Status = models.RunStatusCompleted
		r.log(run, models.LogLevelInfo, fmt.Sprintf("Completed: %d found, %d new", run.ListingsFound, run.ListingsNew))
		r.finishRun(run)
	}

	result.Rejected = append([]models.RejectedListing(nil), prev.Rejected...)

	// Walk prev.New rather than the map so anomalies come out in saved order.
	for _, l := range prev.New {
		gone, ok := pending[l.URL]
		if !ok {
			continue
		}
		delete(pending, l.URL)
		if gone.Interesting {
			log.Printf("Interesting offer vanished: %s : %s (%s)", gone.Source, gone.Name, gone.URL)
			result.Anomalies = append(result.Anomalies, InterestingVanished(gone))
		}
	}

	return result
}

func (r *Reconciler) createRun(run *models.ScrapeRun) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.CreateRun(run); err != nil {
		log.Printf("Warning: failed to record run for %s: %v", run.SiteID, err)
	}
}

func (r *Reconciler) finishRun(run *models.ScrapeRun) {
	now := time.Now()
	run.FinishedAt = &now
	if r.recorder == nil {
		return
	}
	if err := r.recorder.UpdateRun(run); err != nil {
		log.Printf("Warning: failed to update run for %s: %v", run.SiteID, err)
	}
}

func (r *Reconciler) log(run *models.ScrapeRun, level models.LogLevel, message string) {
	if !level.Enabled(r.level) {
		return
	}
	log.Printf("[%s] %s: %s", level, run.SiteID, message)
	if r.recorder != nil {
		r.recorder.Log(&run.ID, level, message, run.SiteID)
	}
}
