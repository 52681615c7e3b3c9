package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"offer_manager/config"
	"offer_manager/httputil"
	"offer_manager/logging"
	"offer_manager/scraper"
	"offer_manager/storage"
	"offer_manager/triage"
	"offer_manager/tui"
)

var (
	scrapeOnce = flag.Bool("scrape", false, "Reconcile once, log warnings, save and exit (no UI)")
	history    = flag.Int("history", 0, "Print the N most recent scrape runs and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	headless := *scrapeOnce || *history > 0
	logFile, err := logging.Setup(cfg.LogPath, headless)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting offer manager...")

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	if *history > 0 {
		if err := printHistory(os.Stdout, store, *history); err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		return
	}

	log.Printf("Loaded %d site configs", len(cfg.Sites))
	for _, site := range cfg.Sites {
		log.Printf("  - %s (%s, %s)", site.Name, site.ID, site.Fetcher)
	}
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy: %s", maskConnectionString(cfg.Proxy.URL))
	}

	pool, err := scraper.NewPool(cfg, httputil.NewClients(cfg))
	if err != nil {
		log.Fatalf("Failed to set up scrapers: %v", err)
	}
	defer pool.Close()

	sources := make([]triage.Source, 0, len(pool.Handlers))
	for _, h := range pool.Handlers {
		sources = append(sources, h)
	}

	reconciler := triage.NewReconciler(sources)
	reconciler.SetRecorder(store)
	reconciler.SetDelay(time.Duration(cfg.Scraper.DelayMS) * time.Millisecond)
	reconciler.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !headless {
		fmt.Printf("Fetching offers from %d sites...\n", len(sources))
	}
	result, err := startSession(ctx, store, reconciler)
	stop()
	if errors.Is(err, errInterrupted) {
		log.Println("Interrupted before every site was fetched, saved offers left untouched")
		return
	}
	if err != nil {
		log.Fatalf("Failed to load saved offers: %v", err)
	}

	for _, a := range result.Anomalies {
		log.Printf("Warning: %s", a)
	}
	log.Printf("Session starts with %d new and %d rejected offers, %d warnings",
		len(result.New), len(result.Rejected), len(result.Anomalies))

	// The browser helper echoes to the terminal, which would land on the UI.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	session := triage.NewStore(result.Snapshot, browser.OpenURL)

	if !*scrapeOnce {
		if err := tui.Run(session, result.Anomalies, browser.OpenURL); err != nil {
			log.Printf("UI error: %v", err)
		}
	}

	snap := session.Snapshot()
	if err := store.SaveListings(snap.New, snap.Rejected); err != nil {
		log.Fatalf("Failed to save offers: %v", err)
	}
	log.Printf("Saved %d new and %d rejected offers", len(snap.New), len(snap.Rejected))
	log.Println("Goodbye!")
}

var errInterrupted = errors.New("interrupted during startup fetch")

// startSession loads the saved offers and reconciles them with every site.
// If ctx ends first the partial result is discarded, since saving it would
// drop the offers of the sites never fetched.
func startSession(ctx context.Context, store *storage.SQLiteStore, reconciler *triage.Reconciler) (triage.Result, error) {
	fresh, rejected, err := store.LoadListings()
	if err != nil {
		return triage.Result{}, err
	}
	log.Printf("Loaded %d new and %d rejected offers", len(fresh), len(rejected))

	result := reconciler.Run(ctx, triage.Snapshot{New: fresh, Rejected: rejected})
	if ctx.Err() != nil {
		return triage.Result{}, errInterrupted
	}
	return result, nil
}

func printHistory(w io.Writer, store *storage.SQLiteStore, limit int) error {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-12s %-9s found=%d new=%d took=%s",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.SiteID, run.Status,
			run.ListingsFound, run.ListingsNew, run.Duration().Round(time.Millisecond))
		if run.Error != "" {
			line += "  error: " + run.Error
		}
		fmt.Fprintln(w, line)

		logs, err := store.GetLogsForRun(run.ID)
		if err != nil {
			return err
		}
		for _, l := range logs {
			fmt.Fprintf(w, "    %s [%s] %s\n", l.Timestamp.Format("15:04:05"), l.Level, l.Message)
		}
	}
	return nil
}

// maskConnectionString masks the password in a URL for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
