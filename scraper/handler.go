package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"offer_manager/config"
	"offer_manager/httputil"
	"offer_manager/models"
)

var (
	// ErrLayoutChanged means the page loaded but the listing container is gone:
	// the site markup changed and the parser needs updating.
	ErrLayoutChanged = errors.New("listing container not found")
	ErrUnknownSite   = errors.New("unknown site handler")
)

// Handler is one listing site. It satisfies triage.Source.
type Handler interface {
	ID() string
	Name() string
	Endpoint() string
	Delay() time.Duration
	Fetch(ctx context.Context) ([]models.Listing, error)
}

// ParseFunc extracts listings from a parsed results page.
type ParseFunc func(doc *goquery.Document, site *config.SiteConfig) ([]models.Listing, error)

var parsers = map[string]ParseFunc{
	"citya":     parseCitya,
	"century21": parseCentury21,
}

func NewHandler(siteCfg *config.SiteConfig, fetcher Fetcher) (Handler, error) {
	parse, ok := parsers[siteCfg.Handler]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, siteCfg.Handler)
	}
	return &HTMLHandler{cfg: siteCfg, fetcher: fetcher, parse: parse}, nil
}

// Pool builds handlers for every configured site and owns the fetchers they share.
type Pool struct {
	Handlers []Handler
	browser  *BrowserFetcher
}

func NewPool(cfg *config.Config, clients *httputil.Clients) (*Pool, error) {
	p := &Pool{}
	httpFetcher := NewHTTPFetcher(clients.Scraping, cfg.Scraper.UserAgent)

	for _, site := range cfg.Sites {
		var fetcher Fetcher = httpFetcher
		if site.Fetcher == config.FetcherBrowser {
			if p.browser == nil {
				p.browser = NewBrowserFetcher(cfg.Scraper.UserAgent, cfg.Scraper.Timeout)
			}
			fetcher = p.browser
		}

		h, err := NewHandler(site, fetcher)
		if err != nil {
			return nil, err
		}
		p.Handlers = append(p.Handlers, h)
	}

	return p, nil
}

func (p *Pool) Close() {
	if p.browser != nil {
		p.browser.Close()
	}
}
