package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"offer_manager/config"
	"offer_manager/models"
)

// HTMLHandler fetches a site's results page and hands the parsed document to
// the site's ParseFunc.
type HTMLHandler struct {
	cfg     *config.SiteConfig
	fetcher Fetcher
	parse   ParseFunc
}

func (h *HTMLHandler) ID() string {
	return h.cfg.ID
}

func (h *HTMLHandler) Name() string {
	return h.cfg.Name
}

func (h *HTMLHandler) Endpoint() string {
	return h.cfg.Endpoint
}

// Delay is the pause the reconciler takes before fetching this site.
func (h *HTMLHandler) Delay() time.Duration {
	return h.cfg.RateLimit()
}

func (h *HTMLHandler) Fetch(ctx context.Context) ([]models.Listing, error) {
	body, err := h.fetcher.FetchPage(ctx, h.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.cfg.ID, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse html: %w", h.cfg.ID, err)
	}

	listings, err := h.parse(doc, h.cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.cfg.ID, err)
	}
	return listings, nil
}

var multiSpaceRegex = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// absoluteURL resolves href against the site's base URL, falling back to the endpoint.
func absoluteURL(site *config.SiteConfig, href string) (string, error) {
	base := site.BaseURL
	if base == "" {
		base = site.Endpoint
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
