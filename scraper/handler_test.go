package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"offer_manager/config"
	"offer_manager/httputil"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

// fixtureFetcher serves a fixture file regardless of the requested URL.
type fixtureFetcher struct {
	body []byte
	err  error
}

func (f fixtureFetcher) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	return f.body, f.err
}

func cityaSite() *config.SiteConfig {
	return &config.SiteConfig{
		ID:       "citya",
		Name:     "Citya",
		Handler:  "citya",
		Endpoint: "https://www.citya.com/annonces/location/appartement,maison/paris-75",
		BaseURL:  "https://www.citya.com",
	}
}

func century21Site() *config.SiteConfig {
	return &config.SiteConfig{
		ID:       "century21",
		Name:     "Century 21",
		Handler:  "century21",
		Endpoint: "https://www.century21.fr/annonces/f/location-maison-appartement/v-paris/",
		BaseURL:  "https://www.century21.fr",
	}
}

func TestCitya_Basic(t *testing.T) {
	h, err := NewHandler(cityaSite(), fixtureFetcher{body: loadFixture(t, "citya_basic.html")})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	listings, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.URL != "https://www.citya.com/annonces/location/appartement/paris-11/123456" {
		t.Fatalf("unexpected URL %s", first.URL)
	}
	if first.Source != "Citya" {
		t.Fatalf("expected source Citya, got %s", first.Source)
	}
	if first.Name != "Appartement 2 pièces 38 m² Paris 11e" {
		t.Fatalf("unexpected name %q", first.Name)
	}

	second := listings[1]
	if second.URL != "https://www.citya.com/annonces/location/maison/paris-20/987654" {
		t.Fatalf("unexpected URL %s", second.URL)
	}
	if second.Name != "Maison 3 pièces 61 m² Paris 20e" {
		t.Fatalf("unexpected name %q", second.Name)
	}
}

func TestCitya_EmptyList(t *testing.T) {
	h, _ := NewHandler(cityaSite(), fixtureFetcher{body: loadFixture(t, "citya_empty.html")})

	listings, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestCentury21_Basic(t *testing.T) {
	h, err := NewHandler(century21Site(), fixtureFetcher{body: loadFixture(t, "century21_basic.html")})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	listings, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].URL != "https://www.century21.fr/trouver_logement/detail/2812345678/" {
		t.Fatalf("unexpected URL %s", listings[0].URL)
	}
	if listings[0].Name != "Appartement PARIS 15 2 pièces" {
		t.Fatalf("unexpected name %q", listings[0].Name)
	}
	if listings[1].Source != "Century 21" || listings[1].Name != "Studio PARIS 18" {
		t.Fatalf("unexpected second listing %+v", listings[1])
	}
}

func TestCentury21_EmptyList(t *testing.T) {
	h, _ := NewHandler(century21Site(), fixtureFetcher{body: loadFixture(t, "century21_empty.html")})

	listings, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestLayoutChanged(t *testing.T) {
	body := loadFixture(t, "layout_changed.html")

	for _, site := range []*config.SiteConfig{cityaSite(), century21Site()} {
		h, _ := NewHandler(site, fixtureFetcher{body: body})
		_, err := h.Fetch(context.Background())
		if !errors.Is(err, ErrLayoutChanged) {
			t.Fatalf("%s: expected ErrLayoutChanged, got %v", site.ID, err)
		}
	}
}

func TestNewHandler_Unknown(t *testing.T) {
	site := cityaSite()
	site.Handler = "seloger"

	if _, err := NewHandler(site, fixtureFetcher{}); !errors.Is(err, ErrUnknownSite) {
		t.Fatalf("expected ErrUnknownSite, got %v", err)
	}
}

func TestHTTPFetcher_OK(t *testing.T) {
	body := loadFixture(t, "citya_basic.html")
	var gotUA string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))
	defer s.Close()

	site := cityaSite()
	site.Endpoint = s.URL + "/annonces"

	h, _ := NewHandler(site, NewHTTPFetcher(s.Client(), "offer-test"))
	listings, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if gotUA != "offer-test" {
		t.Fatalf("expected user agent offer-test, got %q", gotUA)
	}
}

func TestHTTPFetcher_BadStatus(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer s.Close()

	f := NewHTTPFetcher(s.Client(), "offer-test")
	if _, err := f.FetchPage(context.Background(), s.URL); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	client := s.Client()
	client.Timeout = 100 * time.Millisecond

	f := NewHTTPFetcher(client, "offer-test")
	if _, err := f.FetchPage(context.Background(), s.URL); err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
}

func TestNewPool(t *testing.T) {
	c21 := century21Site()
	c21.RateLimitMS = 250
	cfg := &config.Config{
		Scraper: config.ScraperConfig{Timeout: time.Second, UserAgent: "offer-test"},
		Sites:   []*config.SiteConfig{cityaSite(), c21},
	}

	pool, err := NewPool(cfg, httputil.NewClients(cfg))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	if len(pool.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(pool.Handlers))
	}
	if pool.Handlers[0].ID() != "citya" || pool.Handlers[1].Name() != "Century 21" {
		t.Fatalf("unexpected handlers %s, %s", pool.Handlers[0].ID(), pool.Handlers[1].Name())
	}
	if pool.browser != nil {
		t.Fatalf("browser fetcher should not start for http-only sites")
	}
	if pool.Handlers[0].Delay() != 0 || pool.Handlers[1].Delay() != 250*time.Millisecond {
		t.Fatalf("unexpected delays %s, %s", pool.Handlers[0].Delay(), pool.Handlers[1].Delay())
	}
}
