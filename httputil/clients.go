package httputil

import (
	"crypto/tls"
	"net/http"
	"net/url"

	"offer_manager/config"
)

type Clients struct {
	Scraping *http.Client // target listing sites, proxied when PROXY_URL is set
}

func NewClients(cfg *config.Config) *Clients {
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
		TLSNextProto:      make(map[string]func(string, *tls.Conn) http.RoundTripper),
	}
	if cfg.Proxy.URL != "" {
		if proxyURL, err := url.Parse(cfg.Proxy.URL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &Clients{
		Scraping: &http.Client{
			Timeout:   cfg.Scraper.Timeout,
			Transport: transport,
		},
	}
}
