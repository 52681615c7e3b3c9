package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"offer_manager/config"
	"offer_manager/models"
)

func parseCentury21(doc *goquery.Document, site *config.SiteConfig) ([]models.Listing, error) {
	cards := doc.Find("div.js-the-list-of-properties-list-property")
	if cards.Length() == 0 {
		// An empty search still renders the list wrapper.
		if doc.Find(".js-the-list-of-properties-list").Length() == 0 {
			return nil, ErrLayoutChanged
		}
		return nil, nil
	}

	var listings []models.Listing
	var parseErr error
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		href, ok := card.Find(`a[title="Voir le détail du bien"]`).First().Attr("href")
		if !ok {
			return true
		}

		u, err := absoluteURL(site, href)
		if err != nil {
			parseErr = fmt.Errorf("bad link %q: %w", href, err)
			return false
		}

		name := cleanText(card.Find("div.c-text-theme-heading-4").First().Text())

		listings = append(listings, models.Listing{
			URL:    u,
			Source: site.Name,
			Name:   name,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return listings, nil
}
