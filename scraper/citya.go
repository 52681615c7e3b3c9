package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"offer_manager/config"
	"offer_manager/models"
)

func parseCitya(doc *goquery.Document, site *config.SiteConfig) ([]models.Listing, error) {
	list := doc.Find("ul.list-biens").First()
	if list.Length() == 0 {
		return nil, ErrLayoutChanged
	}

	var listings []models.Listing
	var parseErr error
	list.Find("div.infos").EachWithBreak(func(_ int, info *goquery.Selection) bool {
		link := info.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		u, err := absoluteURL(site, href)
		if err != nil {
			parseErr = fmt.Errorf("bad link %q: %w", href, err)
			return false
		}

		title := cleanText(link.Find("h3").First().Text())
		city := cleanText(link.Find("p.ville").First().Text())

		listings = append(listings, models.Listing{
			URL:    u,
			Source: site.Name,
			Name:   cleanText(title + " " + city),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return listings, nil
}
