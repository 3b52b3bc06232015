package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/namkjs/p2plending/models"

	"github.com/PuerkitoBio/goquery"
)

var marketRateURLs = []string{
	"https://bank.uz/uz/credits/mikrozaymy",
	"https://bank.uz/uz/credits/mikrozaymy?PAGEN_3=2",
	"https://bank.uz/uz/credits/mikrozaymy?PAGEN_3=3",
}

// MarketRateParser scrapes published microcredit offers from bank listing
// pages. The rates are shown to borrowers as a benchmark when they pick an
// interest rate for their loan request.
type MarketRateParser struct {
	client *http.Client
}

func NewMarketRateParser() *MarketRateParser {
	return &MarketRateParser{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (mp *MarketRateParser) ParseURL(url string) ([]*models.MarketRate, error) {
	resp, err := mp.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return mp.parseOffers(doc, url), nil
}

func (mp *MarketRateParser) parseOffers(doc *goquery.Document, url string) []*models.MarketRate {
	var rates []*models.MarketRate

	doc.Find(".table-card-offers-bottom").Each(func(i int, s *goquery.Selection) {
		bankName := clean(s.Find(".table-card-offers-block1-text > span.medium-text").First().Text())
		description := clean(s.Find(".table-card-offers-block1-text a").First().Text())
		rate := clean(s.Find(".table-card-offers-block2 > span.medium-text").First().Text())
		term := clean(s.Find(".table-card-offers-block3 > span.medium-text").First().Text())
		amount := clean(s.Find(".table-card-offers-block4 > span.medium-text").First().Text())

		if bankName == "" || rate == "" {
			return
		}
		rates = append(rates, &models.MarketRate{
			BankName:    bankName,
			Description: description,
			Rate:        rate,
			Term:        term,
			Amount:      amount,
			URL:         url,
			CreatedAt:   time.Now(),
		})
	})
	return rates
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
