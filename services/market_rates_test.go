package services

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offersHTML = `
<html><body>
<div class="table-card-offers-bottom">
  <div class="table-card-offers-block1-text">
    <span class="medium-text">Alpha Bank</span>
    <a href="/credit/1">Consumer microloan</a>
  </div>
  <div class="table-card-offers-block2"><span class="medium-text">18% - 24%</span></div>
  <div class="table-card-offers-block3"><span class="medium-text">up to 24 months</span></div>
  <div class="table-card-offers-block4"><span class="medium-text">50 000 000</span></div>
</div>
<div class="table-card-offers-bottom">
  <div class="table-card-offers-block1-text">
    <span class="medium-text"></span>
  </div>
  <div class="table-card-offers-block2"><span class="medium-text">20%</span></div>
</div>
</body></html>`

func TestParseOffers(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(offersHTML))
	require.NoError(t, err)

	parser := NewMarketRateParser()
	rates := parser.parseOffers(doc, "https://example.com/credits")

	// The second block has no bank name and is skipped
	require.Len(t, rates, 1)
	assert.Equal(t, "Alpha Bank", rates[0].BankName)
	assert.Equal(t, "Consumer microloan", rates[0].Description)
	assert.Equal(t, "18% - 24%", rates[0].Rate)
	assert.Equal(t, "up to 24 months", rates[0].Term)
	assert.Equal(t, "50 000 000", rates[0].Amount)
	assert.Equal(t, "https://example.com/credits", rates[0].URL)
}
