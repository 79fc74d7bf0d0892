/*
Copyright © 2026 yardgoats-tracker contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package engine

// This source file contains the scraper for the promotions calendar page.
// The page is server-rendered HTML with one table row per game: the first
// cell holds the game date in one of several formats, the second cell the
// promotion descriptions. A row whose date can not be recovered is dropped
// rather than guessed at.

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/types"
)

const promotionsUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// promoRule maps a keyword set onto a promotion type
type promoRule struct {
	keywords  []string
	promoType types.PromoType
}

// classification rules, checked in order with first match winning. The
// giveaway rule comes first so "Jersey Night" lands as a giveaway rather
// than a theme night.
var promoRules = []promoRule{
	{[]string{"giveaway", "give away", "hat", "shirt", "jersey", "bobblehead",
		"tote", "bag", "paddle", "crocs", "fanny pack", "cowboy"}, types.PromoGiveaway},
	{[]string{"fireworks", "firework"}, types.PromoFireworks},
	{[]string{"dollar", "$1", "discount", "deal", "buck", "cheap",
		"happy hour", "value"}, types.PromoDiscount},
	{[]string{"negro league", "whalers", "alumni", "heritage"}, types.PromoHeritage},
	{[]string{"star wars", "pajama", "country", "90s", "unicorn",
		"night", "theme", "celebration", "pride",
		"jersey retirement", "boy band"}, types.PromoTheme},
}

// ClassifyPromotion classifies a promotion description into a promotion
// type. Falls back to the "special" type when no keyword matches.
func ClassifyPromotion(description string) types.PromoType {
	text := strings.ToLower(description)
	for _, rule := range promoRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.promoType
			}
		}
	}
	return types.PromoSpecial
}

// datePattern couples a regular expression with the time layouts that can
// parse its capture
type datePattern struct {
	expression *regexp.Regexp
	layouts    []string
	hasYear    bool
}

var datePatterns = []datePattern{
	// "April 10, 2026" or "Apr 10, 2026", with or without a weekday prefix
	{regexp.MustCompile(`([A-Z][a-z]{2,8} \d{1,2}, \d{4})`),
		[]string{"January 2, 2006", "Jan 2, 2006"}, true},
	// "04/10/2026"
	{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		[]string{"1/2/2006"}, true},
	// "2026-04-10"
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
		[]string{"2006-01-02"}, true},
	// "April 10" with no year; the current season year is assumed
	{regexp.MustCompile(`([A-Z][a-z]{2,8} \d{1,2})`),
		[]string{"January 2, 2006", "Jan 2, 2006"}, false},
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// parseDateFromText recovers a game date from free-form text. Dates without
// a year are assumed to belong to the given season year.
func parseDateFromText(text string, seasonYear int) (types.GameDate, bool) {
	text = whitespacePattern.ReplaceAllString(text, " ")

	for _, pattern := range datePatterns {
		match := pattern.expression.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		raw := strings.TrimSuffix(strings.TrimSpace(match[1]), ",")
		if !pattern.hasYear {
			raw = raw + ", " + time.Date(seasonYear, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
		}

		for _, layout := range pattern.layouts {
			parsed, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			return types.GameDate(parsed.Format(time.DateOnly)), true
		}
	}

	return "", false
}

// PromotionsFetcher retrieves and parses the promotions calendar page
type PromotionsFetcher struct {
	Configuration conf.PromotionsConfiguration
	Client        *http.Client

	// Now is used to derive the season year for dates without one;
	// overridable in tests
	Now func() time.Time
}

// NewPromotionsFetcher constructs a promotions fetcher for given configuration
func NewPromotionsFetcher(configuration conf.PromotionsConfiguration) *PromotionsFetcher {
	return &PromotionsFetcher{
		Configuration: configuration,
		Client: &http.Client{
			Timeout: configuration.Timeout,
		},
		Now: time.Now,
	}
}

// Fetch retrieves the promotions page and returns the promotion sets keyed
// by game date
func (fetcher *PromotionsFetcher) Fetch() (map[types.GameDate][]types.PromoEntry, error) {
	request, err := http.NewRequest(http.MethodGet, fetcher.Configuration.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", promotionsUserAgent)
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")

	response, err := fetcher.Client.Do(request)
	if err != nil {
		log.Error().Err(err).Msg("Promotions page request failed")
		return nil, &PromotionsFetchError{Msg: err.Error()}
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Unable to close response body")
		}
	}()

	if response.StatusCode != http.StatusOK {
		err := &PromotionsFetchError{Msg: "promotions page returned unexpected status " + response.Status}
		log.Error().Err(err).Msg("Promotions page request failed")
		return nil, err
	}

	return ParsePromotionsPage(response.Body, fetcher.Now().Year())
}

// ParsePromotionsPage parses the promotions calendar HTML. Each table row
// with at least two cells contributes one game date and its promotion
// descriptions; several promotions in one cell are separated by "&".
func ParsePromotionsPage(reader io.Reader, seasonYear int) (map[types.GameDate][]types.PromoEntry, error) {
	document, err := html.Parse(reader)
	if err != nil {
		return nil, &PromotionsFetchError{Msg: err.Error()}
	}

	result := make(map[types.GameDate][]types.PromoEntry)

	for _, row := range findElements(document, "tr") {
		cells := findElements(row, "td")
		if len(cells) < 2 {
			continue
		}

		dateText := textContent(cells[0])
		descriptionText := textContent(cells[1])

		gameDate, ok := parseDateFromText(dateText, seasonYear)
		if !ok {
			log.Warn().Str("text", dateText).Msg("Dropping promotions row with unparseable date")
			continue
		}

		for _, description := range strings.Split(descriptionText, "&") {
			description = strings.TrimSpace(description)
			if description == "" {
				continue
			}
			result[gameDate] = append(result[gameDate], types.PromoEntry{
				Type:        ClassifyPromotion(description),
				Description: description,
			})
		}
	}

	return result, nil
}

// findElements returns all descendant elements with given tag name in
// document order
func findElements(node *html.Node, tag string) []*html.Node {
	var found []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return found
}

// textContent returns the concatenated text of all text nodes under given
// node, with whitespace collapsed
func textContent(node *html.Node) string {
	var builder strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(builder.String(), " "))
}
