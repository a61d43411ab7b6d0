package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"marrfa-chat/internal/lexicon"
	"marrfa-chat/internal/model"
)

var (
	// Bedroom-count phrases are stripped before price matching so "2 bed"
	// is never read as a price.
	bedroomStripRe = regexp.MustCompile(`\b\d+\s*(bed|beds|bedroom|bedrooms|room|rooms)\b`)

	priceBetweenRe = regexp.MustCompile(`between\s+(\d+(?:\.\d+)?)\s*(m|k)?\s+and\s+(\d+(?:\.\d+)?)\s*(m|k)?`)
	priceRangeRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(m|k)?\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)\s*(m|k)?`)
	priceUnderRe   = regexp.MustCompile(`(?:under|below|less than)\s+(\d+(?:\.\d+)?)\s*(m|k)?\b`)
	priceOverRe    = regexp.MustCompile(`(?:over|above|more than)\s+(\d+(?:\.\d+)?)\s*(m|k)?\b`)
	priceBareRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(m|k)\b`)

	bedroomRe = regexp.MustCompile(`(\d+)\s*(bed|beds|bedroom|bedrooms|br|room|rooms)`)

	currencyAmountBefore *regexp.Regexp
	currencyAmountAfter  *regexp.Regexp
)

func init() {
	codes := strings.Join(lexicon.ForeignCurrencyCodes, "|")
	currencyAmountBefore = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(` + codes + `)\b`)
	currencyAmountAfter = regexp.MustCompile(`\b(` + codes + `)\s*(\d[\d,]*(?:\.\d+)?)`)
}

// ParseFilters extracts structured search filters from free text. Pure and
// deterministic: same input, same FilterSet, no I/O.
//
// The currency guard runs first. A monetary amount tagged with a non-AED
// currency short-circuits the parse entirely, forcing the caller into the
// conversion-prompt branch instead of a wrong AED-denominated search.
func ParseFilters(text string) model.FilterSet {
	q := Normalize(text)
	if q.IsEmpty() {
		return model.FilterSet{}
	}
	lowered := q.Lowered

	if fs, ok := detectForeignCurrency(lowered); ok {
		return fs
	}

	// Sub-parses write disjoint keys; merge is plain assignment in the
	// fixed order area, price, bedrooms, type, status, sale status,
	// developer.
	var f model.FilterSet
	parseArea(lowered, &f)
	parsePrice(lowered, &f)
	parseBedrooms(lowered, &f)
	parsePropertyType(lowered, &f)
	parseStatus(lowered, &f)
	parseSaleStatus(lowered, &f)
	parseDevelopers(lowered, &f)
	return f
}

func detectForeignCurrency(lowered string) (model.FilterSet, bool) {
	if m := currencyAmountBefore.FindStringSubmatch(lowered); m != nil {
		return foreignCurrencyFilter(m[1], m[2]), true
	}
	if m := currencyAmountAfter.FindStringSubmatch(lowered); m != nil {
		return foreignCurrencyFilter(m[2], m[1]), true
	}
	for _, sym := range lexicon.ForeignCurrencySymbols {
		re := regexp.MustCompile(regexp.QuoteMeta(sym.Key) + `\s*(\d[\d,]*(?:\.\d+)?)`)
		if m := re.FindStringSubmatch(lowered); m != nil {
			return model.FilterSet{
				ForeignCurrency: true,
				Amount:          strings.ReplaceAll(m[1], ",", ""),
				Currency:        sym.Value,
			}, true
		}
	}
	return model.FilterSet{}, false
}

func foreignCurrencyFilter(amount, word string) model.FilterSet {
	code, ok := lexicon.CurrencyWordCodes[word]
	if !ok {
		code = strings.ToUpper(word)
	}
	return model.FilterSet{
		ForeignCurrency: true,
		Amount:          strings.ReplaceAll(amount, ",", ""),
		Currency:        code,
	}
}

// toAED converts an amount with an optional magnitude suffix to integer AED.
func toAED(amount, unit string) int {
	n, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	switch unit {
	case "m":
		n *= 1_000_000
	case "k":
		n *= 1_000
	}
	return int(n)
}

func parsePrice(lowered string, f *model.FilterSet) {
	cleaned := bedroomStripRe.ReplaceAllString(lowered, "")

	if m := priceBetweenRe.FindStringSubmatch(cleaned); m != nil {
		from, to := toAED(m[1], m[2]), toAED(m[3], m[4])
		f.UnitPriceFrom, f.UnitPriceTo = &from, &to
		return
	}
	if m := priceRangeRe.FindStringSubmatch(cleaned); m != nil {
		from, to := toAED(m[1], m[2]), toAED(m[3], m[4])
		f.UnitPriceFrom, f.UnitPriceTo = &from, &to
		return
	}
	if m := priceUnderRe.FindStringSubmatch(cleaned); m != nil {
		to := toAED(m[1], m[2])
		f.UnitPriceTo = &to
		return
	}
	if m := priceOverRe.FindStringSubmatch(cleaned); m != nil {
		from := toAED(m[1], m[2])
		f.UnitPriceFrom = &from
		return
	}
	if m := priceBareRe.FindStringSubmatch(cleaned); m != nil {
		to := toAED(m[1], m[2])
		f.UnitPriceTo = &to
	}
}

func parseBedrooms(lowered string, f *model.FilterSet) {
	if strings.Contains(lowered, "studio") {
		f.UnitBedrooms = "Studio"
		return
	}
	if m := bedroomRe.FindStringSubmatch(lowered); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 10 {
			f.UnitBedrooms = fmt.Sprintf("%d bedroom", n)
		}
	}
}

func parsePropertyType(lowered string, f *model.FilterSet) {
	for _, mapping := range lexicon.PropertyTypes {
		if strings.Contains(lowered, mapping.Key) {
			f.UnitTypes = []string{mapping.Value}
			return
		}
	}
}

func parseStatus(lowered string, f *model.FilterSet) {
	for _, mapping := range lexicon.StatusWords {
		if strings.Contains(lowered, mapping.Key) {
			f.Status = []string{mapping.Value}
			return
		}
	}
}

func parseSaleStatus(lowered string, f *model.FilterSet) {
	for _, mapping := range lexicon.SaleStatusWords {
		if strings.Contains(lowered, mapping.Key) {
			f.SaleStatus = []string{mapping.Value}
			return
		}
	}
}

// parseDevelopers accumulates every match: one query may reference several
// developers.
func parseDevelopers(lowered string, f *model.FilterSet) {
	var found []string
	for _, dev := range lexicon.Developers {
		if strings.Contains(lowered, dev) {
			found = append(found, capitalize(dev))
		}
	}
	if len(found) > 0 {
		f.Developers = found
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseArea(lowered string, f *model.FilterSet) {
	for _, area := range lexicon.Areas {
		if strings.Contains(lowered, area) {
			f.SearchQuery = area
			return
		}
	}
	for _, mapping := range lexicon.CountryFallbacks {
		if strings.Contains(lowered, mapping.Key) {
			f.SearchQuery = mapping.Value
			return
		}
	}
}
