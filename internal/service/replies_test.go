package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marrfa-chat/internal/model"
)

func intPtr(n int) *int { return &n }

func TestGreetingReplyPerMethod(t *testing.T) {
	assert.Contains(t, greetingReply("listening_check"), "I'm listening")
	assert.Contains(t, greetingReply("chatbot_self"), "ready to assist")
	assert.Contains(t, greetingReply("empty_query"), "short message")
	assert.Contains(t, greetingReply("pattern"), "team, CEO, policies, terms")
}

func TestCurrencyConversionReplyUSD(t *testing.T) {
	reply := currencyConversionReply("50000", "USD")

	assert.Contains(t, reply, "Currency Conversion Required")
	assert.Contains(t, reply, "50000 USD")
	assert.Contains(t, reply, "183,500 AED")
}

func TestCurrencyConversionReplyOther(t *testing.T) {
	reply := currencyConversionReply("100000", "EUR")

	assert.Contains(t, reply, "100000 EUR")
	assert.NotContains(t, reply, "≈")
}

func TestSearchReplyEmptyOnZeroResults(t *testing.T) {
	assert.Empty(t, searchReply("villas in dubai", &model.FilterSet{}, 0, 0))
}

func TestSearchReplyHowManyMarrfa(t *testing.T) {
	reply := searchReply("how many properties does marrfa have?", &model.FilterSet{}, 25, 10)

	assert.Contains(t, reply, "Marrfa currently has 25 properties listed in Dubai")
	assert.Contains(t, reply, "top 10")
}

func TestSearchReplyMentionsAll(t *testing.T) {
	reply := searchReply("show all properties", &model.FilterSet{SearchQuery: "dubai marina"}, 8, 8)

	assert.Equal(t, "Here are all 8 properties matching your criteria in Dubai Marina:", reply)
}

func TestSearchReplyPriceRange(t *testing.T) {
	f := &model.FilterSet{UnitPriceFrom: intPtr(1000000), UnitPriceTo: intPtr(2500000)}
	reply := searchReply("properties between 1m and 2.5m", f, 12, 10)

	assert.Contains(t, reply, "AED 1,000,000 - 2,500,000")
	assert.Contains(t, reply, "top 10 selections")
}

func TestSearchReplyBedrooms(t *testing.T) {
	f := &model.FilterSet{UnitBedrooms: "3 bedroom", SearchQuery: "jvc"}
	reply := searchReply("3 bedroom homes", f, 6, 6)

	assert.Contains(t, reply, "all 6 premium 3 bedroom properties in Jvc")
}

func TestSearchReplyStudio(t *testing.T) {
	f := &model.FilterSet{UnitBedrooms: "Studio"}
	reply := searchReply("studios", f, 20, 10)

	assert.Contains(t, reply, "Studio apartments in Dubai are excellent investment opportunities")
}

func TestSearchReplyRecommendationWithType(t *testing.T) {
	f := &model.FilterSet{UnitTypes: []string{"Villa"}}
	reply := searchReply("could you recommend some villas", f, 9, 9)

	assert.Contains(t, reply, "here are all 9 villa in Dubai")
}

func TestSearchReplyDefaultBuckets(t *testing.T) {
	small := searchReply("waterfront residences", &model.FilterSet{}, 3, 3)
	assert.Contains(t, small, "all 3 premium properties")

	large := searchReply("waterfront residences", &model.FilterSet{}, 40, 10)
	assert.Contains(t, large, "With 40 premium properties available")
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", formatThousands(0))
	assert.Equal(t, "950", formatThousands(950))
	assert.Equal(t, "1,000", formatThousands(1000))
	assert.Equal(t, "1,234,567", formatThousands(1234567))
	assert.Equal(t, "-12,000", formatThousands(-12000))
}
