package service

import (
	"fmt"
	"strconv"
	"strings"

	"marrfa-chat/internal/model"
)

// Fixed pipeline replies.
const (
	limitReply = "🔒 You've reached the 3-query limit. Please log in to continue."

	outOfContextReply = "I'm trained specifically on Marrfa Real Estate. Please ask about Marrfa or properties in Dubai."

	noResultsReply = "Sorry, I couldn't find any properties matching your criteria. 😔\n\n" +
		"Try adjusting your search filters like location, budget, or property type."

	companyDegradedReply = "I'm having trouble accessing company information right now. Please try again later."

	fileAuthReply = "Please log in to upload and analyze files."
)

// Greeting replies, keyed by the classification method that produced the
// GREETING verdict.
func greetingReply(method string) string {
	switch method {
	case "listening_check":
		return "Yes, I'm listening! 👋 I'm Marrfa AI, ready to help you with Dubai properties and Marrfa company information. What would you like to know?"
	case "chatbot_self":
		return "Yes, I'm here and ready to assist! I'm Marrfa AI, specialized in Dubai real estate and Marrfa company information. How can I help you today?"
	case "empty_query":
		return "Hello! 👋 I noticed you sent a short message. I'm Marrfa AI, here to help with Dubai properties and Marrfa company details. What would you like to know?"
	default:
		return "Hello! 👋 I'm Marrfa AI. " +
			"You can ask me about Marrfa (team, CEO, policies, terms) " +
			"or search for properties in Dubai. You can also upload files for analysis."
	}
}

// usdToAEDRate is the fixed conversion rate quoted in the currency warning.
const usdToAEDRate = 3.67

// currencyConversionReply tells the user to re-search in AED. USD amounts get
// an approximate conversion; other currencies just get the instruction.
func currencyConversionReply(amount, currency string) string {
	if currency == "USD" {
		if value, err := strconv.ParseFloat(amount, 64); err == nil {
			aed := formatThousands(int64(value*usdToAEDRate + 0.5))
			return fmt.Sprintf("⚠️ **Currency Conversion Required**\n\n"+
				"You specified %s USD. For accurate property search in Dubai, please convert to AED (United Arab Emirates Dirhams).\n\n"+
				"Approximately %s USD ≈ **%s AED**\n\n"+
				"Please search using AED amounts for best results.", amount, amount, aed)
		}
	}
	return fmt.Sprintf("⚠️ **Currency Conversion Required**\n\n"+
		"You specified %s %s. For property search in Dubai, please use AED (United Arab Emirates Dirhams).\n\n"+
		"Please convert %s %s to AED and search again for accurate results.", amount, currency, amount, currency)
}

// queryContext captures tone and phrasing signals used to pick a reply
// template.
type queryContext struct {
	isQuestion       bool
	isPolite         bool
	isDirect         bool
	isRecommendation bool
	isBestRelated    bool
	mentionsMarrfa   bool
	isBroadQuery     bool
	mentionsAll      bool
}

func analyzeQueryContext(query string) queryContext {
	lowered := strings.ToLower(strings.TrimSpace(query))
	return queryContext{
		isQuestion: strings.HasSuffix(lowered, "?"),
		isPolite: containsAnyWord(lowered,
			"please", "could you", "would you", "can you", "may i", "would it be possible"),
		isDirect: containsAnyWord(lowered,
			"show me", "give me", "find me", "search for", "look for", "get"),
		isRecommendation: containsAnyWord(lowered,
			"recommend", "suggest", "advise", "what would you suggest"),
		isBestRelated: containsAnyWord(lowered,
			"best", "top", "premium", "luxury", "exclusive", "featured", "high-end"),
		mentionsMarrfa: containsAnyWord(lowered, "marrfa", "marfa"),
		isBroadQuery:   len(strings.Fields(lowered)) <= 4 && strings.Contains(lowered, "properties"),
		mentionsAll: containsAnyWord(lowered,
			"all", "every", "each", "maximum", "max", "as many as", "show all"),
	}
}

// searchReply builds the contextual reply heading a non-empty result page.
// Returns "" for zero results; the caller substitutes the gentle no-results
// message.
//
// The branch order mirrors the template precedence: specific phrasings first,
// then filter-driven templates, then tone-driven defaults.
func searchReply(query string, f *model.FilterSet, total, showCount int) string {
	if total == 0 {
		return ""
	}

	qc := analyzeQueryContext(query)
	lowered := strings.ToLower(query)
	location := titleWords(f.SearchQuery)
	if location == "" {
		location = "Dubai"
	}
	allShown := showCount >= total

	// "How many properties does Marrfa have?"
	if strings.Contains(lowered, "how many") &&
		containsAnyWord(lowered, "property", "properties") && qc.mentionsMarrfa {
		if allShown {
			return fmt.Sprintf("Marrfa currently has %d properties listed in %s. Here are all their premium offerings:", total, location)
		}
		return fmt.Sprintf("Marrfa currently has %d properties listed in %s. Here are the top %d of their premium offerings:", total, location, showCount)
	}

	if qc.mentionsAll {
		if allShown {
			return fmt.Sprintf("Here are all %d properties matching your criteria in %s:", total, location)
		}
		return fmt.Sprintf("Here are the maximum %d properties I can display from the %d available in %s:", showCount, total, location)
	}

	if strings.Contains(lowered, "show me") && strings.Contains(lowered, "properties") &&
		!strings.EqualFold(location, "dubai") {
		if allShown {
			return fmt.Sprintf("Here are all the available properties in %s, showcasing premium real estate in this sought-after area:", location)
		}
		return fmt.Sprintf("Here are %d of the available properties in %s, showcasing premium real estate in this sought-after area:", showCount, location)
	}

	if qc.isRecommendation && len(f.UnitTypes) > 0 {
		typeName := strings.ToLower(f.UnitTypes[0])
		if allShown {
			return fmt.Sprintf("Based on market trends and availability, here are all %d %s in %s:", total, typeName, location)
		}
		return fmt.Sprintf("Based on market trends and availability, here are my top %d recommendations for %s in %s:", showCount, typeName, location)
	}

	if strings.Contains(lowered, "best") && qc.mentionsMarrfa {
		if allShown {
			return fmt.Sprintf("Here are all of Marrfa's premium properties, showcasing their commitment to excellence in %s real estate:", location)
		}
		return fmt.Sprintf("Here are Marrfa's top %d premium properties, showcasing their commitment to excellence in %s real estate:", showCount, location)
	}

	if len(f.Developers) > 0 && qc.mentionsMarrfa {
		devName := f.Developers[0]
		if allShown {
			return fmt.Sprintf("%s's complete portfolio in %s includes all %d premium properties. Here are their offerings:", devName, location, total)
		}
		return fmt.Sprintf("%s's current portfolio in %s includes %d premium properties. Here are their top %d standout offerings:", devName, location, total, showCount)
	}

	if f.UnitPriceFrom != nil || f.UnitPriceTo != nil {
		priceContext := ""
		switch {
		case f.UnitPriceFrom != nil && f.UnitPriceTo != nil:
			priceContext = fmt.Sprintf(" within the AED %s - %s range",
				formatThousands(int64(*f.UnitPriceFrom)), formatThousands(int64(*f.UnitPriceTo)))
		case f.UnitPriceFrom != nil:
			priceContext = fmt.Sprintf(" starting from AED %s", formatThousands(int64(*f.UnitPriceFrom)))
		case f.UnitPriceTo != nil:
			priceContext = fmt.Sprintf(" up to AED %s", formatThousands(int64(*f.UnitPriceTo)))
		}
		if allShown {
			return fmt.Sprintf("The %s market offers all %d premium properties%s. Here are the listings:", location, total, priceContext)
		}
		return fmt.Sprintf("The %s market offers %d premium properties%s. Here are the top %d selections:", location, total, priceContext, showCount)
	}

	if f.UnitBedrooms != "" {
		if strings.Contains(strings.ToLower(f.UnitBedrooms), "studio") {
			if allShown {
				return fmt.Sprintf("Here are all %d studio apartments in %s, excellent investment opportunities:", total, location)
			}
			return fmt.Sprintf("Studio apartments in %s are excellent investment opportunities. Here are %d premium studio options:", location, showCount)
		}
		if allShown {
			return fmt.Sprintf("Here are all %d premium %s properties in %s:", total, strings.ToLower(f.UnitBedrooms), location)
		}
		return fmt.Sprintf("%s offers %d premium %s properties. Here are the top %d standout options:", location, total, strings.ToLower(f.UnitBedrooms), showCount)
	}

	if len(f.UnitTypes) > 0 {
		typeName := strings.ToLower(f.UnitTypes[0])
		if allShown {
			return fmt.Sprintf("The %s %s market features all %d premium options. Here are the listings:", location, typeName, total)
		}
		return fmt.Sprintf("The %s %s market features %d premium options. Here are the top %d listings:", location, typeName, total, showCount)
	}

	switch {
	case qc.isQuestion && qc.isPolite:
		if allShown {
			return fmt.Sprintf("Certainly. The %s property market currently features all %d premium listings:", location, total)
		}
		return fmt.Sprintf("Certainly. The %s property market currently features %d premium listings. Here are the top %d most noteworthy options:", location, total, showCount)
	case qc.isQuestion:
		if allShown {
			return fmt.Sprintf("In %s, here are all %d premium properties available:", location, total)
		}
		return fmt.Sprintf("In %s, there are %d premium properties available. Here are the top %d investment opportunities:", location, total, showCount)
	case qc.isDirect:
		if allShown {
			return fmt.Sprintf("Here are all %d properties in %s, selected for their value and market position:", total, location)
		}
		return fmt.Sprintf("Here are %d premium properties in %s, selected for their value and market position:", showCount, location)
	case qc.isRecommendation:
		if allShown {
			return fmt.Sprintf("Based on current market analysis, here are all %d properties in %s:", total, location)
		}
		return fmt.Sprintf("Based on current market analysis, I recommend these %d premium properties in %s:", showCount, location)
	case qc.isBestRelated:
		if allShown {
			return fmt.Sprintf("Here are all the best properties in %s, selected for their premium features and market appeal:", location)
		}
		return fmt.Sprintf("Here are the %d best properties in %s, selected for their premium features and market appeal:", showCount, location)
	case qc.mentionsMarrfa:
		if total <= 3 {
			return fmt.Sprintf("Marrfa offers %d exclusive properties in %s, each representing premium real estate opportunities:", total, location)
		}
		if allShown {
			return fmt.Sprintf("Marrfa's complete portfolio in %s includes all %d premium properties:", location, total)
		}
		return fmt.Sprintf("Marrfa's portfolio in %s includes %d premium properties. Here are their top %d featured listings:", location, total, showCount)
	case qc.isBroadQuery:
		if allShown {
			return fmt.Sprintf("The %s property market is vibrant with all %d premium options:", location, total)
		}
		return fmt.Sprintf("The %s property market is vibrant with %d premium options. Here are the top %d standout listings:", location, total, showCount)
	}

	switch {
	case total <= 5:
		if allShown {
			return fmt.Sprintf("Here are all %d premium properties in %s, representing excellent opportunities in the local market:", total, location)
		}
		return fmt.Sprintf("Currently, %s features %d premium properties. Here are the top %d representing excellent opportunities:", location, total, showCount)
	case total <= 15:
		if allShown {
			return fmt.Sprintf("Here are all %d premium options in the %s property market:", total, location)
		}
		return fmt.Sprintf("The %s property market offers %d premium options. Here are the top %d most compelling listings:", location, total, showCount)
	default:
		if allShown {
			return fmt.Sprintf("Here are all %d premium properties available in %s, presenting diverse real estate opportunities:", total, location)
		}
		return fmt.Sprintf("With %d premium properties available, %s presents diverse real estate opportunities. Here are the top %d selections:", total, location, showCount)
	}
}

func containsAnyWord(haystack string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

func titleWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

// formatThousands renders 1234567 as "1,234,567".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
