// Package lexicon holds the static, versioned keyword and phrase groups the
// classifier and parser match against. Pure data: changing routing vocabulary
// means editing this package, not the rule engine.
package lexicon

// Version identifies the lexicon revision. Bump when vocabulary changes so
// cached verdicts built against older data can be told apart in logs.
const Version = "2024-11"

// Mapping is an ordered dictionary entry. Slices of Mapping preserve
// first-match-wins lookup order, which Go maps cannot.
type Mapping struct {
	Key   string
	Value string
}

// Greetings are matched exactly or as a leading phrase.
var Greetings = []string{
	"hi", "hello", "hey", "yo", "hiya", "howdy",
	"good morning", "good afternoon", "good evening",
	"assalamualaikum", "assalamu alaikum", "as-salamu alaykum", "salam",
}

// ListeningChecks catch transcribed voice probes before any other routing.
var ListeningChecks = []string{
	"are you listening",
	"can you hear me",
	"do you hear me",
	"are you there",
	"is this working",
	"hello are you there",
	"testing testing",
}

// PropertyKeywords is the token vocabulary that routes to PROPERTY.
var PropertyKeywords = map[string]bool{
	"property": true, "properties": true,
	"apartment": true, "apartments": true,
	"villa": true, "villas": true,
	"townhouse": true, "townhouses": true,
	"home": true, "homes": true, "house": true, "houses": true,
	"flat": true, "flats": true,
	"studio": true, "studios": true,
	"penthouse": true, "penthouses": true,
	"duplex": true, "duplexes": true,
	"rent": true, "rental": true, "buy": true, "sale": true,
	"price": true, "prices": true,
	"bedroom": true, "bedrooms": true, "bathroom": true, "bathrooms": true,
	"marina": true, "jvc": true, "jlt": true, "downtown": true, "arjan": true,
	"emaar": true, "sobha": true, "nakheel": true, "damac": true,
	"off-plan": true, "offplan": true, "listings": true, "listing": true,
	"investment": true, "invest": true,
}

// DubaiSubAreas fire the compound rule: "dubai" plus any of these words is a
// property query even when no single token intersects PropertyKeywords.
var DubaiSubAreas = map[string]bool{
	"marina": true, "hills": true, "south": true, "downtown": true,
	"bay": true, "creek": true, "jvc": true, "jlt": true, "arjan": true,
	"jumeirah": true, "mbr": true, "harbour": true,
}

// CompanyKeywords is the token vocabulary that routes to COMPANY.
var CompanyKeywords = map[string]bool{
	"marrfa": true, "marfa": true,
	"ceo": true, "founder": true, "owner": true, "team": true,
	"about": true, "contact": true, "email": true, "phone": true,
	"privacy": true, "policy": true, "terms": true, "conditions": true,
	"partnership": true, "company": true, "history": true, "values": true,
	"mission": true, "vision": true, "office": true, "headquarters": true,
	"management": true, "leadership": true, "services": true, "legal": true,
}

// StrongCompanyKeywords qualify alone on short queries, without the usual
// two-keyword threshold.
var StrongCompanyKeywords = map[string]bool{
	"ceo": true, "owner": true, "founder": true,
	"team": true, "management": true, "leadership": true,
}

// LeadershipTerms identify questions about the people running the company.
var LeadershipTerms = map[string]bool{
	"ceo": true, "owner": true, "founder": true, "founders": true,
	"director": true, "directors": true, "chairman": true,
	"president": true, "leadership": true, "management": true, "boss": true,
}

// QuestionWords combine with LeadershipTerms to detect leadership questions.
var QuestionWords = map[string]bool{
	"who": true, "what": true, "which": true, "where": true,
	"when": true, "how": true, "is": true, "are": true, "tell": true,
}

// WhWords bound the generative fallback to genuinely ambiguous questions.
var WhWords = map[string]bool{
	"who": true, "what": true, "when": true, "where": true,
	"why": true, "how": true, "which": true,
}

// BrandNames cover the company name and its common misspelling.
var BrandNames = []string{"marrfa", "marfa"}

// BrandQuestionTemplates are literal openers that always route to COMPANY.
var BrandQuestionTemplates = []string{
	"what is marrfa", "what is marfa",
	"who is marrfa", "who is marfa",
	"tell me about marrfa", "tell me about marfa",
}

// SelfReferenceWords detect questions aimed at the chatbot itself.
var SelfReferenceWords = map[string]bool{
	"you": true, "your": true, "yourself": true,
	"bot": true, "chatbot": true, "assistant": true, "ai": true,
}

// AuxiliaryVerbs open chatbot self-reference questions ("are you ...").
var AuxiliaryVerbs = map[string]bool{
	"are": true, "do": true, "can": true, "could": true,
	"will": true, "would": true, "did": true, "have": true,
}

// PropertyQuestionTemplates are literal real-estate phrasings checked late in
// the cascade, after every company rule has had its chance.
var PropertyQuestionTemplates = []string{
	"how much for", "how much is", "price of", "cost of",
	"what does it cost", "looking for a place", "looking to buy",
}

// ForeignCurrencyCodes tag monetary amounts that are not AED. The parser
// short-circuits into the conversion-prompt branch on any of these.
var ForeignCurrencyCodes = []string{
	"usd", "eur", "gbp", "inr", "pkr", "sar", "qar", "kwd",
	"cad", "aud", "cny", "rub", "dollar", "dollars", "euro", "euros",
	"pound", "pounds", "rupee", "rupees",
}

// ForeignCurrencySymbols map symbols to ISO codes.
var ForeignCurrencySymbols = []Mapping{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"₹", "INR"},
}

// CurrencyWordCodes map spelled-out currency words to ISO codes.
var CurrencyWordCodes = map[string]string{
	"usd": "USD", "dollar": "USD", "dollars": "USD",
	"eur": "EUR", "euro": "EUR", "euros": "EUR",
	"gbp": "GBP", "pound": "GBP", "pounds": "GBP",
	"inr": "INR", "rupee": "INR", "rupees": "INR",
	"pkr": "PKR", "sar": "SAR", "qar": "QAR", "kwd": "KWD",
	"cad": "CAD", "aud": "AUD", "cny": "CNY", "rub": "RUB",
}

// PropertyTypes maps free-text type words to canonical unit type names.
// Ordered: "townhouse" must win over "house", "studio" stays last so the
// bedroom parser sees it first.
var PropertyTypes = []Mapping{
	{"townhouse", "Townhouse"},
	{"villa", "Villa"},
	{"apartment", "Apartment"},
	{"flat", "Apartment"},
	{"penthouse", "Penthouse"},
	{"duplex", "Duplex"},
	{"plot", "Plot"},
	{"studio", "Studio"},
}

// StatusWords maps completion vocabulary to canonical status values.
var StatusWords = []Mapping{
	{"completed", "Completed"},
	{"ready", "Completed"},
	{"handed over", "Completed"},
	{"off-plan", "Presale"},
	{"off plan", "Presale"},
	{"under construction", "Under Construction"},
	{"construction", "Under Construction"},
}

// SaleStatusWords maps availability vocabulary to canonical sale statuses.
var SaleStatusWords = []Mapping{
	{"available", "On Sale"},
	{"on sale", "On Sale"},
	{"sold out", "Out of Stock"},
	{"stock", "Out of Stock"},
	{"announced", "Announced"},
}

// Developers is the known developer vocabulary. Every match accumulates: a
// query may reference several developers at once.
var Developers = []string{
	"emaar", "sobha", "nakheel", "meraas", "damac", "danube", "ellington",
	"tiger", "azizi", "samana", "nshe", "omniyat", "binghatti", "select",
}

// Areas is the exact-phrase area list, longest phrases first so
// "dubai hills estate" wins over "dubai hills".
var Areas = []string{
	"dubai hills estate",
	"jumeirah village circle",
	"dubai creek harbour",
	"dubai marina",
	"dubai hills",
	"business bay",
	"dubai south",
	"mbr city",
	"downtown",
	"arjan",
	"jvc",
	"jlt",
	"dubai",
}

// CountryFallbacks resolve country-level mentions to a searchable location
// when no listed area matches.
var CountryFallbacks = []Mapping{
	{"united arab emirates", "dubai"},
	{"emirates", "dubai"},
	{"uae", "dubai"},
	{"abu dhabi", "abu dhabi"},
	{"sharjah", "sharjah"},
}

// TermsVocab triggers the terms-and-conditions forced-context override.
var TermsVocab = []string{
	"terms and conditions", "terms & conditions", "terms of service",
	"terms", "t&c", "tos", "conditions",
}

// PrivacyVocab triggers the privacy-policy forced-context override.
var PrivacyVocab = []string{
	"privacy policy", "privacy", "data protection", "personal data",
}
