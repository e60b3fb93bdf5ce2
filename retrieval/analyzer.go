package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// QueryKind classifies a query for adaptive routing.
type QueryKind string

const (
	// QueryTechnical matches domain vocabulary (API, function, class, ...).
	QueryTechnical QueryKind = "technical"
	// QueryConversational matches polite/phrasal forms ("could you ...").
	QueryConversational QueryKind = "conversational"
	// QuerySpecific carries several proper/acronym terms but no
	// conversational markers.
	QuerySpecific QueryKind = "specific"
	// QueryGeneral is everything else.
	QueryGeneral QueryKind = "general"
)

// technicalVocabulary marks a query as technical when any term matches.
// Deliberately small: it should catch "how does the API work", not every
// query that happens to mention software.
var technicalVocabulary = map[string]struct{}{
	"api":       {},
	"function":  {},
	"class":     {},
	"database":  {},
	"method":    {},
	"endpoint":  {},
	"schema":    {},
	"compile":   {},
	"debug":     {},
	"exception": {},
	"sql":       {},
	"regex":     {},
}

// conversationalMarkers are phrasal forms that indicate the query leans on
// the conversation rather than the knowledge base.
var conversationalMarkers = []string{
	"please",
	"can you",
	"could you",
	"would you",
	"help me",
	"how can you",
	"what do you think",
	"thanks",
	"thank you",
}

// stopWords are dropped during keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"how": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {}, "me": {}, "my": {},
	"we": {}, "our": {}, "do": {}, "does": {}, "can": {}, "could": {},
	"would": {}, "should": {}, "about": {}, "into": {}, "over": {},
	"under": {}, "not": {}, "no": {}, "if": {}, "then": {}, "than": {},
	"there": {}, "here": {}, "they": {}, "them": {},
}

// Analyzer classifies queries and extracts keywords for the keyword and
// adaptive strategies.
type Analyzer struct{}

// NewAnalyzer creates a query analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Classify buckets the query. Technical vocabulary wins over everything;
// conversational markers win over specificity; two or more acronym/proper
// terms make the query specific.
func (a *Analyzer) Classify(query string) QueryKind {
	lower := strings.ToLower(query)

	for term := range technicalVocabulary {
		if containsWord(lower, term) {
			return QueryTechnical
		}
	}

	for _, marker := range conversationalMarkers {
		if strings.Contains(lower, marker) {
			return QueryConversational
		}
	}

	if countProperTerms(query) >= 2 {
		return QuerySpecific
	}
	return QueryGeneral
}

// Keywords extracts search terms from the query: stop-words are dropped,
// surviving tokens need length >= 3, and capitalized/acronym tokens
// (JWT, OAuth2) are always kept. Order follows the query; duplicates are
// removed case-insensitively.
func (a *Analyzer) Keywords(query string) []string {
	var keywords []string
	seen := make(map[string]struct{})

	for _, raw := range strings.Fields(query) {
		token := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if token == "" {
			continue
		}

		lower := strings.ToLower(token)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		if len(lower) < 3 && !isProperTerm(token) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

// isProperTerm reports whether the token looks like an acronym or product
// name: at least two uppercase letters (JWT, OAuth2, PostgreSQL).
func isProperTerm(token string) bool {
	upper := 0
	for _, r := range token {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return upper >= 2
}

func countProperTerms(query string) int {
	count := 0
	for _, raw := range strings.Fields(query) {
		if isProperTerm(raw) {
			count++
		}
	}
	return count
}

// containsWord reports whether lower contains term as a whole word.
func containsWord(lower, term string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0
		if !beforeOK {
			r, _ := utf8.DecodeLastRuneInString(lower[:start])
			beforeOK = !isWordRune(r)
		}
		afterOK := end == len(lower)
		if !afterOK {
			r, _ := utf8.DecodeRuneInString(lower[end:])
			afterOK = !isWordRune(r)
		}
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
