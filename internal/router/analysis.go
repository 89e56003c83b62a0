package router

import (
	"regexp"
	"strings"
)

// Analysis is the fixed-axis breakdown of one query: what kind of
// subject it names, whether it carries location or temporal context,
// and which search operators it uses.
type Analysis struct {
	Subjects    []string
	HasLocation bool
	HasTemporal bool
	Operators   []string
	Intent      string
	Complexity  float64
}

var (
	emailPattern  = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	domainPattern = regexp.MustCompile(`\b[a-z0-9-]+(\.[a-z0-9-]+)+\b`)
	ipPattern     = regexp.MustCompile(`\b\d{1,3}(\.\d{1,3}){3}\b`)
	handlePattern = regexp.MustCompile(`(^|\s)@[a-zA-Z0-9_]{2,}`)
	personPattern = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)
	yearPattern   = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// "in Berlin", "near Oslo" style location context.
	locationPattern = regexp.MustCompile(`\b(in|near|around|from)\s+[A-Z][a-z]+`)

	operatorPattern = regexp.MustCompile(`\b(site|filetype|intitle|inurl|ext):\S+`)
)

var temporalWords = []string{"latest", "recent", "today", "yesterday", "this week", "this month", "news", "breaking"}

var companyMarkers = []string{" inc", " ltd", " llc", " gmbh", " corp", " company", " ag "}

// Analyze inspects a query along the fixed axes. It never fails: a query
// matching nothing is classified as general intent with low complexity.
func Analyze(query string) Analysis {
	a := Analysis{}
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	hasEmail := emailPattern.MatchString(trimmed)
	hasIP := ipPattern.MatchString(trimmed)

	if hasEmail {
		a.Subjects = append(a.Subjects, "email")
	}
	// IP octets would otherwise satisfy the phone pattern.
	if !hasIP && phonePattern.MatchString(trimmed) {
		a.Subjects = append(a.Subjects, "phone")
	}
	if hasIP {
		a.Subjects = append(a.Subjects, "ip")
	} else if !hasEmail && domainPattern.MatchString(lower) {
		a.Subjects = append(a.Subjects, "domain")
	}
	if handlePattern.MatchString(trimmed) {
		a.Subjects = append(a.Subjects, "username")
	}
	for _, marker := range companyMarkers {
		if strings.Contains(lower+" ", marker) {
			a.Subjects = append(a.Subjects, "company")
			break
		}
	}
	if personPattern.MatchString(trimmed) && !contains(a.Subjects, "company") {
		a.Subjects = append(a.Subjects, "person")
	}

	a.HasLocation = locationPattern.MatchString(trimmed)

	if yearPattern.MatchString(trimmed) {
		a.HasTemporal = true
	} else {
		for _, w := range temporalWords {
			if strings.Contains(lower, w) {
				a.HasTemporal = true
				break
			}
		}
	}

	for _, op := range operatorPattern.FindAllString(trimmed, -1) {
		name, _, _ := strings.Cut(op, ":")
		a.Operators = append(a.Operators, strings.ToLower(name))
	}
	if strings.Count(trimmed, `"`) >= 2 {
		a.Operators = append(a.Operators, "phrase")
	}

	a.Intent = classifyIntent(a)
	a.Complexity = complexity(trimmed, a)
	return a
}

func classifyIntent(a Analysis) string {
	switch {
	case contains(a.Subjects, "email") || contains(a.Subjects, "phone") || contains(a.Subjects, "username"):
		return "identity"
	case contains(a.Subjects, "person"):
		return "person"
	case contains(a.Subjects, "company"):
		return "company"
	case contains(a.Subjects, "ip") || contains(a.Subjects, "domain"):
		return "technical"
	case a.HasTemporal:
		return "news"
	default:
		return "general"
	}
}

// complexity scores a query 0-1 from its length and how many analysis
// axes fired. More facets mean the query benefits from deeper tiers.
func complexity(query string, a Analysis) float64 {
	words := len(strings.Fields(query))

	score := 0.1
	score += 0.05 * float64(min(words, 8))
	score += 0.15 * float64(len(a.Subjects))
	score += 0.1 * float64(len(a.Operators))
	if a.HasLocation {
		score += 0.1
	}
	if a.HasTemporal {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
