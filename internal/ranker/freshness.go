package ranker

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mstrand/wavesearch/internal/search"
)

// neutralFreshness is the score for results with no resolvable date or a
// date in the future: neither penalized nor rewarded.
const neutralFreshness = 50

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	wordDatePattern  = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// freshnessScore buckets a result by age in days. Unparseable or missing
// dates degrade to the neutral score, never to an error.
func freshnessScore(r search.Result, now time.Time) float64 {
	published := resolveDate(r)
	if published == nil || published.After(now) {
		return neutralFreshness
	}

	age := now.Sub(*published).Hours() / 24
	switch {
	case age <= 7:
		return 95
	case age <= 30:
		return 85
	case age <= 90:
		return 75
	case age <= 365:
		return 65
	case age <= 730:
		return 55
	default:
		return 45
	}
}

// resolveDate prefers the adapter-provided field, then falls back to a
// regex scan of the snippet.
func resolveDate(r search.Result) *time.Time {
	if r.Published != nil {
		return r.Published
	}
	return scanDate(r.Snippet)
}

func scanDate(text string) *time.Time {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		// US order: month/day/year.
		return buildDate(m[3], m[1], m[2])
	}
	if m := wordDatePattern.FindStringSubmatch(text); m != nil {
		month, ok := monthByPrefix[strings.ToLower(m[1])]
		if !ok {
			return nil
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, month, day)
	}
	return nil
}

func buildDate(yearStr, monthStr, dayStr string) *time.Time {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	return validDate(year, time.Month(month), day)
}

func validDate(year int, month time.Month, day int) *time.Time {
	if year < 1000 || month < time.January || month > time.December || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow like Feb 31.
	if t.Day() != day || t.Month() != month {
		return nil
	}
	return &t
}
