// internal/nlp/normalizer.go
package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

var (
	branchSuffixRe   = regexp.MustCompile(`branch\s+(\d+)`)
	lastMonthRe      = regexp.MustCompile(`\b(last|past|previous)\s+month\b`)
	yearSummaryRe    = regexp.MustCompile(`year\s+summary.*?(202\d)`)
	bareSalesInRe    = regexp.MustCompile(`^sales\s+in\s+(202\d)$`)
	anyYearRe        = regexp.MustCompile(`(202\d)`)
	monthRangeRe     = regexp.MustCompile(`\b([a-z]{3,9})\s*(?:to|-)\s*([a-z]{3,9})\b`)
	quarterRewrites  = []struct {
		re  *regexp.Regexp
		out string
	}{
		{regexp.MustCompile(`\bq1\b`), "Quarter 1"},
		{regexp.MustCompile(`\bq2\b`), "Quarter 2"},
		{regexp.MustCompile(`\bq3\b`), "Quarter 3"},
		{regexp.MustCompile(`\bq4\b`), "Quarter 4"},
		{regexp.MustCompile(`\bfirst quarter\b`), "Quarter 1"},
		{regexp.MustCompile(`\bsecond quarter\b`), "Quarter 2"},
		{regexp.MustCompile(`\bthird quarter\b`), "Quarter 3"},
		{regexp.MustCompile(`\bfourth quarter\b`), "Quarter 4"},
		{regexp.MustCompile(`\bquarter 1\b`), "Quarter 1"},
		{regexp.MustCompile(`\bquarter 2\b`), "Quarter 2"},
		{regexp.MustCompile(`\bquarter 3\b`), "Quarter 3"},
		{regexp.MustCompile(`\bquarter 4\b`), "Quarter 4"},
	}
)

// Normalizer rewrites relative and ambiguous date phrases into canonical
// query strings the extractor can parse. Output is idempotent: feeding a
// normalized query back in returns it unchanged.
type Normalizer struct {
	clock  models.Clock
	logger logger.Logger
}

func NewNormalizer(clock models.Clock, log logger.Logger) *Normalizer {
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{clock: clock, logger: log}
}

// Normalize resolves relative dates, quarters, weeks and month ranges
// into canonical forms. Queries that match no rewrite rule pass through
// with only month typos corrected.
func (n *Normalizer) Normalize(userMsg string) string {
	userMsg = correctMonthTypos(userMsg)
	clean := strings.ToLower(strings.TrimSpace(userMsg))
	today := n.clock()

	suffix := ""
	if m := branchSuffixRe.FindStringSubmatch(clean); m != nil {
		suffix = " branch " + m[1]
	}

	if strings.Contains(clean, "yesterday") {
		d := today.AddDate(0, 0, -1)
		return fmt.Sprintf("Sales on %s%s", d.Format("2006-01-02"), suffix)
	}

	if strings.Contains(clean, "today") {
		return fmt.Sprintf("Sales on %s%s", today.Format("2006-01-02"), suffix)
	}

	// "this month vs last month" is a comparison, not a date phrase;
	// leave it intact for the comparison extractor.
	comparing := strings.Contains(clean, "this month") && strings.Contains(clean, "last month")

	if strings.Contains(clean, "this month") && !comparing {
		return fmt.Sprintf("Sales in %s %d%s", today.Month().String(), today.Year(), suffix)
	}

	if lastMonthRe.MatchString(clean) && !comparing {
		if strings.Contains(clean, "average") {
			return "Average sales past 1 months" + suffix
		}
		return "Total sales past 1 months" + suffix
	}

	if m := yearSummaryRe.FindStringSubmatch(clean); m != nil {
		return "Total sales in " + m[1] + suffix
	}

	if m := bareSalesInRe.FindStringSubmatch(clean); m != nil {
		return "Total sales in " + m[1] + suffix
	}

	if strings.Contains(clean, "average") && !strings.Contains(clean, "sales") {
		return strings.Replace(clean, "average", "average sales", 1)
	}

	for _, qr := range quarterRewrites {
		if qr.re.MatchString(clean) {
			year := fmt.Sprintf("%d", today.Year())
			if m := anyYearRe.FindStringSubmatch(clean); m != nil {
				year = m[1]
			}
			return fmt.Sprintf("%s %s%s", qr.out, year, suffix)
		}
	}

	if strings.Contains(clean, "this week") {
		monday := startOfWeek(today)
		sunday := monday.AddDate(0, 0, 6)
		return fmt.Sprintf("Week %s to %s%s",
			monday.Format("2006-01-02"), sunday.Format("2006-01-02"), suffix)
	}

	if strings.Contains(clean, "last week") || strings.Contains(clean, "past week") {
		monday := startOfWeek(today).AddDate(0, 0, -7)
		sunday := monday.AddDate(0, 0, 6)
		return fmt.Sprintf("Week %s to %s%s",
			monday.Format("2006-01-02"), sunday.Format("2006-01-02"), suffix)
	}

	if out, ok := n.rewriteMonthRange(clean, today, suffix); ok {
		return out
	}

	if strings.Contains(clean, "first half") {
		year := yearOrDefault(clean, today)
		return fmt.Sprintf("Date range %d-01-01 to %d-06-30%s", year, year, suffix)
	}

	if strings.Contains(clean, "second half") {
		year := yearOrDefault(clean, today)
		return fmt.Sprintf("Date range %d-07-01 to %d-12-31%s", year, year, suffix)
	}

	return userMsg
}

// rewriteMonthRange turns "january to march 2025" style phrases into an
// explicit date range covering the first day of the start month through
// the last day of the end month.
func (n *Normalizer) rewriteMonthRange(clean string, today time.Time, suffix string) (string, bool) {
	for _, m := range monthRangeRe.FindAllStringSubmatch(clean, -1) {
		start, ok1 := parseMonth(m[1])
		end, ok2 := parseMonth(m[2])
		if !ok1 || !ok2 {
			continue
		}
		year := yearOrDefault(clean, today)
		lastDay := lastDayOfMonth(year, end)
		return fmt.Sprintf("Date range %d-%02d-01 to %d-%02d-%02d%s",
			year, start, year, end, lastDay, suffix), true
	}
	return "", false
}

func yearOrDefault(clean string, today time.Time) int {
	if m := anyYearRe.FindStringSubmatch(clean); m != nil {
		var y int
		fmt.Sscanf(m[1], "%d", &y)
		return y
	}
	return today.Year()
}

// startOfWeek returns the Monday of the week containing d.
func startOfWeek(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
