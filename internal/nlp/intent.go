// internal/nlp/intent.go
package nlp

import (
	"regexp"
	"strings"

	"sales-assistant/internal/models"
)

var (
	comparisonKeywords = []string{
		"compare", " vs ", " versus ", "compared to", "difference between",
		"branch 1 and branch 2", "branch 2 and branch 1",
		"this month vs last month", "last month vs this month",
	}
	rankingKeywords = []string{
		"highest", "lowest", "best", "worst", "top", "bottom",
		"most", "least", "maximum", "minimum",
		"which branch has", "what branch has",
	}
	trendKeywords = []string{
		"growth", "trend", "change", "increase", "decrease",
		"growing", "declining", "rising", "falling",
		"compared to last", "year over year", "yoy", "mom",
	}
	aggregateKeywords = []string{
		"past", "last", "total", "sum", "average", "mean",
		"year summary", "quarter total", "monthly average",
	}

	singlePointPatterns = []*regexp.Regexp{
		regexp.MustCompile(`sales on \d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`sales in (january|february|march|april|may|june|july|august|september|october|november|december) \d{4}`),
	}
)

// ClassifyIntent buckets a query into one of five shapes. The result is
// advisory: dispatch keys off the extracted parameters, and a mismatch
// between the two is logged rather than enforced.
func ClassifyIntent(query string) models.Intent {
	q := strings.ToLower(query)

	if containsAny(q, comparisonKeywords) {
		return models.IntentComparison
	}
	if containsAny(q, rankingKeywords) {
		return models.IntentRanking
	}
	if containsAny(q, trendKeywords) {
		return models.IntentTrend
	}
	if containsAny(q, aggregateKeywords) {
		if !matchesAny(q, singlePointPatterns) {
			return models.IntentAggregate
		}
	}
	return models.IntentSinglePoint
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func matchesAny(q string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(q) {
			return true
		}
	}
	return false
}
