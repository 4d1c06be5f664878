// internal/chat/helpers.go
package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-assistant/internal/models"
)

var (
	// Causal and explanatory questions are refused outright. The data
	// can say what happened, never why.
	causalKeywords = []string{
		"why", "reason", "what happened", "explain", "cause",
		"low sales", "drop", "decline", "underperforming",
		"any explanation", "reason for", "reason behind",
	}

	// STAFF may not see anything that spans branches or compares them.
	staffForbiddenKeywords = []string{
		"compare", "vs", "all branches", "full company",
		"total company", "difference", "growth",
	}

	percentageKeywords = []string{
		"percentage", "growth", "increase", "decrease", "change",
	}

	// Queries carrying these terms are clearly about money; they get
	// the main branch as default scope instead of a clarification.
	financialKeywords = []string{
		"goal", "sales", "sale", "highest", "lowest", "average",
		"total", "year", "quarter", "percentage", "growth",
		"increase", "decrease", "change",
	}

	// Generic financial terms never name a ledger account.
	genericAccountNames = []string{
		"sales", "revenue", "income", "company", "branch",
	}

	goalAmountRe     = regexp.MustCompile(`(?:goal|target|aim).*?(\d+(?:,\d{3})*(?:\.\d+)?)\s*(m|k|million|thousand)?`)
	accountBalanceRe = regexp.MustCompile(`(?:total|balance|value)(?:\s+of)?\s+([a-z][a-z\s]*)`)
	liveRe           = regexp.MustCompile(`\b(?:now|current|currently|live)\b`)
	yearTokenRe      = regexp.MustCompile(`\b(20\d{2})\b`)
)

const maxPastMonths = 24

const causalRefusal = "This system cannot determine causes or reasons for changes in sales. " +
	"Only factual comparisons based on explicitly provided data are supported."

const baselineClarification = "To calculate percentage change, I need a baseline. For example: " +
	"'growth between 2024 and 2025' or 'percentage change from Nov to Dec'."

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// extractGoalAmount parses a target figure with an optional magnitude
// suffix, so "goal of 500m" and "target 1,500,000" both resolve.
func extractGoalAmount(q string) (decimal.Decimal, bool) {
	m := goalAmountRe.FindStringSubmatch(q)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	switch m[2] {
	case "m", "million":
		amount = amount.Mul(decimal.NewFromInt(1_000_000))
	case "k", "thousand":
		amount = amount.Mul(decimal.NewFromInt(1_000))
	}
	return amount, true
}

// yearsIn lists the distinct four digit years named in the text,
// oldest first.
func yearsIn(q string) []int {
	seen := make(map[int]bool)
	var years []int
	for _, m := range yearTokenRe.FindAllStringSubmatch(q, -1) {
		y, _ := strconv.Atoi(m[1])
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// monthSpan is one calendar month of one year.
type monthSpan struct {
	Year  int
	Month time.Month
}

func (m monthSpan) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

// pastMonthSpans returns the last n calendar months in chronological
// order, ending with the month containing now.
func pastMonthSpans(n int, now time.Time) []monthSpan {
	spans := make([]monthSpan, 0, n)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		spans = append(spans, monthSpan{Year: cursor.Year(), Month: cursor.Month()})
		cursor = cursor.AddDate(0, -1, 0)
	}
	for i, j := 0, len(spans)-1; i < j; i, j = i+1, j-1 {
		spans[i], spans[j] = spans[j], spans[i]
	}
	return spans
}

// monthBounds returns the first and last day of a calendar month.
func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// yearBounds returns January 1st and December 31st of a year.
func yearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// quarterBounds returns the first and last day of a calendar quarter.
func quarterBounds(quarter, year int) (time.Time, time.Time) {
	first := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, first, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return start, end
}

// percentOf computes diff as a percentage of base. The boolean result
// is false when base is zero.
func percentOf(diff, base decimal.Decimal) (decimal.Decimal, bool) {
	if base.IsZero() {
		return decimal.Zero, false
	}
	return diff.Div(base).Mul(decimal.NewFromInt(100)), true
}

// periodLabel renders a period for answer text.
func periodLabel(p *models.Period) string {
	switch p.Kind {
	case models.PeriodDate:
		return p.Date.Format("2006-01-02")
	case models.PeriodMonth:
		return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
	case models.PeriodQuarter:
		return fmt.Sprintf("Q%d %d", p.Quarter, p.Year)
	case models.PeriodWeek, models.PeriodRange:
		return fmt.Sprintf("%s to %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	case models.PeriodPastMonths:
		return fmt.Sprintf("past %d months", p.Months)
	case models.PeriodYear:
		return strconv.Itoa(p.Year)
	}
	return ""
}

func branchLabel(b *models.BranchRef) string {
	if b == nil {
		return "All Branches"
	}
	return b.Label()
}
