// internal/nlp/extractor.go
package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

var (
	isoDateRe     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	quarterRe     = regexp.MustCompile(`quarter (\d) (\d{4})`)
	weekRe        = regexp.MustCompile(`week (\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})`)
	dateRangeRe   = regexp.MustCompile(`date range (\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})`)
	pastMonthsRe  = regexp.MustCompile(`past (\d+) months?`)
	monthDayRe    = regexp.MustCompile(`\b([a-z]+)\s*(?:the\s*)?(\d+)(?:st|nd|rd|th)?\b`)
	dayMonthRe    = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)\b`)
	bareYearRe    = regexp.MustCompile(`\b(202\d)\b`)
	anyFourYearRe = regexp.MustCompile(`(\d{4})`)
	branchNumRe   = regexp.MustCompile(`branch (\d+)`)
	branchVsRe    = regexp.MustCompile(`branch (\d+).*?(?:vs|and|versus|compared to).*?branch (\d+)`)
)

// Extractor pulls the structured parameter set out of a normalized
// query. Metric, period, branch and comparison are four independent
// passes; any of them may come back empty.
type Extractor struct {
	clock  models.Clock
	logger logger.Logger
}

func NewExtractor(clock models.Clock, log logger.Logger) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	return &Extractor{clock: clock, logger: log}
}

func (e *Extractor) Extract(normalized string) *models.ParameterSet {
	lower := strings.ToLower(normalized)

	return &models.ParameterSet{
		Metric:     extractMetric(lower),
		Period:     e.extractPeriod(lower),
		Branch:     extractBranch(lower),
		Comparison: e.extractComparison(lower),
	}
}

func extractMetric(q string) models.Metric {
	switch {
	case strings.Contains(q, "average") || strings.Contains(q, "mean"):
		return models.MetricAverage
	case strings.Contains(q, "highest") || strings.Contains(q, "maximum") ||
		strings.Contains(q, "max") || strings.Contains(q, "best") || strings.Contains(q, "top"):
		return models.MetricHighest
	case strings.Contains(q, "lowest") || strings.Contains(q, "minimum") ||
		strings.Contains(q, "min") || strings.Contains(q, "worst") || strings.Contains(q, "bottom"):
		return models.MetricLowest
	case strings.Contains(q, "growth") || strings.Contains(q, "increase") ||
		strings.Contains(q, "decrease") || strings.Contains(q, "change"):
		return models.MetricGrowth
	default:
		return models.MetricTotal
	}
}

func (e *Extractor) extractPeriod(q string) *models.Period {
	if m := quarterRe.FindStringSubmatch(q); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return models.NewQuarterPeriod(quarter, year)
	}

	if m := weekRe.FindStringSubmatch(q); m != nil {
		start, err1 := time.Parse("2006-01-02", m[1])
		end, err2 := time.Parse("2006-01-02", m[2])
		if err1 == nil && err2 == nil {
			return models.NewWeekPeriod(start, end)
		}
	}

	if m := dateRangeRe.FindStringSubmatch(q); m != nil {
		start, err1 := time.Parse("2006-01-02", m[1])
		end, err2 := time.Parse("2006-01-02", m[2])
		if err1 == nil && err2 == nil {
			return models.NewRangePeriod(start, end)
		}
	}

	if m := isoDateRe.FindStringSubmatch(q); m != nil {
		d, err := time.Parse("2006-01-02", m[0])
		if err == nil {
			return models.NewDatePeriod(d)
		}
	}

	if m := pastMonthsRe.FindStringSubmatch(q); m != nil {
		count, _ := strconv.Atoi(m[1])
		return models.NewPastMonthsPeriod(count)
	}

	if p := e.extractDayOfMonth(q); p != nil {
		return p
	}

	for _, token := range strings.Fields(q) {
		if month, ok := parseMonth(strings.Trim(token, "?,.!")); ok {
			year := e.clock().Year()
			if m := anyFourYearRe.FindStringSubmatch(q); m != nil {
				year, _ = strconv.Atoi(m[1])
			}
			return models.NewMonthPeriod(year, month)
		}
	}

	if m := bareYearRe.FindStringSubmatch(q); m != nil {
		if strings.Contains(q, "total") || strings.Contains(q, "year") ||
			strings.Contains(q, "in "+m[1]) {
			year, _ := strconv.Atoi(m[1])
			return models.NewYearPeriod(year)
		}
	}

	return nil
}

// extractDayOfMonth resolves day level phrases like "january 5th" and
// "5th of january" to a concrete date. A number right after "branch"
// is a branch ID, never a day. Day tokens outside the month's calendar
// (including "june 2025" style year tokens) are rejected, which leaves
// the plain month pass to claim the query.
func (e *Extractor) extractDayOfMonth(q string) *models.Period {
	year := e.clock().Year()
	if m := anyFourYearRe.FindStringSubmatch(q); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	for _, idx := range monthDayRe.FindAllStringSubmatchIndex(q, -1) {
		month, ok := parseMonth(q[idx[2]:idx[3]])
		if !ok {
			continue
		}
		if strings.HasSuffix(strings.TrimSpace(q[:idx[4]]), "branch") {
			continue
		}
		if p := dayPeriod(year, month, q[idx[4]:idx[5]]); p != nil {
			return p
		}
	}

	for _, idx := range dayMonthRe.FindAllStringSubmatchIndex(q, -1) {
		month, ok := parseMonth(q[idx[4]:idx[5]])
		if !ok {
			continue
		}
		if strings.HasSuffix(strings.TrimSpace(q[:idx[2]]), "branch") {
			continue
		}
		if p := dayPeriod(year, month, q[idx[2]:idx[3]]); p != nil {
			return p
		}
	}

	return nil
}

func dayPeriod(year int, month time.Month, dayToken string) *models.Period {
	day, err := strconv.Atoi(dayToken)
	if err != nil || day < 1 || day > lastDayOfMonth(year, month) {
		return nil
	}
	return models.NewDatePeriod(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func extractBranch(q string) *models.BranchRef {
	if strings.Contains(q, "all branches") || strings.Contains(q, "all branch") {
		return models.EveryBranch()
	}
	if m := branchNumRe.FindStringSubmatch(q); m != nil {
		id, _ := strconv.Atoi(m[1])
		return models.Branch(id)
	}
	return nil
}

func (e *Extractor) extractComparison(q string) *models.Comparison {
	if m := branchVsRe.FindStringSubmatch(q); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		return &models.Comparison{
			Kind:    models.CompareBranches,
			BranchA: a,
			BranchB: b,
		}
	}

	if strings.Contains(q, "this month") && strings.Contains(q, "last month") {
		now := e.clock()
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return &models.Comparison{
			Kind:    models.ComparePeriods,
			PeriodA: models.NewMonthPeriod(now.Year(), now.Month()),
			PeriodB: models.NewMonthPeriod(prev.Year(), prev.Month()),
		}
	}

	return nil
}
