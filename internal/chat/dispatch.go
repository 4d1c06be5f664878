// internal/chat/dispatch.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-assistant/internal/answer"
	"sales-assistant/internal/models"
	"sales-assistant/internal/nlp"
)

// handlerFunc tries to answer a turn. The boolean result reports
// whether the handler claimed the query; false means try the next one.
type handlerFunc func(ctx context.Context, t *turn) (string, bool, error)

// handlers returns the dispatch ladder. Order matters: earlier
// handlers claim more specific query shapes.
func (s *Service) handlers() []handlerFunc {
	return []handlerFunc{
		s.handleHierarchy,
		s.handleAccountBalance,
		s.handleRanking,
		s.handleGreeting,
		s.handleGoal,
		s.handleQuarter,
		s.handleComparison,
		s.handleAverage,
		s.handlePastMonths,
		s.handleMultiMonth,
		s.handleYear,
		s.handleLive,
		s.handleDate,
		s.handleWeekOrRange,
		s.handleMonth,
	}
}

func (s *Service) handleHierarchy(ctx context.Context, t *turn) (string, bool, error) {
	if !strings.Contains(t.lower, "hierarchy") {
		return "", false, nil
	}
	accounts, err := s.accounting.HierarchyTree(ctx)
	if err != nil {
		return "", false, err
	}
	if len(accounts) == 0 {
		return "No accounts are defined.", true, nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		parent := ""
		if a.ParentID.Valid {
			parent = fmt.Sprintf("%d", a.ParentID.Int64)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.ID),
			parent,
			strings.Repeat("  ", a.Depth) + a.Name,
			fmt.Sprintf("%d", a.Level),
			a.Type,
			a.AllowLedger,
		})
	}
	tbl := answer.Table([]string{"ID", "Parent", "Name", "Level", "Type", "Allow Ledger"}, rows)
	return "Chart of Accounts:\n" + tbl, true, nil
}

func (s *Service) handleAccountBalance(ctx context.Context, t *turn) (string, bool, error) {
	m := accountBalanceRe.FindStringSubmatch(t.lower)
	if m == nil {
		return "", false, nil
	}
	name := strings.TrimSpace(m[1])
	for _, cut := range []string{" for ", " in ", " branch"} {
		if idx := strings.Index(name, cut); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", false, nil
	}
	for _, generic := range genericAccountNames {
		if fields[0] == generic {
			return "", false, nil
		}
	}

	year := s.targetYear(t)
	balance, found, err := s.accounting.AccountBalance(ctx, name, year, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	if !found {
		// Not a known account, let the sales handlers have a go.
		return "", false, nil
	}

	out := fmt.Sprintf("Balance of %s for %s in %d: %s.",
		name, branchLabel(t.params.Branch), year, answer.MoneyLKR(balance))
	return out, true, nil
}

func (s *Service) handleRanking(ctx context.Context, t *turn) (string, bool, error) {
	if !t.params.IsRanking() {
		return "", false, nil
	}
	highest := t.params.Metric == models.MetricHighest
	direction := "Lowest"
	if highest {
		direction = "Highest"
	}

	if strings.Contains(t.lower, "branch") {
		year := s.targetYear(t)
		scope := fmt.Sprintf("%d", year)
		var month time.Month
		if p := t.params.Period; p != nil && p.Kind == models.PeriodMonth {
			year = p.Year
			month = p.Month
			scope = periodLabel(p)
		}
		brID, total, found, err := s.sales.ExtremeBranch(ctx, year, month, highest)
		if err != nil {
			return "", false, err
		}
		if !found {
			return fmt.Sprintf("No data found to determine the best branch in %s.", scope), true, nil
		}
		return fmt.Sprintf("%s sales in %s: Branch %d with %s.",
			direction, scope, brID, answer.MoneyLKR(total)), true, nil
	}

	year := s.targetYear(t)
	month, total, found, err := s.sales.ExtremeMonth(ctx, year, t.params.Branch, highest)
	if err != nil {
		return "", false, err
	}
	if !found {
		return fmt.Sprintf("No sales were recorded in %d for %s.", year, branchLabel(t.params.Branch)), true, nil
	}
	return fmt.Sprintf("%s sales month in %d for %s: %s (%s).",
		direction, year, branchLabel(t.params.Branch), month.String(), answer.MoneyLKR(total)), true, nil
}

func (s *Service) handleGreeting(_ context.Context, t *turn) (string, bool, error) {
	switch t.lower {
	case "hi", "hello":
		t.skipContext = true
		return "Hello! I am Mr. Mark.", true, nil
	}
	return "", false, nil
}

func (s *Service) handleGoal(ctx context.Context, t *turn) (string, bool, error) {
	goal, ok := extractGoalAmount(t.lower)
	if !ok {
		return "", false, nil
	}

	year := s.targetYear(t)
	start, end := yearBounds(year)
	ytd, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
	if err != nil {
		return "", false, err
	}

	diff := ytd.Sub(goal)
	verdict := "Shortfall"
	if diff.Sign() >= 0 {
		verdict = "Surplus"
	}
	tbl := answer.Table([]string{"Item", "Amount"}, [][]string{
		{"Goal Target", answer.MoneyLKR(goal)},
		{fmt.Sprintf("YTD %d", year), answer.MoneyLKR(ytd)},
		{verdict, answer.MoneyLKR(diff.Abs())},
	})
	return fmt.Sprintf("Goal Analysis for %s:\n%s", branchLabel(t.params.Branch), tbl), true, nil
}

func (s *Service) handleQuarter(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || p.Kind != models.PeriodQuarter {
		return "", false, nil
	}

	total := decimal.Zero
	var rows [][]string
	firstMonth := time.Month((p.Quarter-1)*3 + 1)
	for i := 0; i < 3; i++ {
		month := firstMonth + time.Month(i)
		start, end := monthBounds(p.Year, month)
		v, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		total = total.Add(v)
		rows = append(rows, []string{month.String(), answer.MoneyLKR(v)})
	}
	rows = append(rows, []string{fmt.Sprintf("Q%d %d Total", p.Quarter, p.Year), answer.MoneyLKR(total)})

	tbl := answer.Table([]string{"Month", "Sales"}, rows)
	return fmt.Sprintf("Q%d %d sales for %s:\n%s",
		p.Quarter, p.Year, branchLabel(t.params.Branch), tbl), true, nil
}

func (s *Service) handleComparison(ctx context.Context, t *turn) (string, bool, error) {
	c := t.params.Comparison
	pctWanted := containsAny(t.lower, percentageKeywords)
	comparing := strings.Contains(t.lower, "compare") || strings.Contains(t.lower, " vs ") ||
		strings.Contains(t.lower, "versus")
	if c == nil && !pctWanted && !comparing {
		return "", false, nil
	}

	if c != nil && c.Kind == models.CompareBranches {
		return s.compareBranches(ctx, t, c, pctWanted)
	}
	if c != nil && c.Kind == models.ComparePeriods {
		return s.comparePeriods(ctx, t, c, pctWanted)
	}

	if years := yearsIn(t.lower); len(years) >= 2 {
		return s.compareYears(ctx, t, years[0], years[len(years)-1], pctWanted)
	}
	if months := nlp.MonthsIn(t.resolved); len(months) >= 2 {
		return s.compareMonths(ctx, t, months[0], months[1], pctWanted)
	}

	if pctWanted {
		t.outcome = "clarification"
		return baselineClarification, true, nil
	}
	if comparing {
		t.outcome = "clarification"
		if err := s.sessions.SetPending(ctx, t.sessionID, t.resolved); err != nil {
			s.logger.Warn("saving pending query failed", map[string]interface{}{"error": err.Error()})
		}
		return "Which branches would you like to compare?", true, nil
	}
	return "", false, nil
}

func (s *Service) compareBranches(ctx context.Context, t *turn, c *models.Comparison, pctWanted bool) (string, bool, error) {
	brA, brB := models.Branch(c.BranchA), models.Branch(c.BranchB)

	if p := t.params.Period; p != nil && p.Kind == models.PeriodPastMonths {
		n := p.Months
		if n > maxPastMonths {
			n = maxPastMonths
		}
		now := s.clock()
		spans := pastMonthSpans(n, now)
		start, _ := monthBounds(spans[0].Year, spans[0].Month)
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		v1, err := s.sales.RangeTotal(ctx, start, end, brA)
		if err != nil {
			return "", false, err
		}
		v2, err := s.sales.RangeTotal(ctx, start, end, brB)
		if err != nil {
			return "", false, err
		}

		tbl := answer.Table([]string{"Branch", "Sales"}, [][]string{
			{brA.Label(), answer.MoneyLKR(v1)},
			{brB.Label(), answer.MoneyLKR(v2)},
			{"DIFFERENCE", answer.MoneyLKR(v1.Sub(v2))},
		})
		out := fmt.Sprintf("Branch comparison (past %d months):\n%s", n, tbl)
		if pct, ok := percentOf(v1.Sub(v2), v1); ok {
			dir := "lower"
			if pct.IsNegative() {
				dir = "higher"
			}
			out += fmt.Sprintf("\nBranch %d is %s%% %s than Branch %d over the past %d months.",
				c.BranchB, pct.Abs().StringFixed(2), dir, c.BranchA, n)
		}
		t.contextText = fmt.Sprintf("Compare Branch %d and Branch %d for past %d months",
			c.BranchA, c.BranchB, n)
		return out, true, nil
	}

	if p := t.params.Period; p != nil && p.Kind == models.PeriodMonth {
		start, end := monthBounds(p.Year, p.Month)
		v1, err := s.sales.RangeTotal(ctx, start, end, brA)
		if err != nil {
			return "", false, err
		}
		v2, err := s.sales.RangeTotal(ctx, start, end, brB)
		if err != nil {
			return "", false, err
		}

		if pctWanted {
			if v1.IsZero() {
				return "Primary branch has 0 sales, cannot calculate percentage difference.", true, nil
			}
			pct, _ := percentOf(v1.Sub(v2), v1)
			dir := "lower"
			if pct.IsNegative() {
				dir = "higher"
			}
			return fmt.Sprintf("Branch %d (%s LKR) is %s%% %s than Branch %d (%s LKR) in %s %d.",
				c.BranchB, answer.Money(v2), pct.Abs().StringFixed(2), dir,
				c.BranchA, answer.Money(v1), p.Month.String(), p.Year), true, nil
		}
		return fmt.Sprintf("Branch %d: %s LKR, Branch %d: %s LKR. Diff: %s LKR",
			c.BranchA, answer.Money(v1), c.BranchB, answer.Money(v2),
			answer.Money(v1.Sub(v2))), true, nil
	}

	// A percentage question with no period at all has no baseline to
	// measure against; ask for one instead of assuming a year.
	if pctWanted && t.params.Period == nil && len(yearsIn(t.lower)) == 0 {
		t.outcome = "clarification"
		return baselineClarification, true, nil
	}

	year := s.targetYear(t)
	start, end := yearBounds(year)
	v1, err := s.sales.RangeTotal(ctx, start, end, brA)
	if err != nil {
		return "", false, err
	}
	v2, err := s.sales.RangeTotal(ctx, start, end, brB)
	if err != nil {
		return "", false, err
	}

	tbl := answer.Table([]string{"Branch", "Sales"}, [][]string{
		{brA.Label(), answer.MoneyLKR(v1)},
		{brB.Label(), answer.MoneyLKR(v2)},
		{"DIFFERENCE", answer.MoneyLKR(v1.Sub(v2))},
	})
	out := fmt.Sprintf("Branch comparison (%d):\n%s", year, tbl)
	if pctWanted {
		if pct, ok := percentOf(v1.Sub(v2), v1); ok {
			dir := "lower"
			if pct.IsNegative() {
				dir = "higher"
			}
			out += fmt.Sprintf("\nBranch %d is %s%% %s than Branch %d in %d.",
				c.BranchB, pct.Abs().StringFixed(2), dir, c.BranchA, year)
		}
	}
	return out, true, nil
}

func (s *Service) comparePeriods(ctx context.Context, t *turn, c *models.Comparison, pctWanted bool) (string, bool, error) {
	vA, err := s.periodTotal(ctx, c.PeriodA, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	vB, err := s.periodTotal(ctx, c.PeriodB, t.params.Branch)
	if err != nil {
		return "", false, err
	}

	labelA, labelB := periodLabel(c.PeriodA), periodLabel(c.PeriodB)
	diff := vA.Sub(vB)
	tbl := answer.Table([]string{"Period", "Sales"}, [][]string{
		{labelB, answer.MoneyLKR(vB)},
		{labelA, answer.MoneyLKR(vA)},
		{"DIFFERENCE", answer.MoneyLKR(diff)},
	})
	out := fmt.Sprintf("Comparison for %s:\n%s", branchLabel(t.params.Branch), tbl)

	if pctWanted {
		pct, ok := percentOf(diff, vB)
		if !ok {
			return out + fmt.Sprintf("\n%s has no recorded sales, cannot calculate percentage change.", labelB),
				true, nil
		}
		dir := "decreased"
		if pct.Sign() >= 0 {
			dir = "increased"
		}
		out += fmt.Sprintf("\nSales %s by %s%% from %s to %s.",
			dir, pct.Abs().StringFixed(1), labelB, labelA)
	}
	return out, true, nil
}

func (s *Service) compareYears(ctx context.Context, t *turn, oldYear, newYear int, pctWanted bool) (string, bool, error) {
	startOld, endOld := yearBounds(oldYear)
	vOld, err := s.sales.RangeTotal(ctx, startOld, endOld, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	startNew, endNew := yearBounds(newYear)
	vNew, err := s.sales.RangeTotal(ctx, startNew, endNew, t.params.Branch)
	if err != nil {
		return "", false, err
	}

	diff := vNew.Sub(vOld)
	tbl := answer.Table([]string{"Year", "Sales"}, [][]string{
		{fmt.Sprintf("%d", oldYear), answer.MoneyLKR(vOld)},
		{fmt.Sprintf("%d", newYear), answer.MoneyLKR(vNew)},
		{"DIFFERENCE", answer.MoneyLKR(diff)},
	})
	out := fmt.Sprintf("Year comparison for %s:\n%s", branchLabel(t.params.Branch), tbl)

	if pctWanted {
		pct, ok := percentOf(diff, vOld)
		if !ok {
			return out + fmt.Sprintf("\n%d has no recorded sales, cannot calculate percentage change.", oldYear),
				true, nil
		}
		dir := "decreased"
		if pct.Sign() >= 0 {
			dir = "increased"
		}
		out += fmt.Sprintf("\nSales %s by %s%% from %d to %d.",
			dir, pct.Abs().StringFixed(1), oldYear, newYear)
	}
	return out, true, nil
}

func (s *Service) compareMonths(ctx context.Context, t *turn, m1, m2 time.Month, pctWanted bool) (string, bool, error) {
	year := s.targetYear(t)

	start1, end1 := monthBounds(year, m1)
	v1, err := s.sales.RangeTotal(ctx, start1, end1, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	start2, end2 := monthBounds(year, m2)
	v2, err := s.sales.RangeTotal(ctx, start2, end2, t.params.Branch)
	if err != nil {
		return "", false, err
	}

	diff := v2.Sub(v1)
	tbl := answer.Table([]string{"Month", "Sales"}, [][]string{
		{m1.String(), answer.MoneyLKR(v1)},
		{m2.String(), answer.MoneyLKR(v2)},
		{"DIFFERENCE", answer.MoneyLKR(diff)},
	})
	out := fmt.Sprintf("Month comparison (%d) for %s:\n%s", year, branchLabel(t.params.Branch), tbl)

	if pctWanted {
		pct, ok := percentOf(diff, v1)
		if !ok {
			return out + fmt.Sprintf("\n%s %d has no recorded sales, cannot calculate percentage change.",
				m1.String(), year), true, nil
		}
		dir := "lower"
		if pct.Sign() >= 0 {
			dir = "higher"
		}
		out += fmt.Sprintf("\n%s is %s%% %s than %s in %d.",
			m2.String(), pct.Abs().StringFixed(1), dir, m1.String(), year)
	}
	return out, true, nil
}

func (s *Service) handleAverage(ctx context.Context, t *turn) (string, bool, error) {
	if t.params.Metric != models.MetricAverage {
		return "", false, nil
	}
	p := t.params.Period
	if p == nil {
		return "", false, nil
	}
	label := branchLabel(t.params.Branch)

	switch p.Kind {
	case models.PeriodPastMonths:
		n := p.Months
		if n > maxPastMonths {
			n = maxPastMonths
		}
		now := s.clock()
		spans := pastMonthSpans(n, now)
		start, _ := monthBounds(spans[0].Year, spans[0].Month)
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		total, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		avg := total.Div(decimal.NewFromInt(int64(n)))
		return fmt.Sprintf("Average monthly sales over the past %d months for %s: %s.",
			n, label, answer.MoneyLKR(avg)), true, nil

	case models.PeriodYear:
		start, end := yearBounds(p.Year)
		total, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		// A partially elapsed year is averaged over the months so far.
		months := 12
		if now := s.clock(); p.Year == now.Year() {
			months = int(now.Month())
		}
		avg := total.Div(decimal.NewFromInt(int64(months)))
		return fmt.Sprintf("Average monthly sales in %d for %s: %s.",
			p.Year, label, answer.MoneyLKR(avg)), true, nil

	case models.PeriodMonth:
		avg, err := s.sales.MonthlyDailyAverage(ctx, p.Year, p.Month, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Average daily sales in %s %d for %s: %s.",
			p.Month.String(), p.Year, label, answer.MoneyLKR(avg)), true, nil
	}
	return "", false, nil
}

func (s *Service) handlePastMonths(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || p.Kind != models.PeriodPastMonths {
		return "", false, nil
	}
	n := p.Months
	if n > maxPastMonths {
		n = maxPastMonths
	}

	total := decimal.Zero
	var rows [][]string
	for _, span := range pastMonthSpans(n, s.clock()) {
		start, end := monthBounds(span.Year, span.Month)
		v, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		total = total.Add(v)
		rows = append(rows, []string{span.Label(), answer.MoneyLKR(v)})
	}
	rows = append(rows, []string{"Total", answer.MoneyLKR(total)})

	label := branchLabel(t.params.Branch)
	tbl := answer.Table([]string{"Month", "Sales"}, rows)
	t.contextText = fmt.Sprintf("Sales for past %d months for %s", n, label)
	return fmt.Sprintf("Sales for the past %d months for %s:\n%s", n, label, tbl), true, nil
}

func (s *Service) handleMultiMonth(ctx context.Context, t *turn) (string, bool, error) {
	months := nlp.MonthsIn(t.resolved)
	if len(months) < 2 {
		return "", false, nil
	}
	year := s.targetYear(t)
	label := branchLabel(t.params.Branch)

	total := decimal.Zero
	var parts []string
	for _, m := range months {
		start, end := monthBounds(year, m)
		v, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
		if err != nil {
			return "", false, err
		}
		total = total.Add(v)
		parts = append(parts, fmt.Sprintf("%s: %s LKR", m.String(), answer.Money(v)))
	}

	return fmt.Sprintf("Total for %d months in %d for %s: %s LKR. Breakdown: %s",
		len(months), year, label, answer.Money(total), strings.Join(parts, ", ")), true, nil
}

func (s *Service) handleYear(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || p.Kind != models.PeriodYear {
		return "", false, nil
	}
	start, end := yearBounds(p.Year)
	total, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	label := branchLabel(t.params.Branch)
	if total.IsZero() {
		return fmt.Sprintf("No sales were recorded in %d for %s.", p.Year, label), true, nil
	}
	if p.Year == s.clock().Year() && strings.Contains(t.lower, "total") {
		return fmt.Sprintf("YTD total %d for %s: %s.", p.Year, label, answer.MoneyLKR(total)), true, nil
	}
	return fmt.Sprintf("Total sales in %d for %s: %s.", p.Year, label, answer.MoneyLKR(total)), true, nil
}

func (s *Service) handleLive(ctx context.Context, t *turn) (string, bool, error) {
	if !liveRe.MatchString(t.lower) {
		return "", false, nil
	}
	total := s.live.TodaySales(ctx, t.params.Branch)
	return fmt.Sprintf("Live sales today for %s: %s.",
		branchLabel(t.params.Branch), answer.MoneyLKR(total)), true, nil
}

func (s *Service) handleDate(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || p.Kind != models.PeriodDate {
		return "", false, nil
	}
	label := branchLabel(t.params.Branch)
	day := p.Date.Format("2006-01-02")

	// Same day figures come from the live feed, the warehouse only has
	// settled days.
	if day == s.clock().Format("2006-01-02") {
		total := s.live.TodaySales(ctx, t.params.Branch)
		return fmt.Sprintf("Sales on %s for %s: %s.", day, label, answer.MoneyLKR(total)), true, nil
	}

	total, err := s.sales.DailyTotal(ctx, p.Date, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	if total.IsZero() {
		return fmt.Sprintf("No sales were recorded for %s for %s.", day, label), true, nil
	}
	return fmt.Sprintf("Sales on %s for %s: %s.", day, label, answer.MoneyLKR(total)), true, nil
}

func (s *Service) handleWeekOrRange(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || (p.Kind != models.PeriodWeek && p.Kind != models.PeriodRange) {
		return "", false, nil
	}
	total, err := s.sales.RangeTotal(ctx, p.Start, p.End, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	label := branchLabel(t.params.Branch)
	span := fmt.Sprintf("%s to %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	if total.IsZero() {
		return fmt.Sprintf("No sales were recorded from %s for %s.", span, label), true, nil
	}
	return fmt.Sprintf("Sales from %s for %s: %s.", span, label, answer.MoneyLKR(total)), true, nil
}

func (s *Service) handleMonth(ctx context.Context, t *turn) (string, bool, error) {
	p := t.params.Period
	if p == nil || p.Kind != models.PeriodMonth {
		return "", false, nil
	}
	start, end := monthBounds(p.Year, p.Month)
	total, err := s.sales.RangeTotal(ctx, start, end, t.params.Branch)
	if err != nil {
		return "", false, err
	}
	label := branchLabel(t.params.Branch)
	if total.IsZero() {
		return fmt.Sprintf("No sales were recorded in %s %d for %s.", p.Month.String(), p.Year, label), true, nil
	}
	return fmt.Sprintf("Sales in %s %d for %s: %s.",
		p.Month.String(), p.Year, label, answer.MoneyLKR(total)), true, nil
}

// periodTotal sums sales over any period variant.
func (s *Service) periodTotal(ctx context.Context, p *models.Period, branch *models.BranchRef) (decimal.Decimal, error) {
	switch p.Kind {
	case models.PeriodDate:
		return s.sales.DailyTotal(ctx, p.Date, branch)
	case models.PeriodMonth:
		start, end := monthBounds(p.Year, p.Month)
		return s.sales.RangeTotal(ctx, start, end, branch)
	case models.PeriodQuarter:
		start, end := quarterBounds(p.Quarter, p.Year)
		return s.sales.RangeTotal(ctx, start, end, branch)
	case models.PeriodWeek, models.PeriodRange:
		return s.sales.RangeTotal(ctx, p.Start, p.End, branch)
	case models.PeriodYear:
		start, end := yearBounds(p.Year)
		return s.sales.RangeTotal(ctx, start, end, branch)
	case models.PeriodPastMonths:
		n := p.Months
		if n > maxPastMonths {
			n = maxPastMonths
		}
		now := s.clock()
		spans := pastMonthSpans(n, now)
		start, _ := monthBounds(spans[0].Year, spans[0].Month)
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return s.sales.RangeTotal(ctx, start, end, branch)
	}
	return decimal.Zero, nil
}

// targetYear picks the year a query refers to: an explicit period year,
// a bare year token, or the current year.
func (s *Service) targetYear(t *turn) int {
	if p := t.params.Period; p != nil && p.Year != 0 {
		return p.Year
	}
	if years := yearsIn(t.lower); len(years) > 0 {
		return years[0]
	}
	return s.clock().Year()
}
