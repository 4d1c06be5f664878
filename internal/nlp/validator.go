// internal/nlp/validator.go
package nlp

import (
	"fmt"
	"strings"
	"time"

	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/models"
)

// Validator checks a parameter set for completeness, consistency and
// role permissions, then fills role based defaults.
type Validator struct {
	clock models.Clock
}

func NewValidator(clock models.Clock) *Validator {
	if clock == nil {
		clock = time.Now
	}
	return &Validator{clock: clock}
}

// Validate returns nil when the query can be executed. Otherwise the
// error carries the user facing message: clarification prompts for
// incomplete queries, permission denials for role violations.
func (v *Validator) Validate(params *models.ParameterSet, rawQuery string, role models.Role, userBranch int) error {
	rawLower := strings.ToLower(rawQuery)

	if params.Metric == models.MetricAverage && !params.HasPeriod() {
		return stderrors.NewClarificationError(
			"Average of which period? Try: 'Average sales this month' or 'Average sales past 3 months'")
	}

	if params.Metric == models.MetricTotal && !params.HasPeriod() && !params.IsComparison() {
		if strings.Contains(rawLower, "sales") && len(strings.Fields(rawQuery)) <= 3 {
			return stderrors.NewClarificationError(
				"Total sales for which period? Try: 'Today sales', 'This month sales', or 'Past 3 months'")
		}
	}

	if c := params.Comparison; c != nil && c.Kind == models.CompareBranches {
		if b := params.Branch; b != nil && !b.All && b.ID != c.BranchA && b.ID != c.BranchB {
			return stderrors.NewValidationError("Conflicting branch specifications in comparison query")
		}
	}

	if role.Restricted() {
		if params.IsComparison() {
			return stderrors.NewPermissionError("Comparison queries are not available for your access level")
		}
		if b := params.Branch; b != nil {
			if b.All {
				return stderrors.NewPermissionError("You can only query your assigned branch")
			}
			if b.ID != userBranch {
				return stderrors.NewPermissionError(fmt.Sprintf("You can only query Branch %d", userBranch))
			}
		}
		if params.IsRanking() && strings.Contains(rawLower, "branch") {
			return stderrors.NewPermissionError("Branch ranking queries are not available for your access level")
		}
	}

	if p := params.Period; p != nil && p.Kind == models.PeriodDate {
		today := v.clock()
		if p.Date.After(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)) {
			return stderrors.NewValidationError(
				fmt.Sprintf("Cannot query future date: %s", p.Date.Format("2006-01-02")))
		}
	}

	if p := params.Period; p != nil && p.Kind == models.PeriodQuarter {
		if p.Quarter < 1 || p.Quarter > 4 {
			return stderrors.NewValidationError(
				fmt.Sprintf("Invalid quarter: %d. Must be 1, 2, 3, or 4", p.Quarter))
		}
	}

	return nil
}

// ApplyDefaults fills in missing parameters based on role and query
// shape. STAFF always falls back to their own branch; simple aggregate
// queries for unrestricted roles default to Branch 1. Ranking queries
// keep their branch empty since they span branches.
func (v *Validator) ApplyDefaults(params *models.ParameterSet, role models.Role, userBranch int) {
	if !params.HasBranch() && !params.IsComparison() {
		if role.Restricted() {
			params.Branch = models.Branch(userBranch)
		} else if (params.Metric == models.MetricTotal || params.Metric == models.MetricAverage) && params.HasPeriod() {
			params.Branch = models.Branch(1)
		}
	}

	if params.Metric == models.MetricGrowth && !params.HasPeriod() {
		year := v.clock().Year()
		params.Period = models.NewYearPeriod(year)
		params.Comparison = &models.Comparison{
			Kind:    models.ComparePeriods,
			PeriodA: models.NewYearPeriod(year),
			PeriodB: models.NewYearPeriod(year - 1),
		}
	}
}

// ClarificationPrompt suggests how to complete an ambiguous query, or
// returns "" when nothing is missing.
func (v *Validator) ClarificationPrompt(params *models.ParameterSet) string {
	if !params.HasBranch() && !params.IsComparison() && !params.IsRanking() {
		return "Which branch? Try: 'Branch 1', 'Branch 2', or 'All Branches'"
	}
	if params.Metric == models.MetricAverage && !params.HasPeriod() {
		return "Average of which period? Try: 'This month', 'Past 3 months', or 'This year'"
	}
	if params.Metric == models.MetricTotal && !params.HasPeriod() && !params.IsComparison() {
		return "Total sales for which period? Try: 'Today', 'This month', or 'Past 3 months'"
	}
	return ""
}
