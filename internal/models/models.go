// internal/models/models.go
package models

import (
	"strconv"
	"time"
)

// Clock supplies the current time. Injected so date phrase resolution
// and default years are testable.
type Clock func() time.Time

// Role is the access level attached to a chat request
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Restricted reports whether the role is limited to its own branch
func (r Role) Restricted() bool {
	return r == RoleStaff
}

// Valid reports whether the role is one of the known access levels
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// ChatRequest is the inbound payload for a chat turn
type ChatRequest struct {
	Message   string `json:"message"`
	Role      Role   `json:"role"`
	BranchID  int    `json:"branch_id"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the outbound payload for a chat turn
type ChatResponse struct {
	Answer        string `json:"answer"`
	ResolvedQuery string `json:"resolved_query,omitempty"`
	SessionID     string `json:"session_id"`
}

// ErrorResponse is the fallback wire shape for requests the pipeline
// never answered: malformed bodies, panics, storage outages.
type ErrorResponse struct {
	Answer string `json:"answer"`
	Type   string `json:"type"`
}

// ErrorFallbackType marks every ErrorResponse on the wire
const ErrorFallbackType = "error_fallback"

// Intent is an advisory classification of the query shape
type Intent string

const (
	IntentComparison  Intent = "COMPARISON"
	IntentRanking     Intent = "RANKING"
	IntentTrend       Intent = "TREND"
	IntentAggregate   Intent = "AGGREGATE"
	IntentSinglePoint Intent = "SINGLE_POINT"
)

// Metric identifies the aggregation a query asks for
type Metric string

const (
	MetricTotal   Metric = "total"
	MetricAverage Metric = "average"
	MetricHighest Metric = "highest"
	MetricLowest  Metric = "lowest"
	MetricGrowth  Metric = "growth"
)

// PeriodKind tags the variant held by a Period
type PeriodKind string

const (
	PeriodDate       PeriodKind = "date"
	PeriodMonth      PeriodKind = "month"
	PeriodQuarter    PeriodKind = "quarter"
	PeriodWeek       PeriodKind = "week"
	PeriodRange      PeriodKind = "range"
	PeriodPastMonths PeriodKind = "past_months"
	PeriodYear       PeriodKind = "year"
)

// Period is a tagged union of the time scopes a query can resolve to.
// Only the fields relevant to Kind are populated.
type Period struct {
	Kind PeriodKind `json:"kind"`

	// PeriodDate
	Date time.Time `json:"date,omitempty"`

	// PeriodMonth and PeriodQuarter and PeriodYear
	Year    int        `json:"year,omitempty"`
	Month   time.Month `json:"month,omitempty"`
	Quarter int        `json:"quarter,omitempty"`

	// PeriodWeek and PeriodRange
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`

	// PeriodPastMonths
	Months int `json:"months,omitempty"`
}

// NewDatePeriod builds a single day period
func NewDatePeriod(d time.Time) *Period {
	return &Period{Kind: PeriodDate, Date: d}
}

// NewMonthPeriod builds a calendar month period
func NewMonthPeriod(year int, month time.Month) *Period {
	return &Period{Kind: PeriodMonth, Year: year, Month: month}
}

// NewQuarterPeriod builds a calendar quarter period
func NewQuarterPeriod(quarter, year int) *Period {
	return &Period{Kind: PeriodQuarter, Quarter: quarter, Year: year}
}

// NewWeekPeriod builds a Monday to Sunday week period
func NewWeekPeriod(start, end time.Time) *Period {
	return &Period{Kind: PeriodWeek, Start: start, End: end}
}

// NewRangePeriod builds an inclusive date range period
func NewRangePeriod(start, end time.Time) *Period {
	return &Period{Kind: PeriodRange, Start: start, End: end}
}

// NewPastMonthsPeriod builds a rolling window of n calendar months
func NewPastMonthsPeriod(n int) *Period {
	return &Period{Kind: PeriodPastMonths, Months: n}
}

// NewYearPeriod builds a calendar year period
func NewYearPeriod(year int) *Period {
	return &Period{Kind: PeriodYear, Year: year}
}

// BranchRef identifies one branch or all branches
type BranchRef struct {
	ID  int  `json:"id"`
	All bool `json:"all"`
}

// Branch builds a single branch reference
func Branch(id int) *BranchRef {
	return &BranchRef{ID: id}
}

// EveryBranch builds an all branches reference
func EveryBranch() *BranchRef {
	return &BranchRef{All: true}
}

// Label renders the branch for answer text
func (b *BranchRef) Label() string {
	if b == nil {
		return ""
	}
	if b.All {
		return "All Branches"
	}
	return "Branch " + strconv.Itoa(b.ID)
}

// ComparisonKind tags the variant held by a Comparison
type ComparisonKind string

const (
	CompareBranches ComparisonKind = "branch_vs_branch"
	ComparePeriods  ComparisonKind = "period_vs_period"
)

// Comparison captures the two sides of a comparison query
type Comparison struct {
	Kind    ComparisonKind `json:"kind"`
	BranchA int            `json:"branch_a,omitempty"`
	BranchB int            `json:"branch_b,omitempty"`
	PeriodA *Period        `json:"period_a,omitempty"`
	PeriodB *Period        `json:"period_b,omitempty"`
}

// ParameterSet is the structured form of a user query. Nil fields
// mean the query did not specify them.
type ParameterSet struct {
	Metric     Metric      `json:"metric"`
	Period     *Period     `json:"period,omitempty"`
	Branch     *BranchRef  `json:"branch,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty"`
}

// HasPeriod reports whether any time scope was extracted
func (p *ParameterSet) HasPeriod() bool {
	return p.Period != nil
}

// HasBranch reports whether a branch was extracted
func (p *ParameterSet) HasBranch() bool {
	return p.Branch != nil
}

// IsComparison reports whether the query compares two things
func (p *ParameterSet) IsComparison() bool {
	return p.Comparison != nil
}

// IsRanking reports whether the metric ranks branches or periods
func (p *ParameterSet) IsRanking() bool {
	return p.Metric == MetricHighest || p.Metric == MetricLowest
}
