// internal/convo/merge.go
package convo

import (
	"regexp"
	"strings"
)

var (
	mergeYearRe      = regexp.MustCompile(`\b(202[0-9])\b`)
	mergeBranchRe    = regexp.MustCompile(`branch\s*(\d+)`)
	bareBranchRe     = regexp.MustCompile(`(?:^|about\s+)(\d{1,2})(?:\s+|$|\?)`)
	baseBranchRe     = regexp.MustCompile(`(?i)branch\s*\d+`)
	pastWindowRe     = regexp.MustCompile(`\b(?:past|last|previous)\s+(\d+)\s+months?\b`)
	pendingBranchRe  = regexp.MustCompile(`^(?:branch\s*)?(\d+)$`)
	forceNewKeywords = []string{
		"compare", "vs", "goal", "average", "summary", "analysis",
		"sales", "sale", "total", "percentage", "growth",
		"increase", "decrease", "change",
		"lowest", "highest", "best", "performing",
	}
)

var mergeMonths = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// ForcesNewQuery reports whether the input carries a keyword that marks
// it as a standalone query. Such inputs are never merged with context.
func ForcesNewQuery(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range forceNewKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchPendingBranch reports whether the input is nothing but a branch
// number, the expected reply to a "which branch?" clarification.
func MatchPendingBranch(input string) (string, bool) {
	m := pendingBranchRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(input)))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SmartMerge folds a short follow-up into the previous query. Four
// substitutions run in order: year, branch, month, rolling window.
// Later rules see the output of earlier ones. When nothing matches,
// the input is returned as-is and replaces the context outright.
func SmartMerge(base, input string) string {
	merged := base
	lowerInput := strings.ToLower(input)
	matched := false

	if m := mergeYearRe.FindStringSubmatch(input); m != nil {
		if mergeYearRe.MatchString(merged) {
			merged = mergeYearRe.ReplaceAllString(merged, m[1])
		} else {
			merged += " " + m[1]
		}
		matched = true
	}

	branchNum := ""
	if m := mergeBranchRe.FindStringSubmatch(lowerInput); m != nil {
		branchNum = m[1]
	} else if m := bareBranchRe.FindStringSubmatch(lowerInput); m != nil {
		// A bare small integer only reads as a branch switch when the
		// context already talks about branches.
		if strings.Contains(strings.ToLower(merged), "branch") {
			branchNum = m[1]
		}
	}
	if branchNum != "" {
		if baseBranchRe.MatchString(merged) {
			merged = baseBranchRe.ReplaceAllString(merged, "Branch "+branchNum)
		} else {
			merged += " Branch " + branchNum
		}
		matched = true
	}

	if newMonth := findMonth(lowerInput); newMonth != "" {
		replaced := false
		for _, oldMonth := range mergeMonths {
			if strings.Contains(strings.ToLower(merged), oldMonth) {
				re := regexp.MustCompile(`(?i)\b` + oldMonth + `[a-z]*\b`)
				merged = re.ReplaceAllString(merged, newMonth)
				replaced = true
				break
			}
		}
		if !replaced {
			merged += " " + newMonth
		}
		matched = true
	}

	if m := pastWindowRe.FindStringSubmatch(lowerInput); m != nil {
		phrase := "past " + m[1] + " months"
		if pastWindowRe.MatchString(strings.ToLower(merged)) {
			merged = pastWindowRe.ReplaceAllString(merged, phrase)
		} else {
			merged += " " + phrase
		}
		matched = true
	}

	if !matched {
		return input
	}
	return merged
}

func findMonth(lowerInput string) string {
	for _, m := range mergeMonths {
		if strings.Contains(lowerInput, m) {
			return m
		}
	}
	return ""
}
