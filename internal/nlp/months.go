// internal/nlp/months.go
package nlp

import (
	"strings"
	"time"
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// parseMonth resolves a token to a calendar month. Three letter
// prefixes are accepted, matching how users abbreviate months.
func parseMonth(token string) (time.Month, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if len(token) < 3 {
		return 0, false
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, token) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// correctMonthTypos fixes misspelled month names in place. A token is
// corrected when it is within edit distance two of exactly one month
// name and shares its first letter, so ordinary words are left alone.
func correctMonthTypos(query string) string {
	words := strings.Fields(query)
	changed := false
	for i, w := range words {
		lw := strings.ToLower(strings.Trim(w, "?,.!"))
		if len(lw) < 5 {
			continue
		}
		if _, ok := parseMonth(lw); ok {
			continue
		}
		match := ""
		for _, name := range monthNames {
			if lw[0] != name[0] {
				continue
			}
			if levenshtein(lw, name) <= 2 {
				if match != "" {
					match = ""
					break
				}
				match = name
			}
		}
		if match != "" {
			words[i] = strings.Replace(w, strings.Trim(w, "?,.!"), match, 1)
			changed = true
		}
	}
	if !changed {
		return query
	}
	return strings.Join(words, " ")
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// MonthsIn lists the distinct calendar months named in the text, in
// calendar order. Three letter abbreviations count.
func MonthsIn(text string) []time.Month {
	seen := make(map[time.Month]bool)
	var months []time.Month
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if m, ok := parseMonth(strings.Trim(token, "?,.!")); ok && !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sortMonths(months)
	return months
}

func sortMonths(months []time.Month) {
	for i := 1; i < len(months); i++ {
		for j := i; j > 0 && months[j] < months[j-1]; j-- {
			months[j], months[j-1] = months[j-1], months[j]
		}
	}
}

// lastDayOfMonth returns the final calendar day of the given month.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
