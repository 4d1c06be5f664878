// internal/annotator/firewall.go
package annotator

import "strings"

// forbiddenPhrases are markers that the model is echoing its own
// instructions instead of annotating data. Matched case-insensitively
// against the uppercased output.
var forbiddenPhrases = []string{
	"NO CAUSAL INFERENCE", "FAIL SAFE", "COMMANDMENT", "SYSTEM ROLE",
	"RESTRICTIONS", "ASSUMING", "ANALYSIS RULES", "PRIORITY -1",
	"PRIORITY LEVEL", "GUARD LOGIC", "ENFORCEMENT", "SYSTEM BEHAVIOR",
	"COMPLIANCE", "DEBUG", "THIS SYSTEM MUST", "RULES STATE",
	"ACCORDING TO POLICY", "RBAC ENFORCES", "CAUSAL GUARD BLOCKS",
	"FAIL-SAFE", "DO NOT", "MUST", "SHOULD", "INTERNAL RULES",
	"PROMPTS", "POLICIES", "INSTRUCTIONS", "RBAC EXPLANATIONS",
	"ROLE DEFINITIONS",
}

// blocked reports whether the annotation leaks rule language and has to
// be suppressed. Too-short output is suppressed as noise.
func blocked(analysis string) bool {
	if len(analysis) < 5 {
		return true
	}
	upper := strings.ToUpper(analysis)
	for _, phrase := range forbiddenPhrases {
		if strings.Contains(upper, phrase) {
			return true
		}
	}
	return false
}
