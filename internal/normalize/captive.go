package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var captiveRe = regexp.MustCompile(`(?i)(captive|zoo|ex\s*situ|in\s*captivity)`)

// IsLikelyCaptive reports whether a source row describes a captive or
// ex-situ animal: an explicit captive-style flag evaluating truthy, or
// captivity vocabulary in the free-text remark fields.
func IsLikelyCaptive(rec map[string]any) bool {
	for _, key := range []string{"isCaptive", "captive", "inCaptivity"} {
		if truthyFlag(rec[key]) {
			return true
		}
	}
	for _, key := range []string{"occurrenceRemarks", "remarks", "locality"} {
		if s, ok := rec[key].(string); ok && s != "" {
			if captiveRe.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func truthyFlag(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "1"
	}
	return false
}

var issueSplitRe = regexp.MustCompile(`[;,|]`)

// ParseIssues tokenizes a quality-issue field: either an array of
// tokens or a single delimited string.
func ParseIssues(raw any) []string {
	if raw == nil {
		return []string{}
	}
	if arr, ok := raw.([]any); ok {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	var out []string
	for _, tok := range issueSplitRe.Split(fmt.Sprint(raw), -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
