package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// fieldAliases maps each canonical field to its priority-ordered list of
// acceptable source column names. The first non-empty match wins; exact
// keys are tried before case/punctuation-insensitive ones.
var fieldAliases = map[string][]string{
	"decimalLatitude":  {"decimalLatitude", "latitude", "lat"},
	"decimalLongitude": {"decimalLongitude", "longitude", "lon"},
	"eventDate":        {"eventDate", "date", "observed_on", "time_observed_at", "observation_date", "verbatimEventDate", "verbatim_date"},
	"year":             {"year", "yr"},
	"month":            {"month", "mo"},
	"day":              {"day", "dy"},
	// Prefer curated final species names over raw database entries.
	"scientificName":                {"scientificName", "species", "final_species", "taxonomy_updated_species", "database_recorded_species"},
	"commonName":                    {"commonName", "common_name", "vernacularName"},
	"basisOfRecord":                 {"basisOfRecord", "basis", "recordType", "type", "observationType"},
	"occurrenceStatus":              {"occurrenceStatus"},
	"coordinateUncertaintyInMeters": {"coordinateUncertaintyInMeters", "uncertainty_m", "positional_accuracy", "accuracy", "coord_uncertainty_m"},
	"occurrenceRemarks":             {"occurrenceRemarks", "remarks", "locality"},
	"issues":                        {"issues", "gbifIssues", "issue"},
	"occurrenceID":                  {"occurrenceID", "id"},
	"captive":                       {"captive", "inCaptivity", "establishmentMeans", "captive_cultivated"},
}

// normalizeKey folds a column name for case/punctuation-insensitive
// matching: lowercase ASCII alphanumerics only, everything else
// stripped.
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// aliasValue resolves a canonical field against a source row: exact key
// pass first, then a normalized-key pass. Nil and empty-string values do
// not count as matches.
func aliasValue(rec map[string]any, field string) any {
	aliases := fieldAliases[field]
	for _, k := range aliases {
		if v, ok := rec[k]; ok && !isEmptyValue(v) {
			return v
		}
	}
	// Sorted keys keep the fold deterministic when two source columns
	// collapse to the same normalized name.
	normToValue := make(map[string]any, len(rec))
	for _, k := range sortedKeys(rec) {
		normToValue[normalizeKey(k)] = rec[k]
	}
	for _, k := range aliases {
		if v, ok := normToValue[normalizeKey(k)]; ok && !isEmptyValue(v) {
			return v
		}
	}
	return nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func sortedKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// aliasString resolves a field to a trimmed string, "" when absent.
func aliasString(rec map[string]any, field string) string {
	v := aliasValue(rec, field)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
