package normalize

import (
	"testing"

	"github.com/ecoatlas/occpipe/internal/model"
)

func TestFromISOOrParts_ISO(t *testing.T) {
	g, ok := FromISOOrParts("2020-06-15", 0, 0, 0)
	if !ok {
		t.Fatal("Expected ISO date to parse")
	}
	if g.Confidence != model.DateConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", g.Confidence)
	}
	if g.Date != "2020-06-15" || g.Year != 2020 || g.Month != 6 || g.Day != 15 {
		t.Errorf("Unexpected guess: %+v", g)
	}
}

func TestFromISOOrParts_Parts(t *testing.T) {
	g, ok := FromISOOrParts("", 2019, 3, 7)
	if !ok {
		t.Fatal("Expected year/month/day triple to parse")
	}
	if g.Confidence != model.DateConfidenceHigh || g.Date != "2019-03-07" {
		t.Errorf("Unexpected guess: %+v", g)
	}
}

// Month-precision and year-only ISO event dates are explicit, resolving
// to the first day of the period, not demoted to an inferred tier.
func TestFromISOOrParts_MonthPrecision(t *testing.T) {
	g, ok := FromISOOrParts("2020-06", 0, 0, 0)
	if !ok {
		t.Fatal("Expected year-month date to parse")
	}
	if g.Confidence != model.DateConfidenceHigh || g.Date != "2020-06-01" {
		t.Errorf("Unexpected guess: %+v", g)
	}
	if g.Year != 2020 || g.Month != 6 || g.Day != 1 {
		t.Errorf("Unexpected guess: %+v", g)
	}
}

func TestFromISOOrParts_YearOnly(t *testing.T) {
	g, ok := FromISOOrParts("2020", 0, 0, 0)
	if !ok {
		t.Fatal("Expected year-only date to parse")
	}
	if g.Confidence != model.DateConfidenceHigh || g.Date != "2020-01-01" {
		t.Errorf("Unexpected guess: %+v", g)
	}
}

func TestFromISOOrParts_InvalidTriple(t *testing.T) {
	if _, ok := FromISOOrParts("", 2019, 2, 30); ok {
		t.Error("Expected Feb 30 to be rejected")
	}
	if _, ok := FromISOOrParts("", 2019, 3, 0); ok {
		t.Error("Expected incomplete triple to be rejected")
	}
}

func TestInferFromRecord_ISOInDateField(t *testing.T) {
	g := InferFromRecord(map[string]any{"collection_date": "2020-06-15"})
	if g.Confidence != model.DateConfidenceTextFull {
		t.Fatalf("Expected text_inferred_full, got %s", g.Confidence)
	}
	if g.Date != "2020-06-15" {
		t.Errorf("Unexpected date %q", g.Date)
	}
}

func TestInferFromRecord_DateRange(t *testing.T) {
	g := InferFromRecord(map[string]any{"eventDate": "2020-06-15/2020-06-18"})
	if g.Confidence != model.DateConfidenceTextFull || g.Date != "2020-06-15" {
		t.Errorf("Expected first part of the range, got %+v", g)
	}
}

func TestInferFromRecord_EpochMillis(t *testing.T) {
	g := InferFromRecord(map[string]any{"time_observed_at": 1592179200000.0})
	if g.Confidence != model.DateConfidenceTextFull {
		t.Fatalf("Expected text_inferred_full, got %s", g.Confidence)
	}
	if g.Date != "2020-06-15" {
		t.Errorf("Expected 2020-06-15, got %q", g.Date)
	}
}

func TestInferFromRecord_ExcelSerial(t *testing.T) {
	// 43831 is 2020-01-01 in the 1900 date system; 44000 is 169 days later.
	g := InferFromRecord(map[string]any{"record_date": "44000"})
	if g.Confidence != model.DateConfidenceTextFull {
		t.Fatalf("Expected text_inferred_full, got %s", g.Confidence)
	}
	if g.Date != "2020-06-18" {
		t.Errorf("Expected 2020-06-18, got %q", g.Date)
	}
}

func TestInferFromRecord_MonthYear(t *testing.T) {
	g := InferFromRecord(map[string]any{"observed": "June 2019"})
	if g.Confidence != model.DateConfidenceTextMonth {
		t.Fatalf("Expected text_inferred_month, got %s", g.Confidence)
	}
	if g.Year != 2019 || g.Month != 6 {
		t.Errorf("Unexpected guess: %+v", g)
	}
	if g.Date != "" || g.Day != 0 {
		t.Errorf("Month tier must not carry a full date: %+v", g)
	}
}

// A year-month value in a date-like field keeps its month precision
// instead of degrading to the bare-year tier.
func TestInferFromRecord_ISOYearMonth(t *testing.T) {
	g := InferFromRecord(map[string]any{"eventDate": "2020-06"})
	if g.Confidence != model.DateConfidenceTextMonth {
		t.Fatalf("Expected text_inferred_month, got %s", g.Confidence)
	}
	if g.Year != 2020 || g.Month != 6 {
		t.Errorf("Unexpected guess: %+v", g)
	}
}

func TestInferFromRecord_BareYearFromAnyField(t *testing.T) {
	g := InferFromRecord(map[string]any{"notes": "seen around 2018 maybe"})
	if g.Confidence != model.DateConfidenceTextYear || g.Year != 2018 {
		t.Errorf("Expected year 2018, got %+v", g)
	}
}

func TestInferFromRecord_YearOutOfBounds(t *testing.T) {
	g := InferFromRecord(map[string]any{"notes": "1492 expedition"})
	if g.Confidence != model.DateConfidenceNone {
		t.Errorf("Expected none for out-of-bounds year, got %s", g.Confidence)
	}
}

func TestInferFromRecord_Nothing(t *testing.T) {
	g := InferFromRecord(map[string]any{"locality": "somewhere", "count": 3.0})
	if g.Confidence != model.DateConfidenceNone {
		t.Errorf("Expected none, got %s", g.Confidence)
	}
	if g.Year != 0 || g.Month != 0 || g.Day != 0 || g.Date != "" {
		t.Errorf("None tier must carry no date fields: %+v", g)
	}
}

// A date-bearing field must win over a bare year elsewhere, regardless
// of how the columns are named or ordered.
func TestInferFromRecord_FullDateBeatsBareYear(t *testing.T) {
	g := InferFromRecord(map[string]any{
		"remarks":       "released near the zoo in 2001",
		"observed_date": "2021-04-02",
	})
	if g.Confidence != model.DateConfidenceTextFull || g.Date != "2021-04-02" {
		t.Errorf("Expected the dated field to win, got %+v", g)
	}
}
