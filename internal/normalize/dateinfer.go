package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ecoatlas/occpipe/internal/model"
)

// DateGuess is the outcome of date inference for one record.
type DateGuess struct {
	Date       string // YYYY-MM-DD, set for day-precision tiers
	Year       int
	Month      int
	Day        int
	Confidence model.DateConfidence
}

var (
	dateLikeKeyRe = regexp.MustCompile(`(?i)(date|observ|collect|record|time)`)
	isoLikeRe     = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	isoMonthRe    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	monthYearRe   = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s,]+(\d{4})`)
	yearOnlyRe    = regexp.MustCompile(`(^|[^0-9])([0-9]{4})([^0-9]|$)`)
	partSplitRe   = regexp.MustCompile(`[\s,;]+|/`)
)

var months = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

func monthFromName(s string) int {
	if len(s) < 3 {
		return 0
	}
	prefix := strings.ToLower(s[:3])
	for i, m := range months {
		if m == prefix {
			return i + 1
		}
	}
	return 0
}

// explicitDateLayouts are the formats accepted for eventDate-like
// values. Month-precision and year-only ISO dates count as explicit,
// resolving to the first day of the period.
var explicitDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01",
	"2006-1",
	"2006",
}

func parseExplicitDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range explicitDateLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt.UTC(), true
		}
	}
	return time.Time{}, false
}

func guessFromTime(dt time.Time, conf model.DateConfidence) DateGuess {
	return DateGuess{
		Date:       dt.Format("2006-01-02"),
		Year:       dt.Year(),
		Month:      int(dt.Month()),
		Day:        dt.Day(),
		Confidence: conf,
	}
}

// validCalendarDate reports whether y/m/d is a real calendar date.
func validCalendarDate(y, m, d int) bool {
	if y <= 0 || m < 1 || m > 12 || d < 1 || d > 31 {
		return false
	}
	dt := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return dt.Year() == y && int(dt.Month()) == m && dt.Day() == d
}

// FromISOOrParts is the highest-confidence tier: a parseable explicit
// date string, or a complete year/month/day triple.
func FromISOOrParts(iso string, y, m, d int) (DateGuess, bool) {
	if iso != "" {
		if dt, ok := parseExplicitDate(iso); ok {
			return guessFromTime(dt, model.DateConfidenceHigh), true
		}
	}
	if y != 0 && m != 0 && d != 0 && validCalendarDate(y, m, d) {
		return DateGuess{
			Date:       fmt.Sprintf("%04d-%02d-%02d", y, m, d),
			Year:       y,
			Month:      m,
			Day:        d,
			Confidence: model.DateConfidenceHigh,
		}, true
	}
	return DateGuess{}, false
}

// fromExcelSerial converts a spreadsheet date serial (days since
// 1899-12-30, the 1900 date system) to a calendar date.
func fromExcelSerial(serial float64) (DateGuess, bool) {
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	dt := epoch.AddDate(0, 0, int(serial))
	if dt.Year() < 1 || dt.Year() > 9999 {
		return DateGuess{}, false
	}
	return guessFromTime(dt, model.DateConfidenceTextFull), true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// InferFromRecord scans date-bearing fields (tier 2) and then all string
// fields (tier 3) for something date-like, returning the first hit in
// preference order. Fields are visited in sorted-key order so inference
// is deterministic regardless of source column ordering.
func InferFromRecord(rec map[string]any) DateGuess {
	keys := sortedKeys(rec)

	for _, k := range keys {
		if !dateLikeKeyRe.MatchString(k) {
			continue
		}
		v := rec[k]
		if v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok && !t.IsZero() {
			return guessFromTime(t.UTC(), model.DateConfidenceHigh)
		}
		// Epoch milliseconds arrive as JSON numbers.
		if n, ok := asNumber(v); ok && n > 24*3600*1000 && n < 1e13 {
			return guessFromTime(time.UnixMilli(int64(n)).UTC(), model.DateConfidenceTextFull)
		}

		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			continue
		}

		// Spreadsheet date serial.
		if n, err := strconv.ParseFloat(s, 64); err == nil && n > 59 && n < 60000 {
			if g, ok := fromExcelSerial(n); ok {
				return g
			}
		}

		// Ranges like "2020-06-15/2020-06-18": take the first part.
		firstPart := partSplitRe.Split(s, 2)[0]
		mIso := isoLikeRe.FindStringSubmatch(firstPart)
		if mIso == nil {
			mIso = isoLikeRe.FindStringSubmatch(s)
		}
		if mIso != nil {
			yy, _ := strconv.Atoi(mIso[1])
			mm, _ := strconv.Atoi(mIso[2])
			dd, _ := strconv.Atoi(mIso[3])
			if validCalendarDate(yy, mm, dd) {
				return DateGuess{
					Date:       fmt.Sprintf("%04d-%02d-%02d", yy, mm, dd),
					Year:       yy,
					Month:      mm,
					Day:        dd,
					Confidence: model.DateConfidenceTextFull,
				}
			}
		}

		// Year-month like "2020-06": month precision, not a bare year.
		if mYM := isoMonthRe.FindStringSubmatch(firstPart); mYM != nil {
			yy, _ := strconv.Atoi(mYM[1])
			mm, _ := strconv.Atoi(mYM[2])
			if yy > 0 && mm >= 1 && mm <= 12 {
				return DateGuess{Year: yy, Month: mm, Confidence: model.DateConfidenceTextMonth}
			}
		}

		if mMon := monthYearRe.FindStringSubmatch(s); mMon != nil {
			if mm := monthFromName(mMon[1]); mm != 0 {
				yy, _ := strconv.Atoi(mMon[2])
				return DateGuess{Year: yy, Month: mm, Confidence: model.DateConfidenceTextMonth}
			}
		}
	}

	// Last resort: a bare 4-digit year anywhere in any string field.
	for _, k := range keys {
		s, ok := rec[k].(string)
		if !ok {
			continue
		}
		if m := yearOnlyRe.FindStringSubmatch(s); m != nil {
			yy, _ := strconv.Atoi(m[2])
			if yy >= 1800 && yy <= 2100 {
				return DateGuess{Year: yy, Confidence: model.DateConfidenceTextYear}
			}
		}
	}

	return DateGuess{Confidence: model.DateConfidenceNone}
}
