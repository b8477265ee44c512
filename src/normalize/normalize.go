// backend/src/normalize/normalize.go
//
// Pure, total conversion functions, one per canonical type. Each returns an
// explicit ok flag instead of panicking or erroring past this boundary; the
// caller decides whether a failed field dooms the row.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/username/fundfolio/backend/src/layout"
	"github.com/username/fundfolio/backend/src/sheet"
)

// Spreadsheet date serials count whole days from 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serials outside this window are treated as plain numbers, not dates.
const (
	minDateSerial = 1
	maxDateSerial = 200000
)

const isoDate = "2006-01-02"

// dateLayouts are tried in order against string-typed cells. Four-digit
// years first; two-digit forms are re-pivoted afterwards.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-01-2006",
	"2006-01-02",
	"02/01/06",
	"2/1/06",
	"02-Jan-06",
	"2-Jan-06",
}

// twoDigitYear marks the layouts whose parsed year needs the pivot-at-70
// correction (>=70 lands in the 1900s, <70 in the 2000s).
var twoDigitYear = map[string]bool{
	"02/01/06": true, "2/1/06": true, "02-Jan-06": true, "2-Jan-06": true,
}

// Date converts a cell to an ISO date string. It accepts date serials
// (fractional part ignored) and DD/MM/YYYY, DD-MMM-YYYY or ISO text. On
// failure the original text comes back unchanged with ok=false, which keeps
// the unparseable value visible for debugging instead of nulling it.
func Date(c sheet.Cell) (string, bool) {
	if c.IsNumber {
		serial := math.Floor(c.Number)
		if serial < minDateSerial || serial > maxDateSerial {
			return c.Text(), false
		}
		return serialEpoch.AddDate(0, 0, int(serial)).Format(isoDate), true
	}

	text := c.Text()
	if text == "" {
		return text, false
	}
	// Exchange exports spell month names in any case ("15-JAN-2024");
	// time.Parse only accepts the reference's mixed case.
	normalized := monthCase(text)
	for _, l := range dateLayouts {
		t, err := time.Parse(l, normalized)
		if err != nil {
			continue
		}
		if twoDigitYear[l] {
			t = pivotTwoDigitYear(t)
		}
		return t.Format(isoDate), true
	}
	return text, false
}

// monthCase folds every alphabetic run to leading-upper-rest-lower, so
// "JAN", "jan" and "Jan" all parse.
func monthCase(s string) string {
	out := make([]rune, 0, len(s))
	prevAlpha := false
	for _, r := range s {
		alpha := unicode.IsLetter(r)
		switch {
		case alpha && !prevAlpha:
			out = append(out, unicode.ToUpper(r))
		case alpha:
			out = append(out, unicode.ToLower(r))
		default:
			out = append(out, r)
		}
		prevAlpha = alpha
	}
	return string(out)
}

func pivotTwoDigitYear(t time.Time) time.Time {
	yy := t.Year() % 100
	year := 2000 + yy
	if yy >= 70 {
		year = 1900 + yy
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Time converts a cell to HH:MM:SS. Numeric cells are read as a fraction of
// a day (rounded to whole seconds); text cells must be H:MM or H:MM:SS,
// with seconds defaulting to 00.
func Time(c sheet.Cell) (string, bool) {
	if c.IsNumber {
		if c.Number < 0 || c.Number >= 1 {
			return c.Text(), false
		}
		secs := int(math.Round(c.Number * 86400))
		// A fraction within half a second of 1.0 rounds up to midnight.
		if secs >= 86400 {
			secs -= 86400
		}
		return clockString(secs), true
	}

	parts := strings.Split(c.Text(), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return c.Text(), false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	s := 0
	var err3 error
	if len(parts) == 3 {
		s, err3 = strconv.Atoi(strings.TrimSpace(parts[2]))
	}
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return c.Text(), false
	}
	return clockString(h*3600 + m*60 + s), true
}

func clockString(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// Percent converts a cell to a percentage value. A numeric cell is scaled
// x100 only when its display format marks it as a percentage AND the raw
// value sits in (0,1); the conjunction avoids corrupting small plain
// magnitudes and avoids missing values typed out as "8.5%".
func Percent(c sheet.Cell) (float64, bool) {
	if c.IsNumber {
		if c.PercentFmt && c.Number > 0 && c.Number < 1 {
			return c.Number * 100, true
		}
		return c.Number, true
	}
	text := strings.TrimSuffix(c.Text(), "%")
	return Number(sheet.Cell{Raw: text})
}

var numberJunk = regexp.MustCompile(`[^0-9.\-]`)

// Number strips thousands separators and non-numeric decoration from a
// cell. Empty or residual non-numeric content is unparseable, which callers
// treat as an absent field rather than a row rejection.
func Number(c sheet.Cell) (float64, bool) {
	if c.IsNumber {
		return c.Number, true
	}
	cleaned := numberJunk.ReplaceAllString(c.Text(), "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AmountLacs converts a source amount into the canonical lacs unit. Whether
// the division applies is a property of the layout, not of the magnitude.
func AmountLacs(v float64, l layout.Layout) float64 {
	if l.AmountInWholeRupees() {
		return v / 100000
	}
	return v
}
