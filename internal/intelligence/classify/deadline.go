package classify

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Deadline extraction
// ---------------------------------------------------------------------------

// explicitDatePatterns are tried in order; the first one whose captured date
// string parses wins.
var explicitDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`RESPOND BY\s+([A-Z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`REPLY BY\s+([A-Z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`DUE DATE:\s*([A-Z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`DEADLINE:\s*([A-Z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`BY\s+([A-Z]+\s+\d{1,2},?\s+\d{4})`),
}

var withinDaysPattern = regexp.MustCompile(`WITHIN\s+(\d+)\s+DAYS`)

var monthsByName = map[string]time.Month{
	"JANUARY": time.January, "JAN": time.January,
	"FEBRUARY": time.February, "FEB": time.February,
	"MARCH": time.March, "MAR": time.March,
	"APRIL": time.April, "APR": time.April,
	"MAY": time.May,
	"JUNE": time.June, "JUN": time.June,
	"JULY": time.July, "JUL": time.July,
	"AUGUST": time.August, "AUG": time.August,
	"SEPTEMBER": time.September, "SEP": time.September, "SEPT": time.September,
	"OCTOBER": time.October, "OCT": time.October,
	"NOVEMBER": time.November, "NOV": time.November,
	"DECEMBER": time.December, "DEC": time.December,
}

// parseNoticeDate parses an uppercased "MONTH DD[,] YYYY" string into a UTC
// midnight timestamp.  Anything that does not fit that shape (unknown month
// name, out-of-range day, missing year) is treated as unparseable; the
// extractor never guesses.
func parseNoticeDate(s string) (time.Time, bool) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	month, ok := monthsByName[fields[0]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1000 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject normalised overflow such as FEBRUARY 30.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ExtractDeadline parses explicit response deadlines and "within N days"
// phrasing from notice text.  DaysRemaining is computed against now and may
// be negative when the deadline has passed.  The caller supplies now so that
// extraction is a pure function of its inputs.
func ExtractDeadline(inputText string, now time.Time) DeadlineInfo {
	text := strings.ToUpper(inputText)

	var deadlineDate *time.Time
	for _, pattern := range explicitDatePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := parseNoticeDate(m[1]); ok {
			deadlineDate = &d
			break
		}
	}

	var daysFromNotice *int
	if m := withinDaysPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			daysFromNotice = &n
		}
	}

	var daysRemaining *int
	if deadlineDate != nil {
		diff := deadlineDate.Sub(now)
		d := int(math.Ceil(diff.Hours() / 24))
		daysRemaining = &d
	}

	status := StatusUnknown
	if daysRemaining != nil {
		switch {
		case *daysRemaining < 7:
			status = StatusCritical
		case *daysRemaining < 14:
			status = StatusUrgent
		default:
			status = StatusNormal
		}
	}

	return DeadlineInfo{
		DeadlineDate:       deadlineDate,
		DaysRemaining:      daysRemaining,
		DaysFromNoticeDate: daysFromNotice,
		UrgencyStatus:      status,
	}
}
