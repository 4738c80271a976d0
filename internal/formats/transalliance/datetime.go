package transalliance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

// windowLookahead is how many lines, starting at the marker line, may carry
// the window.
const windowLookahead = 3

// windowPattern matches "17/09/25 8h00 – 15h00" with any configured separator.
func windowPattern(separators []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(separators))
	for _, s := range separators {
		if s == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(s))
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("template tables: range separators are all empty")
	}
	expr := `(\d{1,2}/\d{1,2}/\d{2}(?:\d{2})?)\s+(\d{1,2})\s*[hH:.]\s*(\d{2})\s*(?:` +
		strings.Join(quoted, "|") +
		`)\s*(\d{1,2})\s*[hH:.]\s*(\d{2})`
	return regexp.Compile(expr)
}

// ExtractWindow scans lines[start..start+2] for a date and time range and
// returns the window plus the index of the line it came from.
func ExtractWindow(lines []string, start int) (entity.TimeWindow, int, bool) {
	return defaultCompiled().extractWindow(lines, start)
}

func (c *compiledTables) extractWindow(lines []string, start int) (entity.TimeWindow, int, bool) {
	if start < 0 {
		start = 0
	}
	end := min(start+windowLookahead, len(lines))
	for i := start; i < end; i++ {
		m := c.window.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		day, ok := parseDocumentDate(m[1])
		if !ok {
			continue
		}
		from, ok := clock(m[2], m[3])
		if !ok {
			continue
		}
		to, ok := clock(m[4], m[5])
		if !ok {
			continue
		}
		date := day.Format(normalize.DateLayout)
		return entity.TimeWindow{
			DatetimeFrom: date + "T" + from,
			DatetimeTo:   date + "T" + to,
		}, i, true
	}
	return entity.TimeWindow{}, -1, false
}

// parseDocumentDate reads day/month/year with a two or four digit year.
func parseDocumentDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2/1/06", "2/1/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clock turns "8","00" into "08:00:00".
func clock(hour, minute string) (string, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return "", false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d:00", h, m), true
}
