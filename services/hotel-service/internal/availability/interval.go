package availability

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format of stay dates.
const DateLayout = "2006-01-02"

// MaxNights bounds the length of a single stay.
const MaxNights = 365

var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrStayTooLong = errors.New("stay must not exceed 365 nights")
)

// DateInterval is an inclusive span of calendar days. Only the day part of
// Start and End matters; both are normalized in their own location.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// HasOverlap reports whether candidate shares at least one calendar day with
// any interval in existing. Touching intervals (checkout day equals the next
// check-in day) conflict. The caller decides which reservations to pass in.
func HasOverlap(candidate DateInterval, existing []DateInterval) bool {
	cs, ce := StartOfDay(candidate.Start), EndOfDay(candidate.End)
	for _, e := range existing {
		es, ee := StartOfDay(e.Start), EndOfDay(e.End)
		if within(cs, es, ee) || within(ce, es, ee) || (cs.Before(es) && ce.After(ee)) {
			return true
		}
	}
	return false
}

func within(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Nights is the number of calendar days between start and end. It is negative
// when end is before start.
func Nights(start, end time.Time) int {
	s := dayNumber(start)
	e := dayNumber(end)
	return int(e - s)
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// BookedDays expands intervals into the sorted, distinct days they cover, at
// midnight UTC. Intervals ending before they start add nothing, and no
// interval contributes more than MaxNights+1 days.
func BookedDays(existing []DateInterval) []time.Time {
	seen := make(map[int64]struct{})
	for _, e := range existing {
		first, last := dayNumber(e.Start), dayNumber(e.End)
		last = min(last, first+MaxNights)
		for n := first; n <= last; n++ {
			seen[n] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for n := range seen {
		days = append(days, time.Unix(n*86400, 0).UTC())
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseInterval parses a start/end pair, rejecting end before start and stays
// longer than MaxNights.
func ParseInterval(start, end string) (DateInterval, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateInterval{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateInterval{}, err
	}
	if e.Before(s) {
		return DateInterval{}, errors.New("end date must not be before start date")
	}
	if Nights(s, e) > MaxNights {
		return DateInterval{}, ErrStayTooLong
	}
	return DateInterval{Start: s, End: e}, nil
}
