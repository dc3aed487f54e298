package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
)

type Range string

const (
	RangeHour  Range = "hour"
	RangeDay   Range = "day"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// MinSpanDays is the shortest accepted report window.
const MinSpanDays = 7

const dateLayout = "2006-01-02"

var (
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidTimeRange = errors.New("range must be one of hour, day, month, year")
)

func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeHour, RangeDay, RangeMonth, RangeYear:
		return r, nil
	case "":
		return RangeMonth, nil
	}
	return "", ErrInvalidTimeRange
}

func (r Range) label(t time.Time) string {
	switch r {
	case RangeYear:
		return t.Format("2006")
	case RangeMonth:
		return t.Format("Jan 2006")
	case RangeHour:
		return t.Format("15:04 02 Jan")
	default:
		return t.Format("02 Jan 2006")
	}
}

// truncate returns the start of the period containing t, in t's location.
func (r Range) truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	switch r {
	case RangeYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case RangeHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

// Point is one bar of the timeline chart.
type Point struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Aggregator turns chat records into chart series. Dates are interpreted in
// Location (UTC when nil) and "the future" is judged against Now.
type Aggregator struct {
	Now      func() time.Time
	Location *time.Location
}

func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{Now: time.Now, Location: loc}
}

func (a *Aggregator) loc() *time.Location {
	if a.Location == nil {
		return time.UTC
	}
	return a.Location
}

func (a *Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now().In(a.loc())
	}
	return a.Now().In(a.loc())
}

// ParseDate reads a YYYY-MM-DD date as the start of that day.
func (a *Aggregator) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, a.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidRange, s)
	}
	return t, nil
}

// ValidateRange rejects windows with a bound after today or spanning fewer
// than MinSpanDays calendar days.
func (a *Aggregator) ValidateRange(start, end time.Time) error {
	today := dayStart(a.now())
	s, e := dayStart(start.In(a.loc())), dayStart(end.In(a.loc()))
	if s.After(today) || e.After(today) {
		return fmt.Errorf("%w: dates cannot be in the future", ErrInvalidRange)
	}
	if calendarDays(s, e) < MinSpanDays {
		return fmt.Errorf("%w: range must be at least %d days", ErrInvalidRange, MinSpanDays)
	}
	return nil
}

// Filter keeps records created within [start, end of end's day].
func (a *Aggregator) Filter(records []chatfeed.Record, start, end time.Time) []chatfeed.Record {
	lo := dayStart(start.In(a.loc()))
	hi := endOfDay(end.In(a.loc()))
	out := make([]chatfeed.Record, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.Before(lo) || r.CreatedAt.After(hi) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Bucket validates the window, filters records to it and counts them per
// period. Month and year views list every period of the window, zero
// included; day and hour views list only periods holding a record. Points
// are always in chronological order.
func (a *Aggregator) Bucket(records []chatfeed.Record, rng Range, start, end time.Time) ([]Point, error) {
	if err := a.ValidateRange(start, end); err != nil {
		return nil, err
	}
	return a.bucketFiltered(a.Filter(records, start, end), rng, start, end), nil
}

func (a *Aggregator) bucketFiltered(records []chatfeed.Record, rng Range, start, end time.Time) []Point {
	loc := a.loc()
	counts := make(map[int64]int)
	for _, r := range records {
		counts[rng.truncate(r.CreatedAt.In(loc)).Unix()]++
	}

	var periods []time.Time
	switch rng {
	case RangeMonth, RangeYear:
		last := rng.truncate(end.In(loc))
		for p := rng.truncate(start.In(loc)); !p.After(last); p = next(rng, p) {
			periods = append(periods, p)
		}
	default:
		periods = make([]time.Time, 0, len(counts))
		for k := range counts {
			periods = append(periods, time.Unix(k, 0).In(loc))
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	}

	out := make([]Point, 0, len(periods))
	for _, p := range periods {
		out = append(out, Point{Label: rng.label(p), Start: p, Count: counts[p.Unix()]})
	}
	return out
}

func next(rng Range, p time.Time) time.Time {
	if rng == RangeYear {
		return p.AddDate(1, 0, 0)
	}
	return p.AddDate(0, 1, 0)
}

// DefaultStart is the window start used when the caller gives none:
// a year back for the year view, a month for the month view and a week
// otherwise.
func DefaultStart(rng Range, end time.Time) time.Time {
	switch rng {
	case RangeYear:
		return end.AddDate(-1, 0, 0)
	case RangeMonth:
		return end.AddDate(0, -1, 0)
	default:
		return end.AddDate(0, 0, -7)
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// calendarDays counts whole days between two day starts, ignoring DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
