package analytics

import (
	"strings"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
)

// Report is everything the analytics view charts for one window.
type Report struct {
	Range     Range       `json:"range"`
	Start     string      `json:"start"`
	End       string      `json:"end"`
	Sessions  int         `json:"sessions"`
	Totals    Totals      `json:"totals"`
	Timeline  []Point     `json:"timeline"`
	HourOfDay []HourCount `json:"hour_of_day"`
	DayOfWeek []DayCount  `json:"day_of_week"`
	ByType    []TypeCount `json:"by_type"`
}

// ReportQuery holds the raw window parameters. Empty dates fall back to
// today for End and DefaultStart for Start.
type ReportQuery struct {
	Range string
	Start string
	End   string
}

// Window resolves q into a validated range and window.
func (a *Aggregator) Window(q ReportQuery) (Range, time.Time, time.Time, error) {
	rng, err := ParseRange(strings.TrimSpace(q.Range))
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	end := dayStart(a.now())
	if s := strings.TrimSpace(q.End); s != "" {
		if end, err = a.ParseDate(s); err != nil {
			return "", time.Time{}, time.Time{}, err
		}
	}
	start := DefaultStart(rng, end)
	if s := strings.TrimSpace(q.Start); s != "" {
		if start, err = a.ParseDate(s); err != nil {
			return "", time.Time{}, time.Time{}, err
		}
	}

	if err := a.ValidateRange(start, end); err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return rng, start, end, nil
}

// Report validates the window described by q and aggregates records
// inside it.
func (a *Aggregator) Report(records []chatfeed.Record, q ReportQuery) (*Report, error) {
	rng, start, end, err := a.Window(q)
	if err != nil {
		return nil, err
	}

	in := a.Filter(records, start, end)
	days := DayOfWeek(in, a.loc())
	return &Report{
		Range:     rng,
		Start:     start.Format(dateLayout),
		End:       end.Format(dateLayout),
		Sessions:  len(Group(in)),
		Totals:    CountTotals(in),
		Timeline:  a.bucketFiltered(in, rng, start, end),
		HourOfDay: hourSeries(HourOfDay(in, a.loc())),
		DayOfWeek: days[:],
		ByType:    ByType(in),
	}, nil
}
