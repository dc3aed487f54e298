package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
)

type HourCount struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Totals counts messages overall and per author.
type Totals struct {
	Total int `json:"total"`
	Human int `json:"human"`
	AI    int `json:"ai"`
}

// HourOfDay counts records per hour of the day (0-23) in loc. All 24 hours
// are always present.
func HourOfDay(records []chatfeed.Record, loc *time.Location) [24]int {
	var out [24]int
	for _, r := range records {
		out[r.CreatedAt.In(orUTC(loc)).Hour()]++
	}
	return out
}

// DayOfWeek counts records per weekday in loc, Sunday first. All seven days
// are always present.
func DayOfWeek(records []chatfeed.Record, loc *time.Location) [7]DayCount {
	var out [7]DayCount
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[d].Day = d.String()
	}
	for _, r := range records {
		out[r.CreatedAt.In(orUTC(loc)).Weekday()].Count++
	}
	return out
}

// ByType counts records per message type, ordered by type name.
func ByType(records []chatfeed.Record) []TypeCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Message.Type]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func CountTotals(records []chatfeed.Record) Totals {
	t := Totals{Total: len(records)}
	for _, r := range records {
		switch r.Message.Type {
		case chatfeed.TypeHuman:
			t.Human++
		case chatfeed.TypeAI:
			t.AI++
		}
	}
	return t
}

func hourSeries(counts [24]int) []HourCount {
	out := make([]HourCount, 24)
	for h := range out {
		out[h] = HourCount{Hour: h, Label: fmt.Sprintf("%d:00", h), Count: counts[h]}
	}
	return out
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
