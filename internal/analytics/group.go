package analytics

import (
	"sort"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
)

// Group collects records by session id. Each slice is ordered by ascending
// creation time; records with equal timestamps keep their input order.
func Group(records []chatfeed.Record) map[string][]chatfeed.Record {
	out := make(map[string][]chatfeed.Record)
	for _, r := range records {
		out[r.SessionID] = append(out[r.SessionID], r)
	}
	for _, msgs := range out {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		})
	}
	return out
}

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Session is one grouped conversation as listed in the sidebar.
type Session struct {
	SessionID    string            `json:"session_id"`
	FirstAt      time.Time         `json:"first_at"`
	LastAt       time.Time         `json:"last_at"`
	MessageCount int               `json:"message_count"`
	Messages     []chatfeed.Record `json:"messages"`
}

// SessionFilter narrows the session list by the time of each session's
// first message. Zero bounds are ignored; set bounds are exclusive.
type SessionFilter struct {
	After  time.Time
	Before time.Time
	Order  Order
}

// ListSessions groups records and returns the sessions that pass f, ordered
// by first message time (newest first unless f.Order is asc).
func ListSessions(records []chatfeed.Record, f SessionFilter) []Session {
	groups := Group(records)
	out := make([]Session, 0, len(groups))
	for id, msgs := range groups {
		first := msgs[0].CreatedAt
		if !f.After.IsZero() && !first.After(f.After) {
			continue
		}
		if !f.Before.IsZero() && !first.Before(f.Before) {
			continue
		}
		out = append(out, Session{
			SessionID:    id,
			FirstAt:      first,
			LastAt:       msgs[len(msgs)-1].CreatedAt,
			MessageCount: len(msgs),
			Messages:     msgs,
		})
	}

	asc := f.Order == OrderAsc
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.FirstAt.Equal(b.FirstAt) {
			if asc {
				return a.FirstAt.Before(b.FirstAt)
			}
			return a.FirstAt.After(b.FirstAt)
		}
		return a.SessionID < b.SessionID
	})
	return out
}
