package models

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Activity is an append-only audit entry shown newest first.
type Activity struct {
	ID     int64  `json:"id"`
	User   string `json:"user_name"`
	Action string `json:"action"`
	Item   string `json:"item,omitempty"`
	Time   string `json:"time"`
	Avatar string `json:"avatar,omitempty"`
}

// DisplayTime renders the entry time relative to now when the remote sent a
// timestamp, and passes display strings such as "Just now" through unchanged.
func (a Activity) DisplayTime(now time.Time) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if parsed, err := time.Parse(layout, a.Time); err == nil {
			return humanize.RelTime(parsed, now, "ago", "from now")
		}
	}
	return a.Time
}
