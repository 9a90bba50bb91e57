package campapi

import (
	"time"
)

// DateLayout is the ISO-8601 form used for client-stamped comment dates.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Campsite mirrors an entry of /campsites.
type Campsite struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Elevation   int    `json:"elevation"`
	Featured    bool   `json:"featured"`
	Description string `json:"description"`
}

// Comment mirrors an entry of /comments.
type Comment struct {
	ID         int    `json:"id"`
	CampsiteID int    `json:"campsiteId"`
	Author     string `json:"author"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Date       string `json:"date"`
}

// Promotion mirrors an entry of /promotions.
type Promotion struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
	Cost        int    `json:"cost"`
	Description string `json:"description"`
}

// Partner mirrors an entry of /partners.
type Partner struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
	Description string `json:"description"`
}

// IsFeatured reports whether the campsite is highlighted on the home view.
func (c Campsite) IsFeatured() bool { return c.Featured }

// IsFeatured reports whether the promotion is highlighted on the home view.
func (p Promotion) IsFeatured() bool { return p.Featured }

// IsFeatured reports whether the partner is highlighted on the home view.
func (p Partner) IsFeatured() bool { return p.Featured }

// ParsedDate returns the comment date as time.Time, or the zero time when
// the value is missing or malformed.
func (c Comment) ParsedDate() time.Time {
	return parseTime(c.Date)
}

// FormatDate renders t in the layout used for comment dates.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, DateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
