// Package catalog fetches upcoming CTF events from the external catalog API and
// keeps the latest list in process memory.
// file: catalog/event.go
package catalog

import (
	"hspace-portal/dates"
)

const shortDescriptionLength = 200

// RawEvent is one record as returned by the catalog API.
type RawEvent struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Format       string  `json:"format"`
	Onsite       *bool   `json:"onsite"`
	Weight       float64 `json:"weight"`
	Location     string  `json:"location"`
	Participants int     `json:"participants"`
	CTFTimeURL   string  `json:"ctftime_url"`
	URL          string  `json:"url"`
	Logo         string  `json:"logo"`
	Start        string  `json:"start"`
	Finish       string  `json:"finish"`
	Duration     struct {
		Days  *int `json:"days"`
		Hours *int `json:"hours"`
	} `json:"duration"`
}

// Event is a catalog record prepared for display and reconciliation.
type Event struct {
	ID               int64
	Title            string
	Description      string
	DescriptionShort string
	Format           string
	Onsite           *bool
	Weight           float64
	Location         string
	Participants     int
	CTFTimeURL       string
	URL              string
	Logo             string
	Start            dates.Value
	Finish           dates.Value
	StartDisplay     string
	FinishDisplay    string
	DurationDays     *int
	DurationHours    *int
}

// FormatEvent converts a raw record: timestamps to UTC, display strings, and a
// description cut to its first 200 characters.
func FormatEvent(raw RawEvent) Event {
	start := dates.ParseZoned(raw.Start)
	finish := dates.ParseZoned(raw.Finish)

	return Event{
		ID:               raw.ID,
		Title:            raw.Title,
		Description:      raw.Description,
		DescriptionShort: truncate(raw.Description, shortDescriptionLength),
		Format:           raw.Format,
		Onsite:           raw.Onsite,
		Weight:           raw.Weight,
		Location:         raw.Location,
		Participants:     raw.Participants,
		CTFTimeURL:       raw.CTFTimeURL,
		URL:              raw.URL,
		Logo:             raw.Logo,
		Start:            start,
		Finish:           finish,
		StartDisplay:     dates.Display(start),
		FinishDisplay:    dates.Display(finish),
		DurationDays:     raw.Duration.Days,
		DurationHours:    raw.Duration.Hours,
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
