package convert

import (
	"time"

	"github.com/papapumpkin/when/internal/tzdb"
)

// Document is the JSON form of a Result.
type Document struct {
	IsRelative bool          `json:"is_relative"`
	Locations  []LocationDoc `json:"locations"`
}

// LocationDoc is the JSON form of one Entry.
type LocationDoc struct {
	Datetime  string    `json:"datetime"`
	TimeOfDay Period    `json:"time_of_day"`
	Timezone  ZoneDoc   `json:"timezone"`
	Location  *PlaceDoc `json:"location,omitempty"`
}

// ZoneDoc describes the zone of an entry at its instant.
type ZoneDoc struct {
	Name      string `json:"name"`
	Abbrev    string `json:"abbrev"`
	UTCOffset string `json:"utc_offset"`
}

// PlaceDoc describes the matched place, if any.
type PlaceDoc struct {
	Name      string `json:"name"`
	AdminCode string `json:"admin_code,omitempty"`
	Country   string `json:"country"`
}

// Document converts r into its JSON form.
func (r *Result) Document() Document {
	doc := Document{IsRelative: r.IsRelative, Locations: make([]LocationDoc, 0, len(r.Entries))}
	for _, e := range r.Entries {
		ld := LocationDoc{
			Datetime:  e.Time.Format(time.RFC3339),
			TimeOfDay: PeriodOf(e.Time),
			Timezone: ZoneDoc{
				Name:      e.Zone.ID,
				Abbrev:    e.Zone.Abbrev,
				UTCOffset: tzdb.FormatOffset(e.Zone.UTCOffset),
			},
		}
		if p := e.Zone.Place; p != nil {
			pd := &PlaceDoc{Name: p.Name, AdminCode: p.AdminCode, Country: p.CountryCode}
			if c := e.Zone.Country; c != nil {
				pd.Country = c.Name
			}
			ld.Location = pd
		}
		doc.Locations = append(doc.Locations, ld)
	}
	return doc
}
