// Package resolve maps location tokens to timezones. A token may be an IANA
// zone id, a three-letter airport code, or a place name with an optional
// admin or country qualifier.
package resolve

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/papapumpkin/when/internal/gazetteer"
	"github.com/papapumpkin/when/internal/tzdb"
)

// ZoneLoader is the timezone database the resolver consults.
type ZoneLoader interface {
	Load(id string) (*time.Location, error)
	Known(id string) bool
}

// UnknownLocationError reports a token that matched no zone, airport or
// place.
type UnknownLocationError struct {
	Token string
}

// Error implements the error interface.
func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("resolve: unknown location %q", e.Token)
}

// Source records which resolution stage produced a Zone.
type Source string

// Resolution stages, in the order they are tried.
const (
	SourceZoneID  Source = "timezone"
	SourceAirport Source = "airport"
	SourcePlace   Source = "place"
	SourceLocal   Source = "local"
	SourceUTC     Source = "utc"
)

// Zone is a resolved location. Place and Country are set when the token
// matched a gazetteer entry.
type Zone struct {
	Token    string
	ID       string
	Location *time.Location
	Place    *gazetteer.Place
	Country  *gazetteer.Country
	Source   Source
}

// Name returns the place name when there is one and the zone id otherwise.
func (z Zone) Name() string {
	if z.Place != nil {
		return z.Place.Name
	}
	return z.ID
}

// ResolvedZone is a Zone with the abbreviation and offset in force at one
// instant.
type ResolvedZone struct {
	Zone
	Abbrev    string
	UTCOffset int // seconds east of UTC
}

// At computes the abbreviation and offset z observes at t.
func (z Zone) At(t time.Time) ResolvedZone {
	info := tzdb.At(z.Location, t)
	return ResolvedZone{Zone: z, Abbrev: info.Abbrev, UTCOffset: info.Offset}
}

// Fixed wraps a location that needs no lookup, such as the machine zone.
func Fixed(token string, loc *time.Location, src Source) Zone {
	return Zone{Token: token, ID: loc.String(), Location: loc, Source: src}
}

// Resolver resolves tokens against a gazetteer, an airport table and a
// timezone database. It holds no mutable state and is safe for concurrent
// use.
type Resolver struct {
	gaz      *gazetteer.Gazetteer
	airports *gazetteer.Airports
	zones    ZoneLoader
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver. airports may be nil. A nil gaz searches no places
// and a nil zones uses a default tzdb.Service.
func New(gaz *gazetteer.Gazetteer, airports *gazetteer.Airports, zones ZoneLoader, opts ...Option) *Resolver {
	if gaz == nil {
		gaz = gazetteer.New(nil, nil)
	}
	if zones == nil {
		zones = tzdb.New()
	}
	r := &Resolver{
		gaz:      gaz,
		airports: airports,
		zones:    zones,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Gazetteer returns the gazetteer the resolver searches.
func (r *Resolver) Gazetteer() *gazetteer.Gazetteer {
	return r.gaz
}

// Resolve maps token to a Zone. Stages are tried in order: exact IANA id,
// airport code, gazetteer place. It fails with *UnknownLocationError.
func (r *Resolver) Resolve(token string) (Zone, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Zone{}, &UnknownLocationError{Token: token}
	}

	if z, ok := r.byZoneID(token); ok {
		return r.found(z), nil
	}
	if z, ok := r.byAirport(token); ok {
		return r.found(z), nil
	}
	if p, ok := r.bestPlace(token); ok {
		z, err := r.placeZone(token, p, SourcePlace)
		if err != nil {
			return Zone{}, err
		}
		return r.found(z), nil
	}
	r.logger.Debug("location not found", "token", token)
	return Zone{}, &UnknownLocationError{Token: token}
}

func (r *Resolver) found(z Zone) Zone {
	r.logger.Debug("location resolved", "token", z.Token, "source", string(z.Source), "zone", z.ID)
	return z
}

func (r *Resolver) byZoneID(token string) (Zone, bool) {
	id := token
	if strings.Contains(id, "/") {
		id = strings.ReplaceAll(id, " ", "_")
	}
	if !r.zones.Known(id) {
		return Zone{}, false
	}
	loc, err := r.zones.Load(id)
	if err != nil {
		return Zone{}, false
	}
	return Zone{Token: token, ID: id, Location: loc, Source: SourceZoneID}, true
}

func (r *Resolver) byAirport(token string) (Zone, bool) {
	if len(token) != 3 || strings.IndexFunc(token, func(c rune) bool { return !unicode.IsLetter(c) }) >= 0 {
		return Zone{}, false
	}
	ap, ok := r.airports.Lookup(token)
	if !ok {
		return Zone{}, false
	}
	var cands []gazetteer.Place
	for _, p := range r.gaz.LookupByName(ap.City) {
		if strings.EqualFold(p.CountryCode, ap.Country) {
			cands = append(cands, p)
		}
	}
	if p, ok := best(cands); ok {
		if z, err := r.placeZone(token, p, SourceAirport); err == nil {
			return z, true
		}
	}
	loc, err := r.zones.Load(ap.Timezone)
	if err != nil {
		return Zone{}, false
	}
	return Zone{Token: token, ID: ap.Timezone, Location: loc, Source: SourceAirport}, true
}

func (r *Resolver) placeZone(token string, p gazetteer.Place, src Source) (Zone, error) {
	loc, err := r.zones.Load(p.TimezoneID)
	if err != nil {
		return Zone{}, fmt.Errorf("resolve: place %s: %w", p.Name, err)
	}
	z := Zone{Token: token, ID: p.TimezoneID, Location: loc, Place: &p, Source: src}
	if c, ok := r.gaz.LookupCountry(p.CountryCode); ok {
		z.Country = &c
	}
	return z, nil
}
