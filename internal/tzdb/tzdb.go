// Package tzdb wraps the IANA timezone database: loading zones by id,
// listing known ids, and reading abbreviation and offset at an instant.
package tzdb

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone data for hosts without /usr/share/zoneinfo
)

// ErrUnknownZone indicates an id that is not in the timezone database.
var ErrUnknownZone = errors.New("unknown timezone")

// Service loads and caches *time.Location values. It is safe for concurrent
// use.
type Service struct {
	mu    sync.Mutex
	cache map[string]*time.Location

	namesOnce sync.Once
	names     []string
	known     map[string]struct{}
	dirs      []string
	fallback  []string
}

// Option configures a Service.
type Option func(*Service)

// WithSearchDirs overrides the directories scanned by Names.
func WithSearchDirs(dirs ...string) Option {
	return func(s *Service) { s.dirs = dirs }
}

// WithFallbackNames sets the ids Names reports when no zoneinfo directory
// can be read.
func WithFallbackNames(names ...string) Option {
	return func(s *Service) { s.fallback = names }
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		cache: make(map[string]*time.Location),
		dirs:  defaultSearchDirs(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load returns the location for an IANA id such as "Europe/Vienna".
func (s *Service) Load(id string) (*time.Location, error) {
	if id == "" || id == "Local" {
		return nil, fmt.Errorf("tzdb: load %q: %w", id, ErrUnknownZone)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc, ok := s.cache[id]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("tzdb: load %q: %w", id, errors.Join(ErrUnknownZone, err))
	}
	s.cache[id] = loc
	return loc, nil
}

// Known reports whether id names a zone, matching case-sensitively. When
// the zone list cannot be enumerated, Known falls back to whether Load
// succeeds and reports the same name back.
func (s *Service) Known(id string) bool {
	s.loadNames()
	if len(s.known) > 0 {
		if _, ok := s.known[id]; !ok {
			return false
		}
	}
	loc, err := s.Load(id)
	return err == nil && loc.String() == id
}

// Names returns the sorted list of zone ids found on this host.
func (s *Service) Names() []string {
	s.loadNames()
	return slices.Clone(s.names)
}

func (s *Service) loadNames() {
	s.namesOnce.Do(func() {
		names := scanZoneDirs(s.dirs)
		if len(names) == 0 {
			names = append([]string{"UTC"}, s.fallback...)
			slices.Sort(names)
			names = slices.Compact(names)
			s.names = names
			return
		}
		s.names = names
		s.known = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.known[n] = struct{}{}
		}
	})
}

// Info is the abbreviation and offset a zone observes at one instant.
type Info struct {
	Abbrev string
	Offset int // seconds east of UTC
}

// At returns the abbreviation and UTC offset in force in loc at t.
func At(loc *time.Location, t time.Time) Info {
	abbrev, offset := t.In(loc).Zone()
	return Info{Abbrev: abbrev, Offset: offset}
}

// FormatOffset renders an offset in seconds as "+01:00".
func FormatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, offset%3600/60)
}

// HasLetterAbbrev reports whether abbrev is a real abbreviation like "CET"
// rather than a numeric stand-in like "+03".
func HasLetterAbbrev(abbrev string) bool {
	return abbrev != "" && !strings.ContainsAny(abbrev[:1], "+-0123456789")
}
