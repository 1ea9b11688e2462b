// Package gazetteer holds the read-only table of places and countries that
// location tokens are resolved against. A Gazetteer is built once and never
// mutated, so it can be shared between goroutines without locking.
package gazetteer

import (
	"slices"
	"strings"
)

// Place is a populated place with the timezone it observes.
type Place struct {
	Name        string
	AdminCode   string
	CountryCode string
	TimezoneID  string
	Population  uint64
}

// Country is an ISO 3166 country code and its English name.
type Country struct {
	Code string
	Name string
}

// Gazetteer indexes places by folded name and countries by code and name.
type Gazetteer struct {
	places        []Place
	byName        map[string][]int
	countries     []Country
	byCode        map[string]int
	byCountryName map[string]int
}

// New builds a Gazetteer. Table order is kept and breaks population ties
// during resolution.
func New(places []Place, countries []Country) *Gazetteer {
	g := &Gazetteer{
		places:        slices.Clone(places),
		byName:        make(map[string][]int, len(places)),
		countries:     slices.Clone(countries),
		byCode:        make(map[string]int, len(countries)),
		byCountryName: make(map[string]int, len(countries)),
	}
	for i, p := range g.places {
		key := Fold(p.Name)
		g.byName[key] = append(g.byName[key], i)
	}
	for i, c := range g.countries {
		g.byCode[strings.ToUpper(c.Code)] = i
		g.byCountryName[Fold(c.Name)] = i
	}
	return g
}

// LookupByName returns every place whose name folds to the same key as name,
// in table order.
func (g *Gazetteer) LookupByName(name string) []Place {
	idx := g.byName[Fold(name)]
	out := make([]Place, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.places[i])
	}
	return out
}

// LookupCountry returns the country with the given ISO code.
func (g *Gazetteer) LookupCountry(code string) (Country, bool) {
	i, ok := g.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Country{}, false
	}
	return g.countries[i], true
}

// CountryByName returns the country whose folded name equals name.
func (g *Gazetteer) CountryByName(name string) (Country, bool) {
	i, ok := g.byCountryName[Fold(name)]
	if !ok {
		return Country{}, false
	}
	return g.countries[i], true
}

// Places returns a copy of the place table.
func (g *Gazetteer) Places() []Place {
	return slices.Clone(g.places)
}

// Countries returns a copy of the country table.
func (g *Gazetteer) Countries() []Country {
	return slices.Clone(g.countries)
}

// Len returns the number of places.
func (g *Gazetteer) Len() int {
	return len(g.places)
}

// Zones returns the sorted, distinct timezone ids referenced by places.
func (g *Gazetteer) Zones() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range g.places {
		if _, ok := seen[p.TimezoneID]; ok || p.TimezoneID == "" {
			continue
		}
		seen[p.TimezoneID] = struct{}{}
		out = append(out, p.TimezoneID)
	}
	slices.Sort(out)
	return out
}
