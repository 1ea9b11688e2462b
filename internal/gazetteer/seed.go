package gazetteer

import (
	"bytes"
	_ "embed"
)

//go:embed data/places.tsv
var seedPlaces []byte

//go:embed data/countries.tsv
var seedCountries []byte

//go:embed data/airports.toml
var seedAirports []byte

// Default builds a Gazetteer from the built-in table of major cities.
func Default() (*Gazetteer, error) {
	places, err := ReadPlaces(bytes.NewReader(seedPlaces))
	if err != nil {
		return nil, err
	}
	countries, err := ReadCountries(bytes.NewReader(seedCountries))
	if err != nil {
		return nil, err
	}
	return New(places, countries), nil
}

// DefaultAirports parses the built-in airport code table.
func DefaultAirports() (*Airports, error) {
	return ParseAirports(seedAirports)
}
