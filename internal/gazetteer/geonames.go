package gazetteer

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Column positions in the geonames cities dump (cities15000.txt and
// friends) and in countryInfo.txt.
const (
	geoASCIIName  = 2
	geoCountry    = 8
	geoAdmin1     = 10
	geoPopulation = 14
	geoTimezone   = 17
	geoMinColumns = 18

	countryISO  = 0
	countryName = 4
)

// ParseCities reads a geonames cities dump. The ASCII name is used, names
// containing '(' are skipped, and numeric admin codes are dropped since they
// mean nothing to a reader.
func ParseCities(r io.Reader) ([]Place, error) {
	var out []Place
	err := eachRow(r, func(line int, cols []string) error {
		if len(cols) < geoMinColumns {
			return errors.Wrapf(ErrInvalidRecord, "line %d: %d columns", line, len(cols))
		}
		name := strings.TrimSpace(cols[geoASCIIName])
		tz := strings.TrimSpace(cols[geoTimezone])
		if name == "" || tz == "" || strings.Contains(name, "(") {
			return nil
		}
		pop, err := strconv.ParseUint(strings.TrimSpace(cols[geoPopulation]), 10, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidRecord, "line %d: population %q", line, cols[geoPopulation])
		}
		admin := strings.TrimSpace(cols[geoAdmin1])
		if strings.ContainsFunc(admin, unicode.IsDigit) {
			admin = ""
		}
		out = append(out, Place{
			Name:        name,
			AdminCode:   admin,
			CountryCode: strings.ToUpper(cols[geoCountry]),
			TimezoneID:  tz,
			Population:  pop,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: parse geonames cities")
	}
	if len(out) == 0 {
		return nil, errors.Wrap(ErrEmptyTable, "gazetteer: parse geonames cities")
	}
	return out, nil
}

// ParseCountries reads geonames countryInfo.txt.
func ParseCountries(r io.Reader) ([]Country, error) {
	var out []Country
	err := eachRow(r, func(line int, cols []string) error {
		if len(cols) <= countryName {
			return errors.Wrapf(ErrInvalidRecord, "line %d: %d columns", line, len(cols))
		}
		code := strings.ToUpper(strings.TrimSpace(cols[countryISO]))
		if code == "" {
			return nil
		}
		out = append(out, Country{Code: code, Name: strings.TrimSpace(cols[countryName])})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: parse geonames countries")
	}
	return out, nil
}
