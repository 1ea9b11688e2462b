package gazetteer

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Airport maps a three-letter code to the city it serves.
type Airport struct {
	Code     string `toml:"code"`
	City     string `toml:"city"`
	Country  string `toml:"country"`
	Timezone string `toml:"timezone"`
}

// Airports is a read-only table of airport codes.
type Airports struct {
	byCode map[string]Airport
}

type airportFile struct {
	Airport []Airport `toml:"airport"`
}

// ParseAirports decodes a TOML document with one [[airport]] table per code.
func ParseAirports(data []byte) (*Airports, error) {
	var f airportFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "gazetteer: parse airports")
	}
	a := &Airports{byCode: make(map[string]Airport, len(f.Airport))}
	for _, ap := range f.Airport {
		code := strings.ToLower(strings.TrimSpace(ap.Code))
		if len(code) != 3 || ap.City == "" || ap.Timezone == "" {
			return nil, errors.Wrapf(ErrInvalidRecord, "gazetteer: airport %q", ap.Code)
		}
		ap.Code = code
		a.byCode[code] = ap
	}
	return a, nil
}

// Lookup returns the airport for a case-insensitive three-letter code.
func (a *Airports) Lookup(code string) (Airport, bool) {
	if a == nil || len(code) != 3 {
		return Airport{}, false
	}
	ap, ok := a.byCode[strings.ToLower(code)]
	return ap, ok
}

// Len returns the number of codes in the table.
func (a *Airports) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byCode)
}
