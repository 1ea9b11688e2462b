package gazetteer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoRow(ascii, class, country, admin, pop, tz string) string {
	cols := make([]string, 19)
	cols[0] = "1"
	cols[1] = ascii
	cols[geoASCIIName] = ascii
	cols[7] = class
	cols[geoCountry] = country
	cols[geoAdmin1] = admin
	cols[geoPopulation] = pop
	cols[geoTimezone] = tz
	return strings.Join(cols, "\t")
}

func TestParseCities(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		geoRow("Vienna", "PPLC", "AT", "09", "1691468", "Europe/Vienna"),
		geoRow("Vienna", "PPL", "US", "VA", "16489", "America/New_York"),
		geoRow("Fort Worth (old)", "PPL", "US", "TX", "100", "America/Chicago"),
		geoRow("Nowhere", "PPL", "US", "TX", "100", ""),
	}, "\n")

	places, err := ParseCities(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, Place{Name: "Vienna", CountryCode: "AT", TimezoneID: "Europe/Vienna", Population: 1691468}, places[0])
	assert.Equal(t, "VA", places[1].AdminCode)
}

func TestParseCities_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseCities(strings.NewReader("too\tfew\tcolumns"))
	require.ErrorIs(t, err, ErrInvalidRecord)

	_, err = ParseCities(strings.NewReader(geoRow("X", "PPL", "US", "TX", "many", "UTC")))
	require.ErrorIs(t, err, ErrInvalidRecord)

	_, err = ParseCities(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseCountries(t *testing.T) {
	t.Parallel()

	input := "#ISO\tISO3\tISO-Numeric\tfips\tCountry\n" +
		"AT\tAUT\t040\tAU\tAustria\tVienna\n" +
		"US\tUSA\t840\tUS\tUnited States\tWashington\n"

	countries, err := ParseCountries(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Country{{Code: "AT", Name: "Austria"}, {Code: "US", Name: "United States"}}, countries)
}
