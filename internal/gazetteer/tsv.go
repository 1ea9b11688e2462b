package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// File names used by ReadDir and WriteDir.
const (
	PlacesFile    = "places.tsv"
	CountriesFile = "countries.tsv"
)

// ReadPlaces reads the tab separated place format: name, admin code,
// country code, timezone, population. Lines starting with '#' are comments.
func ReadPlaces(r io.Reader) ([]Place, error) {
	var out []Place
	err := eachRow(r, func(line int, cols []string) error {
		if len(cols) != 5 || cols[0] == "" || cols[2] == "" || cols[3] == "" {
			return errors.Wrapf(ErrInvalidRecord, "line %d", line)
		}
		pop, err := strconv.ParseUint(cols[4], 10, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidRecord, "line %d: population %q", line, cols[4])
		}
		out = append(out, Place{
			Name:        cols[0],
			AdminCode:   cols[1],
			CountryCode: strings.ToUpper(cols[2]),
			TimezoneID:  cols[3],
			Population:  pop,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: read places")
	}
	if len(out) == 0 {
		return nil, errors.Wrap(ErrEmptyTable, "gazetteer: read places")
	}
	return out, nil
}

// ReadCountries reads the tab separated country format: code, name.
func ReadCountries(r io.Reader) ([]Country, error) {
	var out []Country
	err := eachRow(r, func(line int, cols []string) error {
		if len(cols) != 2 || cols[0] == "" || cols[1] == "" {
			return errors.Wrapf(ErrInvalidRecord, "line %d", line)
		}
		out = append(out, Country{Code: strings.ToUpper(cols[0]), Name: cols[1]})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: read countries")
	}
	return out, nil
}

// WritePlaces writes places in the format ReadPlaces reads.
func WritePlaces(w io.Writer, places []Place) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# name\tadmin\tcountry\ttimezone\tpopulation")
	for _, p := range places {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\n", p.Name, p.AdminCode, p.CountryCode, p.TimezoneID, p.Population)
	}
	return errors.Wrap(bw.Flush(), "gazetteer: write places")
}

// WriteCountries writes countries in the format ReadCountries reads.
func WriteCountries(w io.Writer, countries []Country) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# code\tname")
	for _, c := range countries {
		fmt.Fprintf(bw, "%s\t%s\n", c.Code, c.Name)
	}
	return errors.Wrap(bw.Flush(), "gazetteer: write countries")
}

// ReadDir builds a Gazetteer from PlacesFile and CountriesFile in dir.
func ReadDir(dir string) (*Gazetteer, error) {
	pf, err := os.Open(filepath.Join(dir, PlacesFile))
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: open places")
	}
	defer pf.Close()
	places, err := ReadPlaces(pf)
	if err != nil {
		return nil, err
	}

	cf, err := os.Open(filepath.Join(dir, CountriesFile))
	if err != nil {
		return nil, errors.Wrap(err, "gazetteer: open countries")
	}
	defer cf.Close()
	countries, err := ReadCountries(cf)
	if err != nil {
		return nil, err
	}
	return New(places, countries), nil
}

// WriteDir writes g to PlacesFile and CountriesFile in dir, creating dir if
// needed.
func WriteDir(dir string, g *Gazetteer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "gazetteer: create dir")
	}
	if err := writeFile(filepath.Join(dir, PlacesFile), func(w io.Writer) error {
		return WritePlaces(w, g.places)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, CountriesFile), func(w io.Writer) error {
		return WriteCountries(w, g.countries)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "gazetteer: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "gazetteer: close %s", path)
}

// eachRow calls fn for every non-comment, non-blank line split on tabs.
func eachRow(r io.Reader, fn func(line int, cols []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(line, strings.Split(text, "\t")); err != nil {
			return err
		}
	}
	return sc.Err()
}
