package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/gazetteer"
	"github.com/papapumpkin/when/internal/resolve"
	"github.com/papapumpkin/when/internal/store"
)

var gazetteerCmd = &cobra.Command{
	Use:   "gazetteer",
	Short: "Manage the place table used to resolve city names",
}

var gazetteerImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a geonames cities dump",
	Long: `Reads a geonames cities file (for example cities15000.txt) and writes it
either to a SQLite store (--out ending in .db) or to a TSV directory.

Point gazetteer.path (or --gazetteer) at the result to use it.`,
	Args: cobra.NoArgs,
	RunE: runGazetteerImport,
}

var gazetteerInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show statistics for the configured gazetteer",
	Args:  cobra.NoArgs,
	RunE:  runGazetteerInfo,
}

var gazetteerLookupCmd = &cobra.Command{
	Use:   "lookup <location>",
	Short: "Show every place a location token could mean, best match first",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGazetteerLookup,
}

func init() {
	gazetteerImportCmd.Flags().String("cities", "", "geonames cities file (required)")
	gazetteerImportCmd.Flags().String("countries", "", "geonames countryInfo.txt (default: built-in country names)")
	gazetteerImportCmd.Flags().StringP("out", "o", "", "output .db file or TSV directory (required)")
	gazetteerImportCmd.Flags().Bool("no-progress", false, "do not show a progress bar")
	_ = gazetteerImportCmd.MarkFlagRequired("cities")
	_ = gazetteerImportCmd.MarkFlagRequired("out")

	gazetteerCmd.AddCommand(gazetteerImportCmd, gazetteerInfoCmd, gazetteerLookupCmd)
	rootCmd.AddCommand(gazetteerCmd)
}

func runGazetteerImport(cmd *cobra.Command, _ []string) error {
	citiesPath, _ := cmd.Flags().GetString("cities")
	countriesPath, _ := cmd.Flags().GetString("countries")
	out, _ := cmd.Flags().GetString("out")
	quiet, _ := cmd.Flags().GetBool("no-progress")

	places, err := readCities(citiesPath, cmd.ErrOrStderr(), quiet)
	if err != nil {
		return err
	}
	countries, err := readCountries(countriesPath)
	if err != nil {
		return err
	}

	if isStorePath(out) {
		s, err := store.Open(cmd.Context(), out)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Replace(cmd.Context(), places, countries); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("gazetteer: create %s: %w", out, err)
		}
		if err := gazetteer.WriteDir(out, gazetteer.New(places, countries)); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d places and %d countries into %s\n", len(places), len(countries), out)
	return nil
}

// readCities parses a geonames dump, showing byte progress on w.
func readCities(path string, w io.Writer, quiet bool) ([]gazetteer.Place, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: open %s: %w", path, err)
	}
	defer f.Close()

	if quiet {
		return gazetteer.ParseCities(f)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("gazetteer: stat %s: %w", path, err)
	}
	bar := pb.New64(info.Size()).SetWriter(w).Set(pb.Bytes, true)
	bar.Start()
	places, err := gazetteer.ParseCities(bar.NewProxyReader(f))
	bar.Finish()
	return places, err
}

// readCountries parses countryInfo.txt, or returns the built-in names when
// path is empty.
func readCountries(path string) ([]gazetteer.Country, error) {
	if path == "" {
		g, err := gazetteer.Default()
		if err != nil {
			return nil, err
		}
		return g.Countries(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: read %s: %w", path, err)
	}
	return gazetteer.ParseCountries(bytes.NewReader(data))
}

func runGazetteerInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	g, err := loadGazetteer(cmd.Context(), cfg.Gazetteer.Path)
	if err != nil {
		return err
	}
	airports, err := gazetteer.DefaultAirports()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "source:\t%s\n", sourceName(cfg.Gazetteer.Path))
	fmt.Fprintf(tw, "places:\t%d\n", g.Len())
	fmt.Fprintf(tw, "countries:\t%d\n", len(g.Countries()))
	fmt.Fprintf(tw, "zones:\t%d\n", len(g.Zones()))
	fmt.Fprintf(tw, "airports:\t%d\n", airports.Len())
	if isStorePath(cfg.Gazetteer.Path) {
		s, err := store.Open(cmd.Context(), cfg.Gazetteer.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		counts, err := s.Counts(cmd.Context())
		if err != nil {
			return err
		}
		if !counts.ImportedAt.IsZero() {
			fmt.Fprintf(tw, "imported:\t%s\n", counts.ImportedAt.Format("2006-01-02 15:04:05 MST"))
		}
	}
	return tw.Flush()
}

func runGazetteerLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	env, err := buildEnvironment(cmd.Context(), cfg, newLogger(cmd, cfg))
	if err != nil {
		return err
	}
	token := strings.Join(args, " ")
	r := env.conv.Resolver()

	best, err := r.Resolve(token)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if best.Source != resolve.SourcePlace {
		fmt.Fprintf(tw, "%s\t%s\t(%s)\n", token, best.ID, best.Source)
		return tw.Flush()
	}
	for i, p := range r.Candidates(token) {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		country := p.CountryCode
		if c, ok := env.gaz.LookupCountry(p.CountryCode); ok {
			country = c.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", marker, p.Name, p.AdminCode, country, p.TimezoneID, p.Population)
	}
	return tw.Flush()
}
