// Package ui renders conversion results for the terminal.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/expr"
	"github.com/papapumpkin/when/internal/tzdb"
)

// Format selects the result layout.
type Format string

// Output formats.
const (
	FormatLong  Format = "long"
	FormatShort Format = "short"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name. An empty name selects FormatLong.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatLong, nil
	case FormatLong, FormatShort, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("ui: unknown output format %q", s)
}

// ParseColorMode validates a color mode name. An empty name selects
// ColorAuto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorNever, ColorAlways:
		return m, nil
	}
	return "", fmt.Errorf("ui: unknown color mode %q", s)
}

// Printer writes results and errors to a pair of writers.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	st     styles
	errSt  styles
}

// New creates a Printer for out and errOut using the given color mode.
func New(out, errOut io.Writer, mode ColorMode) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		st:     newStyles(newRenderer(lipgloss.NewRenderer(out), mode)),
		errSt:  newStyles(newRenderer(lipgloss.NewRenderer(errOut), mode)),
	}
}

// Print writes res in the given format.
func (p *Printer) Print(res *convert.Result, f Format) error {
	switch f {
	case FormatShort:
		return p.Short(res)
	case FormatJSON:
		return p.JSON(res)
	default:
		return p.Long(res)
	}
}

// Long writes the multi-line layout, one block per entry.
func (p *Printer) Long(res *convert.Result) error {
	_, err := io.WriteString(p.out, p.FormatLong(res))
	return err
}

// FormatLong renders the multi-line layout as a string.
func (p *Printer) FormatLong(res *convert.Result) string {
	var b strings.Builder
	for i, e := range res.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.st.place.Render(heading(e)))
		b.WriteByte('\n')

		b.WriteString("  ")
		b.WriteString(p.st.time.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(p.st.label.Render("(" + periodLabel(convert.PeriodOf(e.Time)) + ")"))
		b.WriteString("  ")
		b.WriteString(e.Time.Format("Mon, 2 Jan 2006"))
		b.WriteByte('\n')

		b.WriteString("  ")
		b.WriteString(p.st.detail.Render(zoneLine(e)))
		if e.IsRelative {
			b.WriteString("  ")
			b.WriteString(p.st.relative.Render(Humanize(e.Time.Sub(res.Reference))))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Short writes one line per entry.
func (p *Printer) Short(res *convert.Result) error {
	_, err := io.WriteString(p.out, p.FormatShort(res))
	return err
}

// FormatShort renders the one-line-per-entry layout as a string.
func (p *Printer) FormatShort(res *convert.Result) string {
	var b strings.Builder
	for _, e := range res.Entries {
		fmt.Fprintf(&b, "%s %s (%s)\n",
			p.st.time.Render(e.Time.Format("2006-01-02 15:04:05")),
			p.st.detail.Render(e.Zone.Abbrev+" "+tzdb.FormatOffset(e.Zone.UTCOffset)),
			p.st.place.Render(e.Zone.Name()))
	}
	return b.String()
}

// JSON writes the result document, indented.
func (p *Printer) JSON(res *convert.Result) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Document())
}

// Zones writes one zone id per line.
func (p *Printer) Zones(names []string) error {
	for _, n := range names {
		if _, err := fmt.Fprintln(p.out, n); err != nil {
			return err
		}
	}
	return nil
}

// Error writes err to the error writer. Parse errors are followed by the
// input with a caret under the failing offset.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.errOut, p.errSt.err.Render("error:")+" "+err.Error())
	var perr *expr.ParseError
	if errors.As(err, &perr) && strings.TrimSpace(perr.Input) != "" {
		for _, line := range strings.Split(perr.Caret(), "\n") {
			fmt.Fprintln(p.errOut, "  "+line)
		}
	}
}

func heading(e convert.Entry) string {
	z := e.Zone
	if z.Place == nil {
		return z.ID
	}
	parts := []string{z.Place.Name}
	if z.Place.AdminCode != "" {
		parts = append(parts, z.Place.AdminCode)
	}
	if z.Country != nil {
		parts = append(parts, z.Country.Name)
	} else {
		parts = append(parts, z.Place.CountryCode)
	}
	return strings.Join(parts, ", ")
}

func zoneLine(e convert.Entry) string {
	z := e.Zone
	s := z.ID
	if tzdb.HasLetterAbbrev(z.Abbrev) {
		s += " " + z.Abbrev
	}
	return s + " UTC" + tzdb.FormatOffset(z.UTCOffset)
}

func periodLabel(p convert.Period) string {
	return strings.ReplaceAll(string(p), "_", " ")
}

// relMagnitudes phrase a single unit without a direction label. Humanize
// adds "in" or "ago" itself.
var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second", DivBy: 1},
	{D: time.Minute, Format: "%d seconds", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute", DivBy: 1},
	{D: time.Hour, Format: "%d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour", DivBy: 1},
	{D: humanize.Day, Format: "%d hours", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day", DivBy: 1},
	{D: math.MaxInt64, Format: "%d days", DivBy: humanize.Day},
}

// relUnits are the units Humanize may combine, largest first.
var relUnits = []time.Duration{humanize.Day, time.Hour, time.Minute, time.Second}

// Humanize renders a duration relative to now using at most two adjacent
// units, as in "in 2 hours 5 minutes" or "3 days ago".
func Humanize(d time.Duration) string {
	past := d < 0
	if past {
		d = -d
	}
	d = d.Round(time.Second)
	if d < time.Second {
		return "now"
	}

	var s string
	for i, unit := range relUnits {
		if d < unit {
			continue
		}
		lead := d.Truncate(unit)
		s = phrase(lead)
		if i+1 < len(relUnits) {
			if rest := (d - lead).Truncate(relUnits[i+1]); rest > 0 {
				s += " " + phrase(rest)
			}
		}
		break
	}
	if past {
		return s + " ago"
	}
	return "in " + s
}

func phrase(d time.Duration) string {
	var zero time.Time
	return humanize.CustomRelTime(zero, zero.Add(d), "", "", relMagnitudes)
}
