// Package convert runs the full pipeline: parse an expression, resolve its
// locations, evaluate the time once in the anchor zone, and express that
// instant in every requested zone.
package convert

import (
	"errors"
	"log/slog"
	"time"

	"github.com/papapumpkin/when/internal/evaluate"
	"github.com/papapumpkin/when/internal/expr"
	"github.com/papapumpkin/when/internal/resolve"
)

// Stage names the pipeline step that failed.
type Stage string

// Pipeline stages.
const (
	StageParse    Stage = "parse"
	StageResolve  Stage = "resolve"
	StageEvaluate Stage = "evaluate"
)

// Error wraps a failure with the stage it came from. The wrapped error is a
// *expr.ParseError, one or more *resolve.UnknownLocationError joined
// together, or an *evaluate.InvalidDateError.
type Error struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage of a pipeline error, or "" for other errors.
func StageOf(err error) Stage {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Stage
	}
	return ""
}

// Entry is the converted instant in one zone.
type Entry struct {
	Time       time.Time
	Zone       resolve.ResolvedZone
	IsRelative bool
}

// Result holds one entry per location in input order. All entries describe
// the same absolute instant.
type Result struct {
	Input      string
	Expression *expr.Expression
	Reference  time.Time
	Entries    []Entry
	IsRelative bool
}

// Converter is safe for concurrent use once built.
type Converter struct {
	resolver  *resolve.Resolver
	now       func() time.Time
	localEcho bool
	logger    *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithClock sets the source of the reference instant.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithLocalEcho appends the local zone when the result would otherwise show
// a single zone that differs from it.
func WithLocalEcho(on bool) Option {
	return func(c *Converter) { c.localEcho = on }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New creates a Converter.
func New(r *resolve.Resolver, opts ...Option) *Converter {
	c := &Converter{
		resolver: r,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolver returns the resolver the converter uses.
func (c *Converter) Resolver() *resolve.Resolver {
	return c.resolver
}

// Convert runs the pipeline against the current time.
func (c *Converter) Convert(input string, local *time.Location) (*Result, error) {
	return c.ConvertAt(input, local, c.now())
}

// ConvertAt runs the pipeline against ref. If any location fails to resolve
// the whole conversion fails and no entries are returned.
func (c *Converter) ConvertAt(input string, local *time.Location, ref time.Time) (*Result, error) {
	if local == nil {
		local = time.Local
	}
	e, err := expr.Parse(input)
	if err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}

	zones, err := c.resolveAll(e.Locations, local)
	if err != nil {
		return nil, &Error{Stage: StageResolve, Err: err}
	}

	instant, err := evaluate.Evaluate(e.Time, zones[0].Location, ref)
	if err != nil {
		return nil, &Error{Stage: StageEvaluate, Err: err}
	}

	if c.localEcho && len(zones) == 1 && zones[0].Location.String() != local.String() {
		zones = append(zones, resolve.Fixed("local", local, resolve.SourceLocal))
	}

	rel := expr.IsRelative(e.Time)
	res := &Result{
		Input:      input,
		Expression: e,
		Reference:  ref,
		Entries:    make([]Entry, 0, len(zones)),
		IsRelative: rel,
	}
	for _, z := range zones {
		t := instant.In(z.Location)
		res.Entries = append(res.Entries, Entry{Time: t, Zone: z.At(t), IsRelative: rel})
	}
	c.logger.Debug("converted", "input", input, "entries", len(res.Entries), "relative", rel)
	return res, nil
}

// resolveAll resolves every token, collecting all failures. With no tokens
// the local zone is the only zone.
func (c *Converter) resolveAll(tokens []expr.LocationToken, local *time.Location) ([]resolve.Zone, error) {
	if len(tokens) == 0 {
		return []resolve.Zone{resolve.Fixed("local", local, resolve.SourceLocal)}, nil
	}
	zones := make([]resolve.Zone, 0, len(tokens))
	var errs []error
	for _, tok := range tokens {
		switch tok.Kind {
		case expr.KindLocal:
			zones = append(zones, resolve.Fixed(tok.Text, local, resolve.SourceLocal))
		case expr.KindUTC:
			zones = append(zones, resolve.Fixed(tok.Text, time.UTC, resolve.SourceUTC))
		default:
			z, err := c.resolver.Resolve(tok.Text)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			zones = append(zones, z)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return zones, nil
}
