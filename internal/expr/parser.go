package expr

import (
	"strings"
)

const arrow = "->"

// Parse parses input into an Expression. It fails with a *ParseError when
// the input does not match the grammar in full.
func Parse(input string) (*Expression, error) {
	p := &parser{c: cursor{src: input}}
	e, ok := p.expression()
	if !ok {
		return nil, p.c.err()
	}
	return e, nil
}

type parser struct {
	c cursor
}

// expression := unixDirect | timeExpr [in location] (-> location)*
func (p *parser) expression() (*Expression, bool) {
	c := &p.c
	c.spaces()
	if e, ok := p.unixDirect(); ok {
		return e, true
	}

	spec, ok := p.timeExpr()
	if !ok {
		return nil, false
	}
	e := &Expression{Time: spec}

	m := c.mark()
	c.spaces()
	if c.word("in") {
		c.spaces()
		loc, ok := p.location()
		if !ok {
			return nil, false
		}
		e.Locations = append(e.Locations, loc)
	} else {
		c.reset(m)
	}

	if !p.chain(e, LocationToken{Text: "local", Kind: KindLocal}) {
		return nil, false
	}
	return e, p.end()
}

// unixDirect := unix [":"] digits -> location (-> location)*
func (p *parser) unixDirect() (*Expression, bool) {
	c := &p.c
	start := c.mark()
	secs, ok := p.unix()
	if !ok {
		return nil, false
	}
	m := c.mark()
	c.spaces()
	if !c.literal(arrow) {
		c.reset(start)
		return nil, false
	}
	c.reset(m)
	e := &Expression{Time: UnixEpoch{Seconds: secs}}
	if !p.chain(e, LocationToken{Text: "UTC", Kind: KindUTC}) {
		return nil, false
	}
	return e, p.end()
}

// chain consumes "-> location" segments. When the first arrow has no source
// location in front of it, source is inserted as the anchor.
func (p *parser) chain(e *Expression, source LocationToken) bool {
	c := &p.c
	for {
		m := c.mark()
		c.spaces()
		at := c.mark()
		if !c.literal(arrow) {
			c.reset(m)
			return true
		}
		c.spaces()
		loc, ok := p.location()
		if !ok {
			return false
		}
		if len(e.Locations) == 0 {
			source.Offset = at
			e.Locations = append(e.Locations, source)
		}
		e.Locations = append(e.Locations, loc)
	}
}

// location is a greedy run of any text up to the next arrow or the end of
// input, trimmed of surrounding whitespace.
func (p *parser) location() (LocationToken, bool) {
	c := &p.c
	start := c.mark()
	end := len(c.src)
	if i := strings.Index(c.src[start:], arrow); i >= 0 {
		end = start + i
	}
	text := strings.TrimSpace(c.src[start:end])
	if text == "" {
		c.expect("location")
		return LocationToken{}, false
	}
	c.reset(end)
	tok := LocationToken{
		Text:   text,
		Offset: start,
		Kind:   KindPlace,
	}
	if strings.EqualFold(text, "local") {
		tok.Kind = KindLocal
	}
	return tok, true
}

func (p *parser) end() bool {
	c := &p.c
	c.spaces()
	if !c.eof() {
		c.expect("end of input")
		return false
	}
	return true
}

// timeExpr := negRelative | absolute | posRelative | unix
func (p *parser) timeExpr() (TimeSpec, bool) {
	if secs, ok := p.negRelative(); ok {
		return RelativeOffset{Seconds: -secs}, true
	}
	if spec, ok := p.absolute(); ok {
		return spec, true
	}
	if secs, ok := p.posRelative(); ok {
		return RelativeOffset{Seconds: secs}, true
	}
	if secs, ok := p.unix(); ok {
		return UnixEpoch{Seconds: secs}, true
	}
	return nil, false
}

// absolute := time [on] date | date time | time | date
func (p *parser) absolute() (TimeSpec, bool) {
	c := &p.c
	if clk, isNow, ok := p.clock(); ok {
		m := c.mark()
		c.spaces()
		if c.word("on") {
			c.spaces()
		}
		date, ok := p.date()
		if !ok {
			c.reset(m)
			if isNow {
				return Now{}, true
			}
			return Absolute{Time: clk}, true
		}
		return Absolute{Time: clk, Date: date}, true
	}

	date, ok := p.date()
	if !ok {
		return nil, false
	}
	m := c.mark()
	c.spaces()
	if clk, _, ok := p.clock(); ok {
		return Absolute{Time: clk, Date: date}, true
	}
	c.reset(m)
	return Absolute{Date: date}, true
}
