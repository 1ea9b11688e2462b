package expr

// monthNames lists accepted spellings per month, longest first.
var monthNames = [12][]string{
	{"january", "jan"},
	{"february", "feb"},
	{"march", "mar"},
	{"april", "apr"},
	{"may"},
	{"june", "jun"},
	{"july", "jul"},
	{"august", "aug"},
	{"september", "sept", "sep"},
	{"october", "oct"},
	{"november", "nov"},
	{"december", "dec"},
}

// date := relativeDate | numericDate | monthFirstDate | dayFirstDate
func (p *parser) date() (DateSpec, bool) {
	var spec DateSpec
	ok := p.c.labeled("date", func() bool {
		var ok bool
		if spec, ok = p.relativeDate(); ok {
			return true
		}
		if spec, ok = p.numericDate(); ok {
			return true
		}
		if spec, ok = p.monthFirstDate(); ok {
			return true
		}
		spec, ok = p.dayFirstDate()
		return ok
	})
	return spec, ok
}

// relativeDate := today | tomorrow | tmrw | tmw | yesterday | yd | in N day(s)
func (p *parser) relativeDate() (DateSpec, bool) {
	c := &p.c
	switch i, ok := c.anyWord("today", "tomorrow", "tmrw", "tmw", "yesterday", "yd"); {
	case !ok:
	case i == 0:
		return Today{}, true
	case i <= 3:
		return Tomorrow{}, true
	default:
		return Yesterday{}, true
	}

	start := c.mark()
	if !c.word("in") {
		return nil, false
	}
	c.spaces()
	n, ok := c.number(1, 4, "number of days")
	if !ok {
		c.reset(start)
		return nil, false
	}
	c.spaces()
	if _, ok := c.anyWord("days", "day"); !ok {
		c.reset(start)
		return nil, false
	}
	if n == 1 {
		return Tomorrow{}, true
	}
	return InDays{N: n}, true
}

// numericDate := dd sep mm [sep [yyyy]] with sep one of "." or "-". Only the
// dotted form may end in a bare separator.
func (p *parser) numericDate() (DateSpec, bool) {
	c := &p.c
	start := c.mark()
	day, ok := c.ranged(1, 2, 1, 31, "day (1-31)")
	if !ok {
		return nil, false
	}
	sep := ""
	switch {
	case c.accept("."):
		sep = "."
	case c.accept("-"):
		sep = "-"
	default:
		c.expect(`"."`, `"-"`)
		c.reset(start)
		return nil, false
	}
	month, ok := c.ranged(1, 2, 1, 12, "month (1-12)")
	if !ok {
		c.reset(start)
		return nil, false
	}
	spec := Explicit{Day: day, Month: month}
	m := c.mark()
	if !c.accept(sep) {
		return spec, true
	}
	if y, ok := p.year(); ok {
		spec.Year = y
		return spec, true
	}
	if sep != "." {
		c.reset(m)
	}
	return spec, true
}

// monthFirstDate := month day[ordinal] [[","] year]
func (p *parser) monthFirstDate() (DateSpec, bool) {
	c := &p.c
	start := c.mark()
	month, ok := p.month()
	if !ok {
		return nil, false
	}
	c.spaces()
	day, ok := p.ordinalDay()
	if !ok {
		c.reset(start)
		return nil, false
	}
	return Explicit{Day: day, Month: month, Year: p.trailingYear()}, true
}

// dayFirstDate := day[ordinal] ["of"] month [[","] year]
func (p *parser) dayFirstDate() (DateSpec, bool) {
	c := &p.c
	start := c.mark()
	day, ok := p.ordinalDay()
	if !ok {
		return nil, false
	}
	c.spaces()
	if c.word("of") {
		c.spaces()
	}
	month, ok := p.month()
	if !ok {
		c.reset(start)
		return nil, false
	}
	return Explicit{Day: day, Month: month, Year: p.trailingYear()}, true
}

func (p *parser) month() (int, bool) {
	c := &p.c
	for i, names := range monthNames {
		for j, name := range names {
			m := c.mark()
			if !c.accept(name) {
				continue
			}
			if j > 0 {
				c.accept(".")
			}
			if c.atLetter() {
				c.reset(m)
				continue
			}
			return i + 1, true
		}
	}
	c.expect("month name")
	return 0, false
}

// ordinalDay reads a day of month with an optional suffix that must agree
// with the number: 1st, 2nd, 3rd, 4th, 11th, 21st and so on.
func (p *parser) ordinalDay() (int, bool) {
	c := &p.c
	start := c.mark()
	day, ok := c.ranged(1, 2, 1, 31, "day (1-31)")
	if !ok {
		return 0, false
	}
	if !c.atLetter() {
		return day, true
	}
	if c.suffix(ordinalSuffix(day)) {
		return day, true
	}
	c.reset(start)
	return 0, false
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// trailingYear consumes an optional [","] yyyy and returns zero when none
// follows.
func (p *parser) trailingYear() int {
	c := &p.c
	m := c.mark()
	c.spaces()
	if c.accept(",") {
		c.spaces()
	}
	y, ok := p.year()
	if !ok {
		c.reset(m)
		return 0
	}
	return y
}

func (p *parser) year() (int, bool) {
	return p.c.ranged(4, 4, 1, 9999, "year (yyyy)")
}
