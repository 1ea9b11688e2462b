package expr

import "strconv"

// units maps accepted unit spellings to seconds, longest spelling first so
// that "min" is not read as "m" followed by garbage.
var units = []struct {
	name    string
	seconds int64
}{
	{"hours", 3600}, {"hour", 3600}, {"hrs", 3600}, {"hr", 3600}, {"h", 3600},
	{"minutes", 60}, {"minute", 60}, {"mins", 60}, {"min", 60}, {"m", 60},
	{"seconds", 1}, {"second", 1}, {"secs", 1}, {"sec", 1}, {"s", 1},
}

// negRelative := offset "ago"
func (p *parser) negRelative() (int64, bool) {
	c := &p.c
	start := c.mark()
	var secs int64
	ok := c.labeled("relative offset", func() bool {
		var ok bool
		if secs, ok = p.offset(); !ok {
			return false
		}
		c.spaces()
		return c.word("ago")
	})
	if !ok {
		c.reset(start)
	}
	return secs, ok
}

// posRelative := "in" offset
func (p *parser) posRelative() (int64, bool) {
	c := &p.c
	start := c.mark()
	if !c.word("in") {
		return 0, false
	}
	c.spaces()
	secs, ok := p.offset()
	if !ok {
		c.reset(start)
		return 0, false
	}
	return secs, true
}

// offset := clause ([","|"and"] clause)*
func (p *parser) offset() (int64, bool) {
	c := &p.c
	total, ok := p.clause()
	if !ok {
		return 0, false
	}
	for {
		m := c.mark()
		c.spaces()
		if c.accept(",") {
			c.spaces()
		} else if c.word("and") {
			c.spaces()
		}
		secs, ok := p.clause()
		if !ok {
			c.reset(m)
			return total, true
		}
		total += secs
	}
}

// clause := N unit
func (p *parser) clause() (int64, bool) {
	c := &p.c
	start := c.mark()
	n, ok := c.number(1, 6, "number")
	if !ok {
		return 0, false
	}
	c.spaces()
	for _, u := range units {
		if c.accept(u.name) {
			if !c.atLetter() {
				return int64(n) * u.seconds, true
			}
			c.reset(c.pos - len(u.name))
		}
	}
	c.expect("unit (h, m, s)")
	c.reset(start)
	return 0, false
}

// unix := "unix" [":"] digits
func (p *parser) unix() (int64, bool) {
	c := &p.c
	start := c.mark()
	var secs int64
	ok := c.labeled("unix timestamp", func() bool {
		if !c.suffix("unix") {
			return false
		}
		c.accept(":")
		c.spaces()
		digits := c.mark()
		if _, ok := c.number(1, 19, "digits"); !ok {
			return false
		}
		v, err := strconv.ParseInt(c.src[digits:c.pos], 10, 64)
		if err != nil {
			c.reset(digits)
			c.expect("timestamp within int64")
			return false
		}
		secs = v
		return true
	})
	if !ok {
		c.reset(start)
	}
	return secs, ok
}
