package expr

// clock := time12 | time24 | midnight | noon | now
//
// A nil clock with isNow set means "now" was written; callers decide whether
// that is the Now spec or the reference wall clock on another date.
func (p *parser) clock() (clk *Clock, isNow bool, ok bool) {
	c := &p.c
	ok = c.labeled("time", func() bool {
		if v, ok := p.time12(); ok {
			clk = &v
			return true
		}
		if v, ok := p.time24(); ok {
			clk = &v
			return true
		}
		switch i, ok := c.anyWord("midnight", "noon", "now"); {
		case !ok:
			return false
		case i == 0:
			clk = &Clock{}
		case i == 1:
			clk = &Clock{Hour: 12}
		default:
			isNow = true
		}
		return true
	})
	return clk, isNow, ok
}

// time12 := HH12 [":" MM [":" SS]] meridiem
func (p *parser) time12() (Clock, bool) {
	c := &p.c
	start := c.mark()
	h, ok := c.ranged(1, 2, 1, 12, "hour (1-12)")
	if !ok {
		return Clock{}, false
	}
	clk := Clock{Hour: h}
	if m := c.mark(); c.literal(":") {
		if clk.Minute, ok = p.sexagesimal("minute"); !ok {
			c.reset(start)
			return Clock{}, false
		}
		if m2 := c.mark(); c.literal(":") {
			if clk.Second, ok = p.sexagesimal("second"); !ok {
				c.reset(start)
				return Clock{}, false
			}
		} else {
			c.reset(m2)
		}
	} else {
		c.reset(m)
	}
	c.spaces()
	if clk.Meridiem, ok = p.meridiem(); !ok {
		c.reset(start)
		return Clock{}, false
	}
	return clk, true
}

// time24 := HH24 ":" MM [":" SS]
func (p *parser) time24() (Clock, bool) {
	c := &p.c
	start := c.mark()
	h, ok := c.ranged(1, 2, 0, 23, "hour (0-23)")
	if !ok {
		return Clock{}, false
	}
	clk := Clock{Hour: h}
	if !c.literal(":") {
		c.reset(start)
		return Clock{}, false
	}
	if clk.Minute, ok = p.sexagesimal("minute"); !ok {
		c.reset(start)
		return Clock{}, false
	}
	if m := c.mark(); c.literal(":") {
		if clk.Second, ok = p.sexagesimal("second"); !ok {
			c.reset(start)
			return Clock{}, false
		}
	} else {
		c.reset(m)
	}
	return clk, true
}

// sexagesimal reads exactly two digits in 00-59.
func (p *parser) sexagesimal(label string) (int, bool) {
	return p.c.ranged(2, 2, 0, 59, label+" (00-59)")
}

// meridiem := ("a" | "p") ["."] "m" ["."]
func (p *parser) meridiem() (Meridiem, bool) {
	c := &p.c
	start := c.mark()
	var m Meridiem
	switch {
	case c.accept("a"):
		m = AM
	case c.accept("p"):
		m = PM
	default:
		c.reset(start)
		c.expect(`"am"`, `"pm"`)
		return NoMeridiem, false
	}
	dotted := c.accept(".")
	if !c.accept("m") {
		c.reset(start)
		c.expect(`"am"`, `"pm"`)
		return NoMeridiem, false
	}
	if dotted {
		c.accept(".")
	}
	if c.atLetter() {
		c.reset(start)
		c.expect(`"am"`, `"pm"`)
		return NoMeridiem, false
	}
	return m, true
}
