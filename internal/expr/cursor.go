package expr

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cursor walks the input and remembers the farthest failure so the parser
// can report a useful offset after backtracking.
type cursor struct {
	src      string
	pos      int
	far      int
	expected []string
}

func (c *cursor) mark() int     { return c.pos }
func (c *cursor) reset(pos int) { c.pos = pos }
func (c *cursor) eof() bool     { return c.pos >= len(c.src) }

// expect records that one of what would have been accepted at the current
// position.
func (c *cursor) expect(what ...string) {
	switch {
	case c.pos > c.far:
		c.far = c.pos
		c.expected = append(c.expected[:0], what...)
	case c.pos == c.far:
		for _, w := range what {
			if !slices.Contains(c.expected, w) {
				c.expected = append(c.expected, w)
			}
		}
	}
}

// labeled runs rule and, if it fails without getting past its start, replaces
// the detail it recorded with a single label.
func (c *cursor) labeled(label string, rule func() bool) bool {
	start := c.pos
	outerFar, outerExp := c.far, c.expected
	c.far, c.expected = start, nil

	ok := rule()

	innerFar, innerExp := c.far, c.expected
	c.far, c.expected = outerFar, outerExp
	if ok {
		if innerFar > start {
			c.merge(innerFar, innerExp)
		}
		return true
	}
	if innerFar > start {
		c.merge(innerFar, innerExp)
	} else {
		saved := c.pos
		c.pos = start
		c.expect(label)
		c.pos = saved
	}
	c.pos = start
	return false
}

func (c *cursor) merge(far int, expected []string) {
	saved := c.pos
	c.pos = far
	c.expect(expected...)
	c.pos = saved
}

func (c *cursor) peekRune() (rune, int) {
	if c.eof() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(c.src[c.pos:])
}

func (c *cursor) atLetter() bool {
	r, n := c.peekRune()
	return n > 0 && unicode.IsLetter(r)
}

func (c *cursor) atDigit() bool {
	return !c.eof() && c.src[c.pos] >= '0' && c.src[c.pos] <= '9'
}

// spaces skips whitespace and returns how many bytes it consumed.
func (c *cursor) spaces() int {
	start := c.pos
	for !c.eof() {
		r, n := c.peekRune()
		if !unicode.IsSpace(r) {
			break
		}
		c.pos += n
	}
	return c.pos - start
}

// accept matches s case-insensitively without recording a failure.
func (c *cursor) accept(s string) bool {
	if len(c.src)-c.pos >= len(s) && strings.EqualFold(c.src[c.pos:c.pos+len(s)], s) {
		c.pos += len(s)
		return true
	}
	return false
}

// literal matches s case-insensitively with no boundary check.
func (c *cursor) literal(s string) bool {
	if c.accept(s) {
		return true
	}
	c.expect(quote(s))
	return false
}

// word matches kw as a whole word: it may not be followed by a letter or a
// digit.
func (c *cursor) word(kw string) bool {
	start := c.pos
	if !c.literal(kw) {
		return false
	}
	if c.atLetter() || c.atDigit() {
		c.pos = start
		c.expect(quote(kw))
		return false
	}
	return true
}

// suffix matches s when it is not followed by another letter. Units and
// meridiems attach directly to numbers, as in "5pm" or "2h30m".
func (c *cursor) suffix(s string) bool {
	start := c.pos
	if !c.literal(s) {
		return false
	}
	if c.atLetter() {
		c.pos = start
		c.expect(quote(s))
		return false
	}
	return true
}

// anyWord tries each keyword in order and returns the index of the first
// match.
func (c *cursor) anyWord(words ...string) (int, bool) {
	for i, w := range words {
		if c.word(w) {
			return i, true
		}
	}
	return -1, false
}

// number reads between minDigits and maxDigits decimal digits. A longer run
// of digits does not match.
func (c *cursor) number(minDigits, maxDigits int, label string) (int, bool) {
	start := c.pos
	n := 0
	v := 0
	for n < maxDigits && c.atDigit() {
		v = v*10 + int(c.src[c.pos]-'0')
		c.pos++
		n++
	}
	if n < minDigits || c.atDigit() {
		c.pos = start
		c.expect(label)
		return 0, false
	}
	return v, true
}

// ranged reads a number and checks it falls in [lo, hi].
func (c *cursor) ranged(minDigits, maxDigits, lo, hi int, label string) (int, bool) {
	start := c.pos
	v, ok := c.number(minDigits, maxDigits, label)
	if !ok {
		return 0, false
	}
	if v < lo || v > hi {
		c.pos = start
		c.expect(label)
		return 0, false
	}
	return v, true
}

func (c *cursor) err() *ParseError {
	exp := slices.Clone(c.expected)
	return &ParseError{Input: c.src, Offset: c.far, Expected: exp}
}

func quote(s string) string {
	return `"` + s + `"`
}
