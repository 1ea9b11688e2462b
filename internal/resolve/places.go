package resolve

import (
	"cmp"
	"slices"
	"strings"

	"github.com/papapumpkin/when/internal/gazetteer"
)

// bestPlace finds the most populous place matching token. A trailing
// qualifier after the last comma, or after any space counting from the
// right, narrows the match to places whose admin code, country code or
// country name equals it. The unqualified token is tried last.
func (r *Resolver) bestPlace(token string) (gazetteer.Place, bool) {
	for _, c := range r.qualifiedSplits(token) {
		if p, ok := best(r.qualified(c.name, c.qualifier)); ok {
			return p, true
		}
	}
	return best(r.gaz.LookupByName(token))
}

// Candidates lists every place token could match, most populous first. The
// first entry, if any, is what Resolve picks when no earlier stage applies.
func (r *Resolver) Candidates(token string) []gazetteer.Place {
	var out []gazetteer.Place
	for _, c := range r.qualifiedSplits(token) {
		if out = r.qualified(c.name, c.qualifier); len(out) > 0 {
			break
		}
	}
	if len(out) == 0 {
		out = r.gaz.LookupByName(token)
	}
	slices.SortStableFunc(out, func(a, b gazetteer.Place) int {
		return cmp.Compare(b.Population, a.Population)
	})
	return out
}

type split struct {
	name      string
	qualifier string
}

// qualifiedSplits returns the (name, qualifier) pairs to try, comma first.
func (r *Resolver) qualifiedSplits(token string) []split {
	var out []split
	if i := strings.LastIndex(token, ","); i >= 0 {
		name, qual := strings.TrimSpace(token[:i]), strings.TrimSpace(token[i+1:])
		if name != "" && qual != "" {
			out = append(out, split{name, qual})
		}
	}
	for i := strings.LastIndex(token, " "); i > 0; i = strings.LastIndex(token[:i], " ") {
		name, qual := strings.TrimSpace(token[:i]), strings.TrimSpace(token[i+1:])
		if name != "" && qual != "" && !strings.Contains(name, ",") {
			out = append(out, split{name, qual})
		}
	}
	return out
}

func (r *Resolver) qualified(name, qual string) []gazetteer.Place {
	want := gazetteer.Fold(qual)
	var out []gazetteer.Place
	for _, p := range r.gaz.LookupByName(name) {
		if r.qualifierMatches(p, want) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Resolver) qualifierMatches(p gazetteer.Place, folded string) bool {
	if p.AdminCode != "" && gazetteer.Fold(p.AdminCode) == folded {
		return true
	}
	if gazetteer.Fold(p.CountryCode) == folded {
		return true
	}
	c, ok := r.gaz.LookupCountry(p.CountryCode)
	return ok && gazetteer.Fold(c.Name) == folded
}

// best picks the highest population; ties keep table order.
func best(cands []gazetteer.Place) (gazetteer.Place, bool) {
	if len(cands) == 0 {
		return gazetteer.Place{}, false
	}
	top := cands[0]
	for _, p := range cands[1:] {
		if p.Population > top.Population {
			top = p
		}
	}
	return top, true
}
