package model

import (
	"sort"
	"strings"
)

// Order is a sort direction on publication date (or year).
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// NormalizeOrder maps any casing of asc/desc to an Order and everything else to def.
func NormalizeOrder(s string, def Order) Order {
	switch Order(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderAsc:
		return OrderAsc
	case OrderDesc:
		return OrderDesc
	default:
		return def
	}
}

// FilterSpec is the normalized set of listing constraints.
// Build it with NewFilterSpec; the accessors return copies.
type FilterSpec struct {
	types []string
	year  *int
	order Order
}

// NewFilterSpec deduplicates and sorts the type slugs so that equal sets produce
// equal specs. A nil year means all years; an unknown order falls back to DESC.
func NewFilterSpec(types []string, year *int, order Order) FilterSpec {
	seen := make(map[string]struct{}, len(types))
	set := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		set = append(set, t)
	}
	sort.Strings(set)

	var y *int
	if year != nil {
		v := *year
		y = &v
	}
	return FilterSpec{types: set, year: y, order: NormalizeOrder(string(order), OrderDesc)}
}

// Types returns the type slugs; empty means no type filter.
func (f FilterSpec) Types() []string {
	return append([]string{}, f.types...)
}

// Year returns the year filter and whether one is set.
func (f FilterSpec) Year() (int, bool) {
	if f.year == nil {
		return 0, false
	}
	return *f.year, true
}

// Order returns the sort direction, DESC for the zero value.
func (f FilterSpec) Order() Order {
	if f.order == "" {
		return OrderDesc
	}
	return f.order
}

// MatchesTypes reports whether any of slugs is in the type filter, or the filter is empty.
func (f FilterSpec) MatchesTypes(slugs []string) bool {
	if len(f.types) == 0 {
		return true
	}
	for _, s := range slugs {
		i := sort.SearchStrings(f.types, s)
		if i < len(f.types) && f.types[i] == s {
			return true
		}
	}
	return false
}

// KeyParts is the deterministic representation used to build cache keys.
type KeyParts struct {
	Types []string
	Year  *int
	Order string
}

// KeyParts returns the filter fields in cache-key form; Year is nil for all years.
func (f FilterSpec) KeyParts() KeyParts {
	k := KeyParts{Types: f.Types(), Order: string(f.Order())}
	if y, ok := f.Year(); ok {
		k.Year = &y
	}
	return k
}
