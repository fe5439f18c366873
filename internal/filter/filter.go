package filter

import (
	"regexp"
	"strconv"
	"strings"

	"cdox/internal/model"
)

// Sentinel values posted by the filter form.
const (
	AllDocTypes = "cdox-all-doctypes"
	AllYears    = "cdox-all-years"
)

// Form field names of the public filter endpoint.
const (
	FieldDocTypes    = "cdoxfilterdoctypes"
	FieldAllDocTypes = "cdoxfilter-all-doctypes"
	FieldYear        = "cdoxfilteryear"
	FieldOrder       = "dateorder"
	FieldShowDate    = "showpubdate"
)

// Query parameter names of the REST listing endpoint.
const (
	QueryType     = "type"
	QueryYear     = "year"
	QueryOrder    = "order"
	QueryShowDate = "show_date"
)

// Params are the raw, untrusted filter inputs.
type Params struct {
	// Types is a comma separated slug list or AllDocTypes.
	Types string
	// AllTypes restricts AllDocTypes to a slug list, as the form's hidden field does.
	AllTypes string
	Year     string
	Order    string
	ShowDate string
}

// Request is the parsed form of Params.
type Request struct {
	Spec     model.FilterSpec
	ShowDate bool
}

// Parse normalizes raw inputs. It never fails: malformed values fall back to
// no type filter, no year filter and DESC order.
func Parse(p Params) Request {
	var types []string
	if strings.TrimSpace(p.Types) == AllDocTypes {
		types = ParseTypeList(p.AllTypes)
	} else {
		types = ParseTypeList(p.Types)
	}

	return Request{
		Spec:     model.NewFilterSpec(types, ParseYear(p.Year), model.NormalizeOrder(p.Order, model.OrderDesc)),
		ShowDate: ParseBool(p.ShowDate),
	}
}

// FromForm reads the filter form fields through get (e.g. fiber's FormValue).
func FromForm(get func(key string) string) Params {
	return Params{
		Types:    get(FieldDocTypes),
		AllTypes: get(FieldAllDocTypes),
		Year:     get(FieldYear),
		Order:    get(FieldOrder),
		ShowDate: get(FieldShowDate),
	}
}

// FromQuery reads the REST query parameters through get.
func FromQuery(get func(key string) string) Params {
	return Params{
		Types:    get(QueryType),
		Year:     get(QueryYear),
		Order:    get(QueryOrder),
		ShowDate: get(QueryShowDate),
	}
}

var commaSpace = regexp.MustCompile(`\s*,\s*`)

// ParseTypeList splits a comma separated slug list, trimming whitespace and
// dropping empty segments.
func ParseTypeList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == AllDocTypes {
		return nil
	}
	var out []string
	for _, part := range strings.Split(commaSpace.ReplaceAllString(s, ","), ",") {
		part = sanitize(part)
		if part == "" || part == AllDocTypes {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseYear returns nil for the all-years sentinel and anything that is not a positive integer.
func ParseYear(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == AllYears {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}

// ParseBool is a loose boolean: 1, true, on and yes are true, anything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// ParseBoolDefault is ParseBool with a fallback for an empty value.
func ParseBoolDefault(s string, def bool) bool {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return ParseBool(s)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitize strips markup and control whitespace from a single slug.
func sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
