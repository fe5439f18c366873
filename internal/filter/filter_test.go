package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cdox/internal/model"
)

func TestParseTypeList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"stray whitespace", " a, b ,c", []string{"a", "b", "c"}},
		{"empty", "", nil},
		{"only commas", " , ,", nil},
		{"single", "reports", []string{"reports"}},
		{"markup stripped", "<b>reports</b>,filings", []string{"reports", "filings"}},
		{"sentinel", AllDocTypes, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTypeList(tt.in))
		})
	}
}

func TestParseYear(t *testing.T) {
	assert.Nil(t, ParseYear(AllYears))
	assert.Nil(t, ParseYear(""))
	assert.Nil(t, ParseYear("twenty"))
	assert.Nil(t, ParseYear("-2020"))
	assert.Nil(t, ParseYear("0"))

	y := ParseYear(" 2024 ")
	if assert.NotNil(t, y) {
		assert.Equal(t, 2024, *y)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "on", "yes", " Yes "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "0", "false", "off", "no", "maybe"} {
		assert.False(t, ParseBool(s), s)
	}

	assert.True(t, ParseBoolDefault("", true))
	assert.False(t, ParseBoolDefault("no", true))
}

func TestParse(t *testing.T) {
	t.Run("full input", func(t *testing.T) {
		req := Parse(Params{Types: " a, b ,c", Year: "2023", Order: "asc", ShowDate: "on"})

		assert.Equal(t, []string{"a", "b", "c"}, req.Spec.Types())
		y, ok := req.Spec.Year()
		assert.True(t, ok)
		assert.Equal(t, 2023, y)
		assert.Equal(t, model.OrderAsc, req.Spec.Order())
		assert.True(t, req.ShowDate)
	})

	t.Run("defaults", func(t *testing.T) {
		req := Parse(Params{Types: AllDocTypes, Year: AllYears, Order: "bogus"})

		assert.Empty(t, req.Spec.Types())
		_, ok := req.Spec.Year()
		assert.False(t, ok)
		assert.Equal(t, model.OrderDesc, req.Spec.Order())
		assert.False(t, req.ShowDate)
	})

	t.Run("all types restricted by hidden field", func(t *testing.T) {
		req := Parse(Params{Types: AllDocTypes, AllTypes: "reports,filings"})

		assert.Equal(t, []string{"filings", "reports"}, req.Spec.Types())
	})

	t.Run("zero value", func(t *testing.T) {
		req := Parse(Params{})

		assert.Empty(t, req.Spec.Types())
		assert.Equal(t, model.OrderDesc, req.Spec.Order())
	})
}

func TestFromFormAndQuery(t *testing.T) {
	form := map[string]string{
		FieldDocTypes:    "reports",
		FieldAllDocTypes: "reports,filings",
		FieldYear:        "2022",
		FieldOrder:       "ASC",
		FieldShowDate:    "1",
	}
	p := FromForm(func(k string) string { return form[k] })
	assert.Equal(t, Params{Types: "reports", AllTypes: "reports,filings", Year: "2022", Order: "ASC", ShowDate: "1"}, p)

	query := map[string]string{QueryType: "a,b", QueryYear: "2021", QueryOrder: "desc", QueryShowDate: "true"}
	q := FromQuery(func(k string) string { return query[k] })
	assert.Equal(t, Params{Types: "a,b", Year: "2021", Order: "desc", ShowDate: "true"}, q)
}
