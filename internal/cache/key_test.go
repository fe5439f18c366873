package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type keyArgs struct {
	Types []string
	Year  int
	Order string
	note  string
}

func TestSerializeKey(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"no args", nil, "documents"},
		{"scalars", []any{"DESC", 2024, true}, "documents::DESC::2024::true"},
		{"nil", []any{nil}, "documents::nil"},
		{"slice", []any{[]string{"a", "b"}}, "documents::slice[2]:{a,b}"},
		{"nil slice", []any{[]string(nil)}, "documents::slice:nil"},
		{"map sorted", []any{map[string]int{"b": 2, "a": 1}}, "documents::map[2]:{a=1,b=2}"},
		{
			"struct skips unexported",
			[]any{keyArgs{Types: []string{"x"}, Year: 0, Order: "ASC", note: "ignored"}},
			"documents::struct:{Types:slice[1]:{x},Year:0,Order:ASC}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializeKey("documents", tt.args...))
		})
	}
}

func TestSerializeKey_Pointer(t *testing.T) {
	year := 2023
	var none *int

	assert.Equal(t, "years::2023", SerializeKey("years", &year))
	assert.Equal(t, "years::nil", SerializeKey("years", none))
}

func TestHashKey(t *testing.T) {
	a := HashKey("documents", keyArgs{Types: []string{"a"}, Order: "DESC"})
	b := HashKey("documents", keyArgs{Types: []string{"a"}, Order: "DESC"})
	c := HashKey("documents", keyArgs{Types: []string{"a"}, Order: "ASC"})
	d := HashKey("years", keyArgs{Types: []string{"a"}, Order: "DESC"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.True(t, strings.HasPrefix(a, "cdox_documents_"))
	assert.Len(t, strings.TrimPrefix(a, "cdox_documents_"), 64)
}
