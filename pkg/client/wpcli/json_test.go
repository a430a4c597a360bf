package wpcli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlob(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare array",
			in:   `[1,2,3]`,
			want: `[1,2,3]`,
		},
		{
			name: "object with surrounding noise",
			in:   `Warning: x {"a":1} trailing`,
			want: `{"a":1}`,
		},
		{
			name: "brackets inside strings ignored",
			in:   `{"a":"]}","b":2} rest`,
			want: `{"a":"]}","b":2}`,
		},
		{
			name: "escaped quote inside string",
			in:   `{"a":"he said \"}\"" } extra`,
			want: `{"a":"he said \"}\"" }`,
		},
		{
			name: "earliest opener wins",
			in:   `x {"a":[1,2]} y`,
			want: `{"a":[1,2]}`,
		},
		{
			name: "no json",
			in:   `plain text only`,
			want: "",
		},
		{
			name: "unbalanced",
			in:   `[1,2`,
			want: "",
		},
	}

	for _, testCase := range cases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.want, extractJSONBlob(testCase.in))
		})
	}
}

func TestParseRelaxed(t *testing.T) {
	t.Parallel()

	value, ok := parseRelaxed("\ufeff \x1b[32m[{\"ID\":1}]\x1b[0m")
	require.True(t, ok)

	rows, isArray := value.([]any)
	require.True(t, isArray)
	require.Len(t, rows, 1)

	_, ok = parseRelaxed("")
	require.False(t, ok)

	_, ok = parseRelaxed("no payload here")
	require.False(t, ok)
}
