package cmd

import (
	"slices"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"query balance --id A1", []string{"query", "balance", "--id", "A1"}},
		{"  a\t b  ", []string{"a", "b"}},
		{`--holder "Mary Ann"`, []string{"--holder", "Mary Ann"}},
		{`--holder 'O"Brien'`, []string{"--holder", `O"Brien`}},
		{`--holder Mary\ Ann`, []string{"--holder", "Mary Ann"}},
		{`--pin ""`, []string{"--pin", ""}},
		{`a"b c"d`, []string{"ab cd"}},
		{`'a\b'`, []string{`a\b`}},
	}
	for _, tc := range cases {
		got, err := splitArgs(tc.in)
		if err != nil {
			t.Errorf("splitArgs(%q): %v", tc.in, err)
			continue
		}
		if !slices.Equal(got, tc.want) {
			t.Errorf("splitArgs(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSplitArgsErrors(t *testing.T) {
	for _, in := range []string{`"open`, `'open`, `trailing\`} {
		if _, err := splitArgs(in); err == nil {
			t.Errorf("splitArgs(%q): expected error", in)
		}
	}
}
