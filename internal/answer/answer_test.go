package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<b>Isaac Newton</b>", "isaac newton"},
		{"The Great Gatsby", "great gatsby"},
		{"  Émile   Zola! ", "mile zola"},
		{"an apple", "apple"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestCheckExactAndLoose(t *testing.T) {
	c := NewChecker()

	cases := []struct {
		name       string
		line       string
		given      string
		strictness int
		want       Directive
	}{
		{name: "exact match", line: "Isaac Newton", given: "isaac newton", strictness: 7, want: Accept},
		{name: "surname at default strictness", line: "Isaac Newton", given: "newton", strictness: 7, want: Accept},
		{name: "surname rejected when exact", line: "Isaac Newton", given: "newton", strictness: 10, want: Reject},
		{name: "wrong answer", line: "Isaac Newton", given: "leibniz", strictness: 7, want: Reject},
		{name: "empty answer", line: "Isaac Newton", given: "   ", strictness: 7, want: Reject},
		{name: "markup in line", line: "<b>Isaac Newton</b>", given: "isaac newton", strictness: 7, want: Accept},
		{name: "short token never enough", line: "Pope Pius IX", given: "ix", strictness: 5, want: Reject},
		{name: "parenthetical ignored", line: "Mercury (the planet)", given: "mercury", strictness: 10, want: Accept},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Check(tc.line, tc.given, tc.strictness)
			assert.Equal(t, tc.want, got.Directive)
		})
	}
}

func TestCheckBracketClauses(t *testing.T) {
	c := NewChecker()
	line := "Isaac Newton [or Sir Isaac; accept Newtonian mechanics before mechanics is read; prompt on physicist by asking \"which one?\"; reject Leibniz]"

	cases := []struct {
		name       string
		given      string
		want       Directive
		wantPrompt string
	}{
		{name: "alternate accepted", given: "sir isaac", want: Accept},
		{name: "accept clause condition stripped", given: "newtonian mechanics", want: Accept},
		{name: "prompt with directed text", given: "physicist", want: Prompt, wantPrompt: "which one?"},
		{name: "explicit reject wins", given: "leibniz", want: Reject},
		{name: "main answer still works", given: "isaac newton", want: Accept},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Check(line, tc.given, 7)
			assert.Equal(t, tc.want, got.Directive)
			if tc.wantPrompt != "" {
				assert.Equal(t, tc.wantPrompt, got.DirectedPrompt)
			}
		})
	}
}

func TestCheckTokenSubset(t *testing.T) {
	c := NewChecker()
	got := c.Check("Johann Sebastian Bach", "sebastian bach", 5)
	assert.Equal(t, Accept, got.Directive)

	got = c.Check("Johann Sebastian Bach", "sebastian handel", 5)
	assert.Equal(t, Reject, got.Directive)
}

func TestCheckDefaultsStrictness(t *testing.T) {
	c := NewChecker()
	got := c.Check("Isaac Newton", "newton", 0)
	assert.Equal(t, Accept, got.Directive)
}
