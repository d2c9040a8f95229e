package calculate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		expression string
		expected   []string
	}{
		{"", []string{}},
		{" \t ", []string{}},
		{"12+3.5", []string{"12", "+", "3.5"}},
		{"(pi-e)^2", []string{"(", "pi", "-", "e", ")", "^", "2"}},
		{" 1 + 2 ", []string{"1", "+", "2"}},
		{"1 2", []string{"1", "2"}},
		{"--1", []string{"-", "-", "1"}},
		{"2*(-3)/4", []string{"2", "*", "(", "-", "3", ")", "/", "4"}},
		{"1e3", []string{"1e3"}},
		{"abc!", []string{"abc!"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Tokenize(test.expression), "expression %q", test.expression)
	}
}
