package calculate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expression string
		expected   float64
	}{
		{"2+2", 4},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"2^3^2", 64},
		{"-3+5", 2},
		{"+3-5", -2},
		{"10/4", 2.5},
		{"2*(3+(4-1))^2", 144},
		{"2*((3+(4-1))^2)", 72},
		{"8-3-2", 3},
		{"16/4/2", 2},
		{"2^-1", 0.5},
		{"-(2+3)", -5},
		{"-(-4)", 4},
		{"3*-2", -6},
		{"(-2)^2", 4},
		{"-2^2", 4},
		{"1.5+0.25", 1.75},
		{".5*4", 2},
		{"1e3/10", 100},
		{"((7))", 7},
		{"2 + 3 / 1", 5},
		{"\t1 +\n2 ", 3},
	}

	for _, test := range tests {
		t.Run(test.expression, func(t *testing.T) {
			result, err := Evaluate(test.expression)
			require.NoError(t, err)
			assert.InDelta(t, test.expected, result, 1e-12)
		})
	}
}

func TestEvaluateConstants(t *testing.T) {
	result, err := Evaluate("pi")
	require.NoError(t, err)
	assert.InDelta(t, 3.14159265358979, result, 1e-12)

	result, err = Evaluate("e")
	require.NoError(t, err)
	assert.InDelta(t, 2.71828182845905, result, 1e-12)

	result, err = Evaluate("2*pi-e")
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi-math.E, result, 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		expression string
		expected   error
	}{
		{"4/0", ErrDivisionByZero},
		{"1/(2-2)", ErrDivisionByZero},
		{"0^-1", ErrInvalidDomain},
		{"(1+2", ErrMismatchedBrackets},
		{"1+2)", ErrMismatchedBrackets},
		{")(", ErrMismatchedBrackets},
		{"((1)", ErrMismatchedBrackets},
		{"1 2", ErrMalformedExpression},
		{"", ErrMalformedExpression},
		{"   ", ErrMalformedExpression},
		{"()", ErrMalformedExpression},
		{"1+", ErrInsufficientOperands},
		{"*2", ErrInsufficientOperands},
		{"-", ErrInsufficientOperands},
		{"2++", ErrInsufficientOperands},
		{"--4", ErrInsufficientOperands},
		{"abc", ErrInvalidOperand},
		{"1..2", ErrInvalidOperand},
		{"2pi", ErrInvalidOperand},
		{"PI", ErrInvalidOperand},
		{"inf", ErrInvalidOperand},
		{"0x10", ErrInvalidOperand},
		{"1e999", ErrInvalidOperand},
	}

	for _, test := range tests {
		t.Run(test.expression, func(t *testing.T) {
			_, err := Evaluate(test.expression)
			require.Error(t, err)
			assert.True(t, errors.Is(err, test.expected), "expected %v, got %v", test.expected, err)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, test.expected.(*CalcError).Kind, kind)
		})
	}
}

func TestEvaluateWhitespaceInsensitive(t *testing.T) {
	compact, err := Evaluate("1+2")
	require.NoError(t, err)
	spaced, err := Evaluate(" 1 + 2 ")
	require.NoError(t, err)
	assert.Equal(t, compact, spaced)
}

func TestEvaluateIdempotent(t *testing.T) {
	const expression = "(1.1+2.2)*3.3/pi^2-e"
	first, err := Evaluate(expression)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := Evaluate(expression)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(first), math.Float64bits(again))
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		expression string
		expected   string
		shouldFail bool
	}{
		{"2+2", "4", false},
		{"2+2*2", "6", false},
		{"10/2", "5", false},
		{"10/4", "2.5", false},
		{"10/0", "", true},
		{"2**2", "", true},
		{"(2+3)*4", "20", false},
		{"abc", "", true},
	}

	for _, test := range tests {
		result, err := Calculate(test.expression)
		if test.shouldFail {
			assert.Error(t, err, "expression %q expected to fail but got %q", test.expression, result)
			continue
		}
		require.NoError(t, err, "expression %q failed unexpectedly", test.expression)
		assert.Equal(t, test.expected, result)
	}
}

func TestEvaluateLexemes(t *testing.T) {
	result, err := EvaluateLexemes([]string{"(", "1", "+", "2", ")", "*", "-", "3"})
	require.NoError(t, err)
	assert.Equal(t, -9.0, result)

	_, err = EvaluateLexemes(nil)
	assert.ErrorIs(t, err, ErrMalformedExpression)
}

func TestCalcErrorMessages(t *testing.T) {
	_, err := Evaluate("4/0")
	assert.EqualError(t, err, "Division by zero")

	_, err = Evaluate("1+x")
	assert.EqualError(t, err, `Invalid operand: "x"`)

	var calcErr *CalcError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "x", calcErr.Lexeme)
	assert.Equal(t, "invalid_operand", calcErr.Kind.String())
}
