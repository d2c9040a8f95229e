package calculate

import (
	"math"
	"regexp"
	"strconv"
)

// Именованные константы
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// decimalLiteral допускает только десятичную запись: strconv.ParseFloat сам
// по себе принимает также "inf", "NaN", шестнадцатеричные числа и "_"
var decimalLiteral = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE]\d+)?$`)

// ParseOperand преобразует лексему-операнд в число
func ParseOperand(lexeme string) (float64, error) {
	if v, ok := constants[lexeme]; ok {
		return v, nil
	}

	if !decimalLiteral.MatchString(lexeme) {
		return 0, InvalidOperandError(lexeme)
	}

	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		// Сюда попадает в том числе переполнение (strconv.ErrRange)
		return 0, InvalidOperandError(lexeme)
	}
	return v, nil
}
