package calculate

import (
	"strings"
	"unicode"
)

// Tokenize разбивает выражение на лексемы. Каждый оператор и скобка
// становятся отдельной лексемой, подряд идущие прочие символы склеиваются
// в одну (числа, константы). Пробельные символы в лексемы не попадают, но
// разделяют операнды: "1 2" даёт две лексемы, а не "12".
func Tokenize(expression string) []string {
	lexemes := make([]string, 0, len(expression))
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			lexemes = append(lexemes, current.String())
			current.Reset()
		}
	}

	for _, r := range expression {
		switch {
		case unicode.IsSpace(r):
			flush()
		case IsOperatorSymbol(r):
			flush()
			lexemes = append(lexemes, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return lexemes
}
