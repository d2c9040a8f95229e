package calculate

import "strings"

// OperatorKind определяет вид оператора или скобки
type OperatorKind int

const (
	LeftBracket OperatorKind = iota
	RightBracket
	Add
	Subtract
	Multiply
	Divide
	Power
	UnaryPlus
	UnaryMinus
)

var operatorKindNames = [...]string{
	LeftBracket:  "left bracket",
	RightBracket: "right bracket",
	Add:          "addition",
	Subtract:     "subtraction",
	Multiply:     "multiplication",
	Divide:       "division",
	Power:        "exponentiation",
	UnaryPlus:    "unary plus",
	UnaryMinus:   "unary minus",
}

func (k OperatorKind) String() string {
	if k < 0 || int(k) >= len(operatorKindNames) {
		return "unknown operator"
	}
	return operatorKindNames[k]
}

// bracketPrecedence ниже приоритета любого настоящего оператора, поэтому
// скобки никогда не снимаются со стека при сравнении приоритетов
const bracketPrecedence = -1

// Operator описывает оператор: вид, приоритет и арность.
// Значения неизменяемы и берутся из таблицы ниже.
type Operator struct {
	Kind       OperatorKind
	Precedence int
	Arity      int
}

// IsBracket сообщает, является ли оператор скобкой
func (op Operator) IsBracket() bool {
	return op.Kind == LeftBracket || op.Kind == RightBracket
}

var (
	opLeftBracket  = Operator{Kind: LeftBracket, Precedence: bracketPrecedence, Arity: 0}
	opRightBracket = Operator{Kind: RightBracket, Precedence: bracketPrecedence, Arity: 0}
	opAdd          = Operator{Kind: Add, Precedence: 0, Arity: 2}
	opSubtract     = Operator{Kind: Subtract, Precedence: 0, Arity: 2}
	opMultiply     = Operator{Kind: Multiply, Precedence: 1, Arity: 2}
	opDivide       = Operator{Kind: Divide, Precedence: 1, Arity: 2}
	opPower        = Operator{Kind: Power, Precedence: 1, Arity: 2}
	opUnaryPlus    = Operator{Kind: UnaryPlus, Precedence: 2, Arity: 1}
	opUnaryMinus   = Operator{Kind: UnaryMinus, Precedence: 2, Arity: 1}
)

// operatorSymbols содержит все символы, которые лексер выделяет в отдельные лексемы
const operatorSymbols = "()+-*/^"

// IsOperatorSymbol проверяет, является ли символ оператором или скобкой
// без учёта контекста
func IsOperatorSymbol(r rune) bool {
	return strings.ContainsRune(operatorSymbols, r)
}

// LookupOperator возвращает оператор для лексемы. unary показывает, допустим
// ли в текущей позиции унарный оператор: в начале выражения, после другого
// оператора или после "(".
func LookupOperator(lexeme string, unary bool) (Operator, bool) {
	// Для + и - неоднозначность снимается до проверки бинарной формы
	if unary {
		switch lexeme {
		case "+":
			return opUnaryPlus, true
		case "-":
			return opUnaryMinus, true
		}
	}

	switch lexeme {
	case "(":
		return opLeftBracket, true
	case ")":
		return opRightBracket, true
	case "+":
		return opAdd, true
	case "-":
		return opSubtract, true
	case "*":
		return opMultiply, true
	case "/":
		return opDivide, true
	case "^":
		return opPower, true
	}
	return Operator{}, false
}
