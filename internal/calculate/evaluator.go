package calculate

import (
	"math"
	"strconv"
)

// evaluation хранит состояние одного прохода вычисления. Стеки принадлежат
// только этому проходу и отбрасываются после него.
type evaluation struct {
	operators []Operator
	operands  []float64
}

// Evaluate вычисляет инфиксное выражение и возвращает результат
func Evaluate(expression string) (float64, error) {
	return EvaluateLexemes(Tokenize(expression))
}

// Calculate вычисляет выражение и возвращает результат в виде строки
func Calculate(expression string) (string, error) {
	result, err := Evaluate(expression)
	if err != nil {
		return "", err
	}
	return FormatResult(result), nil
}

// FormatResult форматирует результат без лишних нулей
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EvaluateLexemes вычисляет уже разобранную последовательность лексем
func EvaluateLexemes(lexemes []string) (float64, error) {
	ev := &evaluation{
		operators: make([]Operator, 0, len(lexemes)),
		operands:  make([]float64, 0, len(lexemes)),
	}

	unary := true
	for _, lexeme := range lexemes {
		var err error
		unary, err = ev.step(lexeme, unary)
		if err != nil {
			return 0, err
		}
	}

	return ev.finish()
}

// step обрабатывает одну лексему и возвращает, допустим ли унарный
// оператор на следующей позиции
func (ev *evaluation) step(lexeme string, unary bool) (bool, error) {
	op, ok := LookupOperator(lexeme, unary)
	if !ok {
		v, err := ParseOperand(lexeme)
		if err != nil {
			return false, err
		}
		ev.operands = append(ev.operands, v)
		return false, nil
	}

	switch op.Kind {
	case LeftBracket:
		ev.pushOperator(op)
		return true, nil
	case RightBracket:
		if err := ev.closeBracket(); err != nil {
			return false, err
		}
		return false, nil
	default:
		for len(ev.operators) > 0 && ev.topOperator().Precedence >= op.Precedence {
			if err := ev.apply(ev.popOperator()); err != nil {
				return false, err
			}
		}
		ev.pushOperator(op)
		return true, nil
	}
}

// closeBracket применяет операторы до ближайшей "(" и снимает её
func (ev *evaluation) closeBracket() error {
	for len(ev.operators) > 0 && ev.topOperator().Kind != LeftBracket {
		if err := ev.apply(ev.popOperator()); err != nil {
			return err
		}
	}
	if len(ev.operators) == 0 {
		return MismatchedBracketsError(")")
	}
	ev.popOperator()
	return nil
}

// finish применяет оставшиеся операторы и проверяет, что остался ровно один операнд
func (ev *evaluation) finish() (float64, error) {
	for len(ev.operators) > 0 {
		op := ev.popOperator()
		if op.Kind == LeftBracket {
			return 0, MismatchedBracketsError("(")
		}
		if err := ev.apply(op); err != nil {
			return 0, err
		}
	}

	if len(ev.operands) != 1 {
		return 0, MalformedExpressionError(len(ev.operands))
	}
	return ev.operands[0], nil
}

// apply выполняет свёртку: снимает нужное число операндов и кладёт результат
func (ev *evaluation) apply(op Operator) error {
	if len(ev.operands) < op.Arity {
		return InsufficientOperandsError(op)
	}

	switch op.Arity {
	case 1:
		a := ev.popOperand()
		if op.Kind == UnaryMinus {
			a = -a
		}
		ev.operands = append(ev.operands, a)
		return nil
	case 2:
		b := ev.popOperand()
		a := ev.popOperand()
		result, err := binary(op.Kind, a, b)
		if err != nil {
			return err
		}
		ev.operands = append(ev.operands, result)
		return nil
	}
	// Скобки сюда не попадают: они снимаются в closeBracket и finish
	return MismatchedBracketsError(lexemeOf(op.Kind))
}

// binary вычисляет a op b
func binary(kind OperatorKind, a, b float64) (float64, error) {
	switch kind {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, DivisionByZeroError()
		}
		return a / b, nil
	case Power:
		if a == 0 && b < 0 {
			return 0, InvalidDomainError()
		}
		return math.Pow(a, b), nil
	}
	return 0, NewCalcError(KindMalformedExpression, "Malformed expression: unexpected "+kind.String())
}

func lexemeOf(kind OperatorKind) string {
	if kind == RightBracket {
		return ")"
	}
	return "("
}

func (ev *evaluation) pushOperator(op Operator) {
	ev.operators = append(ev.operators, op)
}

func (ev *evaluation) topOperator() Operator {
	return ev.operators[len(ev.operators)-1]
}

func (ev *evaluation) popOperator() Operator {
	op := ev.topOperator()
	ev.operators = ev.operators[:len(ev.operators)-1]
	return op
}

func (ev *evaluation) popOperand() float64 {
	v := ev.operands[len(ev.operands)-1]
	ev.operands = ev.operands[:len(ev.operands)-1]
	return v
}
