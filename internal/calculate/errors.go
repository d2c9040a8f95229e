package calculate

import (
	"errors"
	"fmt"
)

// ErrorKind классифицирует ошибку вычисления
type ErrorKind int

const (
	KindInsufficientOperands ErrorKind = iota + 1
	KindDivisionByZero
	KindInvalidDomain
	KindMismatchedBrackets
	KindInvalidOperand
	KindMalformedExpression
)

var kindNames = map[ErrorKind]string{
	KindInsufficientOperands: "insufficient_operands",
	KindDivisionByZero:       "division_by_zero",
	KindInvalidDomain:        "invalid_domain",
	KindMismatchedBrackets:   "mismatched_brackets",
	KindInvalidOperand:       "invalid_operand",
	KindMalformedExpression:  "malformed_expression",
}

// String возвращает машиночитаемое имя вида ошибки
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CalcError описывает ошибку обработки выражения
type CalcError struct {
	Kind    ErrorKind
	Message string
	// Lexeme не пустая, если ошибку вызвала конкретная лексема
	Lexeme string
}

func (e *CalcError) Error() string {
	return e.Message
}

// Is сравнивает ошибки по виду, чтобы работал errors.Is с сигнальными значениями
func (e *CalcError) Is(target error) bool {
	var t *CalcError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Сигнальные значения для errors.Is
var (
	ErrInsufficientOperands = &CalcError{Kind: KindInsufficientOperands, Message: "Not enough operands"}
	ErrDivisionByZero       = &CalcError{Kind: KindDivisionByZero, Message: "Division by zero"}
	ErrInvalidDomain        = &CalcError{Kind: KindInvalidDomain, Message: "Zero raised to a negative power"}
	ErrMismatchedBrackets   = &CalcError{Kind: KindMismatchedBrackets, Message: "Mismatched brackets"}
	ErrInvalidOperand       = &CalcError{Kind: KindInvalidOperand, Message: "Invalid operand"}
	ErrMalformedExpression  = &CalcError{Kind: KindMalformedExpression, Message: "Malformed expression"}
)

// NewCalcError создает новую ошибку CalcError
func NewCalcError(kind ErrorKind, message string) *CalcError {
	return &CalcError{Kind: kind, Message: message}
}

// InsufficientOperandsError создаёт ошибку нехватки операндов для оператора
func InsufficientOperandsError(op Operator) *CalcError {
	return NewCalcError(KindInsufficientOperands,
		fmt.Sprintf("Not enough operands for %s", op.Kind))
}

// DivisionByZeroError создаёт ошибку деления на ноль
func DivisionByZeroError() *CalcError {
	return NewCalcError(KindDivisionByZero, "Division by zero")
}

// InvalidDomainError создаёт ошибку возведения нуля в отрицательную степень
func InvalidDomainError() *CalcError {
	return NewCalcError(KindInvalidDomain, "Zero raised to a negative power")
}

// MismatchedBracketsError создаёт ошибку несогласованных скобок
func MismatchedBracketsError(bracket string) *CalcError {
	err := NewCalcError(KindMismatchedBrackets, fmt.Sprintf("Mismatched brackets: unmatched %q", bracket))
	err.Lexeme = bracket
	return err
}

// InvalidOperandError создаёт ошибку нераспознанного операнда
func InvalidOperandError(lexeme string) *CalcError {
	err := NewCalcError(KindInvalidOperand, fmt.Sprintf("Invalid operand: %q", lexeme))
	err.Lexeme = lexeme
	return err
}

// MalformedExpressionError создаёт ошибку некорректного выражения
func MalformedExpressionError(operands int) *CalcError {
	if operands == 0 {
		return NewCalcError(KindMalformedExpression, "Malformed expression: no operands")
	}
	return NewCalcError(KindMalformedExpression,
		fmt.Sprintf("Malformed expression: %d operands left without operator", operands))
}

// KindOf возвращает вид ошибки вычисления, если err ею является
func KindOf(err error) (ErrorKind, bool) {
	var calcErr *CalcError
	if errors.As(err, &calcErr) {
		return calcErr.Kind, true
	}
	return 0, false
}
