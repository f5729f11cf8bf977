// Package qerr defines the error taxonomy shared by the dimensionality, unit and
// scalar packages.
//
// Every fallible operation returns a *Error (possibly wrapped). Callers classify
// failures with the IsXxx helpers, which see through fmt.Errorf("%w") wrapping.
package qerr

import (
	"errors"
	"fmt"
)

// Code categorizes quantity errors.
type Code string

const (
	// CodeIncompatibleDimensionalities indicates an add, subtract, compare or
	// conversion across unrelated physical quantities.
	CodeIncompatibleDimensionalities Code = "INCOMPATIBLE_DIMENSIONALITIES"

	// CodeDivisionByZero indicates a numeric (not unit) zero divisor.
	CodeDivisionByZero Code = "DIVISION_BY_ZERO"

	// CodeMalformedExpression indicates unit or dimensionality text that cannot be
	// tokenized or parsed, including fractional powers.
	CodeMalformedExpression Code = "MALFORMED_EXPRESSION"

	// CodeUnknownSymbol indicates a well-formed but unregistered symbol or quantity.
	CodeUnknownSymbol Code = "UNKNOWN_SYMBOL"

	// CodeOverflow indicates an exponent or power producing a non-representable result.
	CodeOverflow Code = "OVERFLOW"
)

// Error is the error type returned by quantity operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is the human-readable description, surfaced verbatim by the CLI.
	Message string

	// Input is the offending expression or symbol, when there is one.
	Input string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %s (input=%q)", e.Code, e.Message, e.Input)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Incompatible creates an incompatible-dimensionalities error for the two
// dimensionality symbols involved.
func Incompatible(a, b string) *Error {
	return &Error{
		Code:    CodeIncompatibleDimensionalities,
		Message: "Incompatible Dimensionalities.",
		Input:   a + " vs " + b,
	}
}

// DivisionByZero creates a division-by-zero error.
func DivisionByZero() *Error {
	return &Error{Code: CodeDivisionByZero, Message: "Division by zero."}
}

// Malformed creates a malformed-expression error.
func Malformed(input, message string) *Error {
	return &Error{Code: CodeMalformedExpression, Message: message, Input: input}
}

// Unknown creates an unknown-symbol error.
func Unknown(symbol string) *Error {
	return &Error{Code: CodeUnknownSymbol, Message: "Unknown unit symbol", Input: symbol}
}

// UnknownQuantity creates an unknown-symbol error for a physical quantity name.
func UnknownQuantity(name string) *Error {
	return &Error{Code: CodeUnknownSymbol, Message: "Unknown physical quantity", Input: name}
}

// Overflow creates an overflow error.
func Overflow(message string) *Error {
	return &Error{Code: CodeOverflow, Message: message}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsIncompatible reports whether err is an incompatible-dimensionalities error.
func IsIncompatible(err error) bool {
	return CodeOf(err) == CodeIncompatibleDimensionalities
}

// IsDivisionByZero reports whether err is a division-by-zero error.
func IsDivisionByZero(err error) bool {
	return CodeOf(err) == CodeDivisionByZero
}

// IsMalformed reports whether err is a malformed-expression error.
func IsMalformed(err error) bool {
	return CodeOf(err) == CodeMalformedExpression
}

// IsUnknown reports whether err is an unknown-symbol error.
func IsUnknown(err error) bool {
	return CodeOf(err) == CodeUnknownSymbol
}

// IsOverflow reports whether err is an overflow error.
func IsOverflow(err error) bool {
	return CodeOf(err) == CodeOverflow
}
