package eval

import (
	"errors"
	"fmt"

	"github.com/zutxo/sigma/value"
)

// Evaluation errors. They abort the current reduction and are never turned
// into a false proposition.
var (
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrIndexOutOfBounds   = errors.New("index out of bounds")
	ErrArithmeticOverflow = value.ErrArithmeticOverflow
	ErrDivisionByZero     = value.ErrDivisionByZero
	ErrNotSigmaProp       = errors.New("script did not reduce to a sigma proposition")
	ErrTreeTooDeep        = errors.New("expression tree too deep")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNoneValue          = errors.New("get on empty option")
	ErrUnknownMethod      = errors.New("unknown method")
	ErrUnparsedTree       = errors.New("tree body could not be parsed")
)

// SoftForkError reports a script this evaluator cannot judge because it
// relies on a newer protocol version. Callers decide whether to accept such
// scripts; it is not a proof of invalidity.
type SoftForkError struct {
	Version byte
	OpCode  byte
	Err     error
}

func (e *SoftForkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("soft-fork condition (script v%d): %v", e.Version, e.Err)
	default:
		return fmt.Sprintf("soft-fork condition (script v%d): unknown opcode 0x%02x", e.Version, e.OpCode)
	}
}

func (e *SoftForkError) Unwrap() error {
	return e.Err
}

// IsSoftFork reports whether err carries a *SoftForkError.
func IsSoftFork(err error) bool {
	var sf *SoftForkError
	return errors.As(err, &sf)
}

func typeMismatch(op string, v value.Value) error {
	if v == nil {
		return fmt.Errorf("%w: %s on nil", ErrTypeMismatch, op)
	}
	return fmt.Errorf("%w: %s on %s", ErrTypeMismatch, op, v.Type())
}
