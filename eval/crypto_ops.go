package eval

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/value"
)

func (e *Evaluator) evalCrypto(n ast.Expr, env *Env) (value.Value, error) {
	switch x := n.(type) {
	case ast.CalcBlake2b256:
		b, err := e.evalBytes(x.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.CalcBlake2b256, len(b)); err != nil {
			return nil, err
		}
		h := crypto.Blake2b256(b)
		return value.FromBytes(h[:]), nil

	case ast.CalcSha256:
		b, err := e.evalBytes(x.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.CalcSha256, len(b)); err != nil {
			return nil, err
		}
		h := sha256.Sum256(b)
		return value.FromBytes(h[:]), nil

	case ast.Exponentiate:
		p, err := e.evalGroup(x.Left, env)
		if err != nil {
			return nil, err
		}
		v, err := e.Eval(x.Right, env)
		if err != nil {
			return nil, err
		}
		k, ok := v.(value.BigInt)
		if !ok {
			return nil, typeMismatch("exponent", v)
		}
		if err := e.acc.Charge(cost.Exponentiate); err != nil {
			return nil, err
		}
		return value.GroupElement{P: e.exp(p, k)}, nil

	case ast.MultiplyGroup:
		l, err := e.evalGroup(x.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := e.evalGroup(x.Right, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.MultiplyGroup); err != nil {
			return nil, err
		}
		return value.GroupElement{P: e.group.Point().Add(l, r)}, nil

	case ast.DecodePoint:
		b, err := e.evalBytes(x.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.DecodePoint); err != nil {
			return nil, err
		}
		p, err := e.decodePoint(b)
		if err != nil {
			return nil, err
		}
		return value.GroupElement{P: p}, nil

	case ast.GroupGenerator:
		return value.GroupElement{P: e.group.Point().Base()}, e.acc.Charge(cost.GroupGenerator)

	case ast.Xor:
		l, err := e.evalBytes(x.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := e.evalBytes(x.Right, env)
		if err != nil {
			return nil, err
		}
		out := xorBytes(l, r)
		return value.FromBytes(out), e.acc.ChargeItems(cost.Xor, len(out))

	case ast.LongToByteArray:
		v, err := e.Eval(x.Input, env)
		if err != nil {
			return nil, err
		}
		l, ok := v.(value.Long)
		if !ok {
			return nil, typeMismatch("longToByteArray", v)
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(l))
		return value.FromBytes(buf[:]), e.acc.Charge(cost.LongToByteArray)

	case ast.ByteArrayToLong:
		b, err := e.evalBytes(x.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.ByteArrayToLong); err != nil {
			return nil, err
		}
		if len(b) < 8 {
			return nil, fmt.Errorf("%w: %d bytes for a Long", ErrIndexOutOfBounds, len(b))
		}
		return value.Long(int64(binary.BigEndian.Uint64(b[:8]))), nil

	case ast.ByteArrayToBigInt:
		b, err := e.evalBytes(x.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.ByteArrayToBigInt); err != nil {
			return nil, err
		}
		r, err := value.BigIntFromBytes(b)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidArgument, n)
}

// exp returns p multiplied by the scalar k, negative exponents included.
func (e *Evaluator) exp(p kyber.Point, k value.BigInt) kyber.Point {
	abs := k.Big()
	neg := abs.Sign() < 0
	abs.Abs(abs)
	s := crypto.ScalarFromBytes(e.group, abs.Bytes())
	if neg {
		s.Neg(s)
	}
	return e.group.Point().Mul(s, p)
}

func (e *Evaluator) decodePoint(b []byte) (kyber.Point, error) {
	p := e.group.Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: decode point: %v", ErrInvalidArgument, err)
	}
	return p, nil
}

// xorBytes xors the common prefix of l and r.
func xorBytes(l, r []byte) []byte {
	n := len(l)
	if len(r) < n {
		n = len(r)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = l[i] ^ r[i]
	}
	return out
}
