package sigma

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/drand/kyber"
)

// Opcodes of the canonical proposition encoding.
const (
	OpTrivialFalse byte = 0x7e
	OpTrivialTrue  byte = 0x7f
	OpAnd          byte = 0x96
	OpOr           byte = 0x97
	OpThreshold    byte = 0x98
	OpProveDlog    byte = 0xcd
	OpProveDHTuple byte = 0xce
)

// maxDepth bounds the nesting accepted by Parse.
const maxDepth = 110

// ErrMalformed is returned by Parse on invalid input.
var ErrMalformed = errors.New("sigma: malformed proposition bytes")

// Bytes returns the canonical encoding of sb. Both the prover and the
// verifier hash these bytes during Fiat-Shamir, so the encoding must never
// depend on anything but the proposition itself.
func Bytes(sb SigmaBoolean) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, sb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(w *bytes.Buffer, sb SigmaBoolean) error {
	switch n := sb.(type) {
	case TrivialProp:
		if n.Value {
			w.WriteByte(OpTrivialTrue)
		} else {
			w.WriteByte(OpTrivialFalse)
		}
		return nil
	case ProveDlog:
		w.WriteByte(OpProveDlog)
		_, err := n.H.MarshalTo(w)
		return err
	case ProveDHTuple:
		w.WriteByte(OpProveDHTuple)
		for _, p := range []kyber.Point{n.G, n.H, n.U, n.V} {
			if _, err := p.MarshalTo(w); err != nil {
				return err
			}
		}
		return nil
	case CAnd:
		w.WriteByte(OpAnd)
		return writeChildren(w, n.Children)
	case COr:
		w.WriteByte(OpOr)
		return writeChildren(w, n.Children)
	case CThreshold:
		w.WriteByte(OpThreshold)
		writeUvarint(w, uint64(n.K))
		return writeChildren(w, n.Children)
	default:
		return fmt.Errorf("sigma: unknown proposition %T", sb)
	}
}

func writeChildren(w *bytes.Buffer, children []SigmaBoolean) error {
	writeUvarint(w, uint64(len(children)))
	for _, c := range children {
		if err := write(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeUvarint(w *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.Write(tmp[:n])
}

// Parse decodes a proposition encoded with Bytes. Points are decoded in g.
func Parse(g kyber.Group, b []byte) (SigmaBoolean, error) {
	r := bytes.NewReader(b)
	sb, err := read(g, r, 0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.Len())
	}
	return sb, nil
}

func read(g kyber.Group, r *bytes.Reader, depth int) (SigmaBoolean, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxDepth)
	}
	op, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch op {
	case OpTrivialTrue:
		return TrueProp, nil
	case OpTrivialFalse:
		return FalseProp, nil
	case OpProveDlog:
		h, err := readPoint(g, r)
		if err != nil {
			return nil, err
		}
		return ProveDlog{H: h}, nil
	case OpProveDHTuple:
		pts := make([]kyber.Point, 4)
		for i := range pts {
			if pts[i], err = readPoint(g, r); err != nil {
				return nil, err
			}
		}
		return ProveDHTuple{G: pts[0], H: pts[1], U: pts[2], V: pts[3]}, nil
	case OpAnd, OpOr, OpThreshold:
		k := 0
		if op == OpThreshold {
			kk, err := binary.ReadUvarint(r)
			if err != nil || kk > MaxChildren {
				return nil, fmt.Errorf("%w: bad threshold bound", ErrMalformed)
			}
			k = int(kk)
		}
		n, err := binary.ReadUvarint(r)
		if err != nil || n == 0 || n > MaxChildren {
			return nil, fmt.Errorf("%w: bad child count", ErrMalformed)
		}
		children := make([]SigmaBoolean, n)
		for i := range children {
			if children[i], err = read(g, r, depth+1); err != nil {
				return nil, err
			}
		}
		switch op {
		case OpAnd:
			return CAnd{Children: children}, nil
		case OpOr:
			return COr{Children: children}, nil
		default:
			return CThreshold{K: k, Children: children}, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown opcode 0x%02x", ErrMalformed, op)
	}
}

func readPoint(g kyber.Group, r io.Reader) (kyber.Point, error) {
	p := g.Point()
	if _, err := p.UnmarshalFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}
