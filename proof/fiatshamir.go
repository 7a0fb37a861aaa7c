package proof

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zutxo/sigma/crypto"
)

const (
	internalTag byte = 0
	leafTag     byte = 1
)

// transcript serializes the tree in pre-order, every leaf with its
// commitment, followed by msg.
//
//	leaf:       0x01 | u16 len | proposition | u16 len | commitment
//	connective: 0x00 | type | [u16 k] | u16 number of children
func (a *arena) transcript(msg []byte) ([]byte, error) {
	out := make([]byte, 0, 128*len(a.nodes)+len(msg))
	for i := range a.nodes {
		n := &a.nodes[i]
		if n.isLeaf() {
			c, err := n.commitment.Bytes()
			if err != nil {
				return nil, fmt.Errorf("commitment at %s: %w", n.pos, err)
			}
			out = append(out, leafTag)
			if out, err = appendChunk(out, []byte(n.key)); err != nil {
				return nil, err
			}
			if out, err = appendChunk(out, c); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, internalTag, n.kind.connectiveByte())
		if n.kind == kindThreshold {
			out = binary.BigEndian.AppendUint16(out, uint16(n.k))
		}
		if len(n.children) > math.MaxUint16 {
			return nil, fmt.Errorf("%d children at %s", len(n.children), n.pos)
		}
		out = binary.BigEndian.AppendUint16(out, uint16(len(n.children)))
	}
	return append(out, msg...), nil
}

func appendChunk(out, b []byte) ([]byte, error) {
	if len(b) > math.MaxUint16 {
		return nil, fmt.Errorf("transcript chunk of %d bytes", len(b))
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(b)))
	return append(out, b...), nil
}

// fiatShamir returns the root challenge of the tree for msg.
func (a *arena) fiatShamir(msg []byte) (crypto.Challenge, error) {
	t, err := a.transcript(msg)
	if err != nil {
		return crypto.Challenge{}, err
	}
	return crypto.FiatShamirChallenge(t), nil
}
