package value

import (
	"encoding/binary"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto"
)

// Registers R0 to R3 are mandatory and derived from the box fields; R4 to R9
// are free for scripts.
const (
	FirstFreeRegister = 4
	LastRegister      = 9
)

// DigestSize is the size of box, transaction and header identifiers.
const DigestSize = 32

// Digest is a 32 byte identifier.
type Digest [DigestSize]byte

func (d Digest) String() string {
	return fmt.Sprintf("%x", d[:])
}

// Token is an asset carried by a box.
type Token struct {
	ID     Digest
	Amount int64
}

// Box is an output protected by a script.
type Box struct {
	ID               Digest
	Value            int64
	PropositionBytes []byte
	CreationHeight   int32
	TransactionID    Digest
	Index            uint16
	Tokens           []Token
	// Registers holds the free registers, indexed from FirstFreeRegister.
	Registers map[int]Value
}

// Type implements Value.
func (*Box) Type() Type { return TBox }

// ComputeID derives the box identifier from its content.
func (b *Box) ComputeID() Digest {
	var hdr [8 + 4 + 2]byte
	binary.BigEndian.PutUint64(hdr[0:], uint64(b.Value))
	binary.BigEndian.PutUint32(hdr[8:], uint32(b.CreationHeight))
	binary.BigEndian.PutUint16(hdr[12:], b.Index)
	parts := [][]byte{hdr[:], b.PropositionBytes, b.TransactionID[:]}
	for _, t := range b.Tokens {
		var amount [8]byte
		binary.BigEndian.PutUint64(amount[:], uint64(t.Amount))
		parts = append(parts, t.ID[:], amount[:])
	}
	return crypto.Blake2b256(parts...)
}

// Register returns the content of register r, if set. R0 to R3 map to
// value, script, tokens and creation info.
func (b *Box) Register(r int) (Value, bool) {
	switch r {
	case 0:
		return Long(b.Value), true
	case 1:
		return FromBytes(b.PropositionBytes), true
	case 2:
		return b.TokensColl(), true
	case 3:
		return b.CreationInfo(), true
	}
	if r < FirstFreeRegister || r > LastRegister {
		return nil, false
	}
	v, ok := b.Registers[r]
	return v, ok
}

// TokenType is the type of a (token id, amount) pair.
var TokenType = TupleType{Items: []Type{ByteColl, TLong}}

// TokensColl returns the tokens as Coll[(Coll[Byte], Long)].
func (b *Box) TokensColl() Coll {
	items := make([]Value, len(b.Tokens))
	for i, t := range b.Tokens {
		items[i] = Tuple{FromBytes(t.ID[:]), Long(t.Amount)}
	}
	return NewColl(TokenType, items...)
}

// CreationInfo returns (creation height, transaction id ++ output index).
func (b *Box) CreationInfo() Tuple {
	ref := make([]byte, DigestSize+2)
	copy(ref, b.TransactionID[:])
	binary.BigEndian.PutUint16(ref[DigestSize:], b.Index)
	return Tuple{Int(b.CreationHeight), FromBytes(ref)}
}

// Header is a block header visible to scripts.
type Header struct {
	ID        Digest
	Version   byte
	ParentID  Digest
	StateRoot []byte
	Timestamp int64
	NBits     int64
	Height    int32
	MinerPK   kyber.Point
}

// Type implements Value.
func (*Header) Type() Type { return THeader }

// PreHeader holds the fields of the block being built that are known before
// it is mined.
type PreHeader struct {
	Version   byte
	ParentID  Digest
	Timestamp int64
	NBits     int64
	Height    int32
	MinerPK   kyber.Point
}

// Type implements Value.
func (*PreHeader) Type() Type { return TPreHeader }

func (p *PreHeader) equal(o *PreHeader) bool {
	if p.Version != o.Version || p.ParentID != o.ParentID || p.Timestamp != o.Timestamp ||
		p.NBits != o.NBits || p.Height != o.Height {
		return false
	}
	if p.MinerPK == nil || o.MinerPK == nil {
		return p.MinerPK == nil && o.MinerPK == nil
	}
	return p.MinerPK.Equal(o.MinerPK)
}
