package key

import (
	"encoding/hex"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/sigma"
)

// PointToString returns a hex-encoded string representation of the given point.
func PointToString(p kyber.Point) string {
	buff, _ := p.MarshalBinary()
	return hex.EncodeToString(buff)
}

// ScalarToString returns a hex-encoded string representation of the given scalar.
func ScalarToString(s kyber.Scalar) string {
	buff, _ := s.MarshalBinary()
	return hex.EncodeToString(buff)
}

// PropToString returns the hex encoded canonical bytes of a proposition.
func PropToString(sb sigma.SigmaBoolean) string {
	buff, _ := sigma.Bytes(sb)
	return hex.EncodeToString(buff)
}

// StringToPoint unmarshals a point in the given group from the given string.
func StringToPoint(g kyber.Group, s string) (kyber.Point, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	p := g.Point()
	return p, p.UnmarshalBinary(buff)
}

// StringToScalar unmarshals a scalar in the given group from the given string.
func StringToScalar(g kyber.Group, s string) (kyber.Scalar, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	sc := g.Scalar()
	return sc, sc.UnmarshalBinary(buff)
}

// StringToProp decodes a proposition written by PropToString.
func StringToProp(g kyber.Group, s string) (sigma.SigmaBoolean, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return sigma.Parse(g, buff)
}
