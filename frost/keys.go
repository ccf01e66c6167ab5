package frost

import (
	"fmt"
	"io"
	"sort"

	"github.com/gtank/ristretto255"
)

// ThresholdKeys is one cosigner's immutable view of a threshold keyset: its
// own secret share, the group public key that completed signatures verify
// under, and the verification shares of every participant. The verification
// shares are what allow share validation during completion to identify a
// misbehaving cosigner.
type ThresholdKeys struct {
	// Index is this cosigner's participant index. Indices are the x
	// coordinates of the Shamir sharing and must be non zero.
	Index uint16

	// Threshold is the minimum number of cosigners required to produce a
	// signature.
	Threshold uint32

	// Share is this cosigner's secret share of the group key.
	Share *ristretto255.Scalar

	// GroupKey is the group public key.
	GroupKey *ristretto255.Element

	// VerificationShares maps every participant index to its public
	// verification share.
	VerificationShares map[uint16]*ristretto255.Element
}

// GroupKeyBytes returns the canonical 32 byte encoding of the group public
// key.
func (keys ThresholdKeys) GroupKeyBytes() []byte {
	return keys.GroupKey.Encode(nil)
}

// Indices returns the participant indices of the keyset in ascending order.
func (keys ThresholdKeys) Indices() []uint16 {
	indices := make([]uint16, 0, len(keys.VerificationShares))
	for index := range keys.VerificationShares {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices
}

// scalarFromUint16 returns the scalar representation of a participant index.
func scalarFromUint16(v uint16) *ristretto255.Scalar {
	var buf [32]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	s := ristretto255.NewScalar()
	if err := s.Decode(buf[:]); err != nil {
		panic(fmt.Sprintf("decoding index scalar: %v", err))
	}
	return s
}

// randomScalar samples a uniformly random scalar from the given source.
func randomScalar(r io.Reader) (*ristretto255.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return ristretto255.NewScalar().FromUniformBytes(buf[:]), nil
}

// lagrangeCoefficient computes the Lagrange interpolation coefficient at
// zero for the given participant index, with respect to the given set of
// participating indices.
func lagrangeCoefficient(index uint16, participants []uint16) *ristretto255.Scalar {
	num := scalarFromUint16(1)
	den := scalarFromUint16(1)
	xi := scalarFromUint16(index)
	for _, j := range participants {
		if j == index {
			continue
		}
		xj := scalarFromUint16(j)
		num = ristretto255.NewScalar().Multiply(num, xj)
		diff := ristretto255.NewScalar().Subtract(xj, xi)
		den = ristretto255.NewScalar().Multiply(den, diff)
	}
	return ristretto255.NewScalar().Multiply(num, ristretto255.NewScalar().Invert(den))
}
