// Package frostutil provides trusted dealer key generation for constructing
// threshold keysets in tests. A production deployment derives its keyset
// from a distributed key generation instead.
package frostutil

import (
	"io"

	"github.com/gtank/ristretto255"

	"github.com/renproject/substrate-signer/frost"
)

// DealKeys generates a fresh threshold keyset for the given participant
// indices by sampling a random polynomial of degree t-1 and evaluating it at
// each index. It returns the per participant keys, keyed by index.
func DealKeys(rng io.Reader, t uint32, indices []uint16) (map[uint16]frost.ThresholdKeys, error) {
	coeffs := make([]*ristretto255.Scalar, t)
	for i := range coeffs {
		scalar, err := randomScalar(rng)
		if err != nil {
			return nil, err
		}
		coeffs[i] = scalar
	}
	groupKey := ristretto255.NewElement().ScalarBaseMult(coeffs[0])

	shares := make(map[uint16]*ristretto255.Scalar, len(indices))
	verificationShares := make(map[uint16]*ristretto255.Element, len(indices))
	for _, index := range indices {
		share := evalPoly(coeffs, index)
		shares[index] = share
		verificationShares[index] = ristretto255.NewElement().ScalarBaseMult(share)
	}

	keys := make(map[uint16]frost.ThresholdKeys, len(indices))
	for _, index := range indices {
		keys[index] = frost.ThresholdKeys{
			Index:              index,
			Threshold:          t,
			Share:              shares[index],
			GroupKey:           groupKey,
			VerificationShares: verificationShares,
		}
	}
	return keys, nil
}

func evalPoly(coeffs []*ristretto255.Scalar, index uint16) *ristretto255.Scalar {
	var buf [32]byte
	buf[0] = byte(index)
	buf[1] = byte(index >> 8)
	x := ristretto255.NewScalar()
	if err := x.Decode(buf[:]); err != nil {
		panic("decoding index scalar")
	}

	// Horner evaluation from the highest coefficient down.
	acc := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = ristretto255.NewScalar().Multiply(acc, x)
		acc = ristretto255.NewScalar().Add(acc, coeffs[i])
	}
	return acc
}

func randomScalar(rng io.Reader) (*ristretto255.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return nil, err
	}
	return ristretto255.NewScalar().FromUniformBytes(buf[:]), nil
}
