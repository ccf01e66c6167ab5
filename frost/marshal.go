package frost

import (
	"github.com/gtank/ristretto255"
)

// Wire forms follow sr25519: group elements and scalars are 32 bytes each,
// and the final byte of an encoded signature carries the schnorrkel marker
// bit.

// Encode returns the 64 byte wire form of the commitment.
func (c Commitment) Encode() []byte {
	bs := make([]byte, 0, 64)
	bs = c.d.Encode(bs)
	bs = c.e.Encode(bs)
	return bs
}

func decodeCommitment(bs []byte) (Commitment, error) {
	if len(bs) != 64 {
		return Commitment{}, ErrInvalidCommitment
	}
	d := ristretto255.NewElement()
	if err := d.Decode(bs[:32]); err != nil {
		return Commitment{}, ErrInvalidCommitment
	}
	e := ristretto255.NewElement()
	if err := e.Decode(bs[32:]); err != nil {
		return Commitment{}, ErrInvalidCommitment
	}
	return Commitment{d: d, e: e}, nil
}

// Encode returns the 32 byte wire form of the share.
func (share Share) Encode() [32]byte {
	var bs [32]byte
	copy(bs[:], share.scalar.Encode(nil))
	return bs
}

func decodeShare(bs []byte) (Share, error) {
	if len(bs) != 32 {
		return Share{}, ErrInvalidShare
	}
	scalar := ristretto255.NewScalar()
	if err := scalar.Decode(bs); err != nil {
		return Share{}, ErrInvalidShare
	}
	return Share{scalar: scalar}, nil
}

// Encode returns the 64 byte sr25519 wire form of the signature: the group
// commitment, then the scalar with the marker bit set on the final byte.
func (sig Signature) Encode() [64]byte {
	var bs [64]byte
	copy(bs[:32], sig.r.Encode(nil))
	copy(bs[32:], sig.s.Encode(nil))
	bs[63] |= 128
	return bs
}

// DecodeSignature parses a signature from its sr25519 wire form. The marker
// bit must be set.
func DecodeSignature(bs [64]byte) (Signature, error) {
	if bs[63]&128 == 0 {
		return Signature{}, ErrInvalidSignature
	}
	r := ristretto255.NewElement()
	if err := r.Decode(bs[:32]); err != nil {
		return Signature{}, ErrInvalidSignature
	}
	sBytes := make([]byte, 32)
	copy(sBytes, bs[32:])
	sBytes[31] &^= 128
	s := ristretto255.NewScalar()
	if err := s.Decode(sBytes); err != nil {
		return Signature{}, ErrInvalidSignature
	}
	return Signature{r: r, s: s}, nil
}
