// Package frost implements a two round FROST style threshold Schnorr signing
// algorithm over the Ristretto group, with schnorrkel (merlin transcript)
// challenge derivation. A signature completed by this package verifies as an
// sr25519 signature over the signing context that the machines were
// constructed with.
//
// The protocol is expressed as a pair of single use machines that mirror the
// two rounds:
//
//	1. Preprocess samples the round one nonces and returns a SignMachine
//	   holding them, along with the nonce commitment to broadcast. The
//	   nonces never leave the machine.
//	2. SignMachine.Sign consumes the commitments of all participating
//	   cosigners plus the message, and returns a SignatureMachine along
//	   with this cosigner's signature share to broadcast.
//	3. SignatureMachine.Complete consumes the shares of all participating
//	   cosigners and returns the aggregated signature. Every share is
//	   validated against the contributing cosigner's verification share, so
//	   an invalid share identifies its author.
//
// Each machine is intended to be consumed by the call that advances it:
// callers should discard a SignMachine once Sign has been called on it, and
// must never call Sign twice with the same machine, as reusing the round one
// nonces with a second set of commitments leaks the secret share.
package frost

import (
	"io"
	"sort"

	"github.com/gtank/merlin"
	"github.com/gtank/ristretto255"
)

// A Commitment is a round one message: a pair of nonce commitments from one
// cosigner.
type Commitment struct {
	d *ristretto255.Element
	e *ristretto255.Element
}

// A Share is a round two message: one cosigner's additive share of the
// aggregated signature scalar.
type Share struct {
	scalar *ristretto255.Scalar
}

// A Signature is a completed Schnorr signature.
type Signature struct {
	r *ristretto255.Element
	s *ristretto255.Scalar
}

// A SignMachine holds the round one nonces between preprocessing and
// signing.
type SignMachine struct {
	keys ThresholdKeys
	ctx  []byte

	d, e       *ristretto255.Scalar
	commitment Commitment
}

// A SignatureMachine holds the round two state between emitting a share and
// completing the signature.
type SignatureMachine struct {
	keys ThresholdKeys
	ctx  []byte

	participants []uint16
	commitments  map[uint16]Commitment
	rhos         map[uint16]*ristretto255.Scalar
	challenge    *ristretto255.Scalar
	r            *ristretto255.Element
	msg          []byte
	ownShare     Share
}

// Preprocess runs round one: it samples fresh nonces from the given random
// source and returns the machine holding them along with the commitment to
// broadcast.
func Preprocess(rng io.Reader, keys ThresholdKeys, ctx []byte) (SignMachine, Commitment, error) {
	d, err := randomScalar(rng)
	if err != nil {
		return SignMachine{}, Commitment{}, err
	}
	e, err := randomScalar(rng)
	if err != nil {
		return SignMachine{}, Commitment{}, err
	}

	commitment := Commitment{
		d: ristretto255.NewElement().ScalarBaseMult(d),
		e: ristretto255.NewElement().ScalarBaseMult(e),
	}
	machine := SignMachine{
		keys:       keys,
		ctx:        ctx,
		d:          d,
		e:          e,
		commitment: commitment,
	}
	return machine, commitment, nil
}

// ReadPreprocess parses a peer's round one commitment from its wire form.
func (machine SignMachine) ReadPreprocess(bs []byte) (Commitment, error) {
	return decodeCommitment(bs)
}

// Sign runs round two: it binds the nonces to the full set of commitments
// and the message, and returns the machine needed for completion along with
// this cosigner's signature share. The commitments map must hold the
// commitments of all other participating cosigners; this cosigner's own
// commitment is added by the machine.
func (machine SignMachine) Sign(commitments map[uint16]Commitment, msg []byte) (SignatureMachine, Share, error) {
	if _, ok := commitments[machine.keys.Index]; ok {
		return SignatureMachine{}, Share{}, ErrDuplicateIndex
	}

	all := make(map[uint16]Commitment, len(commitments)+1)
	for index, commitment := range commitments {
		if _, ok := machine.keys.VerificationShares[index]; !ok {
			return SignatureMachine{}, Share{}, ErrUnknownIndex
		}
		all[index] = commitment
	}
	all[machine.keys.Index] = machine.commitment

	if uint32(len(all)) < machine.keys.Threshold {
		return SignatureMachine{}, Share{}, ErrNotEnoughSigners
	}

	participants := make([]uint16, 0, len(all))
	for index := range all {
		participants = append(participants, index)
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i] < participants[j] })

	rhos := make(map[uint16]*ristretto255.Scalar, len(participants))
	for _, index := range participants {
		rhos[index] = bindingFactor(index, participants, all, msg)
	}

	// R = sum(D_i + rho_i * E_i) over all participants.
	var r *ristretto255.Element
	for _, index := range participants {
		term := ristretto255.NewElement().ScalarMult(rhos[index], all[index].e)
		term = ristretto255.NewElement().Add(all[index].d, term)
		if r == nil {
			r = term
		} else {
			r = ristretto255.NewElement().Add(r, term)
		}
	}

	challenge := challengeScalar(machine.ctx, msg, machine.keys.GroupKey, r)

	// z_i = d_i + rho_i * e_i + c * lambda_i * s_i
	lambda := lagrangeCoefficient(machine.keys.Index, participants)
	z := ristretto255.NewScalar().Multiply(rhos[machine.keys.Index], machine.e)
	z = ristretto255.NewScalar().Add(machine.d, z)
	keyTerm := ristretto255.NewScalar().Multiply(challenge, lambda)
	keyTerm = ristretto255.NewScalar().Multiply(keyTerm, machine.keys.Share)
	z = ristretto255.NewScalar().Add(z, keyTerm)

	share := Share{scalar: z}
	next := SignatureMachine{
		keys:         machine.keys,
		ctx:          machine.ctx,
		participants: participants,
		commitments:  all,
		rhos:         rhos,
		challenge:    challenge,
		r:            r,
		msg:          msg,
		ownShare:     share,
	}
	return next, share, nil
}

// ReadShare parses a peer's round two signature share from its wire form.
func (machine SignatureMachine) ReadShare(bs []byte) (Share, error) {
	return decodeShare(bs)
}

// Complete validates the shares of all other participating cosigners and
// aggregates them, together with this cosigner's own share, into the final
// signature. An invalid share is reported as a ShareError naming the
// cosigner that produced it.
func (machine SignatureMachine) Complete(shares map[uint16]Share) (Signature, error) {
	if _, ok := shares[machine.keys.Index]; ok {
		return Signature{}, ErrDuplicateIndex
	}
	for index := range shares {
		if _, ok := machine.commitments[index]; !ok {
			return Signature{}, ErrUnknownIndex
		}
	}

	z := machine.ownShare.scalar
	for _, index := range machine.participants {
		if index == machine.keys.Index {
			continue
		}
		share, ok := shares[index]
		if !ok {
			return Signature{}, ErrMissingShare
		}

		// z_i * B = D_i + rho_i * E_i + c * lambda_i * Y_i
		lhs := ristretto255.NewElement().ScalarBaseMult(share.scalar)
		rhs := ristretto255.NewElement().ScalarMult(machine.rhos[index], machine.commitments[index].e)
		rhs = ristretto255.NewElement().Add(machine.commitments[index].d, rhs)
		coeff := ristretto255.NewScalar().Multiply(machine.challenge, lagrangeCoefficient(index, machine.participants))
		keyTerm := ristretto255.NewElement().ScalarMult(coeff, machine.keys.VerificationShares[index])
		rhs = ristretto255.NewElement().Add(rhs, keyTerm)
		if lhs.Equal(rhs) != 1 {
			return Signature{}, &ShareError{Index: index}
		}

		z = ristretto255.NewScalar().Add(z, share.scalar)
	}

	sig := Signature{r: machine.r, s: z}
	if !Verify(machine.keys.GroupKey, machine.ctx, machine.msg, sig) {
		return Signature{}, ErrInvalidSignature
	}
	return sig, nil
}

// Verify reports whether the signature is valid for the given group key,
// signing context, and message.
func Verify(groupKey *ristretto255.Element, ctx, msg []byte, sig Signature) bool {
	challenge := challengeScalar(ctx, msg, groupKey, sig.r)
	lhs := ristretto255.NewElement().ScalarBaseMult(sig.s)
	rhs := ristretto255.NewElement().ScalarMult(challenge, groupKey)
	rhs = ristretto255.NewElement().Add(sig.r, rhs)
	return lhs.Equal(rhs) == 1
}

// bindingFactor derives the per cosigner nonce binding factor from the
// message and the full, ordered commitment set.
func bindingFactor(index uint16, participants []uint16, commitments map[uint16]Commitment, msg []byte) *ristretto255.Scalar {
	t := merlin.NewTranscript("FROST-binding")
	t.AppendMessage([]byte("message"), msg)
	for _, i := range participants {
		t.AppendMessage([]byte("signer"), indexBytes(i))
		t.AppendMessage([]byte("commitment"), commitments[i].Encode())
	}
	t.AppendMessage([]byte("target"), indexBytes(index))
	return ristretto255.NewScalar().FromUniformBytes(t.ExtractBytes([]byte("rho"), 64))
}

// challengeScalar derives the schnorrkel signing challenge. The transcript
// framing follows sr25519: a SigningContext transcript over the context and
// message, then the Schnorr-sig protocol with the public key and the group
// commitment appended.
func challengeScalar(ctx, msg []byte, groupKey, r *ristretto255.Element) *ristretto255.Scalar {
	t := merlin.NewTranscript("SigningContext")
	t.AppendMessage([]byte(""), ctx)
	t.AppendMessage([]byte("sign-bytes"), msg)
	t.AppendMessage([]byte("proto-name"), []byte("Schnorr-sig"))
	t.AppendMessage([]byte("sign:pk"), groupKey.Encode(nil))
	t.AppendMessage([]byte("sign:R"), r.Encode(nil))
	return ristretto255.NewScalar().FromUniformBytes(t.ExtractBytes([]byte("sign:c"), 64))
}

func indexBytes(index uint16) []byte {
	return []byte{byte(index >> 8), byte(index)}
}
