package frost_test

import (
	crand "crypto/rand"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/renproject/substrate-signer/frost"
	"github.com/renproject/substrate-signer/frost/frostutil"
)

var _ = Describe("Frost", func() {
	rand.Seed(int64(time.Now().Nanosecond()))

	ctx := []byte("substrate")

	// Setup returns a random keyset along with the subset of indices that
	// will participate in signing.
	Setup := func() (map[uint16]frost.ThresholdKeys, []uint16, []byte) {
		// n in [3, 6], t in [2, n].
		n := 3 + rand.Intn(4)
		t := 2 + rand.Intn(n-1)

		indices := make([]uint16, n)
		for i := range indices {
			indices[i] = uint16(i + 1)
		}
		keys, err := frostutil.DealKeys(crand.Reader, uint32(t), indices)
		Expect(err).ToNot(HaveOccurred())

		signers := indices[:t]

		msg := make([]byte, 32+rand.Intn(96))
		_, err = crand.Read(msg)
		Expect(err).ToNot(HaveOccurred())

		return keys, signers, msg
	}

	// RunRoundOne preprocesses for every participating signer and returns
	// the round one machines along with the wire form commitments.
	RunRoundOne := func(keys map[uint16]frost.ThresholdKeys, signers []uint16) (
		map[uint16]frost.SignMachine,
		map[uint16][]byte,
	) {
		machines := map[uint16]frost.SignMachine{}
		commitments := map[uint16][]byte{}
		for _, i := range signers {
			machine, commitment, err := frost.Preprocess(crand.Reader, keys[i], ctx)
			Expect(err).ToNot(HaveOccurred())
			machines[i] = machine
			commitments[i] = commitment.Encode()
		}
		return machines, commitments
	}

	// RunRoundTwo advances every round one machine using the other signers'
	// commitments, returning the round two machines and the wire form
	// shares.
	RunRoundTwo := func(
		machines map[uint16]frost.SignMachine,
		commitments map[uint16][]byte,
		msg []byte,
	) (
		map[uint16]frost.SignatureMachine,
		map[uint16][32]byte,
	) {
		sigMachines := map[uint16]frost.SignatureMachine{}
		shares := map[uint16][32]byte{}
		for i, machine := range machines {
			others := map[uint16]frost.Commitment{}
			for j, bs := range commitments {
				if j == i {
					continue
				}
				commitment, err := machine.ReadPreprocess(bs)
				Expect(err).ToNot(HaveOccurred())
				others[j] = commitment
			}
			sigMachine, share, err := machine.Sign(others, msg)
			Expect(err).ToNot(HaveOccurred())
			sigMachines[i] = sigMachine
			shares[i] = share.Encode()
		}
		return sigMachines, shares
	}

	Complete := func(
		i uint16,
		machine frost.SignatureMachine,
		shares map[uint16][32]byte,
	) (frost.Signature, error) {
		others := map[uint16]frost.Share{}
		for j, bs := range shares {
			if j == i {
				continue
			}
			share, err := machine.ReadShare(bs[:])
			Expect(err).ToNot(HaveOccurred())
			others[j] = share
		}
		return machine.Complete(others)
	}

	Context("when a threshold of honest cosigners cooperate", func() {
		It("should complete a signature that verifies under the group key", func() {
			keys, signers, msg := Setup()
			machines, commitments := RunRoundOne(keys, signers)
			sigMachines, shares := RunRoundTwo(machines, commitments, msg)

			for _, i := range signers {
				sig, err := Complete(i, sigMachines[i], shares)
				Expect(err).ToNot(HaveOccurred())
				Expect(frost.Verify(keys[i].GroupKey, ctx, msg, sig)).To(BeTrue())
			}
		})

		It("should produce a signature in sr25519 wire form", func() {
			keys, signers, msg := Setup()
			machines, commitments := RunRoundOne(keys, signers)
			sigMachines, shares := RunRoundTwo(machines, commitments, msg)

			sig, err := Complete(signers[0], sigMachines[signers[0]], shares)
			Expect(err).ToNot(HaveOccurred())

			encoded := sig.Encode()
			Expect(encoded[63] & 128).To(Equal(byte(128)))

			decoded, err := frost.DecodeSignature(encoded)
			Expect(err).ToNot(HaveOccurred())
			Expect(frost.Verify(keys[signers[0]].GroupKey, ctx, msg, decoded)).To(BeTrue())

			encoded[63] &^= 128
			_, err = frost.DecodeSignature(encoded)
			Expect(err).To(Equal(frost.ErrInvalidSignature))
		})

		It("should not verify under a different message or context", func() {
			keys, signers, msg := Setup()
			machines, commitments := RunRoundOne(keys, signers)
			sigMachines, shares := RunRoundTwo(machines, commitments, msg)

			sig, err := Complete(signers[0], sigMachines[signers[0]], shares)
			Expect(err).ToNot(HaveOccurred())

			otherMsg := append([]byte{}, msg...)
			otherMsg[0] ^= 1
			Expect(frost.Verify(keys[signers[0]].GroupKey, ctx, otherMsg, sig)).To(BeFalse())
			Expect(frost.Verify(keys[signers[0]].GroupKey, []byte("other"), msg, sig)).To(BeFalse())
		})
	})

	Context("when signing data is malformed", func() {
		It("should reject commitments that do not decode", func() {
			keys, signers, _ := Setup()
			machines, _ := RunRoundOne(keys, signers)

			_, err := machines[signers[0]].ReadPreprocess(make([]byte, 63))
			Expect(err).To(Equal(frost.ErrInvalidCommitment))

			garbage := make([]byte, 64)
			for i := range garbage {
				garbage[i] = 0xff
			}
			_, err = machines[signers[0]].ReadPreprocess(garbage)
			Expect(err).To(Equal(frost.ErrInvalidCommitment))
		})

		It("should reject shares that do not decode", func() {
			keys, signers, msg := Setup()
			machines, commitments := RunRoundOne(keys, signers)
			sigMachines, _ := RunRoundTwo(machines, commitments, msg)

			garbage := make([]byte, 32)
			for i := range garbage {
				garbage[i] = 0xff
			}
			_, err := sigMachines[signers[0]].ReadShare(garbage)
			Expect(err).To(Equal(frost.ErrInvalidShare))
		})

		It("should identify the cosigner that contributed a bad share", func() {
			keys, signers, msg := Setup()
			machines, commitments := RunRoundOne(keys, signers)
			sigMachines, shares := RunRoundTwo(machines, commitments, msg)

			bad := signers[1]
			tampered := shares[bad]
			tampered[0] ^= 1
			shares[bad] = tampered

			_, err := Complete(signers[0], sigMachines[signers[0]], shares)
			shareErr, ok := err.(*frost.ShareError)
			Expect(ok).To(BeTrue())
			Expect(shareErr.Index).To(Equal(bad))
		})

		It("should reject a commitment set below the threshold", func() {
			keys, signers, msg := Setup()
			machines, _ := RunRoundOne(keys, signers)

			_, _, err := machines[signers[0]].Sign(map[uint16]frost.Commitment{}, msg)
			Expect(err).To(Equal(frost.ErrNotEnoughSigners))
		})
	})
})
