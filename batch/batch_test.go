package batch_test

import (
	"github.com/renproject/surge"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/renproject/substrate-signer/batch"
)

var _ = Describe("Batch", func() {
	newBatch := func() batch.Batch {
		var block batch.BlockHash
		for i := range block {
			block[i] = 0x11
		}
		return batch.Batch{
			Block: block,
			Instructions: []batch.Instruction{
				{Origin: []byte{0xaa}, Data: []byte("mint"), Amount: 42},
				{Origin: []byte{0xbb, 0xcc}, Data: []byte("burn"), Amount: 7},
			},
		}
	}

	It("should have a deterministic signing message", func() {
		b := newBatch()
		Expect(b.Message()).To(Equal(b.Message()))
		Expect(b.ID()).To(Equal([32]byte(b.Block)))
	})

	It("should change the signing message when the contents change", func() {
		b := newBatch()
		other := newBatch()
		other.Instructions[0].Amount++
		Expect(b.Message()).ToNot(Equal(other.Message()))
	})

	It("should round trip a signed batch through its encoding", func() {
		signed := batch.SignedBatch{Batch: newBatch()}
		for i := range signed.Signature {
			signed.Signature[i] = byte(i)
		}

		var decoded batch.SignedBatch
		Expect(surge.FromBinary(&decoded, signed.Encode())).To(Succeed())
		Expect(decoded).To(Equal(signed))
	})
})
