// Package batch defines the cross-chain instruction batches that get
// notarised by the threshold signer, along with their canonical encodings.
// The canonical encoding of a Batch is the message that is signed: every
// cosigner must produce exactly the same bytes for the same batch, or the
// aggregated signature will not verify under the group key.
package batch

import (
	"encoding/hex"
)

// A BlockHash is the hash of the source-chain block that a batch of
// instructions was derived from. It doubles as the batch id.
type BlockHash [32]byte

// String implements the Stringer interface.
func (h BlockHash) String() string {
	return hex.EncodeToString(h[:])
}

// An Instruction is a single cross-chain instruction to be executed on the
// settlement chain. The origin and data fields are opaque to the signer; they
// are interpreted by the settlement-chain runtime.
type Instruction struct {
	Origin []byte
	Data   []byte
	Amount uint64
}

// A Batch is an ordered set of instructions derived from one source-chain
// block. Batches are identified by that block's hash.
type Batch struct {
	Block        BlockHash
	Instructions []Instruction
}

// ID returns the batch id, which is the hash of the originating block.
func (b Batch) ID() [32]byte {
	return b.Block
}

// A SignedBatch is a batch together with a threshold Schnorr signature over
// the batch's canonical encoding. The signature is in 64 byte sr25519 wire
// form.
type SignedBatch struct {
	Batch     Batch
	Signature [64]byte
}
