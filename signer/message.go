package signer

import (
	"encoding/hex"
	"fmt"
)

// A SignID identifies one attempt at signing one batch: the group key the
// signature is being produced under, the batch id, and the attempt index.
// Attempt indices start at zero and increase monotonically on each retry.
type SignID struct {
	Key     []byte
	ID      [32]byte
	Attempt uint32
}

// String implements the Stringer interface.
func (id SignID) String() string {
	return fmt.Sprintf("batch %v #%v", hex.EncodeToString(id.ID[:]), id.Attempt)
}

// A CoordinatorMessage is a message delivered by the external coordinator
// service. The service is trusted for routing but not for content: every
// message is verified against the signer's in memory attempt state before it
// is acted on.
type CoordinatorMessage interface {
	isCoordinatorMessage()
}

// BatchPreprocesses delivers the aggregated round one commitments of the
// other participating cosigners. The coordinator guarantees that at least a
// threshold of cosigners (including this one) are represented.
type BatchPreprocesses struct {
	ID           SignID
	Preprocesses map[uint16][]byte
}

// BatchShares delivers the aggregated round two signature shares of the
// other participating cosigners.
type BatchShares struct {
	ID     SignID
	Shares map[uint16][32]byte
}

// BatchReattempt orders a fresh, higher index attempt at signing a batch.
// The coordinator issues these on timeouts and after observing reboots.
type BatchReattempt struct {
	ID SignID
}

func (BatchPreprocesses) isCoordinatorMessage() {}
func (BatchShares) isCoordinatorMessage()       {}
func (BatchReattempt) isCoordinatorMessage()    {}
