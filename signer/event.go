package signer

import "github.com/renproject/substrate-signer/batch"

// An Event is an output of the signer, drained by the host in emission
// order. BatchPreprocess and BatchShare events are shipped to the
// coordinator service; a SignedBatch event carries a fully signed batch that
// has already been durably persisted.
type Event interface {
	isEvent()
}

// BatchPreprocess carries this cosigner's round one commitment for an
// attempt.
type BatchPreprocess struct {
	ID         SignID
	Preprocess []byte
}

// BatchShare carries this cosigner's round two signature share for an
// attempt.
type BatchShare struct {
	ID    SignID
	Share [32]byte
}

// SignedBatch carries a completed signed batch. By the time the host
// observes this event, the signed batch and its completion marker are
// durable.
type SignedBatch struct {
	Batch batch.SignedBatch
}

func (BatchPreprocess) isEvent() {}
func (BatchShare) isEvent()      {}
func (SignedBatch) isEvent()     {}
