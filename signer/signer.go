// Package signer implements the coordinator that drives a distributed set of
// cosigners through a two round threshold Schnorr signing protocol to
// produce a single signature over a batch of cross chain instructions. One
// Signer is instantiated per threshold keyset; it receives orders to sign
// batches, exchanges preprocess and share messages with an external
// coordinator service that fans messages between peers, persists progress so
// that a reboot can never reuse round one nonces, and emits the finalized
// signed batch once a threshold of cosigners have cooperated.
//
// The signer is a single threaded cooperative actor: the host must serialise
// calls to Sign, Handle, BatchSigned, and Events. Per batch id the states
// and transitions are
//
//	            Sign(batch)
//	   -        ----------------------> Attempting(a)
//	                                      |  BatchPreprocesses       BatchSigned
//	                                      v                        ------------> Completed
//	                                    Signing(a) --BatchShares-> Completed
//
//	   Attempting(a) / Signing(a) --BatchReattempt(a'), a' > a--> Attempting(a')
//
// Completed is durable and absorbing: once a batch id is completed, every
// subsequent order or message for it is a no op.
//
// On reboot all in memory state is lost and in flight attempts are not
// resumed. The signing algorithm cannot tolerate reuse of round one nonces,
// and those nonces are deliberately never persisted, so every reboot is an
// implicit abort of all active attempts. The durable attempt sentinel
// guarantees that a replayed order for an already preprocessed attempt
// produces nothing; recovery is the coordinator service issuing a reattempt
// with a higher attempt index.
package signer

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/renproject/substrate-signer/batch"
	"github.com/renproject/substrate-signer/db"
	"github.com/renproject/substrate-signer/frost"
)

// signingContext is the sr25519 signing context, a literal fixed across the
// settlement chain ecosystem.
var signingContext = []byte("substrate")

// A Signer drives the signing of batches under one threshold keyset.
type Signer struct {
	db     signerDB
	logger zerolog.Logger

	keys frost.ThresholdKeys

	signable      map[[32]byte]batch.Batch
	attempt       map[[32]byte]uint32
	preprocessing map[[32]byte]frost.SignMachine
	signing       map[[32]byte]frost.SignatureMachine

	events []Event
}

// New returns a new Signer over the given store and keyset. The store must
// be durable in production: it is the only defence against nonce reuse
// across reboots.
func New(store db.DB, keys frost.ThresholdKeys, logger zerolog.Logger) *Signer {
	return &Signer{
		db:     signerDB{db: store},
		logger: logger,

		keys: keys,

		signable:      map[[32]byte]batch.Batch{},
		attempt:       map[[32]byte]uint32{},
		preprocessing: map[[32]byte]frost.SignMachine{},
		signing:       map[[32]byte]frost.SignatureMachine{},
	}
}

// Events returns the events emitted since the last call, in emission order.
func (signer *Signer) Events() []Event {
	events := signer.events
	signer.events = nil
	return events
}

func (signer *Signer) verifyID(id SignID) bool {
	attempt, ok := signer.attempt[id.ID]
	if !ok {
		// Either the coordinator is faulty, or we rebooted, or we detected
		// the signed batch on chain. The latter is the expected flow for
		// batches not actively being participated in.
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id.ID[:])).
			Uint32("attempt", id.Attempt).
			Msg("not attempting batch")
		return false
	}
	if attempt != id.Attempt {
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id.ID[:])).
			Uint32("attempt", id.Attempt).
			Uint32("current", attempt).
			Msg("signing data for a different attempt")
		return false
	}
	return true
}

func (signer *Signer) startAttempt(id [32]byte, attempt uint32) {
	// See BatchSigned for why this does not emit an event.
	if signer.db.completed(id) {
		signer.logger.Debug().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", attempt).
			Msg("attempt order for a batch we have already completed")
		return
	}

	if curr, ok := signer.attempt[id]; ok && curr >= attempt {
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", attempt).
			Uint32("current", curr).
			Msg("told to attempt a batch we are already working on")
		return
	}

	if _, ok := signer.signable[id]; !ok {
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", attempt).
			Msg("told to attempt a batch we are not signing for")
		return
	}

	// Discard any machines from a lower attempt.
	delete(signer.preprocessing, id)
	delete(signer.signing, id)

	signer.attempt[id] = attempt

	signID := SignID{Key: signer.keys.GroupKeyBytes(), ID: id, Attempt: attempt}
	signer.logger.Info().
		Str("batch", hex.EncodeToString(id[:])).
		Uint32("attempt", attempt).
		Msg("signing batch")

	// On reboot all in flight attempts are aborted and only resumed through
	// reattempts with higher indices. The coordinator will nonetheless tell
	// us about active signing items after a reboot, so an attempt we have
	// already preprocessed can land here again. Emitting a second
	// preprocess for it would reuse the round one nonces, which leaks the
	// secret share, so the durable sentinel gates the attempt.
	if signer.db.hasAttempt(signID) {
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", attempt).
			Msg("already attempted; this is an error if we did not reboot")
		return
	}

	txn := signer.db.db.Txn()
	signer.db.attempt(txn, signID)
	if err := txn.Commit(); err != nil {
		panic(fmt.Sprintf("committing attempt: %v", err))
	}

	machine, preprocess, err := frost.Preprocess(rand.Reader, signer.keys, signingContext)
	if err != nil {
		panic(fmt.Sprintf("sampling nonces: %v", err))
	}
	signer.preprocessing[id] = machine

	signer.events = append(signer.events, BatchPreprocess{
		ID:         signID,
		Preprocess: preprocess.Encode(),
	})
}

// Sign orders the signer to produce a threshold signature over the given
// batch. If the batch has already been completed, this is a no op.
func (signer *Signer) Sign(b batch.Batch) {
	id := b.ID()
	if signer.db.completed(id) {
		signer.logger.Debug().
			Str("batch", hex.EncodeToString(id[:])).
			Msg("sign order for a batch we have already completed")
		return
	}

	signer.signable[id] = b
	signer.startAttempt(id, 0)
}

// Handle consumes a message from the coordinator service. It returns a
// FaultError when a cosigner contributed malformed or invalid signing data;
// the attempt is abandoned and the batch is re driven by a later reattempt.
// Shares that arrive while the attempt is still preprocessing are an
// invariant breach and panic, as does an unknown message type. All other
// anomalies are logged and dropped.
func (signer *Signer) Handle(msg CoordinatorMessage) error {
	switch msg := msg.(type) {
	case BatchPreprocesses:
		return signer.handlePreprocesses(msg)
	case BatchShares:
		return signer.handleShares(msg)
	case BatchReattempt:
		signer.startAttempt(msg.ID.ID, msg.ID.Attempt)
		return nil
	default:
		panic(fmt.Sprintf("unexpected coordinator message type %T", msg))
	}
}

func (signer *Signer) handlePreprocesses(msg BatchPreprocesses) error {
	if !signer.verifyID(msg.ID) {
		return nil
	}

	id := msg.ID.ID
	machine, ok := signer.preprocessing[id]
	if !ok {
		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", msg.ID.Attempt).
			Msg("not preprocessing; this is an error if we did not reboot")
		return nil
	}
	delete(signer.preprocessing, id)

	commitments := make(map[uint16]frost.Commitment, len(msg.Preprocesses))
	for from, bs := range msg.Preprocesses {
		commitment, err := machine.ReadPreprocess(bs)
		if err != nil {
			return &FaultError{ID: msg.ID, Participant: from, Cause: err}
		}
		commitments[from] = commitment
	}

	next, share, err := machine.Sign(commitments, signer.signable[id].Message())
	if err != nil {
		return &FaultError{ID: msg.ID, Cause: err}
	}
	signer.signing[id] = next

	signer.events = append(signer.events, BatchShare{
		ID:    msg.ID,
		Share: share.Encode(),
	})
	return nil
}

func (signer *Signer) handleShares(msg BatchShares) error {
	if !signer.verifyID(msg.ID) {
		return nil
	}

	id := msg.ID.ID
	machine, ok := signer.signing[id]
	if !ok {
		// If the preprocessing machine still exists, shares have arrived
		// for an attempt we never emitted a share for. That cannot be
		// explained by a reboot.
		if _, ok := signer.preprocessing[id]; ok {
			panic("shares received yet no share was ever emitted")
		}

		signer.logger.Warn().
			Str("batch", hex.EncodeToString(id[:])).
			Uint32("attempt", msg.ID.Attempt).
			Msg("not signing; this is an error if we did not reboot")
		return nil
	}
	delete(signer.signing, id)

	shares := make(map[uint16]frost.Share, len(msg.Shares))
	for from, bs := range msg.Shares {
		share, err := machine.ReadShare(bs[:])
		if err != nil {
			return &FaultError{ID: msg.ID, Participant: from, Cause: err}
		}
		shares[from] = share
	}

	sig, err := machine.Complete(shares)
	if err != nil {
		fault := &FaultError{ID: msg.ID, Cause: err}
		var shareErr *frost.ShareError
		if errors.As(err, &shareErr) {
			fault.Participant = shareErr.Index
		}
		return fault
	}

	signed := batch.SignedBatch{Batch: signer.signable[id], Signature: sig.Encode()}
	delete(signer.signable, id)

	// Save the signed batch for recovery and mark the batch completed, in
	// one transaction, before the event becomes visible.
	txn := signer.db.db.Txn()
	signer.db.saveBatch(txn, signed)
	signer.db.complete(txn, id)
	if err := txn.Commit(); err != nil {
		panic(fmt.Sprintf("committing signed batch: %v", err))
	}

	if _, ok := signer.attempt[id]; !ok {
		panic("completed a batch with no attempt entry")
	}
	delete(signer.attempt, id)
	if _, ok := signer.preprocessing[id]; ok {
		panic("completed a batch still preprocessing")
	}

	signer.events = append(signer.events, SignedBatch{Batch: signed})
	return nil
}

// BatchSigned tells the signer that the batch for the given block has been
// observed, by external means, to be acknowledged on chain: no further
// signing work is needed. No event is emitted; the host already knows, and
// this signer does not hold the winning SignedBatch.
func (signer *Signer) BatchSigned(block batch.BlockHash) {
	txn := signer.db.db.Txn()
	signer.db.complete(txn, block)
	if err := txn.Commit(); err != nil {
		panic(fmt.Sprintf("committing completion: %v", err))
	}

	delete(signer.signable, block)
	delete(signer.attempt, block)
	delete(signer.preprocessing, block)
	delete(signer.signing, block)
}
