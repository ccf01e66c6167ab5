package frost

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommitment is returned when a round one commitment cannot be
	// decoded into a pair of Ristretto group elements.
	ErrInvalidCommitment = errors.New("invalid commitment")

	// ErrInvalidShare is returned when a round two share cannot be decoded
	// into a canonical Ristretto scalar.
	ErrInvalidShare = errors.New("invalid share")

	// ErrInvalidSignature is returned when a decoded signature is not in
	// sr25519 wire form, or when a completed signature fails verification
	// under the group key.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrDuplicateIndex is returned when the messages given to a machine
	// include one attributed to this cosigner's own index.
	ErrDuplicateIndex = errors.New("duplicate index")

	// ErrUnknownIndex is returned when a message is attributed to an index
	// that is not in the keyset, or to a cosigner that did not commit in
	// round one.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrNotEnoughSigners is returned when fewer cosigners committed in
	// round one than the keyset threshold.
	ErrNotEnoughSigners = errors.New("not enough signers")

	// ErrMissingShare is returned when completion is missing the share of a
	// cosigner that committed in round one.
	ErrMissingShare = errors.New("missing share")
)

// A ShareError reports that the signature share contributed by a particular
// cosigner failed validation against its verification share.
type ShareError struct {
	Index uint16
}

// Error implements the error interface.
func (e *ShareError) Error() string {
	return fmt.Sprintf("invalid signature share from signer %v", e.Index)
}
