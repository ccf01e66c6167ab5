package signer

import (
	"fmt"
	"sort"

	"github.com/renproject/surge"
)

// SizeHint implements the surge.SizeHinter interface.
func (id SignID) SizeHint() int {
	return surge.SizeHint(id.Key) + 32 + surge.SizeHint(id.Attempt)
}

// Marshal implements the surge.Marshaler interface.
func (id SignID) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := surge.Marshal(id.Key, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling key: %v", err)
	}
	if len(buf) < 32 || rem < 32 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(buf, id.ID[:])
	buf, rem = buf[32:], rem-32
	buf, rem, err = surge.MarshalU32(id.Attempt, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling attempt: %v", err)
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (id *SignID) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := surge.Unmarshal(&id.Key, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling key: %v", err)
	}
	if len(buf) < 32 || rem < 32 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(id.ID[:], buf)
	buf, rem = buf[32:], rem-32
	buf, rem, err = surge.UnmarshalU32(&id.Attempt, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling attempt: %v", err)
	}
	return buf, rem, nil
}

// Bytes returns the canonical serialization of the SignID. It is injective
// and stable, and is used as the durable attempt key.
func (id SignID) Bytes() []byte {
	bs, err := surge.ToBinary(id)
	if err != nil {
		panic(fmt.Sprintf("encoding sign id: %v", err))
	}
	return bs
}

// Wire encodings for coordinator messages. Maps are encoded with their keys
// in ascending order so that the encoding is canonical.

// SizeHint implements the surge.SizeHinter interface.
func (msg BatchPreprocesses) SizeHint() int {
	size := msg.ID.SizeHint() + 4
	for _, preprocess := range msg.Preprocesses {
		size += 2 + surge.SizeHint(preprocess)
	}
	return size
}

// Marshal implements the surge.Marshaler interface.
func (msg BatchPreprocesses) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := msg.ID.Marshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling id: %v", err)
	}
	buf, rem, err = surge.MarshalU32(uint32(len(msg.Preprocesses)), buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling length: %v", err)
	}
	froms := make([]uint16, 0, len(msg.Preprocesses))
	for from := range msg.Preprocesses {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		buf, rem, err = surge.MarshalU16(from, buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("marshaling index: %v", err)
		}
		buf, rem, err = surge.Marshal(msg.Preprocesses[from], buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("marshaling preprocess: %v", err)
		}
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (msg *BatchPreprocesses) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := msg.ID.Unmarshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling id: %v", err)
	}
	var n uint32
	buf, rem, err = surge.UnmarshalU32(&n, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling length: %v", err)
	}
	msg.Preprocesses = make(map[uint16][]byte, n)
	for i := uint32(0); i < n; i++ {
		var from uint16
		buf, rem, err = surge.UnmarshalU16(&from, buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("unmarshaling index: %v", err)
		}
		var preprocess []byte
		buf, rem, err = surge.Unmarshal(&preprocess, buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("unmarshaling preprocess: %v", err)
		}
		msg.Preprocesses[from] = preprocess
	}
	return buf, rem, nil
}

// SizeHint implements the surge.SizeHinter interface.
func (msg BatchShares) SizeHint() int {
	return msg.ID.SizeHint() + 4 + len(msg.Shares)*(2+32)
}

// Marshal implements the surge.Marshaler interface.
func (msg BatchShares) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := msg.ID.Marshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling id: %v", err)
	}
	buf, rem, err = surge.MarshalU32(uint32(len(msg.Shares)), buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling length: %v", err)
	}
	froms := make([]uint16, 0, len(msg.Shares))
	for from := range msg.Shares {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		buf, rem, err = surge.MarshalU16(from, buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("marshaling index: %v", err)
		}
		if len(buf) < 32 || rem < 32 {
			return buf, rem, surge.ErrUnexpectedEndOfBuffer
		}
		share := msg.Shares[from]
		copy(buf, share[:])
		buf, rem = buf[32:], rem-32
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (msg *BatchShares) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := msg.ID.Unmarshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling id: %v", err)
	}
	var n uint32
	buf, rem, err = surge.UnmarshalU32(&n, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling length: %v", err)
	}
	msg.Shares = make(map[uint16][32]byte, n)
	for i := uint32(0); i < n; i++ {
		var from uint16
		buf, rem, err = surge.UnmarshalU16(&from, buf, rem)
		if err != nil {
			return buf, rem, fmt.Errorf("unmarshaling index: %v", err)
		}
		if len(buf) < 32 || rem < 32 {
			return buf, rem, surge.ErrUnexpectedEndOfBuffer
		}
		var share [32]byte
		copy(share[:], buf)
		buf, rem = buf[32:], rem-32
		msg.Shares[from] = share
	}
	return buf, rem, nil
}

// SizeHint implements the surge.SizeHinter interface.
func (msg BatchReattempt) SizeHint() int {
	return msg.ID.SizeHint()
}

// Marshal implements the surge.Marshaler interface.
func (msg BatchReattempt) Marshal(buf []byte, rem int) ([]byte, int, error) {
	return msg.ID.Marshal(buf, rem)
}

// Unmarshal implements the surge.Unmarshaler interface.
func (msg *BatchReattempt) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	return msg.ID.Unmarshal(buf, rem)
}
