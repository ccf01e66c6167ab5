package batch

import (
	"fmt"

	"github.com/renproject/surge"
)

// SizeHint implements the surge.SizeHinter interface.
func (h BlockHash) SizeHint() int { return 32 }

// Marshal implements the surge.Marshaler interface.
func (h BlockHash) Marshal(buf []byte, rem int) ([]byte, int, error) {
	if len(buf) < 32 || rem < 32 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(buf, h[:])
	return buf[32:], rem - 32, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (h *BlockHash) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	if len(buf) < 32 || rem < 32 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(h[:], buf)
	return buf[32:], rem - 32, nil
}

// SizeHint implements the surge.SizeHinter interface.
func (ins Instruction) SizeHint() int {
	return surge.SizeHint(ins.Origin) +
		surge.SizeHint(ins.Data) +
		surge.SizeHint(ins.Amount)
}

// Marshal implements the surge.Marshaler interface.
func (ins Instruction) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := surge.Marshal(ins.Origin, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling origin: %v", err)
	}
	buf, rem, err = surge.Marshal(ins.Data, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling data: %v", err)
	}
	buf, rem, err = surge.MarshalU64(ins.Amount, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling amount: %v", err)
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (ins *Instruction) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := surge.Unmarshal(&ins.Origin, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling origin: %v", err)
	}
	buf, rem, err = surge.Unmarshal(&ins.Data, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling data: %v", err)
	}
	buf, rem, err = surge.UnmarshalU64(&ins.Amount, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling amount: %v", err)
	}
	return buf, rem, nil
}

// SizeHint implements the surge.SizeHinter interface.
func (b Batch) SizeHint() int {
	return b.Block.SizeHint() + surge.SizeHint(b.Instructions)
}

// Marshal implements the surge.Marshaler interface.
func (b Batch) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := b.Block.Marshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling block: %v", err)
	}
	buf, rem, err = surge.Marshal(b.Instructions, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling instructions: %v", err)
	}
	return buf, rem, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (b *Batch) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := b.Block.Unmarshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling block: %v", err)
	}
	buf, rem, err = surge.Unmarshal(&b.Instructions, buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling instructions: %v", err)
	}
	return buf, rem, nil
}

// Message returns the canonical encoding of the batch. This is the message
// that cosigners sign.
func (b Batch) Message() []byte {
	bs, err := surge.ToBinary(b)
	if err != nil {
		panic(fmt.Sprintf("encoding batch: %v", err))
	}
	return bs
}

// SizeHint implements the surge.SizeHinter interface.
func (sb SignedBatch) SizeHint() int {
	return sb.Batch.SizeHint() + 64
}

// Marshal implements the surge.Marshaler interface.
func (sb SignedBatch) Marshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := sb.Batch.Marshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("marshaling batch: %v", err)
	}
	if len(buf) < 64 || rem < 64 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(buf, sb.Signature[:])
	return buf[64:], rem - 64, nil
}

// Unmarshal implements the surge.Unmarshaler interface.
func (sb *SignedBatch) Unmarshal(buf []byte, rem int) ([]byte, int, error) {
	buf, rem, err := sb.Batch.Unmarshal(buf, rem)
	if err != nil {
		return buf, rem, fmt.Errorf("unmarshaling batch: %v", err)
	}
	if len(buf) < 64 || rem < 64 {
		return buf, rem, surge.ErrUnexpectedEndOfBuffer
	}
	copy(sb.Signature[:], buf)
	return buf[64:], rem - 64, nil
}

// Encode returns the canonical encoding of the signed batch, as persisted by
// the signer and broadcast to the settlement chain.
func (sb SignedBatch) Encode() []byte {
	bs, err := surge.ToBinary(sb)
	if err != nil {
		panic(fmt.Sprintf("encoding signed batch: %v", err))
	}
	return bs
}
