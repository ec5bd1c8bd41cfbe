package smt

import (
	"encoding/binary"
	"fmt"
)

// Wire tags for proof items, chosen clear of the 0x00/0x01 domain-
// separation bytes the node hash formulae use so a corrupted stream is
// easy to tell apart from a hash accident.
const (
	tagProofItemHash      byte = 0x50
	tagProofItemZeroMerge byte = 0x51
)

// MarshalBinary encodes a MerkleProof as: the fixed 32-byte
// leaves_bitmap, a varint count of per-key path bitmaps (this proof
// shape's own internal bookkeeping, not part of the external
// leaves_bitmap contract) plus that many 32-byte words, then a varint
// item count and each item as a one-byte tag followed by its payload.
func (mp *MerkleProof) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 32+32+len(mp.pathBitmaps)*32+len(mp.Items)*34)
	var tmp [binary.MaxVarintLen64]byte

	buf = append(buf, mp.LeavesBitmap[:]...)

	n := binary.PutUvarint(tmp[:], uint64(len(mp.pathBitmaps)))
	buf = append(buf, tmp[:n]...)
	for _, bm := range mp.pathBitmaps {
		buf = append(buf, bm[:]...)
	}

	n = binary.PutUvarint(tmp[:], uint64(len(mp.Items)))
	buf = append(buf, tmp[:n]...)
	for _, item := range mp.Items {
		switch item.Kind {
		case ProofItemHash:
			buf = append(buf, tagProofItemHash)
			buf = append(buf, item.Sibling[:]...)
		case ProofItemZeroMerge:
			buf = append(buf, tagProofItemZeroMerge)
			buf = append(buf, item.ZeroBits[:]...)
			buf = append(buf, item.ZeroCount)
		default:
			return nil, &CorruptedProofError{Reason: "cannot marshal unknown proof item kind"}
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes a MerkleProof encoded by MarshalBinary.
func (mp *MerkleProof) UnmarshalBinary(data []byte) error {
	r := &byteReader{data: data}

	leavesBitmap, err := r.word32()
	if err != nil {
		return &CorruptedProofError{Reason: fmt.Sprintf("leaves_bitmap: %v", err)}
	}

	pathCount, err := r.uvarint()
	if err != nil {
		return &CorruptedProofError{Reason: fmt.Sprintf("path bitmap count: %v", err)}
	}
	pathBitmaps := make([]H256, pathCount)
	for i := range pathBitmaps {
		word, err := r.word32()
		if err != nil {
			return &CorruptedProofError{Reason: fmt.Sprintf("path bitmap[%d]: %v", i, err)}
		}
		pathBitmaps[i] = word
	}

	itemCount, err := r.uvarint()
	if err != nil {
		return &CorruptedProofError{Reason: fmt.Sprintf("item count: %v", err)}
	}
	items := make([]ProofItem, itemCount)
	for i := range items {
		tag, err := r.byte1()
		if err != nil {
			return &CorruptedProofError{Reason: fmt.Sprintf("item[%d] tag: %v", i, err)}
		}
		switch tag {
		case tagProofItemHash:
			sibling, err := r.word32()
			if err != nil {
				return &CorruptedProofError{Reason: fmt.Sprintf("item[%d] sibling: %v", i, err)}
			}
			items[i] = ProofItem{Kind: ProofItemHash, Sibling: sibling}
		case tagProofItemZeroMerge:
			zeroBits, err := r.word32()
			if err != nil {
				return &CorruptedProofError{Reason: fmt.Sprintf("item[%d] zero_bits: %v", i, err)}
			}
			zeroCount, err := r.byte1()
			if err != nil {
				return &CorruptedProofError{Reason: fmt.Sprintf("item[%d] zero_count: %v", i, err)}
			}
			items[i] = ProofItem{Kind: ProofItemZeroMerge, ZeroBits: zeroBits, ZeroCount: zeroCount}
		default:
			return &CorruptedProofError{Reason: fmt.Sprintf("item[%d] has unknown tag 0x%02x", i, tag)}
		}
	}
	if !r.exhausted() {
		return &CorruptedProofError{Reason: "trailing bytes after proof stream"}
	}

	mp.LeavesBitmap = leavesBitmap
	mp.pathBitmaps = pathBitmaps
	mp.Items = items
	return nil
}

// byteReader is a minimal forward-only cursor over a byte slice, used so
// UnmarshalBinary reads like straight-line code instead of manual offset
// bookkeeping at every step.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("malformed varint")
	}
	r.pos += n
	return v, nil
}

func (r *byteReader) byte1() (byte, error) {
	if r.pos+1 > len(r.data) {
		return 0, fmt.Errorf("unexpected end of stream")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) word32() (H256, error) {
	if r.pos+32 > len(r.data) {
		return H256{}, fmt.Errorf("unexpected end of stream")
	}
	var h H256
	copy(h[:], r.data[r.pos:r.pos+32])
	r.pos += 32
	return h, nil
}

func (r *byteReader) exhausted() bool {
	return r.pos == len(r.data)
}
