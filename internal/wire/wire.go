package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version      byte = 1
	kindRecord   byte = 1
	kindSnapshot byte = 2

	// smallest possible snapshot item: idlen(2) + id(1) + vlen(4)
	minItemSize = 7
)

var (
	ErrCorrupt = errors.New("fallcache: corrupt entry")
	magic4     = [...]byte{'F', 'A', 'L', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record: magic(4) | ver(1) | kind(1=record) | rev(u64 be) | vlen(u32 be) | payload(vlen)
func EncodeRecord(rev uint64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], rev)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeRecord(b []byte) (rev uint64, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return 0, nil, ErrCorrupt
	}

	off := 6

	rev = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || off+vlen != len(b) { // exact consumption; trailing bytes are corruption
		return 0, nil, ErrCorrupt
	}

	return rev, b[off : off+vlen], nil
}

// Snapshot:
//
//	magic(4) | ver(1) | kind(2=snapshot) | rev(u64 be) | n(u32 be)
//	idLen(u16 be) | id(idLen) | vlen(u32 be) | payload(vlen) * n
type Item struct {
	ID      string
	Payload []byte
}

func EncodeSnapshot(rev uint64, items []Item) []byte {
	total := 4 + 1 + 1 + 8 + 4
	for _, it := range items {
		total += 2 + len(it.ID) + 4 + len(it.Payload)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSnapshot)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], rev)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(items)))
	buf.Write(u4[:])

	for _, it := range items {
		if l := len(it.ID); l == 0 || l > 0xFFFF {
			panic("fallcache: invalid record id length in snapshot")
		}
		binary.BigEndian.PutUint16(u2[:], uint16(len(it.ID)))
		buf.Write(u2[:])
		buf.WriteString(it.ID)

		binary.BigEndian.PutUint32(u4[:], uint32(len(it.Payload)))
		buf.Write(u4[:])
		buf.Write(it.Payload)
	}

	return buf.Bytes()
}

func DecodeSnapshot(b []byte) (rev uint64, items []Item, err error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindSnapshot {
		return 0, nil, ErrCorrupt
	}

	off := 6

	rev = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return 0, nil, ErrCorrupt
	}

	// never trust the claimed count for preallocation
	capHint := n
	if max := (len(b) - off) / minItemSize; capHint > max {
		capHint = max
	}

	items = make([]Item, 0, capHint)
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return 0, nil, ErrCorrupt
		}
		idLen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if idLen <= 0 || idLen > len(b)-off {
			return 0, nil, ErrCorrupt
		}

		idBytes := b[off : off+idLen]
		off += idLen

		if off+4 > len(b) {
			return 0, nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return 0, nil, ErrCorrupt
		}

		payload := b[off : off+vlen]
		off += vlen

		items = append(items, Item{
			ID:      string(idBytes), // one expected alloc per item
			Payload: payload,
		})
	}
	if off != len(b) { // trailing bytes are corruption
		return 0, nil, ErrCorrupt
	}

	return rev, items, nil
}
