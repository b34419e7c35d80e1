package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version  byte = 1
	kindItem byte = 1

	headerLen = 4 + 1 + 1 + 4 + 4
)

var (
	ErrCorrupt = errors.New("railcache: corrupt item")
	magic4     = [...]byte{'R', 'L', 'C', 'I'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Item framing for stores without out-of-band flags (everything except memcached):
//
//	magic(4) | ver(1) | kind(1=item) | flags(u32 be) | vlen(u32 be) | payload(vlen)
func EncodeItem(flags uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindItem)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], flags)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeItem returns the flags and a payload sub-slice of b (no copy).
// Trailing bytes after the announced payload are rejected.
func DecodeItem(b []byte) (flags uint32, payload []byte, err error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindItem {
		return 0, nil, ErrCorrupt
	}

	off := 6
	flags = binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if uint64(vlen) != uint64(len(b)-off) { // strict: exact length
		return 0, nil, ErrCorrupt
	}

	return flags, b[off:], nil
}

// Unframe is DecodeItem for values that may not have been written by railcache.
// Anything that is not a well-formed frame is returned whole, with zero flags, the
// way memcached reports an item stored by another client.
func Unframe(b []byte) (flags uint32, payload []byte) {
	flags, payload, err := DecodeItem(b)
	if err != nil {
		return 0, b
	}
	return flags, payload
}
