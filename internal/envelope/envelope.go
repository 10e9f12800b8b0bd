package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("encstore: corrupt envelope")
	magic4     = [...]byte{'E', 'N', 'C', 'S'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Sealed is one encrypted payload: the algorithm that produced it, its
// nonce (or salt) and the sealed bytes.
type Sealed struct {
	Alg   byte
	Nonce []byte
	Data  []byte
}

// magic(4) | ver(1) | alg(1) | nlen(u16 be) | nonce(nlen) | dlen(u32 be) | data(dlen)
func Encode(s Sealed) ([]byte, error) {
	if len(s.Nonce) > 0xFFFF {
		return nil, errors.New("encstore: nonce too long")
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 2 + len(s.Nonce) + 4 + len(s.Data))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(s.Alg)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(s.Nonce)))
	buf.Write(u2[:])
	buf.Write(s.Nonce)

	binary.BigEndian.PutUint32(u4[:], uint32(len(s.Data)))
	buf.Write(u4[:])
	buf.Write(s.Data)

	return buf.Bytes(), nil
}

// Decode parses b strictly: trailing bytes are corruption.
func Decode(b []byte) (Sealed, error) {
	const hdr = 4 + 1 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Sealed{}, ErrCorrupt
	}
	alg := b[5]
	off := 6

	// nonce
	nlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if nlen > len(b)-off {
		return Sealed{}, ErrCorrupt
	}
	nonce := b[off : off+nlen]
	off += nlen

	// data
	if off+4 > len(b) {
		return Sealed{}, ErrCorrupt
	}
	dlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if dlen < 0 || dlen != len(b)-off { // overflow-safe, no trailing bytes
		return Sealed{}, ErrCorrupt
	}

	return Sealed{Alg: alg, Nonce: nonce, Data: b[off:]}, nil
}
