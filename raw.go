package id3

import "encoding/binary"

// maxSyncsafe is the largest value a 4 byte syncsafe integer can hold.
const maxSyncsafe = 1<<28 - 1

// desynchsafeInt decodes a 4 byte syncsafe integer. Every byte must
// have its high bit cleared.
func desynchsafeInt(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrNotEnoughData
	}
	for _, c := range b[:4] {
		if c&0x80 != 0 {
			return 0, ErrMalformedData
		}
	}

	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3]), nil
}

// synchsafeBytes is the inverse of desynchsafeInt. Callers must make
// sure that i does not exceed maxSyncsafe.
func synchsafeBytes(i int) []byte {
	return []byte{
		byte(i>>21) & 0x7f,
		byte(i>>14) & 0x7f,
		byte(i>>7) & 0x7f,
		byte(i) & 0x7f,
	}
}

func beUint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func beUint24(b []byte) int {
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
}

func beUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func intToBytes(i uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, i)
}

func concat(bs ...[]byte) []byte {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}
