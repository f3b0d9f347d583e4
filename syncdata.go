package id3

// desync removes unsynchronisation: every 0xFF 0x00 pair collapses
// into 0xFF.
func desync(data []byte) []byte {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == 0xFF && i+1 < len(data) && data[i+1] == 0x00 {
			i++
		}
	}

	return out
}

// resync applies unsynchronisation by inserting 0x00 after every 0xFF.
func resync(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/16)

	for _, b := range data {
		out = append(out, b)
		if b == 0xFF {
			out = append(out, 0x00)
		}
	}

	return out
}
