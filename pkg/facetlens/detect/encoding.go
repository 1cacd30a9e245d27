package detect

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// DecodeText converts raw export bytes to a UTF-8 string. BOM-tagged
// UTF-16 is handled by charset sniffing; BOM-less UTF-16 (the Keyword
// Planner export) is recognized by its NUL density and decoded explicitly.
func DecodeText(raw []byte) (string, error) {
	if looksUTF16(raw) {
		endian := unicode.LittleEndian
		if len(raw) >= 2 && raw[0] == 0x00 {
			endian = unicode.BigEndian
		}
		dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	r, err := charset.NewReader(bytes.NewReader(raw), "text/plain")
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// looksUTF16 reports a UTF-16 stream: either a BOM or a high share of NUL
// bytes in the prefix (ASCII-heavy UTF-16 alternates NULs).
func looksUTF16(raw []byte) bool {
	if len(raw) >= 2 {
		if (raw[0] == 0xFF && raw[1] == 0xFE) || (raw[0] == 0xFE && raw[1] == 0xFF) {
			return true
		}
	}
	n := len(raw)
	if n > 512 {
		n = 512
	}
	if n == 0 {
		return false
	}
	nuls := bytes.Count(raw[:n], []byte{0})
	return nuls*4 > n
}
