package rtfproc

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func compressedHeader(payload []byte, magic uint32, crc uint32) []byte {
	src := make([]byte, 16, 16+len(payload))
	binary.LittleEndian.PutUint32(src[0:4], uint32(12+len(payload)))
	binary.LittleEndian.PutUint32(src[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(src[8:12], magic)
	binary.LittleEndian.PutUint32(src[12:16], crc)
	return append(src, payload...)
}

// hand-built all-literal LZFu stream carrying the given document
func compressLiteral(doc []byte) []byte {
	var data []byte
	out := len(lzfuPrebuf)

	for i := 0; i < len(doc); i += 8 {
		end := i + 8
		flags := byte(0)
		if end > len(doc) {
			// final group: literals then an end-of-data self-reference
			end = len(doc)
			flags = 1 << uint(end-i)
		}
		data = append(data, flags)
		data = append(data, doc[i:end]...)
		if flags != 0 {
			offset := out + len(doc)
			data = append(data, byte(offset>>4), byte(offset&0xF)<<4)
		}
	}
	if len(doc)%8 == 0 {
		// self-reference needs its own flag group
		offset := out + len(doc)
		data = append(data, 0x01, byte(offset>>4), byte(offset&0xF)<<4)
	}

	return compressedHeader(data, lzfuMagicCompressed, lzfuCrc32(data))
}

func TestDecompressLiteralStream(t *testing.T) {
	doc := []byte(`{\rtf1 test}`)

	got, err := Decompress(compressLiteral(doc))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("Decompress = %q, want %q", got, doc)
	}
}

func TestDecompressUncompressedMagic(t *testing.T) {
	doc := []byte(`{\rtf1 uncompressed}`)

	got, err := Decompress(compressedHeader(doc, lzfuMagicUncompressed, 0))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("Decompress = %q, want %q", got, doc)
	}
}

func TestDecompressRejectsBadInput(t *testing.T) {
	doc := []byte(`{\rtf1 x}`)
	good := compressLiteral(doc)

	short := good[:10]
	if _, err := Decompress(short); err == nil {
		t.Error("short header accepted")
	}

	sizeMismatch := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(sizeMismatch[0:4], 5)
	if _, err := Decompress(sizeMismatch); err == nil {
		t.Error("size mismatch accepted")
	}

	badMagic := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badMagic[8:12], 0xDEADBEEF)
	if _, err := Decompress(badMagic); err == nil {
		t.Error("unknown magic accepted")
	}

	badCrc := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badCrc[12:16], lzfuCrc32(badCrc[16:])+1)
	if _, err := Decompress(badCrc); err == nil {
		t.Error("bad CRC accepted")
	}
}

func TestReplaceCompressed(t *testing.T) {
	var out bytes.Buffer
	src := compressLiteral([]byte(`{\rtf1 JAMES}`))

	err := ReplaceCompressed(src, &out, nil, []Replacement{{"JAMES", "X"}})
	if err != nil {
		t.Fatalf("ReplaceCompressed: %v", err)
	}
	if want := `{\rtf1 X}`; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
