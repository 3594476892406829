package compression

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Extension is appended to compressed files.
const Extension = ".hzip"

const (
	headerSize     = 16
	entrySeparator = 0x00
)

// Serialize lays out the container: original length, table segment length,
// table segment and payload. Integers are little endian u64.
func Serialize(table CodeTable, bits *PackedBitstream, originalLen uint64) []byte {
	segment := serializeTable(table)

	var out bytes.Buffer
	out.Grow(headerSize + len(segment) + len(bits.Data))
	headerBin := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(headerBin[0:8], originalLen)
	binary.LittleEndian.PutUint64(headerBin[8:16], uint64(len(segment)))
	out.Write(headerBin)
	out.Write(segment)
	out.Write(bits.Data)
	return out.Bytes()
}

// serializeTable writes each entry as the raw symbol byte followed by its
// code, entries separated by a null byte, in ascending symbol order.
func serializeTable(table CodeTable) []byte {
	var segment bytes.Buffer
	for i, sym := range table.Symbols() {
		if i > 0 {
			segment.WriteByte(entrySeparator)
		}
		segment.WriteByte(sym)
		segment.WriteString(table[sym])
	}
	return segment.Bytes()
}

// Deserialize splits a container into its decoding table, payload and the
// original data length.
func Deserialize(file []byte) (*DecodingTable, []byte, uint64, error) {
	if len(file) < headerSize {
		return nil, nil, 0, fmt.Errorf("header needs %d bytes, got %d: %w", headerSize, len(file), ErrTruncatedFile)
	}
	originalLen := binary.LittleEndian.Uint64(file[0:8])
	segmentLen := binary.LittleEndian.Uint64(file[8:16])
	rest := file[headerSize:]
	if segmentLen > uint64(len(rest)) {
		return nil, nil, 0, fmt.Errorf("code table declares %d bytes, %d left: %w", segmentLen, len(rest), ErrTruncatedFile)
	}

	table, err := parseTable(rest[:segmentLen])
	if err != nil {
		return nil, nil, 0, err
	}
	dt, err := NewDecodingTable(table)
	if err != nil {
		return nil, nil, 0, err
	}

	payload := rest[segmentLen:]
	if need := payloadLowerBound(originalLen, dt.shortest); need > uint64(len(payload)) {
		return nil, nil, 0, fmt.Errorf("payload needs at least %d bytes, got %d: %w", need, len(payload), ErrTruncatedFile)
	}
	return dt, payload, originalLen, nil
}

// parseTable reads entries byte by byte. The first byte of an entry is
// always the symbol, even when it equals the separator or an ASCII digit.
func parseTable(segment []byte) (CodeTable, error) {
	if len(segment) == 0 {
		return nil, fmt.Errorf("empty code table: %w", ErrMalformedTable)
	}
	table := make(CodeTable)
	pos := 0
	for {
		if pos >= len(segment) {
			return nil, fmt.Errorf("entry at offset %d has no symbol: %w", pos, ErrMalformedTable)
		}
		sym := segment[pos]
		pos++

		start := pos
		for pos < len(segment) && segment[pos] != entrySeparator {
			if c := segment[pos]; c != '0' && c != '1' {
				return nil, fmt.Errorf("invalid code character %#02x at offset %d: %w", c, pos, ErrMalformedTable)
			}
			pos++
		}
		if pos == start {
			return nil, fmt.Errorf("symbol %#02x has no code: %w", sym, ErrMalformedTable)
		}
		if _, dup := table[sym]; dup {
			return nil, fmt.Errorf("symbol %#02x listed twice: %w", sym, ErrMalformedTable)
		}
		table[sym] = string(segment[start:pos])

		if pos == len(segment) {
			return table, nil
		}
		// skip separator
		pos++
	}
}

// payloadLowerBound is the fewest payload bytes that can hold originalLen
// codes of at least shortest bits each.
func payloadLowerBound(originalLen uint64, shortest int) uint64 {
	const maxUint64 = ^uint64(0)
	if shortest > 0 && originalLen > maxUint64/uint64(shortest) {
		return maxUint64
	}
	bits := originalLen * uint64(shortest)
	return bits/8 + min(bits%8, 1)
}
