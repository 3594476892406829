package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// PackedBitstream holds concatenated codes, most significant bit first,
// zero padded to a byte boundary. Bits counts the meaningful bits.
type PackedBitstream struct {
	Data []byte
	Bits uint64
}

type packedCode struct {
	value uint64
	n     uint8
	code  string
}

// Encode maps every byte of data through table.
func Encode(data []byte, table CodeTable) (*PackedBitstream, error) {
	var lookup [256]*packedCode
	for sym, code := range table {
		pc := &packedCode{code: code}
		if len(code) <= 64 {
			for i := 0; i < len(code); i++ {
				pc.value = pc.value<<1 | uint64(code[i]-'0')
			}
			pc.n = uint8(len(code))
		}
		lookup[sym] = pc
	}

	var out bytes.Buffer
	w := bitio.NewWriter(&out)
	var bits uint64
	for i, b := range data {
		pc := lookup[b]
		if pc == nil {
			return nil, fmt.Errorf("byte %#02x at offset %d: %w", b, i, ErrMissingCode)
		}
		if pc.n > 0 {
			w.TryWriteBits(pc.value, pc.n)
		} else {
			for j := 0; j < len(pc.code); j++ {
				w.TryWriteBool(pc.code[j] == '1')
			}
		}
		bits += uint64(len(pc.code))
	}
	if w.TryError != nil {
		return nil, fmt.Errorf("failed to pack bits: %w", w.TryError)
	}
	// Close pads the last byte with zeros
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush bits: %w", err)
	}
	return &PackedBitstream{Data: out.Bytes(), Bits: bits}, nil
}

// DecodingTable is the inverse of a CodeTable.
type DecodingTable struct {
	codes    map[string]byte
	shortest int
	longest  int
	// oneBit is set when "1" is a code; its symbol is emitted without
	// touching the accumulator.
	oneBit    bool
	oneBitSym byte
}

// NewDecodingTable inverts ct. The codes must be non-empty and prefix free.
func NewDecodingTable(ct CodeTable) (*DecodingTable, error) {
	if len(ct) == 0 {
		return nil, fmt.Errorf("no codes: %w", ErrMalformedTable)
	}
	dt := &DecodingTable{codes: make(map[string]byte, len(ct))}
	codes := make([]string, 0, len(ct))
	for sym, code := range ct {
		if code == "" {
			return nil, fmt.Errorf("empty code for symbol %#02x: %w", sym, ErrMalformedTable)
		}
		if _, dup := dt.codes[code]; dup {
			return nil, fmt.Errorf("code %q assigned twice: %w", code, ErrMalformedTable)
		}
		dt.codes[code] = sym
		codes = append(codes, code)
		if dt.shortest == 0 || len(code) < dt.shortest {
			dt.shortest = len(code)
		}
		dt.longest = max(dt.longest, len(code))
		if code == "1" {
			dt.oneBit, dt.oneBitSym = true, sym
		}
	}
	if !isPrefixFree(codes) {
		return nil, fmt.Errorf("codes are not prefix free: %w", ErrMalformedTable)
	}
	return dt, nil
}

// Len returns the number of codes in the table.
func (dt *DecodingTable) Len() int { return len(dt.codes) }

// Lookup returns the symbol for code.
func (dt *DecodingTable) Lookup(code string) (byte, bool) {
	sym, ok := dt.codes[code]
	return sym, ok
}

// Decode reads codes from bits until originalLen bytes are produced. Bits
// left over after that are padding and ignored.
func Decode(bits []byte, table *DecodingTable, originalLen uint64) ([]byte, error) {
	// every symbol takes at least one bit
	out := make([]byte, 0, min(originalLen, uint64(len(bits))*8))
	r := bitio.NewReader(bytes.NewReader(bits))
	acc := make([]byte, 0, table.longest)

	for uint64(len(out)) < originalLen {
		bit, err := r.ReadBool()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("stream ended after %d of %d bytes: %w", len(out), originalLen, ErrMalformedStream)
			}
			return nil, fmt.Errorf("failed to read bit: %w", err)
		}

		if bit && len(acc) == 0 && table.oneBit {
			out = append(out, table.oneBitSym)
			continue
		}

		if bit {
			acc = append(acc, '1')
		} else {
			acc = append(acc, '0')
		}
		if len(acc) < table.shortest {
			continue
		}
		if sym, ok := table.codes[string(acc)]; ok {
			out = append(out, sym)
			acc = acc[:0]
			continue
		}
		if len(acc) >= table.longest {
			return nil, fmt.Errorf("no code matches %q after %d bytes: %w", acc, len(out), ErrMalformedStream)
		}
	}
	return out, nil
}
