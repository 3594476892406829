package compression

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Stats describes one compression run.
type Stats struct {
	OriginalSize   uint64
	CompressedSize uint64
	Symbols        int
	PayloadBits    uint64
}

// Ratio is the compressed size over the original size.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}
	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// Compress encodes data into an hzip container. Empty data returns
// ErrEmptyInput.
func Compress(data []byte) ([]byte, *Stats, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyInput
	}

	freqTable := Count(data)
	slog.Debug("Built frequency table", "symbols", len(freqTable), "bytes", len(data))

	codeTable, err := BuildCodeTable(freqTable)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build code table: %w", err)
	}
	slog.Debug("Built code table", "codes", len(codeTable))

	bits, err := Encode(data, codeTable)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode data: %w", err)
	}
	slog.Debug("Encoded body", "bits", bits.Bits, "bytes", len(bits.Data))

	out := Serialize(codeTable, bits, uint64(len(data)))
	return out, &Stats{
		OriginalSize:   uint64(len(data)),
		CompressedSize: uint64(len(out)),
		Symbols:        len(codeTable),
		PayloadBits:    bits.Bits,
	}, nil
}

// Decompress restores the bytes held by an hzip container.
func Decompress(file []byte) ([]byte, error) {
	table, payload, originalLen, err := Deserialize(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse container: %w", err)
	}
	slog.Debug("Parsed container", "codes", table.Len(), "original_size", originalLen, "payload", len(payload))

	data, err := Decode(payload, table, originalLen)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return data, nil
}

// EncodedFile is the result of EncodeFile.
type EncodedFile struct {
	InputPath  string
	OutputPath string
	Stats
}

// DecodedFile is the result of DecodeFile.
type DecodedFile struct {
	InputPath      string
	OutputPath     string
	CompressedSize uint64
	DecodedSize    uint64
}

// EncodeFile compresses inputPath into inputPath+".hzip". An empty input
// returns ErrEmptyInput and writes nothing.
func EncodeFile(inputPath string) (*EncodedFile, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, &IOError{Op: "read", Path: inputPath, Err: err}
	}

	out, stats, err := Compress(data)
	if err != nil {
		return nil, err
	}

	outputPath := inputPath + Extension
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return nil, &IOError{Op: "write", Path: outputPath, Err: err}
	}
	slog.Debug("Wrote compressed file", "path", outputPath, "bytes", len(out))

	return &EncodedFile{InputPath: inputPath, OutputPath: outputPath, Stats: *stats}, nil
}

// DecodeFile restores path, which must end in ".hzip", into the same path
// without the suffix.
func DecodeFile(path string) (*DecodedFile, error) {
	outputPath, ok := strings.CutSuffix(path, Extension)
	if !ok || outputPath == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNotHzip)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	data, err := Decompress(file)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return nil, &IOError{Op: "write", Path: outputPath, Err: err}
	}
	slog.Debug("Wrote decompressed file", "path", outputPath, "bytes", len(data))

	return &DecodedFile{
		InputPath:      path,
		OutputPath:     outputPath,
		CompressedSize: uint64(len(file)),
		DecodedSize:    uint64(len(data)),
	}, nil
}
