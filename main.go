package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/ntdkhiem/hzip/compression"
	"github.com/ntdkhiem/hzip/internal/common"
)

func main() {
	common.InitLogger(os.Stderr, false)
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(out, "Not enough arguments.")
		printUsage(out)
		return 2
	}

	report := func(name, path string, elapsed time.Duration, err error) {
		fmt.Fprintf(out, "Operation took %dms.\n", elapsed.Milliseconds())
	}

	path := args[1]
	switch args[0] {
	case "c":
		fmt.Fprintf(out, "Compressing '%s'...\n", path)
		encode := compression.Measure("encode", compression.EncodeFile, report)
		result, err := encode(path)
		if errors.Is(err, compression.ErrEmptyInput) {
			fmt.Fprintln(out, "Nothing to compress: the input file is empty.")
			return 0
		}
		if err != nil {
			fmt.Fprintf(out, "Failed to compress file: %v.\n", err)
			return 1
		}
		fmt.Fprintf(out, "Compressed file saved to '%s' (%s -> %s, %.1f%%).\n",
			result.OutputPath,
			datasize.ByteSize(result.OriginalSize).HumanReadable(),
			datasize.ByteSize(result.CompressedSize).HumanReadable(),
			result.Ratio()*100)

	case "d":
		fmt.Fprintf(out, "Decompressing '%s'...\n", path)
		decode := compression.Measure("decode", compression.DecodeFile, report)
		result, err := decode(path)
		if errors.Is(err, compression.ErrNotHzip) {
			fmt.Fprintln(out, "Not an hzipped file.")
			printUsage(out)
			return 2
		}
		if err != nil {
			fmt.Fprintf(out, "Failed to decompress file: %v.\n", err)
			return 1
		}
		fmt.Fprintf(out, "Decompressed file saved to '%s' (%s).\n",
			result.OutputPath, datasize.ByteSize(result.DecodedSize).HumanReadable())

	default:
		fmt.Fprintln(out, "Unknown option.")
		printUsage(out)
		return 2
	}
	return 0
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage for compression: hzip c <path>")
	fmt.Fprintln(out, "Usage for decompression (<path> must be to a .hzip file): hzip d <path>")
}
