package compression

import (
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of bytes each counting goroutine scans.
const ChunkSize int = 1_000_000

// FrequencyTable maps every byte seen in the input to its occurrence count.
type FrequencyTable map[byte]uint64

// Count builds the frequency table of data. An empty input yields an empty
// table.
func Count(data []byte) FrequencyTable {
	return CountChunked(data, ChunkSize)
}

// CountChunked splits data into contiguous chunks of chunkSize bytes, counts
// each chunk in its own goroutine and merges the partial tables.
func CountChunked(data []byte, chunkSize int) FrequencyTable {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	chunks := splitChunks(data, chunkSize)
	partials := make([][256]uint64, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			for _, b := range chunk {
				partials[i][b]++
			}
			return nil
		})
	}
	// counting never fails
	_ = g.Wait()

	table := make(FrequencyTable)
	for _, p := range partials {
		table.merge(p)
	}
	return table
}

func (ft FrequencyTable) merge(counts [256]uint64) {
	for sym, n := range counts {
		if n > 0 {
			ft[byte(sym)] += n
		}
	}
}

// Total returns the sum of all counts, which equals the input length.
func (ft FrequencyTable) Total() uint64 {
	var total uint64
	for _, n := range ft {
		total += n
	}
	return total
}

func splitChunks(data []byte, chunkSize int) [][]byte {
	var chunks [][]byte
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		chunks = append(chunks, data[i:min(end, len(data))])
	}
	return chunks
}
