package common

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the hex encoded xxhash64 of data.
func Checksum(data []byte) string {
	return FormatDigest(xxhash.Sum64(data))
}

func FormatDigest(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// ChecksumReader tees r into an xxhash digest. Sum is valid once r is drained.
type ChecksumReader struct {
	r      io.Reader
	digest *xxhash.Digest
}

func NewChecksumReader(r io.Reader) *ChecksumReader {
	d := xxhash.New()
	return &ChecksumReader{r: io.TeeReader(r, d), digest: d}
}

func (c *ChecksumReader) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *ChecksumReader) Sum() string {
	return FormatDigest(c.digest.Sum64())
}
