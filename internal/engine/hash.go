package engine

import (
	"bytes"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Algorithm selects the digest used to fingerprint file content.
type Algorithm int

const (
	BLAKE3 Algorithm = iota
	XXHash
	MD5
)

var algorithmNames = [...]string{
	BLAKE3: "blake3",
	XXHash: "xxhash",
	MD5:    "md5",
}

func (a Algorithm) String() string {
	if a >= 0 && int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return "unknown"
}

// ParseAlgorithm resolves an algorithm name, case-insensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	for i, n := range algorithmNames {
		if strings.EqualFold(name, n) {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown hash algorithm %q (want blake3, xxhash or md5)", name)
}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case XXHash:
		return xxhash.New()
	case MD5:
		return md5.New() //nolint:gosec // see import
	default:
		return blake3.New()
	}
}

// Fingerprint identifies file content. Two fingerprints are equal only if
// they were produced by the same algorithm over identical bytes.
type Fingerprint struct {
	Sum       []byte
	Algorithm Algorithm
}

// Equal reports whether f and o identify the same content.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Algorithm == o.Algorithm && bytes.Equal(f.Sum, o.Sum)
}

func (f Fingerprint) String() string {
	return f.Algorithm.String() + ":" + hex.EncodeToString(f.Sum)
}

const hashBufferSize = 32 * 1024

var hashBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, hashBufferSize)
		return &b
	},
}

// Hasher computes fingerprints. The zero value uses BLAKE3.
type Hasher struct {
	Algorithm Algorithm
}

// File fingerprints the entry at path. Regular files are streamed in
// fixed-size chunks until EOF. Symlinks are never followed: their
// fingerprint covers the link target text.
func (h Hasher) File(path string) (Fingerprint, int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Fingerprint{}, 0, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return Fingerprint{}, 0, fmt.Errorf("readlink %s: %w", path, err)
		}
		fp, _, err := h.Reader(strings.NewReader(target))
		return fp, 0, err
	}
	if !info.Mode().IsRegular() {
		return Fingerprint{}, 0, fmt.Errorf("hash %s: %w", path, ErrSpecialFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fp, n, err := h.Reader(f)
	if err != nil {
		return Fingerprint{}, n, fmt.Errorf("hash %s: %w", path, err)
	}
	return fp, n, nil
}

// Reader fingerprints everything r yields and reports how many bytes it read.
func (h Hasher) Reader(r io.Reader) (Fingerprint, int64, error) {
	d := h.Algorithm.newHash()

	bufp := hashBufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer hashBufPool.Put(bufp)

	// Hide any WriterTo on r so the pooled buffer bounds each read.
	n, err := io.CopyBuffer(d, struct{ io.Reader }{r}, *bufp)
	if err != nil {
		return Fingerprint{}, n, err
	}
	return Fingerprint{Algorithm: h.Algorithm, Sum: d.Sum(nil)}, n, nil
}
