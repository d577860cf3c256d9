package utils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Supported digest algorithms
const (
	AlgorithmMD5    = "md5"
	AlgorithmSHA256 = "sha256"
	AlgorithmXXHash = "xxhash"
)

var algorithms = map[string]func() hash.Hash{
	AlgorithmMD5:    md5.New,
	AlgorithmSHA256: sha256.New,
	AlgorithmXXHash: func() hash.Hash { return xxhash.New() },
}

// NewHash returns a fresh hash.Hash for the named algorithm
func NewHash(algorithm string) (hash.Hash, error) {
	ctor, ok := algorithms[strings.ToLower(algorithm)]
	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm %q (supported: %s)",
			algorithm, strings.Join(Algorithms(), ", "))
	}
	return ctor(), nil
}

// ValidateAlgorithm reports whether algorithm names a supported digest
func ValidateAlgorithm(algorithm string) error {
	_, err := NewHash(algorithm)
	return err
}

// Algorithms lists the supported algorithm names in sorted order
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HashFile computes the hex digest of a whole file with the given algorithm
func HashFile(filepath, algorithm string) (string, error) {
	h, err := NewHash(algorithm)
	if err != nil {
		return "", err
	}

	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
